// Package main implements a standalone seed script that populates the
// storefront database with an admin account, a demo customer, and a catalog
// of products across every category.
//
// Run: go run ./scripts/seed
package main

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const productsPerCategory = 25

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "storefront"),
		getEnv("POSTGRES_PASSWORD", "storefront_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("STOREFRONT_DB_NAME", "storefront"),
		getEnv("POSTGRES_SSL_MODE", "disable"),
	)
}

// deterministicUUID derives a stable UUID from a seed string so reruns
// upsert the same rows instead of duplicating them.
func deterministicUUID(seed string) string {
	h := sha256.Sum256([]byte(seed))
	h[6] = (h[6] & 0x0f) | 0x40
	h[8] = (h[8] & 0x3f) | 0x80
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x", h[0:4], h[4:6], h[6:8], h[8:10], h[10:16])
}

var categories = []string{
	"electronics", "fashion", "home", "beauty", "sports", "books", "toys", "grocery",
}

var nouns = map[string][]string{
	"electronics": {"Earbuds", "Smartwatch", "Power Bank", "Bluetooth Speaker", "Webcam"},
	"fashion":     {"Kurta", "Sneakers", "Denim Jacket", "Silk Scarf", "Leather Belt"},
	"home":        {"Table Lamp", "Wall Clock", "Bedsheet Set", "Storage Basket", "Ceramic Vase"},
	"beauty":      {"Face Serum", "Lip Balm", "Hair Oil", "Sunscreen", "Kajal"},
	"sports":      {"Yoga Mat", "Cricket Bat", "Running Shorts", "Skipping Rope", "Water Bottle"},
	"books":       {"Novel", "Cookbook", "Atlas", "Biography", "Puzzle Book"},
	"toys":        {"Building Blocks", "Plush Bear", "Remote Car", "Board Game", "Art Kit"},
	"grocery":     {"Masala Pack", "Green Tea", "Honey Jar", "Dry Fruits Mix", "Basmati Rice"},
}

var adjectives = []string{"Classic", "Premium", "Everyday", "Compact", "Deluxe", "Eco", "Pro", "Heritage"}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool) error {
	users := []struct {
		email, name, role, password string
	}{
		{"admin@storefront.local", "Store Admin", "admin", getEnv("SEED_ADMIN_PASSWORD", "admin-secret-1")},
		{"demo@storefront.local", "Demo Customer", "user", getEnv("SEED_DEMO_PASSWORD", "demo-secret-1")},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.email, err)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, role)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role`,
			deterministicUUID("user:"+u.email), u.email, string(hash), u.name, u.role,
		)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.email, err)
		}
		log.Printf("seeded user %s (%s)", u.email, u.role)
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand) error {
	total := 0
	for _, category := range categories {
		for i := 0; i < productsPerCategory; i++ {
			noun := nouns[category][i%len(nouns[category])]
			adj := adjectives[rng.Intn(len(adjectives))]
			name := fmt.Sprintf("%s %s %d", adj, noun, i+1)

			mrp := float64(rng.Intn(4900) + 100)
			ourPrice := round2(mrp * (0.6 + rng.Float64()*0.35))
			discount := math.Round((mrp - ourPrice) / mrp * 100)
			afterExchange := round2(ourPrice * 0.95)
			stock := rng.Intn(50)

			images, err := json.Marshal([]string{
				fmt.Sprintf("https://img.storefront.local/%s/%s.jpg", category, deterministicUUID("img:"+name)[:8]),
			})
			if err != nil {
				return fmt.Errorf("marshal images: %w", err)
			}

			_, err = pool.Exec(ctx, `
				INSERT INTO products (
					id, name, description, category, mrp, our_price, discount,
					after_exchange_price, in_stock, stock_quantity, images
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (id) DO UPDATE SET
					our_price = EXCLUDED.our_price,
					discount = EXCLUDED.discount,
					after_exchange_price = EXCLUDED.after_exchange_price,
					stock_quantity = EXCLUDED.stock_quantity,
					in_stock = EXCLUDED.in_stock,
					updated_at = now()`,
				deterministicUUID("product:"+category+":"+name),
				name,
				fmt.Sprintf("A %s %s for the %s section.", adj, noun, category),
				category,
				mrp, ourPrice, discount, afterExchange,
				stock > 0, stock, images,
			)
			if err != nil {
				return fmt.Errorf("insert product %q: %w", name, err)
			}
			total++
		}
	}
	log.Printf("seeded %d products across %d categories", total, len(categories))
	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn())
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}

	rng := rand.New(rand.NewSource(42))

	if err := seedUsers(ctx, pool); err != nil {
		log.Fatalf("seed users: %v", err)
	}
	if err := seedProducts(ctx, pool, rng); err != nil {
		log.Fatalf("seed products: %v", err)
	}

	log.Println("seed complete")
}
