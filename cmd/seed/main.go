package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/gamevault/storefront/config"
	"github.com/gamevault/storefront/pkg/helpers"
)

type seedUser struct {
	email    string
	password string
	name     string
	role     string
	dob      time.Time
}

type seedGame struct {
	rawgID   int64
	name     string
	slug     string
	released string
	explicit bool
	price    float64
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := []seedUser{
		{"owner@gamevault.dev", "ownerpass123", "Store Owner", "owner", time.Date(1985, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"admin@gamevault.dev", "adminpass123", "Store Admin", "admin", time.Date(1990, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"demo@gamevault.dev", "demopass123", "Demo Player", "client", time.Date(2000, 1, 20, 0, 0, 0, 0, time.UTC)},
	}
	for _, u := range users {
		hash, err := helpers.HashPassword(u.password)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		var id string
		err = db.QueryRow(`
			INSERT INTO users (email, password_hash, name, role, date_of_birth)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role
			RETURNING id
		`, u.email, hash, u.name, u.role, u.dob).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		fmt.Printf("seeded user: id=%s email=%s role=%s password=%s\n", id, u.email, u.role, u.password)
	}

	// Starter catalog so the homepage is not empty before the first
	// provider fetch.
	games := []seedGame{
		{3498, "Grand Theft Auto V", "grand-theft-auto-v", "2013-09-17", true, 29.99},
		{3328, "The Witcher 3: Wild Hunt", "the-witcher-3-wild-hunt", "2015-05-18", true, 39.99},
		{4200, "Portal 2", "portal-2", "2011-04-18", false, 19.99},
		{5286, "Tomb Raider", "tomb-raider", "2013-03-05", false, 19.99},
		{32, "Destiny 2", "destiny-2", "2017-09-06", false, 0},
	}
	for _, g := range games {
		released, err := time.Parse("2006-01-02", g.released)
		if err != nil {
			log.Fatalf("bad release date for %s: %v", g.slug, err)
		}
		price := fmt.Sprintf(`{"amount": %.2f, "currency": "USD", "onSale": false, "salePrice": 0}`, g.price)
		if _, err := db.Exec(`
			INSERT INTO games (rawg_id, name, slug, released, is_explicit, price)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb)
			ON CONFLICT (rawg_id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price
		`, g.rawgID, g.name, g.slug, released, g.explicit, price); err != nil {
			log.Fatalf("failed to seed game %s: %v", g.slug, err)
		}
		fmt.Printf("seeded game: rawg_id=%d name=%q explicit=%v\n", g.rawgID, g.name, g.explicit)
	}
}
