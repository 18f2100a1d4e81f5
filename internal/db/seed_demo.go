package db

import (
	"context"

	"github.com/geocoder89/listinghub/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DemoEmail    = "demo@elitetime.ru"
	DemoPassword = "demo1234"
	DemoName     = "Demo Manager"
)

type demoPost struct {
	title, body, city string
	rating            int
	price, lat, lon   float64
}

var demoPosts = []demoPost{
	{
		title:  "Rolex Submariner, steel",
		body:   "Excellent condition, full set, fresh service.",
		rating: 5,
		price:  1200000,
		city:   "Moscow",
		lat:    55.7558,
		lon:    37.6173,
	},
	{
		title:  "Omega Seamaster Diver 300M",
		body:   "Blue dial, factory warranty, no chips.",
		rating: 4,
		price:  860000,
		city:   "Saint Petersburg",
		lat:    59.9311,
		lon:    30.3609,
	},
	{
		title:  "Patek Philippe Nautilus 5711",
		body:   "Collector condition, kept in a safe, original papers.",
		rating: 5,
		price:  2450000,
		city:   "Sochi",
		lat:    43.6028,
		lon:    39.7342,
	},
}

// SeedDemo inserts the demo user when there are no users, and the sample
// listings when there are no posts. Posts go to the first user otherwise.
func SeedDemo(ctx context.Context, pool *pgxpool.Pool, bcryptCost int) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var users int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
			return err
		}

		var ownerID int64

		if users == 0 {
			hash, err := security.HashPasswordWithCost(DemoPassword, bcryptCost)
			if err != nil {
				return err
			}

			err = tx.QueryRow(ctx,
				`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
				DemoName, DemoEmail, hash,
			).Scan(&ownerID)
			if err != nil {
				return err
			}
		} else {
			if err := tx.QueryRow(ctx, `SELECT id FROM users ORDER BY id LIMIT 1`).Scan(&ownerID); err != nil {
				return err
			}
		}

		var posts int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&posts); err != nil {
			return err
		}

		if posts > 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, p := range demoPosts {
			batch.Queue(`
				INSERT INTO posts (user_id, title, body, rating, price, city, latitude, longitude)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, ownerID, p.title, p.body, p.rating, p.price, p.city, p.lat, p.lon)
		}

		return tx.SendBatch(ctx, batch).Close()
	})
}
