package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/listinghub/internal/domain/post"
	"github.com/geocoder89/listinghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{pool: pool, prom: prom}
}

func (r *PostsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Body,
		&p.Rating,
		&p.Price,
		&p.City,
		&p.Latitude,
		&p.Longitude,
		&p.CreatedAt,
		&p.Author,
	)

	return p, err
}

func (r *PostsRepo) List(ctx context.Context, filter post.ListFilter) ([]post.Post, error) {
	sql, args := buildListQuery(filter)

	out := make([]post.Post, 0)

	err := r.observe("posts.list", func() error {
		rows, err := r.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPost(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id int64) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.get_by_id", func() error {
		var err error
		p, err = scanPost(r.pool.QueryRow(ctx, postsSelect+` WHERE p.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	var ownerID int64

	err := r.observe("posts.owner_of", func() error {
		return r.pool.QueryRow(ctx, `SELECT user_id FROM posts WHERE id = $1`, id).Scan(&ownerID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, post.ErrNotFound
		}
		return 0, err
	}

	return ownerID, nil
}

func (r *PostsRepo) Create(ctx context.Context, ownerID int64, in post.NewPost) (post.Post, error) {
	var id int64

	err := r.observe("posts.create", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO posts (user_id, title, body, rating, price, city, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`,
			ownerID,
			in.Title,
			in.Body,
			in.Rating,
			in.Price,
			in.City,
			in.Latitude,
			in.Longitude,
		).Scan(&id)
	})

	if err != nil {
		return post.Post{}, err
	}

	// re-read so the response carries the author join
	return r.GetByID(ctx, id)
}

// Update overwrites only the supplied columns; nil parameters fall through COALESCE.
func (r *PostsRepo) Update(ctx context.Context, id int64, patch post.Patch) (post.Post, error) {
	err := r.observe("posts.update", func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE posts
			SET title = COALESCE($2, title),
				body = COALESCE($3, body),
				rating = COALESCE($4, rating),
				price = COALESCE($5, price),
				city = COALESCE($6, city),
				latitude = COALESCE($7, latitude),
				longitude = COALESCE($8, longitude)
			WHERE id = $1
		`,
			id,
			patch.Title,
			patch.Body,
			patch.Rating,
			patch.Price,
			patch.City,
			patch.Latitude,
			patch.Longitude,
		)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return post.ErrNotFound
		}
		return nil
	})

	if err != nil {
		return post.Post{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *PostsRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("posts.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return post.ErrNotFound
		}
		return nil
	})
}
