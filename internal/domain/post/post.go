package post

import (
	"math"
	"time"

	"github.com/geocoder89/listinghub/internal/apperr"
)

type Post struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Rating    int       `json:"rating"`
	Price     *float64  `json:"price"`
	City      *string   `json:"city"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	// owner's display name, nil when the owner row is gone
	Author *string `json:"author"`
}

type Sort string

const (
	SortNewest Sort = "new"
	SortPrice  Sort = "price"
)

// ParseSort falls back to newest-first for anything but "price".
func ParseSort(raw string) Sort {
	if raw == string(SortPrice) {
		return SortPrice
	}
	return SortNewest
}

// FeedLimit caps every feed read. There is no cursor; callers narrow the filter instead.
const FeedLimit = 100

// with pointers if optional, it will be nil
type ListFilter struct {
	Search    *string
	MinRating *int
	City      *string
	Sort      Sort
}

// MaxID is the largest id the SERIAL key can hold.
const MaxID = math.MaxInt32

var ErrNotFound = apperr.New(apperr.KindNotFound, "Post not found")

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Title     string   `json:"title" binding:"required"`
	Body      string   `json:"body"`
	Rating    *int     `json:"rating"`
	Price     *float64 `json:"price"`
	City      *string  `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// UpdatePostRequest is the body of PUT /posts/:id. Any subset of fields may be sent.
type UpdatePostRequest struct {
	Title     *string  `json:"title"`
	Body      *string  `json:"body"`
	Rating    *int     `json:"rating"`
	Price     *float64 `json:"price"`
	City      *string  `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r CreatePostRequest) NewPost() NewPost {
	return NewPost{
		Title:     r.Title,
		Body:      r.Body,
		Rating:    r.Rating,
		Price:     r.Price,
		City:      r.City,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

func (r UpdatePostRequest) Patch() Patch {
	return Patch{
		Title:     r.Title,
		Body:      r.Body,
		Rating:    r.Rating,
		Price:     r.Price,
		City:      r.City,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}
