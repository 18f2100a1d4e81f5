package post

import (
	"unicode/utf8"

	"github.com/geocoder89/listinghub/internal/apperr"
)

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5

	MaxTitleLen = 180
	MaxCityLen  = 120
	// NUMERIC(12,2)
	MaxPrice = 9_999_999_999.99
)

var (
	ErrTitleRequired  = apperr.Validation("Title is required")
	ErrTitleTooLong   = apperr.Validation("Title must be at most 180 characters")
	ErrCityTooLong    = apperr.Validation("City must be at most 120 characters")
	ErrRatingRange    = apperr.Validation("Rating must be between 1 and 5")
	ErrPriceRange     = apperr.Validation("Price must be between 0 and 9999999999.99")
	ErrLatitudeRange  = apperr.Validation("Latitude must be between -90 and 90")
	ErrLongitudeRange = apperr.Validation("Longitude must be between -180 and 180")
)

// NewPost holds the fields of a listing being created.
type NewPost struct {
	Title     string
	Body      string
	Rating    *int
	Price     *float64
	City      *string
	Latitude  *float64
	Longitude *float64
}

// Normalize applies creation defaults: rating 5, empty city stored as null.
func (n NewPost) Normalize() NewPost {
	if n.Rating == nil {
		r := DefaultRating
		n.Rating = &r
	}
	if n.City != nil && *n.City == "" {
		n.City = nil
	}
	return n
}

func (n NewPost) Validate() error {
	if n.Title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(n.Title) > MaxTitleLen {
		return ErrTitleTooLong
	}
	if n.Rating != nil {
		if err := ValidateRating(*n.Rating); err != nil {
			return err
		}
	}
	return validateOptional(n.Price, n.City, n.Latitude, n.Longitude)
}

// Patch is a partial update. A nil field keeps the stored value.
type Patch struct {
	Title     *string
	Body      *string
	Rating    *int
	Price     *float64
	City      *string
	Latitude  *float64
	Longitude *float64
}

// Normalize treats empty text as "not supplied", so an update can never clear
// title, body or city. Clients rely on this.
func (p Patch) Normalize() Patch {
	p.Title = nilIfEmpty(p.Title)
	p.Body = nilIfEmpty(p.Body)
	p.City = nilIfEmpty(p.City)
	return p
}

func (p Patch) Validate() error {
	if p.Title != nil && utf8.RuneCountInString(*p.Title) > MaxTitleLen {
		return ErrTitleTooLong
	}
	if p.Rating != nil {
		if err := ValidateRating(*p.Rating); err != nil {
			return err
		}
	}
	return validateOptional(p.Price, p.City, p.Latitude, p.Longitude)
}

// Apply returns current with every supplied field of p written over it.
func (p Patch) Apply(current Post) Post {
	if p.Title != nil {
		current.Title = *p.Title
	}
	if p.Body != nil {
		current.Body = *p.Body
	}
	if p.Rating != nil {
		current.Rating = *p.Rating
	}
	if p.Price != nil {
		current.Price = p.Price
	}
	if p.City != nil {
		current.City = p.City
	}
	if p.Latitude != nil {
		current.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		current.Longitude = p.Longitude
	}
	return current
}

func ValidateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return ErrRatingRange
	}
	return nil
}

func validateOptional(price *float64, city *string, lat, lon *float64) error {
	if price != nil && (*price < 0 || *price > MaxPrice) {
		return ErrPriceRange
	}
	if city != nil && utf8.RuneCountInString(*city) > MaxCityLen {
		return ErrCityTooLong
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		return ErrLatitudeRange
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return ErrLongitudeRange
	}
	return nil
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
