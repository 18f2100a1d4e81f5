// Package listings implements the posts feed and the owner-only mutations on it.
package listings

import (
	"context"

	"github.com/geocoder89/listinghub/internal/authz"
	"github.com/geocoder89/listinghub/internal/domain/post"
)

type Repository interface {
	List(ctx context.Context, filter post.ListFilter) ([]post.Post, error)
	GetByID(ctx context.Context, id int64) (post.Post, error)
	OwnerOf(ctx context.Context, id int64) (int64, error)
	Create(ctx context.Context, ownerID int64, in post.NewPost) (post.Post, error)
	Update(ctx context.Context, id int64, patch post.Patch) (post.Post, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	posts Repository
}

func NewService(posts Repository) *Service {
	return &Service{posts: posts}
}

func (s *Service) List(ctx context.Context, filter post.ListFilter) ([]post.Post, error) {
	if filter.Sort == "" {
		filter.Sort = post.SortNewest
	}
	return s.posts.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (post.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, ownerID int64, in post.NewPost) (post.Post, error) {
	in = in.Normalize()

	if err := in.Validate(); err != nil {
		return post.Post{}, err
	}

	return s.posts.Create(ctx, ownerID, in)
}

// Update checks existence, then ownership, then the supplied fields.
// The ownership read and the write are separate statements; two concurrent
// updates of the same post may interleave.
func (s *Service) Update(ctx context.Context, id, requesterID int64, patch post.Patch) (post.Post, error) {
	if err := s.authorize(ctx, id, requesterID); err != nil {
		return post.Post{}, err
	}

	patch = patch.Normalize()

	if err := patch.Validate(); err != nil {
		return post.Post{}, err
	}

	return s.posts.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id, requesterID int64) error {
	if err := s.authorize(ctx, id, requesterID); err != nil {
		return err
	}

	return s.posts.Delete(ctx, id)
}

func (s *Service) authorize(ctx context.Context, id, requesterID int64) error {
	ownerID, err := s.posts.OwnerOf(ctx, id)
	if err != nil {
		return err
	}

	return authz.Authorize(ownerID, requesterID)
}
