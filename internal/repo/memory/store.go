package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/listinghub/internal/domain/post"
	"github.com/geocoder89/listinghub/internal/domain/user"
)

// Store keeps users and posts in process memory. It mirrors the postgres
// repos closely enough to stand in for them in tests and local runs.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]user.User
	posts      map[int64]post.Post
	nextUserID int64
	nextPostID int64
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		users: make(map[int64]user.User),
		posts: make(map[int64]post.Post),
		now:   time.Now,
	}
}

// WithClock sets the source of created_at timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Users() *UsersRepo { return &UsersRepo{s: s} }
func (s *Store) Posts() *PostsRepo { return &PostsRepo{s: s} }

// DeleteUser removes a user and, like ON DELETE CASCADE, all of their posts.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	for pid, p := range s.posts {
		if p.OwnerID == id {
			delete(s.posts, pid)
		}
	}
}

type UsersRepo struct{ s *Store }

func (r *UsersRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.userByEmail(email)
	return ok, nil
}

func (r *UsersRepo) Create(_ context.Context, name, email, passwordHash string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.userByEmail(email); ok {
		return user.User{}, user.ErrEmailTaken
	}

	r.s.nextUserID++
	u := user.User{
		ID:           r.s.nextUserID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    r.s.now().UTC(),
	}
	r.s.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.userByEmail(email)
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

type PostsRepo struct{ s *Store }

func (r *PostsRepo) List(_ context.Context, filter post.ListFilter) ([]post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]post.Post, 0)
	for _, p := range r.s.posts {
		if matches(p, filter) {
			out = append(out, r.s.joined(p))
		}
	}

	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j], filter.Sort) })

	if len(out) > post.FeedLimit {
		out = out[:post.FeedLimit]
	}
	return out, nil
}

func (r *PostsRepo) GetByID(_ context.Context, id int64) (post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}
	return r.s.joined(p), nil
}

func (r *PostsRepo) OwnerOf(_ context.Context, id int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return 0, post.ErrNotFound
	}
	return p.OwnerID, nil
}

func (r *PostsRepo) Create(_ context.Context, ownerID int64, in post.NewPost) (post.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rating := post.DefaultRating
	if in.Rating != nil {
		rating = *in.Rating
	}

	r.s.nextPostID++
	p := post.Post{
		ID:        r.s.nextPostID,
		OwnerID:   ownerID,
		Title:     in.Title,
		Body:      in.Body,
		Rating:    rating,
		Price:     in.Price,
		City:      in.City,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		CreatedAt: r.s.now().UTC(),
	}
	r.s.posts[p.ID] = p

	return r.s.joined(p), nil
}

func (r *PostsRepo) Update(_ context.Context, id int64, patch post.Patch) (post.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}

	p = patch.Apply(p)
	r.s.posts[id] = p

	return r.s.joined(p), nil
}

func (r *PostsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return post.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

// caller holds mu
func (s *Store) userByEmail(email string) (user.User, bool) {
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return user.User{}, false
}

// caller holds mu
func (s *Store) joined(p post.Post) post.Post {
	p.Author = nil
	if u, ok := s.users[p.OwnerID]; ok {
		name := u.Name
		p.Author = &name
	}
	return p
}

func matches(p post.Post, f post.ListFilter) bool {
	if f.Search != nil && *f.Search != "" {
		term := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(p.Title), term) && !strings.Contains(strings.ToLower(p.Body), term) {
			return false
		}
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	if f.City != nil && *f.City != "" {
		if p.City == nil || strings.ToLower(*p.City) != strings.ToLower(*f.City) {
			return false
		}
	}
	return true
}

func less(a, b post.Post, mode post.Sort) bool {
	if mode == post.SortPrice {
		switch {
		case a.Price == nil && b.Price == nil:
		case a.Price == nil:
			return false
		case b.Price == nil:
			return true
		case *a.Price != *b.Price:
			return *a.Price > *b.Price
		}
		return a.ID > b.ID
	}

	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
