package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/listinghub/internal/authz"
	"github.com/geocoder89/listinghub/internal/domain/post"
	"github.com/geocoder89/listinghub/internal/http/handlers"
	"github.com/geocoder89/listinghub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePosts struct {
	listFn   func(ctx context.Context, filter post.ListFilter) ([]post.Post, error)
	getFn    func(ctx context.Context, id int64) (post.Post, error)
	createFn func(ctx context.Context, ownerID int64, in post.NewPost) (post.Post, error)
	updateFn func(ctx context.Context, id, requesterID int64, patch post.Patch) (post.Post, error)
	deleteFn func(ctx context.Context, id, requesterID int64) error
}

func (f *fakePosts) List(ctx context.Context, filter post.ListFilter) ([]post.Post, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return []post.Post{}, nil
}

func (f *fakePosts) Get(ctx context.Context, id int64) (post.Post, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return post.Post{ID: id}, nil
}

func (f *fakePosts) Create(ctx context.Context, ownerID int64, in post.NewPost) (post.Post, error) {
	if f.createFn != nil {
		return f.createFn(ctx, ownerID, in)
	}
	return post.Post{ID: 1, OwnerID: ownerID, Title: in.Title}, nil
}

func (f *fakePosts) Update(ctx context.Context, id, requesterID int64, patch post.Patch) (post.Post, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, requesterID, patch)
	}
	return post.Post{ID: id}, nil
}

func (f *fakePosts) Delete(ctx context.Context, id, requesterID int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, requesterID)
	}
	return nil
}

// asUser stands in for RequireAuth.
func asUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxUserID, id)
		c.Next()
	}
}

func postsRouter(svc handlers.PostsService) *gin.Engine {
	r := gin.New()
	h := handlers.NewPostsHandler(svc)

	r.GET("/posts", h.List)
	r.GET("/posts/:id", h.Get)
	r.POST("/posts", asUser(7), h.Create)
	r.PUT("/posts/:id", asUser(7), h.Update)
	r.DELETE("/posts/:id", asUser(7), h.Delete)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v body=%s", err, w.Body.String())
	}
	return body.Message
}

func TestListPosts_ParsesFilters(t *testing.T) {
	var got post.ListFilter
	svc := &fakePosts{listFn: func(_ context.Context, f post.ListFilter) ([]post.Post, error) {
		got = f
		return []post.Post{{ID: 1, Title: "Rolex"}}, nil
	}}

	w := do(postsRouter(svc), http.MethodGet, "/posts?search=rolex&minRating=4&city=Moscow&sort=price", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if got.Search == nil || *got.Search != "rolex" {
		t.Fatalf("search not parsed: %+v", got.Search)
	}
	if got.MinRating == nil || *got.MinRating != 4 {
		t.Fatalf("minRating not parsed: %+v", got.MinRating)
	}
	if got.City == nil || *got.City != "Moscow" {
		t.Fatalf("city not parsed: %+v", got.City)
	}
	if got.Sort != post.SortPrice {
		t.Fatalf("sort = %q", got.Sort)
	}

	var posts []post.Post
	if err := json.Unmarshal(w.Body.Bytes(), &posts); err != nil || len(posts) != 1 {
		t.Fatalf("unexpected body %s (%v)", w.Body.String(), err)
	}
}

func TestListPosts_UnknownSortAndEmptyFilters(t *testing.T) {
	var got post.ListFilter
	svc := &fakePosts{listFn: func(_ context.Context, f post.ListFilter) ([]post.Post, error) {
		got = f
		return []post.Post{}, nil
	}}

	w := do(postsRouter(svc), http.MethodGet, "/posts?sort=cheapest&search=&city=", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	if got.Sort != post.SortNewest || got.Search != nil || got.City != nil || got.MinRating != nil {
		t.Fatalf("unexpected filter %+v", got)
	}
	if w.Body.String() != "[]" {
		t.Fatalf("empty feed should be [], got %s", w.Body.String())
	}
}

func TestListPosts_BadMinRating(t *testing.T) {
	w := do(postsRouter(&fakePosts{}), http.MethodGet, "/posts?minRating=high", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestGetPost_InvalidID(t *testing.T) {
	for _, id := range []string{"abc", "1.5", "7x"} {
		w := do(postsRouter(&fakePosts{}), http.MethodGet, "/posts/"+id, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("id %q: got status %d, want 400", id, w.Code)
		}
		if msg := messageOf(t, w); msg != "Invalid post id" {
			t.Fatalf("id %q: message %q", id, msg)
		}
	}
}

func TestPostRoutes_UnreachableIDsAreNotFound(t *testing.T) {
	called := false
	svc := &fakePosts{
		getFn: func(context.Context, int64) (post.Post, error) {
			called = true
			return post.Post{}, nil
		},
		updateFn: func(context.Context, int64, int64, post.Patch) (post.Post, error) {
			called = true
			return post.Post{}, nil
		},
		deleteFn: func(context.Context, int64, int64) error {
			called = true
			return nil
		},
	}
	r := postsRouter(svc)

	ids := []string{"0", "-3", "2147483648", "9223372036854775808"}
	for _, id := range ids {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			body := ""
			if method == http.MethodPut {
				body = `{"rating":3}`
			}

			w := do(r, method, "/posts/"+id, body)
			if w.Code != http.StatusNotFound {
				t.Fatalf("%s id %q: got status %d, want 404", method, id, w.Code)
			}
			if msg := messageOf(t, w); msg != "Post not found" {
				t.Fatalf("%s id %q: message %q", method, id, msg)
			}
		}
	}

	if called {
		t.Fatalf("store must not be reached for ids outside the key range")
	}

	w := do(r, http.MethodGet, "/posts/2147483647", "")
	if w.Code != http.StatusOK || !called {
		t.Fatalf("largest key should reach the store, got %d", w.Code)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	svc := &fakePosts{getFn: func(context.Context, int64) (post.Post, error) {
		return post.Post{}, post.ErrNotFound
	}}

	w := do(postsRouter(svc), http.MethodGet, "/posts/99", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
	if msg := messageOf(t, w); msg != "Post not found" {
		t.Fatalf("message %q", msg)
	}
}

func TestCreatePost_PassesOwner(t *testing.T) {
	var owner int64
	var in post.NewPost
	svc := &fakePosts{createFn: func(_ context.Context, ownerID int64, n post.NewPost) (post.Post, error) {
		owner, in = ownerID, n
		return post.Post{ID: 5, OwnerID: ownerID, Title: n.Title, Rating: 5}, nil
	}}

	w := do(postsRouter(svc), http.MethodPost, "/posts", `{"title":"Omega","price":1000,"city":"Sochi"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if owner != 7 {
		t.Fatalf("owner = %d, want 7", owner)
	}
	if in.Title != "Omega" || in.Price == nil || *in.Price != 1000 || in.City == nil || *in.City != "Sochi" {
		t.Fatalf("unexpected input %+v", in)
	}
}

func TestCreatePost_MissingTitle(t *testing.T) {
	called := false
	svc := &fakePosts{createFn: func(context.Context, int64, post.NewPost) (post.Post, error) {
		called = true
		return post.Post{}, nil
	}}

	w := do(postsRouter(svc), http.MethodPost, "/posts", `{"body":"x"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
	if called {
		t.Fatalf("service must not be called")
	}
}

func TestCreatePost_ValidationFromService(t *testing.T) {
	svc := &fakePosts{createFn: func(context.Context, int64, post.NewPost) (post.Post, error) {
		return post.Post{}, post.ErrRatingRange
	}}

	w := do(postsRouter(svc), http.MethodPost, "/posts", `{"title":"x","rating":9}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
	if msg := messageOf(t, w); msg != "Rating must be between 1 and 5" {
		t.Fatalf("message %q", msg)
	}
}

func TestUpdatePost_Forbidden(t *testing.T) {
	svc := &fakePosts{updateFn: func(context.Context, int64, int64, post.Patch) (post.Post, error) {
		return post.Post{}, authz.ErrForbidden
	}}

	w := do(postsRouter(svc), http.MethodPut, "/posts/3", `{"title":"mine now"}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403", w.Code)
	}
}

func TestUpdatePost_PassesPatch(t *testing.T) {
	var gotID, gotRequester int64
	var gotPatch post.Patch
	svc := &fakePosts{updateFn: func(_ context.Context, id, requester int64, p post.Patch) (post.Post, error) {
		gotID, gotRequester, gotPatch = id, requester, p
		return post.Post{ID: id, Title: "Rolex", Rating: 3}, nil
	}}

	w := do(postsRouter(svc), http.MethodPut, "/posts/3", `{"rating":3,"title":null}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if gotID != 3 || gotRequester != 7 {
		t.Fatalf("id=%d requester=%d", gotID, gotRequester)
	}
	if gotPatch.Rating == nil || *gotPatch.Rating != 3 || gotPatch.Title != nil || gotPatch.Body != nil {
		t.Fatalf("unexpected patch %+v", gotPatch)
	}
}

func TestDeletePost(t *testing.T) {
	svc := &fakePosts{}

	w := do(postsRouter(svc), http.MethodDelete, "/posts/3", "")
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("got status %d body=%q", w.Code, w.Body.String())
	}

	svc.deleteFn = func(context.Context, int64, int64) error { return post.ErrNotFound }
	w = do(postsRouter(svc), http.MethodDelete, "/posts/3", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}

	w = do(postsRouter(svc), http.MethodDelete, "/posts/x", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestStoreFailureHidesDetails(t *testing.T) {
	svc := &fakePosts{listFn: func(context.Context, post.ListFilter) ([]post.Post, error) {
		return nil, errors.New(`pq: relation "posts" does not exist`)
	}}

	w := do(postsRouter(svc), http.MethodGet, "/posts", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", w.Code)
	}
	if msg := messageOf(t, w); msg != "Failed to load feed" {
		t.Fatalf("message %q", msg)
	}
}
