package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/listinghub/internal/config"
	"github.com/geocoder89/listinghub/internal/domain/post"
	"github.com/geocoder89/listinghub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const postsTimeout = 3 * time.Second

type PostsService interface {
	List(ctx context.Context, filter post.ListFilter) ([]post.Post, error)
	Get(ctx context.Context, id int64) (post.Post, error)
	Create(ctx context.Context, ownerID int64, in post.NewPost) (post.Post, error)
	Update(ctx context.Context, id, requesterID int64, patch post.Patch) (post.Post, error)
	Delete(ctx context.Context, id, requesterID int64) error
}

type PostsHandler struct {
	posts PostsService
}

func NewPostsHandler(posts PostsService) *PostsHandler {
	return &PostsHandler{posts: posts}
}

// List serves the feed: GET /posts?search=&minRating=&city=&sort=new|price
func (h *PostsHandler) List(ctx *gin.Context) {
	filter := post.ListFilter{Sort: post.ParseSort(ctx.Query("sort"))}

	if search := ctx.Query("search"); search != "" {
		filter.Search = &search
	}

	if city := ctx.Query("city"); city != "" {
		filter.City = &city
	}

	if raw := ctx.Query("minRating"); raw != "" {
		minRating, err := strconv.Atoi(raw)
		if err != nil {
			RespondBadRequest(ctx, "minRating must be an integer", gin.H{"field": "minRating"})
			return
		}
		filter.MinRating = &minRating
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), postsTimeout)
	defer cancel()

	posts, err := h.posts.List(cctx, filter)
	if err != nil {
		RespondErr(ctx, err, "Failed to load feed")
		return
	}

	ctx.JSON(http.StatusOK, posts)
}

func (h *PostsHandler) Get(ctx *gin.Context) {
	id, ok := postID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), postsTimeout)
	defer cancel()

	p, err := h.posts.Get(cctx, id)
	if err != nil {
		RespondErr(ctx, err, "Failed to load post")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *PostsHandler) Create(ctx *gin.Context) {
	ownerID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req post.CreatePostRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), postsTimeout)
	defer cancel()

	p, err := h.posts.Create(cctx, ownerID, req.NewPost())
	if err != nil {
		RespondErr(ctx, err, "Failed to create post")
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *PostsHandler) Update(ctx *gin.Context) {
	requesterID, ok := requireUser(ctx)
	if !ok {
		return
	}

	id, ok := postID(ctx)
	if !ok {
		return
	}

	var req post.UpdatePostRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), postsTimeout)
	defer cancel()

	p, err := h.posts.Update(cctx, id, requesterID, req.Patch())
	if err != nil {
		RespondErr(ctx, err, "Failed to update post")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *PostsHandler) Delete(ctx *gin.Context) {
	requesterID, ok := requireUser(ctx)
	if !ok {
		return
	}

	id, ok := postID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), postsTimeout)
	defer cancel()

	if err := h.posts.Delete(cctx, id, requesterID); err != nil {
		RespondErr(ctx, err, "Failed to delete post")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// postID parses :id. Non-numeric ids are 400. Numeric ids no post can carry
// (zero, negative, past the int4 key range) are 404 without touching the store.
func postID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	var numErr *strconv.NumError
	if err != nil && !(errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange)) {
		RespondBadRequest(ctx, "Invalid post id", nil)
		return 0, false
	}

	if err != nil || id < 1 || id > post.MaxID {
		RespondErr(ctx, post.ErrNotFound, "Failed to load post")
		return 0, false
	}
	return id, true
}

func requireUser(ctx *gin.Context) (int64, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "Authorization required", nil)
		return 0, false
	}
	return id, true
}
