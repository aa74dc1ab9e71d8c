package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"example.com/snapgram/internal/domain"
	"example.com/snapgram/internal/repository"
	"example.com/snapgram/internal/service"
	"example.com/snapgram/pkg/log"
	"example.com/snapgram/pkg/middleware"
	"example.com/snapgram/pkg/response"
)

// Handler handles HTTP requests for the social graph and feed service.
type Handler struct {
	userService    service.UserService
	graphService   service.SocialGraphService
	postService    service.PostService
	feedService    service.FeedService
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	userService service.UserService,
	graphService service.SocialGraphService,
	postService service.PostService,
	feedService service.FeedService,
	authMiddleware *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		userService:    userService,
		graphService:   graphService,
		postService:    postService,
		feedService:    feedService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes onto the Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
		}

		users := api.Group("/users")
		{
			users.GET("/search", h.SearchUsers)
			users.GET("/me/profile", h.authMiddleware.RequireAuth(), h.CurrentUserProfile)
			users.GET("/:user_id/followers/count", h.GetFollowersCount)
		}

		api.POST("/follows", h.authMiddleware.RequireAuth(), h.UpdateFollow)

		posts := api.Group("/posts")
		{
			posts.POST("", h.authMiddleware.RequireAuth(), h.CreatePost)
			posts.GET("/explore", h.ExplorePosts)
			posts.POST("/home", h.HomeFeed)
			posts.GET("/lookup", h.LookupPost)
			posts.POST("/:post_id/comments", h.authMiddleware.RequireAuth(), h.AddComment)
			posts.GET("/:post_id/comments", h.CommentsForPost)
			posts.POST("/:post_id/like", h.authMiddleware.RequireAuth(), h.Like)
		}
	}
}

// Register handles account creation.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid register request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.Register(ctx, &req)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			response.Conflict(c, "email already in use")
			return
		}
		if errors.Is(err, repository.ErrUsernameExists) {
			response.Conflict(c, "username already in use")
			return
		}
		l.Error().Err(err).Msg("register failed")
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, result)
}

// Login handles user login.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid login request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		l.Error().Err(err).Msg("login failed")
		response.InternalError(c, "failed to login")
		return
	}

	response.Success(c, result)
}

// CurrentUserProfile returns the authenticated user's profile summary and
// posts.
func (h *Handler) CurrentUserProfile(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	email := middleware.GetEmail(c)
	if email == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	profile, err := h.feedService.Profile(ctx, email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		l.Error().Err(err).Msg("profile feed failed")
		response.InternalError(c, "failed to build profile")
		return
	}

	response.Success(c, profile)
}

// SearchUsers lists every user with follower counts.
func (h *Handler) SearchUsers(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	results, err := h.userService.SearchUsers(ctx)
	if err != nil {
		l.Error().Err(err).Msg("search users failed")
		response.InternalError(c, "failed to search users")
		return
	}

	response.Success(c, results)
}

// GetFollowersCount returns the follower count of one user.
func (h *Handler) GetFollowersCount(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := c.Param("user_id")
	if userID == "" {
		response.BadRequest(c, "user_id is required")
		return
	}

	count, err := h.graphService.FollowersCount(ctx, userID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("get followers count failed")
		response.InternalError(c, "failed to get followers count")
		return
	}

	response.Success(c, gin.H{"count": count})
}

// UpdateFollow applies a follow or unfollow between the authenticated user
// and the target email.
func (h *Handler) UpdateFollow(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	shooterEmail := middleware.GetEmail(c)
	if shooterEmail == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.UpdateFollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid follow request")
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.graphService.UpdateFollow(ctx, req.TargetEmail, shooterEmail, req.Operation); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrSelfFollow):
			response.BadRequest(c, "cannot follow yourself")
		case errors.Is(err, service.ErrAlreadyFollowing):
			response.Conflict(c, "already following")
		default:
			l.Error().Err(err).Msg("update follow failed")
			response.InternalError(c, "failed to update follow relationship")
		}
		return
	}

	response.Success(c, gin.H{"message": "follow relationship updated"})
}

// CreatePost creates a new post authored by the authenticated user.
func (h *Handler) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create post request")
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.postService.CreatePost(ctx, userID, &req)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("create post failed")
		response.InternalError(c, "failed to create post")
		return
	}

	response.Created(c, post)
}

// ExplorePosts returns the explore feed.
func (h *Handler) ExplorePosts(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	entries, err := h.feedService.Explore(ctx)
	if err != nil {
		l.Error().Err(err).Msg("explore feed failed")
		response.InternalError(c, "failed to build explore feed")
		return
	}

	response.Success(c, entries)
}

// HomeFeed returns the posts of the given followed users.
func (h *Handler) HomeFeed(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.HomeFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid home feed request")
		response.BadRequest(c, err.Error())
		return
	}

	entries, err := h.feedService.Home(ctx, req.Following)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		l.Error().Err(err).Msg("home feed failed")
		response.InternalError(c, "failed to build home feed")
		return
	}

	response.Success(c, entries)
}

// LookupPost resolves a post from its image reference.
func (h *Handler) LookupPost(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	imageLink := c.Query("image_link")
	if imageLink == "" {
		response.BadRequest(c, "image_link is required")
		return
	}

	post, err := h.postService.LookupByImage(ctx, imageLink)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		l.Error().Err(err).Msg("post lookup failed")
		response.InternalError(c, "failed to look up post")
		return
	}

	response.Success(c, post)
}

// AddComment attaches a comment by the authenticated user to a post.
func (h *Handler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	postID := c.Param("post_id")
	if postID == "" {
		response.BadRequest(c, "post_id is required")
		return
	}

	var req domain.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid comment request")
		response.BadRequest(c, err.Error())
		return
	}

	commentID, err := h.postService.AddComment(ctx, userID, postID, req.Comment)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		l.Error().Err(err).Str(log.FieldPostID, postID).Msg("add comment failed")
		response.InternalError(c, "failed to add comment")
		return
	}

	response.Created(c, gin.H{"comment_id": commentID})
}

// CommentsForPost returns a post's comment thread.
func (h *Handler) CommentsForPost(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	postID := c.Param("post_id")
	if postID == "" {
		response.BadRequest(c, "post_id is required")
		return
	}

	comments, err := h.postService.CommentsForPost(ctx, postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		l.Error().Err(err).Str(log.FieldPostID, postID).Msg("list comments failed")
		response.InternalError(c, "failed to list comments")
		return
	}

	response.Success(c, comments)
}

// Like applies a like or unlike to a post and returns the new count.
func (h *Handler) Like(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	postID := c.Param("post_id")
	if postID == "" {
		response.BadRequest(c, "post_id is required")
		return
	}

	var req domain.LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid like request")
		response.BadRequest(c, err.Error())
		return
	}

	count, err := h.postService.Like(ctx, postID, req.Operation)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		l.Error().Err(err).Str(log.FieldPostID, postID).Msg("like failed")
		response.InternalError(c, "failed to update likes")
		return
	}

	response.Success(c, gin.H{"likes": count})
}
