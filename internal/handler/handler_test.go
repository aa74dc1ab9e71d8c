package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/snapgram/internal/domain"
	"example.com/snapgram/internal/repository"
	"example.com/snapgram/internal/service"
	"example.com/snapgram/internal/store"
	"example.com/snapgram/pkg/jwt"
	"example.com/snapgram/pkg/middleware"
	"example.com/snapgram/pkg/response"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.UserModel{},
		&domain.PostModel{},
		&domain.CommentModel{},
		&domain.FollowModel{},
	))

	tokens, err := jwt.NewManager(15*time.Minute, 24*time.Hour, "snapgram-test")
	require.NoError(t, err)

	userRepo := repository.NewGormUserRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	followRepo := repository.NewGormFollowRepository(db)
	followStore := store.NewMockFollowStore()

	graphService := service.NewSocialGraphService(userRepo, followRepo, followStore)
	userService := service.NewUserService(userRepo, followRepo, tokens)
	postService := service.NewPostService(postRepo, commentRepo)
	feedService := service.NewFeedService(userRepo, postRepo, commentRepo, graphService)

	h := NewHandler(userService, graphService, postService, feedService, middleware.NewAuthMiddleware(tokens))

	router := gin.New()
	h.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var envelope struct {
		Success bool                `json:"success"`
		Data    json.RawMessage     `json:"data"`
		Error   *response.ErrorInfo `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "expected success envelope, got %s", w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
}

func registerUser(t *testing.T, router *gin.Engine, username, email string) domain.AuthResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"name":     username,
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var auth domain.AuthResponse
	decodeData(t, w, &auth)
	return auth
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "x",
		"email":    "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterConflict(t *testing.T) {
	router := newTestRouter(t)

	registerUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice2",
		"email":    "alice@example.com",
		"name":     "Alice Two",
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)

	registerUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var auth domain.AuthResponse
	decodeData(t, w, &auth)
	assert.Equal(t, "alice", auth.User.Username)
	assert.NotEmpty(t, auth.AccessToken)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/posts", "", gin.H{
		"image_link": "img/1.png",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/posts", "not-a-token", gin.H{
		"image_link": "img/1.png",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestSocialFlow walks the whole surface end to end: two accounts, a post,
// a follow, feeds, comments, and likes.
func TestSocialFlow(t *testing.T) {
	router := newTestRouter(t)

	alice := registerUser(t, router, "alice", "alice@example.com")
	bob := registerUser(t, router, "bob", "bob@example.com")

	// Alice posts a photo.
	w := doJSON(t, router, http.MethodPost, "/api/v1/posts", alice.AccessToken, gin.H{
		"image_link": "img/sunset.png",
		"caption":    "golden hour",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var post domain.Post
	decodeData(t, w, &post)
	require.NotEmpty(t, post.ID)

	// Bob follows Alice.
	w = doJSON(t, router, http.MethodPost, "/api/v1/follows", bob.AccessToken, gin.H{
		"target_email": "alice@example.com",
		"operation":    "follow",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Following again conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/v1/follows", bob.AccessToken, gin.H{
		"target_email": "alice@example.com",
		"operation":    "follow",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Self-follow is rejected.
	w = doJSON(t, router, http.MethodPost, "/api/v1/follows", alice.AccessToken, gin.H{
		"target_email": "alice@example.com",
		"operation":    "follow",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Alice's follower count reflects the edge.
	w = doJSON(t, router, http.MethodGet, "/api/v1/users/"+alice.User.ID+"/followers/count", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var countResp struct {
		Count int64 `json:"count"`
	}
	decodeData(t, w, &countResp)
	assert.Equal(t, int64(1), countResp.Count)

	// Bob's home feed carries Alice's post.
	w = doJSON(t, router, http.MethodPost, "/api/v1/posts/home", "", gin.H{
		"following": []string{"alice@example.com"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var home []domain.FeedEntry
	decodeData(t, w, &home)
	require.Len(t, home, 1)
	assert.Equal(t, post.ID, home[0].PostID)
	assert.Equal(t, "alice", home[0].Username)

	// A home feed naming an unknown email fails outright.
	w = doJSON(t, router, http.MethodPost, "/api/v1/posts/home", "", gin.H{
		"following": []string{"ghost@example.com"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Bob comments on the post.
	w = doJSON(t, router, http.MethodPost, "/api/v1/posts/"+post.ID+"/comments", bob.AccessToken, gin.H{
		"comment": "what a view",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/posts/"+post.ID+"/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var thread []domain.CommentEntry
	decodeData(t, w, &thread)
	require.Len(t, thread, 1)
	assert.Equal(t, "what a view", thread[0].Comment)
	assert.Equal(t, "bob", thread[0].Username)

	// Likes are applied server side and floored at zero.
	var likeResp struct {
		Likes int64 `json:"likes"`
	}
	w = doJSON(t, router, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", bob.AccessToken, gin.H{
		"operation": "like",
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &likeResp)
	assert.Equal(t, int64(1), likeResp.Likes)

	w = doJSON(t, router, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", bob.AccessToken, gin.H{
		"operation": "unlike",
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &likeResp)
	assert.Equal(t, int64(0), likeResp.Likes)

	w = doJSON(t, router, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", bob.AccessToken, gin.H{
		"operation": "unlike",
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &likeResp)
	assert.Equal(t, int64(0), likeResp.Likes)

	// Invalid operations never reach the service.
	w = doJSON(t, router, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", bob.AccessToken, gin.H{
		"operation": "superlike",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The explore feed lists the post with its comment thread.
	w = doJSON(t, router, http.MethodGet, "/api/v1/posts/explore", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var explore []domain.FeedEntry
	decodeData(t, w, &explore)
	require.Len(t, explore, 1)
	assert.Equal(t, "alice@example.com", explore[0].Email)
	require.Len(t, explore[0].Comments, 1)

	// The user search includes follower counts.
	w = doJSON(t, router, http.MethodGet, "/api/v1/users/search", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []domain.SearchUserResult
	decodeData(t, w, &results)
	require.Len(t, results, 2)

	// Alice's own profile shows her post and counts.
	w = doJSON(t, router, http.MethodGet, "/api/v1/users/me/profile", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile domain.ProfileResponse
	decodeData(t, w, &profile)
	assert.Equal(t, int64(1), profile.UserData.FollowersCount)
	require.Len(t, profile.UserPosts, 1)

	// Legacy image lookup resolves the post ID.
	w = doJSON(t, router, http.MethodGet, "/api/v1/posts/lookup?image_link=img%2Fsunset.png", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var looked domain.Post
	decodeData(t, w, &looked)
	assert.Equal(t, post.ID, looked.ID)

	// Bob unfollows Alice; a second unfollow stays a no-op.
	for i := 0; i < 2; i++ {
		w = doJSON(t, router, http.MethodPost, "/api/v1/follows", bob.AccessToken, gin.H{
			"target_email": "alice@example.com",
			"operation":    "unfollow",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/users/"+alice.User.ID+"/followers/count", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &countResp)
	assert.Equal(t, int64(0), countResp.Count)
}

func TestLikeUnknownPost(t *testing.T) {
	router := newTestRouter(t)

	alice := registerUser(t, router, "alice", "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/posts/missing-post/like", alice.AccessToken, gin.H{
		"operation": "like",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLookupMissingImage(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/posts/lookup?image_link=img%2Fnope.png", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/posts/lookup", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
