package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/snapgram/internal/domain"
	"example.com/snapgram/internal/repository"
	"example.com/snapgram/internal/store"
	"example.com/snapgram/pkg/jwt"
)

// fixture wires real repositories over an in-memory database with the
// in-memory follow store.
type fixture struct {
	db       *gorm.DB
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	cache    *store.MockFollowStore

	userService  UserService
	graphService SocialGraphService
	postService  PostService
	feedService  FeedService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

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

	f := &fixture{
		db:       db,
		users:    repository.NewGormUserRepository(db),
		posts:    repository.NewGormPostRepository(db),
		comments: repository.NewGormCommentRepository(db),
		follows:  repository.NewGormFollowRepository(db),
		cache:    store.NewMockFollowStore(),
	}

	f.graphService = NewSocialGraphService(f.users, f.follows, f.cache)
	f.userService = NewUserService(f.users, f.follows, tokens)
	f.postService = NewPostService(f.posts, f.comments)
	f.feedService = NewFeedService(f.users, f.posts, f.comments, f.graphService)

	return f
}

func (f *fixture) register(t *testing.T, username, email string) *domain.AuthResponse {
	t.Helper()

	resp, err := f.userService.Register(context.Background(), &domain.RegisterRequest{
		Username: username,
		Email:    email,
		Name:     username,
		Password: "secret-password",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.User.ID)
	return resp
}

func (f *fixture) post(t *testing.T, userID, imageLink string) *domain.Post {
	t.Helper()

	post, err := f.postService.CreatePost(context.Background(), userID, &domain.CreatePostRequest{
		ImageLink: imageLink,
	})
	require.NoError(t, err)
	return post
}

func TestRegisterHashesPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.register(t, "alice", "alice@example.com")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	stored, err := f.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-password", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret-password")))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice", "alice@example.com")

	resp, err := f.userService.Login(ctx, &domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)
	assert.NotEmpty(t, resp.AccessToken)

	// Wrong password and unknown user are indistinguishable.
	_, err = f.userService.Login(ctx, &domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.userService.Login(ctx, &domain.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSearchUsersIncludesFollowerCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	require.NoError(t, f.graphService.Follow(ctx, bob.User.ID, alice.User.ID))

	results, err := f.userService.SearchUsers(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byUsername := make(map[string]domain.SearchUserResult, len(results))
	for _, r := range results {
		byUsername[r.Username] = r
	}
	assert.Equal(t, int64(1), byUsername["alice"].FollowersCount)
	assert.Equal(t, int64(0), byUsername["bob"].FollowersCount)
}

func TestFollowRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	err := f.graphService.Follow(ctx, alice.User.ID, alice.User.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)

	require.NoError(t, f.graphService.Follow(ctx, bob.User.ID, alice.User.ID))
	err = f.graphService.Follow(ctx, bob.User.ID, alice.User.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)

	count, err := f.graphService.FollowersCount(ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Unfollowing twice is a no-op, not an error.
	require.NoError(t, f.graphService.Unfollow(ctx, bob.User.ID, alice.User.ID))
	require.NoError(t, f.graphService.Unfollow(ctx, bob.User.ID, alice.User.ID))

	count, err = f.graphService.FollowersCount(ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestFollowKeepsCacheConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	carol := f.register(t, "carol", "carol@example.com")

	// First read populates the cache from the database.
	count, err := f.graphService.FollowersCount(ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, f.graphService.Follow(ctx, bob.User.ID, alice.User.ID))
	require.NoError(t, f.graphService.Follow(ctx, carol.User.ID, alice.User.ID))

	// The cached value was bumped alongside the writes.
	cached, found, err := f.cache.GetFollowersCount(ctx, alice.User.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(2), cached)

	count, err = f.graphService.FollowersCount(ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUpdateFollowByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	require.NoError(t, f.graphService.UpdateFollow(ctx, "alice@example.com", "bob@example.com", OpFollow))

	following, err := f.follows.IsFollowing(ctx, bob.User.ID, alice.User.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Unknown operations are acknowledged without touching the graph.
	require.NoError(t, f.graphService.UpdateFollow(ctx, "alice@example.com", "bob@example.com", "block"))
	following, err = f.follows.IsFollowing(ctx, bob.User.ID, alice.User.ID)
	require.NoError(t, err)
	assert.True(t, following)

	require.NoError(t, f.graphService.UpdateFollow(ctx, "alice@example.com", "bob@example.com", OpUnfollow))
	following, err = f.follows.IsFollowing(ctx, bob.User.ID, alice.User.ID)
	require.NoError(t, err)
	assert.False(t, following)

	err = f.graphService.UpdateFollow(ctx, "ghost@example.com", "bob@example.com", OpFollow)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLikeOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice", "alice@example.com")
	post := f.post(t, alice.User.ID, "img/1.png")
	assert.Zero(t, post.Likes)

	count, err := f.postService.Like(ctx, post.ID, "like")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = f.postService.Like(ctx, post.ID, "unlike")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	count, err = f.postService.Like(ctx, post.ID, "unlike")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = f.postService.Like(ctx, "missing-post", "like")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestAddCommentPersistsText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	post := f.post(t, alice.User.ID, "img/1.png")

	commentID, err := f.postService.AddComment(ctx, bob.User.ID, post.ID, "what a view")
	require.NoError(t, err)
	assert.NotEmpty(t, commentID)

	thread, err := f.postService.CommentsForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "what a view", thread[0].Comment)
	assert.Equal(t, "bob", thread[0].Username)

	_, err = f.postService.AddComment(ctx, bob.User.ID, "missing-post", "hello")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestExploreFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	first := f.post(t, alice.User.ID, "img/alice.png")
	time.Sleep(5 * time.Millisecond)
	second := f.post(t, bob.User.ID, "img/bob.png")

	_, err := f.postService.AddComment(ctx, bob.User.ID, first.ID, "nice")
	require.NoError(t, err)

	entries, err := f.feedService.Explore(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most recent first.
	assert.Equal(t, second.ID, entries[0].PostID)
	assert.Equal(t, "bob", entries[0].Username)
	assert.Empty(t, entries[0].Comments)

	assert.Equal(t, first.ID, entries[1].PostID)
	assert.Equal(t, "alice", entries[1].Username)
	require.Len(t, entries[1].Comments, 1)
	assert.Equal(t, "nice", entries[1].Comments[0].Comment)
}

func TestHomeFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	f.register(t, "carol", "carol@example.com")

	f.post(t, alice.User.ID, "img/alice.png")
	f.post(t, bob.User.ID, "img/bob.png")

	entries, err := f.feedService.Home(ctx, []string{"alice@example.com"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, "alice@example.com", entries[0].Email)

	// Duplicate emails do not duplicate posts.
	entries, err = f.feedService.Home(ctx, []string{"alice@example.com", "alice@example.com"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = f.feedService.Home(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	_, err = f.feedService.Home(ctx, []string{"alice@example.com", "ghost@example.com"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	carol := f.register(t, "carol", "carol@example.com")

	require.NoError(t, f.graphService.Follow(ctx, bob.User.ID, alice.User.ID))
	require.NoError(t, f.graphService.Follow(ctx, carol.User.ID, alice.User.ID))
	require.NoError(t, f.graphService.Follow(ctx, alice.User.ID, bob.User.ID))

	post := f.post(t, alice.User.ID, "img/alice.png")
	_, err := f.postService.AddComment(ctx, bob.User.ID, post.ID, "great")
	require.NoError(t, err)

	profile, err := f.feedService.Profile(ctx, "alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.UserData.Username)
	assert.Equal(t, int64(2), profile.UserData.FollowersCount)
	assert.Equal(t, int64(1), profile.UserData.FollowingCount)

	require.Len(t, profile.UserPosts, 1)
	assert.Equal(t, post.ID, profile.UserPosts[0].PostID)
	require.Len(t, profile.UserPosts[0].Comments, 1)
	assert.Equal(t, "great", profile.UserPosts[0].Comments[0].Comment)

	_, err = f.feedService.Profile(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
