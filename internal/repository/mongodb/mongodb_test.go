package mongodb

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to INKWELL_TEST_MONGO_URI and drops the scratch database afterwards
func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	uri := os.Getenv("INKWELL_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("INKWELL_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Connect(ctx, uri, "inkwell_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, db.EnsureIndexes(ctx))
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = db.Close(ctx)
	})
	return NewStore(db)
}

func newUser(name string) *domain.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.User{
		ID:        uuid.NewString(),
		Username:  name,
		Email:     name + "@example.com",
		Role:      domain.RoleUser,
		IsActive:  true,
		Following: []string{},
		Followers: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUserRepo_UniqueIgnoresCase(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Users.Create(ctx, newUser("alice")))
	assert.ErrorIs(t, store.Users.Create(ctx, newUser("ALICE")), domain.ErrUserAlreadyExists)

	got, err := store.Users.GetByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestUserRepo_ToggleFollow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, bob := newUser("alice"), newUser("bob")
	require.NoError(t, store.Users.Create(ctx, alice))
	require.NoError(t, store.Users.Create(ctx, bob))

	res, err := store.Users.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.EqualValues(t, 1, res.FollowersCount)

	res, err = store.Users.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Following)
	assert.EqualValues(t, 0, res.FollowersCount)
	assert.EqualValues(t, 0, res.FollowingCount)
}

func TestUserRepo_UpdateSetsAccountFieldsOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fan, target := newUser("fan"), newUser("target")
	require.NoError(t, store.Users.Create(ctx, fan))
	require.NoError(t, store.Users.Create(ctx, target))

	snapshot, err := store.Users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	_, err = store.Users.ToggleFollow(ctx, fan.ID, target.ID)
	require.NoError(t, err)

	snapshot.Profile.Bio = "new bio"
	require.NoError(t, store.Users.Update(ctx, snapshot))

	got, err := store.Users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "new bio", got.Profile.Bio)
	assert.Equal(t, []string{fan.ID}, got.Followers)
	assert.EqualValues(t, 1, got.Stats.FollowersCount)

	snapshot.Username = "FAN"
	assert.ErrorIs(t, store.Users.Update(ctx, snapshot), domain.ErrUserAlreadyExists)
}

func TestCommentRepo_ConcurrentReplies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	root := &domain.Comment{ID: uuid.NewString(), Content: "root", Article: "a1", Author: "u1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Comments.Create(ctx, root))

	const n = 8
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply := &domain.Comment{ID: uuid.NewString(), Content: "reply", Article: "a1", Author: "u2", Parent: &root.ID, CreatedAt: now, UpdatedAt: now}
			assert.NoError(t, store.Comments.Create(ctx, reply))
		}()
	}
	wg.Wait()

	got, err := store.Comments.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.ReplyCount)
}

func TestLikeRepo_Toggle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	liked, err := store.Likes.Toggle(ctx, domain.NewLike(uuid.NewString(), "u1", domain.TargetComment, "c1", now))
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = store.Likes.Toggle(ctx, domain.NewLike(uuid.NewString(), "u1", domain.TargetComment, "c1", now))
	require.NoError(t, err)
	assert.False(t, liked)

	n, err := store.Likes.CountByTarget(ctx, domain.TargetComment, "c1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestArticleRepo_RegisterVisit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := &domain.Article{ID: uuid.NewString(), Title: "Hello", Content: "content here", Category: "技术", Tags: []string{"go"}, Author: "u1", IsPublished: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Articles.Create(ctx, a))

	res, err := store.Articles.RegisterVisit(ctx, a.ID, "10.0.0.1", time.Hour, now)
	require.NoError(t, err)
	assert.True(t, res.Counted)

	res, err = store.Articles.RegisterVisit(ctx, a.ID, "10.0.0.1", time.Hour, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, res.Counted)
	assert.EqualValues(t, 1, res.ViewCount)

	snapshot, err := store.Articles.GetByID(ctx, a.ID)
	require.NoError(t, err)
	_, err = store.Articles.IncrementViews(ctx, a.ID)
	require.NoError(t, err)
	snapshot.Title = "Hello again"
	require.NoError(t, store.Articles.Update(ctx, snapshot))
	assert.EqualValues(t, 2, snapshot.ViewCount)

	list, total, err := store.Articles.List(ctx, domain.ArticleFilter{Tag: "GO", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}
