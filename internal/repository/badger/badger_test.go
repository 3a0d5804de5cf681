package badger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return NewStore(db)
}

func newUser(name string) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:           uuid.NewString(),
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash-" + name,
		Role:         domain.RoleUser,
		IsActive:     true,
		Following:    []string{},
		Followers:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newArticle(author string, created time.Time) *domain.Article {
	return &domain.Article{
		ID:          uuid.NewString(),
		Title:       "Article " + created.Format(time.RFC3339Nano),
		Content:     "some article content here",
		Category:    "技术",
		Tags:        []string{"go"},
		Author:      author,
		IsPublished: true,
		ReadTime:    1,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestUserRepo_CreateAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := newUser("alice")
	require.NoError(t, store.Users.Create(ctx, alice))

	byEmail, err := store.Users.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)
	assert.Equal(t, "hash-alice", byEmail.PasswordHash)

	byName, err := store.Users.GetByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	dup := newUser("alice")
	assert.ErrorIs(t, store.Users.Create(ctx, dup), domain.ErrUserAlreadyExists)

	_, err = store.Users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepo_UpdateMovesIndexes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := newUser("alice")
	bob := newUser("bob")
	require.NoError(t, store.Users.Create(ctx, alice))
	require.NoError(t, store.Users.Create(ctx, bob))

	alice.Username = "alicia"
	require.NoError(t, store.Users.Update(ctx, alice))

	exists, err := store.Users.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := store.Users.GetByUsername(ctx, "alicia")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	alice.Email = bob.Email
	assert.ErrorIs(t, store.Users.Update(ctx, alice), domain.ErrUserAlreadyExists)
}

func TestUserRepo_UpdateKeepsFollowState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fan := newUser("fan")
	target := newUser("target")
	require.NoError(t, store.Users.Create(ctx, fan))
	require.NoError(t, store.Users.Create(ctx, target))

	snapshot, err := store.Users.GetByID(ctx, target.ID)
	require.NoError(t, err)

	_, err = store.Users.ToggleFollow(ctx, fan.ID, target.ID)
	require.NoError(t, err)
	require.NoError(t, store.Users.SetArticleCount(ctx, target.ID, 4))

	snapshot.Profile.Bio = "new bio"
	require.NoError(t, store.Users.Update(ctx, snapshot))
	assert.Equal(t, []string{fan.ID}, snapshot.Followers)

	got, err := store.Users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "new bio", got.Profile.Bio)
	assert.Equal(t, []string{fan.ID}, got.Followers)
	assert.EqualValues(t, 1, got.Stats.FollowersCount)
	assert.EqualValues(t, 4, got.Stats.ArticleCount)

	f, err := store.Users.GetByID(ctx, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{target.ID}, f.Following)
}

func TestUserRepo_ToggleFollow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := newUser("alice")
	bob := newUser("bob")
	require.NoError(t, store.Users.Create(ctx, alice))
	require.NoError(t, store.Users.Create(ctx, bob))

	res, err := store.Users.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.EqualValues(t, 1, res.FollowersCount)
	assert.EqualValues(t, 1, res.FollowingCount)

	a, _ := store.Users.GetByID(ctx, alice.ID)
	b, _ := store.Users.GetByID(ctx, bob.ID)
	assert.Equal(t, []string{bob.ID}, a.Following)
	assert.Equal(t, []string{alice.ID}, b.Followers)

	res, err = store.Users.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Following)
	assert.EqualValues(t, 0, res.FollowersCount)

	b, _ = store.Users.GetByID(ctx, bob.ID)
	assert.Empty(t, b.Followers)
	assert.EqualValues(t, 0, b.Stats.FollowersCount)

	_, err = store.Users.ToggleFollow(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrSelfFollow)

	_, err = store.Users.ToggleFollow(ctx, alice.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepo_ConcurrentFollowersStayConsistent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	target := newUser("target")
	require.NoError(t, store.Users.Create(ctx, target))

	const n = 16
	followers := make([]*domain.User, n)
	for i := range followers {
		followers[i] = newUser(fmt.Sprintf("fan%d", i))
		require.NoError(t, store.Users.Create(ctx, followers[i]))
	}

	var wg sync.WaitGroup
	for _, f := range followers {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.Users.ToggleFollow(ctx, id, target.ID)
			assert.NoError(t, err)
		}(f.ID)
	}
	wg.Wait()

	got, err := store.Users.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Len(t, got.Followers, n)
	assert.EqualValues(t, n, got.Stats.FollowersCount)
}

func TestUserRepo_DeleteDetachesFollows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := newUser("alice")
	bob := newUser("bob")
	require.NoError(t, store.Users.Create(ctx, alice))
	require.NoError(t, store.Users.Create(ctx, bob))
	_, err := store.Users.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, store.Users.Delete(ctx, alice.ID))

	b, err := store.Users.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, b.Followers)
	assert.EqualValues(t, 0, b.Stats.FollowersCount)

	exists, err := store.Users.ExistsByEmail(ctx, alice.Email)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestArticleRepo_ListFiltersAndSorts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 5 {
		a := newArticle("author-1", base.Add(time.Duration(i)*time.Hour))
		a.ViewCount = int64(10 - i)
		if i == 4 {
			a.IsPublished = false
		}
		require.NoError(t, store.Articles.Create(ctx, a))
		ids = append(ids, a.ID)
	}

	page, total, err := store.Articles.List(ctx, domain.ArticleFilter{PublishedOnly: true, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)

	byViews, _, err := store.Articles.List(ctx, domain.ArticleFilter{Sort: domain.SortViews, Page: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, byViews, 1)
	assert.Equal(t, ids[0], byViews[0].ID)

	empty, total, err := store.Articles.List(ctx, domain.ArticleFilter{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.EqualValues(t, 5, total)

	views, err := store.Articles.TotalViews(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10+9+8+7+6, views)
}

func TestArticleRepo_RegisterVisitWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := newArticle("author-1", time.Now().UTC())
	require.NoError(t, store.Articles.Create(ctx, a))

	now := time.Now().UTC()
	res, err := store.Articles.RegisterVisit(ctx, a.ID, "1.2.3.4", time.Hour, now)
	require.NoError(t, err)
	assert.True(t, res.Counted)
	assert.EqualValues(t, 1, res.ViewCount)

	res, err = store.Articles.RegisterVisit(ctx, a.ID, "1.2.3.4", time.Hour, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.False(t, res.Counted)
	assert.EqualValues(t, 1, res.ViewCount)

	res, err = store.Articles.RegisterVisit(ctx, a.ID, "1.2.3.4", time.Hour, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, res.Counted)
	assert.EqualValues(t, 2, res.ViewCount)

	visits, err := store.Articles.CountVisitsSince(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, visits)

	_, err = store.Articles.RegisterVisit(ctx, "missing", "1.2.3.4", time.Hour, now)
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
}

func TestArticleRepo_ConcurrentViews(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := newArticle("author-1", time.Now().UTC())
	require.NoError(t, store.Articles.Create(ctx, a))

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Articles.IncrementViews(ctx, a.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Articles.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.ViewCount)
}

func TestArticleRepo_UpdateKeepsViewCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := newArticle("author-1", time.Now().UTC())
	require.NoError(t, store.Articles.Create(ctx, a))

	snapshot, err := store.Articles.GetByID(ctx, a.ID)
	require.NoError(t, err)

	_, err = store.Articles.IncrementViews(ctx, a.ID)
	require.NoError(t, err)
	_, err = store.Articles.RegisterVisit(ctx, a.ID, "10.0.0.1", time.Hour, time.Now())
	require.NoError(t, err)

	snapshot.Title = "Edited title"
	require.NoError(t, store.Articles.Update(ctx, snapshot))
	assert.EqualValues(t, 2, snapshot.ViewCount)

	got, err := store.Articles.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited title", got.Title)
	assert.EqualValues(t, 2, got.ViewCount)
}

func newComment(articleID string, parent *string, created time.Time) *domain.Comment {
	return &domain.Comment{
		ID:        uuid.NewString(),
		Content:   "nice post",
		Article:   articleID,
		Author:    "author-1",
		Parent:    parent,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestCommentRepo_ConcurrentRepliesCountExactly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	root := newComment("article-1", nil, time.Now().UTC())
	require.NoError(t, store.Comments.Create(ctx, root))

	const n = 16
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Comments.Create(ctx, newComment("article-1", &root.ID, time.Now().UTC())))
		}()
	}
	wg.Wait()

	got, err := store.Comments.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.ReplyCount)

	replies, err := store.Comments.ListReplies(ctx, root.ID, 1, 100)
	require.NoError(t, err)
	assert.EqualValues(t, n, replies.Total)
}

func TestCommentRepo_ThreadRules(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	first := newComment("article-1", nil, base)
	second := newComment("article-1", nil, base.Add(time.Second))
	require.NoError(t, store.Comments.Create(ctx, first))
	require.NoError(t, store.Comments.Create(ctx, second))

	reply := newComment("article-1", &first.ID, base.Add(2*time.Second))
	require.NoError(t, store.Comments.Create(ctx, reply))

	nested := newComment("article-1", &reply.ID, base.Add(3*time.Second))
	assert.ErrorIs(t, store.Comments.Create(ctx, nested), domain.ErrInvalidParent)

	foreign := newComment("article-2", &first.ID, base.Add(3*time.Second))
	assert.ErrorIs(t, store.Comments.Create(ctx, foreign), domain.ErrInvalidParent)

	missing := "missing"
	assert.ErrorIs(t, store.Comments.Create(ctx, newComment("article-1", &missing, base)), domain.ErrCommentNotFound)

	top, err := store.Comments.ListTopLevel(ctx, "article-1", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, top.Total)
	assert.Equal(t, second.ID, top.Items[0].ID)

	require.NoError(t, store.Comments.SetDeleted(ctx, reply.ID, true))
	replies, err := store.Comments.ListReplies(ctx, first.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, replies.Total)

	parent, err := store.Comments.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, parent.ReplyCount)

	visible, err := store.Comments.Count(ctx, repository.CommentCountFilter{Article: "article-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, visible)

	ids, err := store.Comments.DeleteByArticle(ctx, "article-1")
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	all, err := store.Comments.Count(ctx, repository.CommentCountFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Zero(t, all)
}

func TestLikeRepo_Toggle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	liked, err := store.Likes.Toggle(ctx, domain.NewLike(uuid.NewString(), "u1", domain.TargetArticle, "a1", now))
	require.NoError(t, err)
	assert.True(t, liked)

	_, err = store.Likes.Toggle(ctx, domain.NewLike(uuid.NewString(), "u2", domain.TargetArticle, "a1", now))
	require.NoError(t, err)

	n, err := store.Likes.CountByTarget(ctx, domain.TargetArticle, "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	liked, err = store.Likes.Toggle(ctx, domain.NewLike(uuid.NewString(), "u1", domain.TargetArticle, "a1", now))
	require.NoError(t, err)
	assert.False(t, liked)

	exists, err := store.Likes.Exists(ctx, "u1", domain.TargetArticle, "a1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Likes.Toggle(ctx, domain.NewLike(uuid.NewString(), "u2", domain.TargetComment, "c1", now))
	require.NoError(t, err)

	byUser, err := store.Likes.CountByUser(ctx, "u2")
	require.NoError(t, err)
	assert.EqualValues(t, 2, byUser)

	require.NoError(t, store.Likes.DeleteByTarget(ctx, domain.TargetArticle, "a1"))
	total, err := store.Likes.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestTaxonomyRepos(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tech := &domain.Category{ID: uuid.NewString(), Name: "Tech", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Categories.Create(ctx, tech))
	assert.ErrorIs(t, store.Categories.Create(ctx, &domain.Category{ID: uuid.NewString(), Name: "tech"}), domain.ErrCategoryExists)

	tech.Name = "Technology"
	require.NoError(t, store.Categories.Update(ctx, tech))
	_, err := store.Categories.GetByName(ctx, "tech")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	got, err := store.Categories.GetByName(ctx, "technology")
	require.NoError(t, err)
	assert.Equal(t, tech.ID, got.ID)

	goTag := &domain.Tag{ID: uuid.NewString(), Name: "go", Color: domain.DefaultTagColor}
	rust := &domain.Tag{ID: uuid.NewString(), Name: "rust", Color: domain.DefaultTagColor}
	idle := &domain.Tag{ID: uuid.NewString(), Name: "idle", Color: domain.DefaultTagColor}
	for _, tag := range []*domain.Tag{goTag, rust, idle} {
		require.NoError(t, store.Tags.Create(ctx, tag))
	}
	require.NoError(t, store.Tags.SetArticleCount(ctx, goTag.ID, 3))
	require.NoError(t, store.Tags.SetArticleCount(ctx, rust.ID, 5))

	hot, err := store.Tags.Hot(ctx, 10)
	require.NoError(t, err)
	require.Len(t, hot, 2)
	assert.Equal(t, "rust", hot[0].Name)

	stale, err := store.Tags.GetByID(ctx, goTag.ID)
	require.NoError(t, err)
	require.NoError(t, store.Tags.SetArticleCount(ctx, goTag.ID, 4))
	stale.Color = "#00add8"
	require.NoError(t, store.Tags.Update(ctx, stale))
	reloaded, err := store.Tags.GetByID(ctx, goTag.ID)
	require.NoError(t, err)
	assert.Equal(t, "#00add8", reloaded.Color)
	assert.EqualValues(t, 4, reloaded.ArticleCount)

	require.NoError(t, store.Tags.Delete(ctx, idle.ID))
	tags, err := store.Tags.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestVerificationRepo_LatestAndMark(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	older := &domain.Verification{ID: "v1", Email: "a@example.com", Code: "111111", CreatedAt: now.Add(-time.Minute), ExpiresAt: now.Add(5 * time.Minute)}
	newer := &domain.Verification{ID: "v2", Email: "a@example.com", Code: "222222", CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}
	require.NoError(t, store.Verifications.Create(ctx, older))
	require.NoError(t, store.Verifications.Create(ctx, newer))

	latest, err := store.Verifications.Latest(ctx, "A@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", latest.Code)

	require.NoError(t, store.Verifications.MarkVerified(ctx, latest))
	latest, err = store.Verifications.Latest(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, latest.IsVerified)

	require.NoError(t, store.Verifications.DeleteByEmail(ctx, "a@example.com"))
	_, err = store.Verifications.Latest(ctx, "a@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDB_HealthCheck(t *testing.T) {
	db, err := NewInMemory()
	require.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, db.HealthCheck(ctx))
	require.NoError(t, db.Close(ctx))
	assert.Error(t, db.HealthCheck(ctx))
}
