package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

func TestLikeService_ToggleTwice(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	fan := env.createUser(t, "fan")
	article := env.createArticle(t, author, "Likeable")

	res, err := env.Likes.ToggleArticle(ctx, fan, article.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikeCount)

	status, err := env.Likes.ArticleStatus(ctx, fan, article.ID)
	require.NoError(t, err)
	assert.True(t, status.Liked)

	res, err = env.Likes.ToggleArticle(ctx, fan, article.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Zero(t, res.LikeCount)

	n, err := env.Store.Likes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLikeService_CommentLikeCountedOnRead(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	fan := env.createUser(t, "fan")
	article := env.createArticle(t, author, "Comment likes")
	comment, err := env.Comments.Create(ctx, author, &domain.CreateCommentRequest{ArticleID: article.ID, Content: "like me"})
	require.NoError(t, err)

	res, err := env.Likes.ToggleComment(ctx, fan, comment.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	list, _, err := env.Comments.ListByArticle(ctx, article.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].LikeCount)

	_, err = env.Likes.ToggleComment(ctx, fan, "missing")
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)
}

func TestLikeService_UnlikeAfterCommentDeleted(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	fan := env.createUser(t, "fan")
	article := env.createArticle(t, author, "Short lived comment")
	comment, err := env.Comments.Create(ctx, author, &domain.CreateCommentRequest{ArticleID: article.ID, Content: "soon gone"})
	require.NoError(t, err)

	res, err := env.Likes.ToggleComment(ctx, fan, comment.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	require.NoError(t, env.Comments.Delete(ctx, author, comment.ID))

	res, err = env.Likes.ToggleComment(ctx, fan, comment.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Zero(t, res.LikeCount)

	n, err := env.Store.Likes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProfileService_Follow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	_, err := env.Profiles.ToggleFollow(ctx, alice, alice.ID)
	assert.ErrorIs(t, err, domain.ErrSelfFollow)

	res, err := env.Profiles.ToggleFollow(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)

	followers, total, err := env.Profiles.Followers(ctx, bob.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	following, _, err := env.Profiles.Following(ctx, alice.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)

	res, err = env.Profiles.ToggleFollow(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Following)

	for _, id := range []string{alice.ID, bob.ID} {
		u, err := env.Store.Users.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, u.Stats.FollowersCount)
		assert.Zero(t, u.Stats.FollowingCount)
		assert.Empty(t, u.Following)
		assert.Empty(t, u.Followers)
	}
}

func TestProfileService_GetAndUpdate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	for _, title := range []string{"One post", "Two post", "Three post", "Four post", "Five post", "Six post"} {
		env.createArticle(t, alice, title)
	}

	bio := "writes about go"
	user, err := env.Profiles.Update(ctx, alice, &domain.UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, user.Profile.Bio)

	view, err := env.Profiles.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, bio, view.User.Profile.Bio)
	assert.Len(t, view.Articles, profileArticleLimit)
	assert.Equal(t, int64(6), view.User.Stats.ArticleCount)

	_, err = env.Profiles.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
