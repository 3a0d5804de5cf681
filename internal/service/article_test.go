package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

func TestArticleService_CreateDerivesFields(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	author := env.createUser(t, "author")

	view, err := env.Articles.Create(ctx, author, &domain.CreateArticleRequest{
		Title:    "Markdown article",
		Content:  "## Heading\n\nSome **bold** text <script>alert(1)</script> here.",
		Category: "技术",
		Tags:     []string{"Go", " go ", "web"},
	})
	require.NoError(t, err)

	a := view.Article
	assert.True(t, a.IsPublished)
	assert.Equal(t, []string{"Go", "web"}, a.Tags)
	assert.Contains(t, a.ContentHTML, "<strong>bold</strong>")
	assert.NotContains(t, a.ContentHTML, "<script>")
	assert.True(t, strings.HasPrefix(a.Description, "Heading Some bold text"))
	assert.Equal(t, 1, a.ReadTime)
	assert.Equal(t, "author", view.Author.Username)

	user, err := env.Store.Users.GetByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.Stats.ArticleCount)

	_, err = env.Articles.Create(ctx, author, &domain.CreateArticleRequest{
		Title: "x", Content: "too short", Category: "技术", Tags: []string{"go"},
	})
	assert.True(t, domain.IsValidation(err))
}

func TestArticleService_DraftVisibility(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	stranger := env.createUser(t, "stranger")
	draft := false

	view, err := env.Articles.Create(ctx, author, &domain.CreateArticleRequest{
		Title: "Secret draft", Content: "not ready for readers yet", Category: "随笔",
		Tags: []string{"draft"}, IsPublished: &draft,
	})
	require.NoError(t, err)
	id := view.Article.ID

	_, err = env.Articles.Get(ctx, nil, id)
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	_, err = env.Articles.Get(ctx, stranger, id)
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	_, err = env.Articles.Get(ctx, author, id)
	assert.NoError(t, err)
	_, err = env.Articles.Get(ctx, &Actor{ID: "root", Role: domain.RoleAdmin}, id)
	assert.NoError(t, err)

	list, total, err := env.Articles.List(ctx, nil, domain.ArticleFilter{Page: 1, Limit: 10}, true)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	list, total, err = env.Articles.List(ctx, author, domain.ArticleFilter{Author: author.ID, Page: 1, Limit: 10}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	_, err = env.Share.View(ctx, id)
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
}

func TestArticleService_UpdatePermissions(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	stranger := env.createUser(t, "stranger")
	article := env.createArticle(t, author, "Original title")

	title := "New title"
	_, err := env.Articles.Update(ctx, stranger, article.ID, &domain.UpdateArticleRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	content := "Completely **rewritten** body of the article."
	view, err := env.Articles.Update(ctx, author, article.ID, &domain.UpdateArticleRequest{Title: &title, Content: &content})
	require.NoError(t, err)
	assert.Equal(t, title, view.Title)
	assert.Contains(t, view.ContentHTML, "<strong>rewritten</strong>")
	assert.Equal(t, "Completely rewritten body of the article.", view.Description)

	admin := &Actor{ID: "root", Role: domain.RoleAdmin}
	updated, err := env.Articles.SetPublished(ctx, admin, article.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsPublished)
}

func TestArticleService_DeleteCascades(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	fan := env.createUser(t, "fan")
	article := env.createArticle(t, author, "Doomed article", "ephemeral")

	_, err := env.Tags.Create(ctx, author, &domain.TagRequest{Name: "ephemeral"})
	require.NoError(t, err)

	comment, err := env.Comments.Create(ctx, fan, &domain.CreateCommentRequest{ArticleID: article.ID, Content: "nice"})
	require.NoError(t, err)
	_, err = env.Likes.ToggleComment(ctx, fan, comment.ID)
	require.NoError(t, err)
	_, err = env.Likes.ToggleArticle(ctx, fan, article.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, env.Articles.Delete(ctx, fan, article.ID), domain.ErrForbidden)
	require.NoError(t, env.Articles.Delete(ctx, author, article.ID))

	_, err = env.Store.Articles.GetByID(ctx, article.ID)
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	_, err = env.Store.Comments.GetByID(ctx, comment.ID)
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)
	likes, err := env.Store.Likes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, likes)

	tag, err := env.Store.Tags.GetByName(ctx, "ephemeral")
	require.NoError(t, err)
	assert.Zero(t, tag.ArticleCount)

	user, err := env.Store.Users.GetByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, user.Stats.ArticleCount)
}

func TestTaxonomy_Counts(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.Categories.SeedDefaults(ctx))
	require.NoError(t, env.Categories.SeedDefaults(ctx))

	cats, err := env.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(domain.DefaultCategories))

	author := env.createUser(t, "author")
	admin := &Actor{ID: "root", Role: domain.RoleAdmin}
	tag, err := env.Tags.Create(ctx, admin, &domain.TagRequest{Name: "go"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTagColor, tag.Color)

	env.createArticle(t, author, "Go one", "go")
	env.createArticle(t, author, "Go two", "Go", "web")

	tech, err := env.Store.Categories.GetByName(ctx, "技术")
	require.NoError(t, err)
	assert.Equal(t, int64(2), tech.ArticleCount)

	detail, total, err := env.Tags.Get(ctx, tag.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.ArticleCount)
	assert.Equal(t, int64(2), total)
	assert.Len(t, detail.Articles, 2)

	err = env.Tags.Delete(ctx, admin, tag.ID)
	assert.ErrorIs(t, err, domain.ErrTaxonomyInUse)
	err = env.Categories.Delete(ctx, admin, tech.ID)
	assert.ErrorIs(t, err, domain.ErrTaxonomyInUse)
	_, err = env.Tags.Update(ctx, admin, tag.ID, &domain.TagRequest{Name: "golang"})
	assert.ErrorIs(t, err, domain.ErrTaxonomyInUse)

	web, err := env.Tags.Create(ctx, admin, &domain.TagRequest{Name: "web", Color: "#ff0000"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), web.ArticleCount)

	tags, err := env.Tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Name)

	unused, err := env.Tags.Create(ctx, admin, &domain.TagRequest{Name: "unused"})
	require.NoError(t, err)
	require.NoError(t, env.Tags.Delete(ctx, admin, unused.ID))
	_, err = env.Tags.Create(ctx, admin, &domain.TagRequest{Name: "GO"})
	assert.ErrorIs(t, err, domain.ErrTagExists)
}
