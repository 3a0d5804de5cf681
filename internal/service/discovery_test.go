package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
)

func TestSearchService(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "gopher")
	env.createUser(t, "rustacean")
	env.createArticle(t, author, "Concurrency in Go", "go")
	env.createArticle(t, author, "Gardening notes", "garden")

	articles, total, err := env.Search.Articles(ctx, "concurrency", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, articles, 1)
	assert.Equal(t, "Concurrency in Go", articles[0].Title)
	assert.Equal(t, "gopher", articles[0].Author.Username)

	users, total, err := env.Search.Users(ctx, "GOPH", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "gopher", users[0].Username)

	all, err := env.Search.All(ctx, "garden")
	require.NoError(t, err)
	assert.Len(t, all.Articles, 1)

	_, _, err = env.Search.Articles(ctx, "  ", 1, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := env.Search.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestShareService(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "writer")
	article := env.createArticle(t, author, "Shared story")

	first, err := env.Share.View(ctx, article.ID)
	require.NoError(t, err)
	second, err := env.Share.View(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Views+1, second.Views)
	assert.Equal(t, "writer", second.Author.Username)

	link, err := env.Share.Link(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://blog.test/api/share/articles/"+article.ID, link)

	data, err := env.Share.Data(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://blog.test/articles/"+article.ID, data.ShareURL)
	assert.True(t, strings.HasPrefix(data.QRCode, "data:image/png;base64,"))
	assert.Contains(t, data.ShareText, "作者：writer")

	_, err = env.Share.Data(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
}

func TestStatisticsService(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "writer")
	fan := env.createUser(t, "fan")
	article := env.createArticle(t, author, "Counted story")

	res, err := env.Stats.RegisterView(ctx, article.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Counted)
	assert.Equal(t, int64(1), res.ViewCount)

	res, err = env.Stats.RegisterView(ctx, article.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Counted)
	assert.Equal(t, int64(1), res.ViewCount)

	res, err = env.Stats.RegisterView(ctx, article.ID, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Counted)

	_, err = env.Likes.ToggleArticle(ctx, fan, article.ID)
	require.NoError(t, err)
	_, err = env.Comments.Create(ctx, fan, &domain.CreateCommentRequest{ArticleID: article.ID, Content: "great"})
	require.NoError(t, err)

	stats, err := env.Stats.ArticleStats(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleStats{Views: 2, Likes: 1, Comments: 1}, *stats)

	activity, err := env.Stats.UserStats(ctx, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserActivity{Articles: 0, Likes: 1, Comments: 1}, *activity)

	overview, err := env.Stats.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.TotalViews)
	assert.Equal(t, int64(2), overview.TodayViews)

	// share views add to the total but not to today's visitor count
	_, err = env.Share.View(ctx, article.ID)
	require.NoError(t, err)
	env.Stats.Invalidate(ctx)
	overview, err = env.Stats.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), overview.TotalViews)
	assert.Equal(t, int64(2), overview.TodayViews)

	hot, err := env.Stats.HotArticles(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, hot, 1)
	assert.Equal(t, article.ID, hot[0].ID)

	// cached until an article write invalidates it
	env.createArticle(t, author, "Fresh story")
	hot, err = env.Stats.HotArticles(ctx, 7, 10)
	require.NoError(t, err)
	assert.Len(t, hot, 2)

	overall, err := env.Stats.Overall(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overall.Total.Users)
	assert.Equal(t, int64(2), overall.Total.Articles)
	assert.Equal(t, int64(2), overall.Recent.NewArticles)

	ranking, err := env.Stats.Hot(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, ranking.ActiveUsers)
	assert.Equal(t, "writer", ranking.ActiveUsers[0].Username)
	assert.Equal(t, article.ID, ranking.HotArticles[0].ID)

	dashboard, err := env.Admin.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dashboard.Articles.Today)
	assert.Equal(t, int64(3), dashboard.Views.Total)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadService(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	data := pngBytes(t)

	res, err := env.Uploads.Store(ctx, UploadArticle, "photo.PNG", int64(len(data)), bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Filename, ".png"))
	assert.Equal(t, "/uploads/articles/"+res.Filename, res.URL)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, int64(len(data)), res.Size)

	_, err = env.Uploads.Store(ctx, UploadArticle, "notes.txt", 5, strings.NewReader("hello"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFile)

	_, err = env.Uploads.Store(ctx, UploadArticle, "fake.png", 5, strings.NewReader("hello"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFile)

	_, err = env.Uploads.Store(ctx, UploadAvatar, "huge.png", 2<<20, bytes.NewReader(data))
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	require.NoError(t, env.Uploads.Delete(ctx, res.Filename))
	assert.ErrorIs(t, env.Uploads.Delete(ctx, res.Filename), domain.ErrFileNotFound)
	assert.ErrorIs(t, env.Uploads.Delete(ctx, "../secret.png"), domain.ErrFileNotFound)

	user := env.createUser(t, "avatar")
	updated, err := env.Profiles.UpdateAvatar(ctx, user, "me.png", int64(len(data)), bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.Avatar, "/uploads/avatars/"))
}
