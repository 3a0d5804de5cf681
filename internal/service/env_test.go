package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/amiyamandal-dev/inkwell/internal/auth"
	"github.com/amiyamandal-dev/inkwell/internal/cache"
	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/mailer"
	"github.com/amiyamandal-dev/inkwell/internal/markdown"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/internal/repository/badger"
	"github.com/amiyamandal-dev/inkwell/internal/search"
	"github.com/amiyamandal-dev/inkwell/internal/storage"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

const testSecret = "test-secret-that-is-at-least-32-chars"

type testEnv struct {
	Store         *repository.Store
	Index         *search.BleveIndex
	Cache         cache.Cache
	Verifications *VerificationService
	Users         *UserService
	Articles      *ArticleService
	Categories    *CategoryService
	Tags          *TagService
	Comments      *CommentService
	Likes         *LikeService
	Profiles      *ProfileService
	Search        *SearchService
	Share         *ShareService
	Stats         *StatisticsService
	Uploads       *UploadService
	Admin         *AdminService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := badger.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	store := badger.NewStore(db)

	log := logger.NewNop()
	index, err := search.OpenInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	files, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	c := cache.NewMemoryCache(time.Minute, time.Minute)
	oplog := NewOperationLog(log)
	jwt := auth.NewJWTManager(testSecret, time.Hour, 24*time.Hour)

	env := &testEnv{Store: store, Index: index, Cache: c}
	env.Verifications = NewVerificationService(store.Verifications, store.Users, mailer.NewLogMailer(log), 5*time.Minute, log)
	env.Users = NewUserService(store.Users, env.Verifications, jwt, bcrypt.MinCost, oplog, log)
	env.Articles = NewArticleService(store, markdown.NewRenderer(), index, c, oplog, log)
	env.Categories = NewCategoryService(store, oplog, log)
	env.Tags = NewTagService(store, oplog, log)
	env.Comments = NewCommentService(store, c, oplog, log)
	env.Likes = NewLikeService(store, log)
	env.Uploads = NewUploadService(files, 1<<20, log)
	env.Profiles = NewProfileService(store, env.Uploads, oplog, log)
	env.Search = NewSearchService(index, store.Articles, store.Users, log)
	env.Share = NewShareService(store, "http://blog.test", log)
	env.Stats = NewStatisticsService(store, c, 24*time.Hour, log)
	env.Admin = NewAdminService(store, env.Users, env.Articles, env.Comments, env.Stats, oplog, log)
	return env
}

// createUser stores an active account directly
func (e *testEnv) createUser(t *testing.T, name string) *Actor {
	t.Helper()
	now := time.Now()
	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
		IsActive:     true,
		Following:    []string{},
		Followers:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.Store.Users.Create(context.Background(), u))
	return &Actor{ID: u.ID, Role: u.Role}
}

func (e *testEnv) createArticle(t *testing.T, author *Actor, title string, tags ...string) *domain.Article {
	t.Helper()
	if len(tags) == 0 {
		tags = []string{"go"}
	}
	view, err := e.Articles.Create(context.Background(), author, &domain.CreateArticleRequest{
		Title:    title,
		Content:  "# " + title + "\n\nBody text for " + title + " with enough words.",
		Category: "技术",
		Tags:     tags,
	})
	require.NoError(t, err)
	return view.Article
}

func strPtr(s string) *string { return &s }
