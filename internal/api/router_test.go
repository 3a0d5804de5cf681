package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/amiyamandal-dev/inkwell/internal/api/handlers"
	"github.com/amiyamandal-dev/inkwell/internal/auth"
	"github.com/amiyamandal-dev/inkwell/internal/cache"
	"github.com/amiyamandal-dev/inkwell/internal/config"
	"github.com/amiyamandal-dev/inkwell/internal/mailer"
	"github.com/amiyamandal-dev/inkwell/internal/markdown"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/internal/repository/badger"
	"github.com/amiyamandal-dev/inkwell/internal/search"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/internal/storage"
	"github.com/amiyamandal-dev/inkwell/internal/validator"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type testServer struct {
	engine *gin.Engine
	store  *repository.Store
	users  *service.UserService
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, validator.RegisterGin())

	db, err := badger.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	store := badger.NewStore(db)

	log := logger.NewNop()
	index, err := search.OpenInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	uploadDir := t.TempDir()
	files, err := storage.NewLocalStorage(uploadDir, "/uploads")
	require.NoError(t, err)

	c := cache.NewMemoryCache(time.Minute, time.Minute)
	oplog := service.NewOperationLog(log)
	jwt := auth.NewJWTManager("router-test-secret-at-least-32-chars", time.Hour, 24*time.Hour)

	verifications := service.NewVerificationService(store.Verifications, store.Users, mailer.NewLogMailer(log), 5*time.Minute, log)
	users := service.NewUserService(store.Users, verifications, jwt, bcrypt.MinCost, oplog, log)
	articles := service.NewArticleService(store, markdown.NewRenderer(), index, c, oplog, log)
	categories := service.NewCategoryService(store, oplog, log)
	tags := service.NewTagService(store, oplog, log)
	comments := service.NewCommentService(store, c, oplog, log)
	likes := service.NewLikeService(store, log)
	uploads := service.NewUploadService(files, 1<<20, log)
	profiles := service.NewProfileService(store, uploads, oplog, log)
	searchService := service.NewSearchService(index, store.Articles, store.Users, log)
	share := service.NewShareService(store, "http://blog.test", log)
	stats := service.NewStatisticsService(store, c, 24*time.Hour, log)
	admin := service.NewAdminService(store, users, articles, comments, stats, oplog, log)

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 60000, Burst: 1000},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		Uploads:   config.UploadsConfig{Backend: "local", Dir: uploadDir, BaseURL: "/uploads"},
	}

	router := NewRouter(Handlers{
		Auth:       handlers.NewAuthHandler(users, verifications, log),
		Article:    handlers.NewArticleHandler(articles, uploads, log),
		Category:   handlers.NewCategoryHandler(categories, log),
		Tag:        handlers.NewTagHandler(tags, log),
		Comment:    handlers.NewCommentHandler(comments, log),
		Like:       handlers.NewLikeHandler(likes, log),
		Profile:    handlers.NewProfileHandler(profiles, log),
		Search:     handlers.NewSearchHandler(searchService, log),
		Share:      handlers.NewShareHandler(share, log),
		Statistics: handlers.NewStatisticsHandler(stats, log),
		Upload:     handlers.NewUploadHandler(uploads, log),
		Admin:      handlers.NewAdminHandler(admin, log),
		Health:     handlers.NewHealthHandler(store.Backend, index, log),
	}, jwt, store.Users, cfg, log)

	return &testServer{engine: router.Setup(), store: store, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type account struct {
	ID    string
	Token string
}

// register runs the email verification handshake and registers username
func (s *testServer) register(t *testing.T, username string) account {
	t.Helper()
	email := username + "@example.com"

	code, _ := s.do(t, http.MethodPost, "/api/email/send-code", "", gin.H{"email": email})
	require.Equal(t, http.StatusOK, code)

	v, err := s.store.Verifications.Latest(context.Background(), email)
	require.NoError(t, err)
	code, _ = s.do(t, http.MethodPost, "/api/email/verify", "", gin.H{"email": email, "code": v.Code})
	require.Equal(t, http.StatusOK, code)

	code, env := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"username": username, "email": email, "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	resp := decode[struct {
		User   struct{ ID string } `json:"user"`
		Tokens struct {
			Token string `json:"token"`
		} `json:"tokens"`
	}](t, env.Data)
	return account{ID: resp.User.ID, Token: resp.Tokens.Token}
}

func TestRouter_BlogScenario(t *testing.T) {
	s := setupServer(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	code, env := s.do(t, http.MethodPost, "/api/articles", alice.Token, gin.H{
		"title":    "Hello world",
		"content":  "A **first** post with enough words.",
		"category": "技术",
		"tags":     []string{"intro"},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	article := decode[struct {
		ID     string `json:"id"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
	}](t, env.Data)
	assert.Equal(t, "alice", article.Author.Username)

	code, env = s.do(t, http.MethodGet, "/api/articles?page=1&limit=5", "", nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		Articles   []struct{ ID string } `json:"articles"`
		Pagination struct {
			Current  int   `json:"current"`
			PageSize int   `json:"pageSize"`
			Total    int64 `json:"total"`
		} `json:"pagination"`
	}](t, env.Data)
	require.Len(t, list.Articles, 1)
	assert.Equal(t, int64(1), list.Pagination.Total)
	assert.Equal(t, 5, list.Pagination.PageSize)

	title := "Hijacked"
	code, _ = s.do(t, http.MethodPut, "/api/articles/"+article.ID, bob.Token, gin.H{"title": title})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPost, "/api/comments", bob.Token, gin.H{"articleId": article.ID, "content": "nice"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	comment := decode[struct{ ID string }](t, env.Data)

	code, env = s.do(t, http.MethodPost, "/api/comments", alice.Token, gin.H{
		"articleId": article.ID, "content": "thanks", "parentId": comment.ID, "replyTo": bob.ID,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = s.do(t, http.MethodGet, "/api/comments/"+comment.ID+"/replies", "", nil)
	require.Equal(t, http.StatusOK, code)
	replies := decode[struct {
		Replies []struct {
			ReplyTo struct {
				Username string `json:"username"`
			} `json:"replyTo"`
		} `json:"replies"`
	}](t, env.Data)
	require.Len(t, replies.Replies, 1)
	assert.Equal(t, "bob", replies.Replies[0].ReplyTo.Username)

	code, _ = s.do(t, http.MethodDelete, "/api/comments/"+comment.ID, alice.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPost, "/api/likes/articles/"+article.ID+"/like", bob.Token, nil)
	require.Equal(t, http.StatusOK, code)
	like := decode[struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"likeCount"`
	}](t, env.Data)
	assert.True(t, like.Liked)
	assert.Equal(t, int64(1), like.LikeCount)

	code, env = s.do(t, http.MethodGet, "/api/articles/"+article.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	view := decode[struct {
		LikeCount    int64 `json:"likeCount"`
		CommentCount int64 `json:"commentCount"`
	}](t, env.Data)
	assert.Equal(t, int64(1), view.LikeCount)
	assert.Equal(t, int64(2), view.CommentCount)

	code, env = s.do(t, http.MethodPost, "/api/profile/follow/"+bob.ID, bob.Token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	code, env = s.do(t, http.MethodPost, "/api/profile/follow/"+bob.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, code)
	follow := decode[struct {
		Following bool `json:"following"`
	}](t, env.Data)
	assert.True(t, follow.Following)

	code, env = s.do(t, http.MethodGet, "/api/share/articles/"+article.ID+"/link", bob.Token, nil)
	require.Equal(t, http.StatusOK, code)
	link := decode[struct {
		ShareLink string `json:"shareLink"`
	}](t, env.Data)
	assert.Equal(t, "http://blog.test/api/share/articles/"+article.ID, link.ShareLink)

	code, _ = s.do(t, http.MethodDelete, "/api/articles/"+article.ID, alice.Token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = s.do(t, http.MethodGet, "/api/articles/"+article.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestRouter_AuthErrors(t *testing.T) {
	s := setupServer(t)
	alice := s.register(t, "alice")

	code, _ := s.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/api/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(t, http.MethodGet, "/api/users/me", alice.Token, nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[struct {
		Username string `json:"username"`
	}](t, env.Data)
	assert.Equal(t, "alice", me.Username)

	code, _ = s.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "alice@example.com", "password": "Wrong123"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPost, "/api/users/register", "", gin.H{"username": "x", "email": "bad", "password": "weak"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, env.Message)

	code, _ = s.do(t, http.MethodGet, "/api/admin/dashboard", alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	_, err := s.users.Promote(context.Background(), "alice@example.com")
	require.NoError(t, err)
	code, env = s.do(t, http.MethodGet, "/api/admin/dashboard", alice.Token, nil)
	assert.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.do(t, http.MethodPost, "/api/admin/remove-admin", alice.Token, gin.H{"userId": alice.ID})
	assert.Equal(t, http.StatusForbidden, code)

	_, err = s.users.SetActive(context.Background(), alice.ID, false)
	require.NoError(t, err)
	code, _ = s.do(t, http.MethodGet, "/api/users/me", alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	s := setupServer(t)

	code, _ := s.do(t, http.MethodGet, "/api/search/articles", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/api/articles?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := s.do(t, http.MethodGet, "/api/stats/overview", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, _ = s.do(t, http.MethodGet, "/api/share/articles/missing/data", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/articles", nil)
	req.Header.Set("Origin", "http://app.test")
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_AvatarUpload(t *testing.T) {
	s := setupServer(t)
	alice := s.register(t, "alice")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/avatars", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, env := s.send(t, req, alice.Token)
	require.Equal(t, http.StatusOK, code, env.Message)

	file := decode[struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
	}](t, env.Data)
	assert.Equal(t, "/uploads/avatars/"+file.Filename, file.URL)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, file.URL, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, img.Bytes(), w.Body.Bytes())

	code, _ = s.do(t, http.MethodDelete, "/api/uploads/"+file.Filename, alice.Token, nil)
	assert.Equal(t, http.StatusOK, code)
}
