package main

import (
	"context"
	"fmt"

	"github.com/amiyamandal-dev/inkwell/internal/auth"
	"github.com/amiyamandal-dev/inkwell/internal/cache"
	"github.com/amiyamandal-dev/inkwell/internal/config"
	"github.com/amiyamandal-dev/inkwell/internal/mailer"
	"github.com/amiyamandal-dev/inkwell/internal/markdown"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/internal/repository/badger"
	"github.com/amiyamandal-dev/inkwell/internal/repository/mongodb"
	"github.com/amiyamandal-dev/inkwell/internal/search"
	"github.com/amiyamandal-dev/inkwell/internal/service"
	"github.com/amiyamandal-dev/inkwell/internal/storage"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// app holds the long-lived dependencies shared by every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *repository.Store
	cache   cache.Cache
	index   *search.BleveIndex
	jwt     *auth.JWTManager
	closers []func(context.Context) error

	verifications *service.VerificationService
	users         *service.UserService
	articles      *service.ArticleService
	categories    *service.CategoryService
	tags          *service.TagService
	comments      *service.CommentService
	likes         *service.LikeService
	uploads       *service.UploadService
	profiles      *service.ProfileService
	search        *service.SearchService
	share         *service.ShareService
	stats         *service.StatisticsService
	admin         *service.AdminService
}

func loadConfig(configDir string) (*config.Config, *logger.Logger, error) {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, logger.WithFile(logger.FileOptions{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   true,
	}))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

// newApp opens the store, cache, file storage and search index and wires the services
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (a *app, err error) {
	a = &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	if err := a.openCache(ctx); err != nil {
		return nil, err
	}

	files, err := openStorage(cfg.Uploads)
	if err != nil {
		return nil, err
	}
	log.Info("Upload storage ready", "backend", cfg.Uploads.Backend)

	a.index, err = search.Open(cfg.Search.IndexPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return a.index.Close() })

	var m mailer.Mailer
	if cfg.Mail.SMTPHost == "" {
		log.Warn("No SMTP host configured, verification codes are logged instead of mailed")
		m = mailer.NewLogMailer(log)
	} else {
		m = mailer.NewSMTPMailer(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, log)
	}

	a.jwt = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.RefreshTokenExpiry)
	oplog := service.NewOperationLog(log)

	a.verifications = service.NewVerificationService(a.store.Verifications, a.store.Users, m, cfg.Verification.CodeTTL, log)
	a.users = service.NewUserService(a.store.Users, a.verifications, a.jwt, cfg.Auth.BcryptCost, oplog, log)
	a.articles = service.NewArticleService(a.store, markdown.NewRenderer(), a.index, a.cache, oplog, log)
	a.categories = service.NewCategoryService(a.store, oplog, log)
	a.tags = service.NewTagService(a.store, oplog, log)
	a.comments = service.NewCommentService(a.store, a.cache, oplog, log)
	a.likes = service.NewLikeService(a.store, log)
	a.uploads = service.NewUploadService(files, cfg.Uploads.MaxSize, log)
	a.profiles = service.NewProfileService(a.store, a.uploads, oplog, log)
	a.search = service.NewSearchService(a.index, a.store.Articles, a.store.Users, log)
	a.share = service.NewShareService(a.store, cfg.Share.BaseURL, log)
	a.stats = service.NewStatisticsService(a.store, a.cache, cfg.Views.VisitorWindow, log)
	a.admin = service.NewAdminService(a.store, a.users, a.articles, a.comments, a.stats, oplog, log)

	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Database.Mode {
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, a.cfg.Database.Timeout)
		defer cancel()

		db, err := mongodb.Connect(connectCtx, a.cfg.Database.MongoURI, a.cfg.Database.MongoDatabase)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.EnsureIndexes(connectCtx); err != nil {
			return err
		}
		a.store = mongodb.NewStore(db)
		a.log.Info("Connected to MongoDB", "database", a.cfg.Database.MongoDatabase)
	default:
		db, err := badger.New(a.cfg.Database.Path)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		a.store = badger.NewStore(db)
		a.log.Info("Opened BadgerDB store", "path", a.cfg.Database.Path)
	}
	return nil
}

func (a *app) openCache(ctx context.Context) error {
	c := a.cfg.Cache
	if c.Backend != "redis" {
		a.cache = cache.NewMemoryCache(c.DefaultTTL, c.CleanupInterval)
		return nil
	}

	rc, err := cache.NewRedisCache(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB, c.DefaultTTL)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func(context.Context) error { return rc.Close() })
	a.cache = rc
	a.log.Info("Connected to Redis", "addr", c.RedisAddr)
	return nil
}

func openStorage(cfg config.UploadsConfig) (storage.Storage, error) {
	if cfg.Backend == "s3" {
		return storage.NewS3Storage(storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.NewLocalStorage(cfg.Dir, cfg.BaseURL)
}

// Close releases resources in reverse order of acquisition
func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("Failed to close resource", "error", err)
		}
	}
	a.closers = nil
}
