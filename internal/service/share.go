package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

const qrSize = 256

// ShareService builds public links and share sheets for articles
type ShareService struct {
	articles repository.ArticleRepository
	users    repository.UserRepository
	likes    repository.LikeRepository
	baseURL  string
	logger   *logger.Logger
}

// NewShareService creates a new share service rooted at baseURL
func NewShareService(store *repository.Store, baseURL string, logger *logger.Logger) *ShareService {
	return &ShareService{
		articles: store.Articles,
		users:    store.Users,
		likes:    store.Likes,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger.WithComponent("share-service"),
	}
}

func (s *ShareService) published(ctx context.Context, id string) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished {
		return nil, domain.ErrArticleNotFound
	}
	return article, nil
}

// View returns the public article and counts the view unconditionally
func (s *ShareService) View(ctx context.Context, id string) (*domain.SharedArticle, error) {
	article, err := s.published(ctx, id)
	if err != nil {
		return nil, err
	}

	views, err := s.articles.IncrementViews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count view: %w", err)
	}
	likes, err := s.likes.CountByTarget(ctx, domain.TargetArticle, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	shared := &domain.SharedArticle{
		ID:          article.ID,
		Title:       article.Title,
		Content:     article.Content,
		ContentHTML: article.ContentHTML,
		CreatedAt:   article.CreatedAt,
		Views:       views,
		Likes:       likes,
	}
	if author, err := s.users.GetByID(ctx, article.Author); err == nil {
		shared.Author = author.Summary()
	}
	return shared, nil
}

// Link returns the API link that serves the shared article
func (s *ShareService) Link(ctx context.Context, id string) (string, error) {
	if _, err := s.published(ctx, id); err != nil {
		return "", err
	}
	return s.baseURL + "/api/share/articles/" + id, nil
}

// Data returns the share sheet with a QR code of the article URL
func (s *ShareService) Data(ctx context.Context, id string) (*domain.ShareData, error) {
	article, err := s.published(ctx, id)
	if err != nil {
		return nil, err
	}

	author := ""
	if u, err := s.users.GetByID(ctx, article.Author); err == nil {
		author = u.Username
	}

	shareURL := s.baseURL + "/articles/" + id
	png, err := qrcode.Encode(shareURL, qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("Failed to generate QR code", "article_id", id, "error", err)
		return nil, fmt.Errorf("failed to generate qr code: %w", err)
	}

	return &domain.ShareData{
		Title:       article.Title,
		Description: article.Description,
		Author:      author,
		ShareURL:    shareURL,
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		ShareText:   fmt.Sprintf("%s - 作者：%s\n%s\n阅读全文：%s", article.Title, author, article.Description, shareURL),
	}, nil
}
