package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// profileArticleLimit is how many recent articles a profile page shows
const profileArticleLimit = 5

// ProfileService serves profile pages and the follow graph
type ProfileService struct {
	users    repository.UserRepository
	articles repository.ArticleRepository
	uploads  *UploadService
	oplog    *OperationLog
	logger   *logger.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(store *repository.Store, uploads *UploadService, oplog *OperationLog, logger *logger.Logger) *ProfileService {
	return &ProfileService{
		users:    store.Users,
		articles: store.Articles,
		uploads:  uploads,
		oplog:    oplog,
		logger:   logger.WithComponent("profile-service"),
	}
}

// Get returns a user with follow summaries and their newest published articles
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	following, err := orderedSummaries(ctx, s.users, user.Following)
	if err != nil {
		return nil, err
	}
	followers, err := orderedSummaries(ctx, s.users, user.Followers)
	if err != nil {
		return nil, err
	}

	articles, _, err := s.articles.List(ctx, domain.ArticleFilter{
		Author:        user.ID,
		PublishedOnly: true,
		Limit:         profileArticleLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	recent := make([]*domain.ArticleDigest, len(articles))
	for i, a := range articles {
		recent[i] = a.Digest()
	}

	return &domain.ProfileView{
		User:      user,
		Following: following,
		Followers: followers,
		Articles:  recent,
	}, nil
}

// Update changes the profile sub-document only
func (s *ProfileService) Update(ctx context.Context, actor *Actor, req *domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	req.Apply(&user.Profile)
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update profile", "user_id", actor.ID, "error", err)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.oplog.Record(OpUpdate, actor.ID, "profile", actor.ID)
	return user, nil
}

// UpdateAvatar stores an image and points the user's avatar at it
func (s *ProfileService) UpdateAvatar(ctx context.Context, actor *Actor, name string, size int64, body io.Reader) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	file, err := s.uploads.Store(ctx, UploadAvatar, name, size, body)
	if err != nil {
		return nil, err
	}

	user.Avatar = file.URL
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	s.oplog.Record(OpUpdate, actor.ID, "profile", actor.ID, "field", "avatar")
	return user, nil
}

// ToggleFollow follows or unfollows targetID
func (s *ProfileService) ToggleFollow(ctx context.Context, actor *Actor, targetID string) (*domain.FollowResult, error) {
	if actor.ID == targetID {
		return nil, domain.ErrSelfFollow
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	res, err := s.users.ToggleFollow(ctx, actor.ID, targetID)
	if err != nil {
		s.logger.Error("Failed to toggle follow", "follower", actor.ID, "target", targetID, "error", err)
		return nil, fmt.Errorf("failed to toggle follow: %w", err)
	}

	s.logger.Debug("Follow toggled", "follower", actor.ID, "target", targetID, "following", res.Following)
	return res, nil
}

// Followers lists one page of the users following userID
func (s *ProfileService) Followers(ctx context.Context, userID string, page, limit int) ([]*domain.UserSummary, int64, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	items, err := orderedSummaries(ctx, s.users, pageOf(user.Followers, page, limit))
	if err != nil {
		return nil, 0, err
	}
	return items, int64(len(user.Followers)), nil
}

// Following lists one page of the users userID follows
func (s *ProfileService) Following(ctx context.Context, userID string, page, limit int) ([]*domain.UserSummary, int64, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	items, err := orderedSummaries(ctx, s.users, pageOf(user.Following, page, limit))
	if err != nil {
		return nil, 0, err
	}
	return items, int64(len(user.Following)), nil
}
