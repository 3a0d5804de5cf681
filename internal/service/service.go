package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
)

// Actor is the authenticated caller of an operation
type Actor struct {
	ID   string
	Role domain.Role
}

// IsAdmin reports whether the actor holds the admin role
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == domain.RoleAdmin
}

// Owns reports whether the actor is ownerID or an admin
func (a *Actor) Owns(ownerID string) bool {
	return a != nil && (a.ID == ownerID || a.IsAdmin())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// startOfDay returns local midnight of t
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// summaries loads display fields for the given user ids, skipping unknown ids
func summaries(ctx context.Context, users repository.UserRepository, ids []string) (map[string]*domain.UserSummary, error) {
	out := make(map[string]*domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := users.GetByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range found {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

// orderedSummaries keeps the order of ids
func orderedSummaries(ctx context.Context, users repository.UserRepository, ids []string) ([]*domain.UserSummary, error) {
	byID, err := summaries(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// digests converts articles and attaches their authors
func digests(ctx context.Context, users repository.UserRepository, articles []*domain.Article) ([]*domain.ArticleDigest, error) {
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.Author
	}
	authors, err := summaries(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.ArticleDigest, len(articles))
	for i, a := range articles {
		out[i] = a.Digest()
		out[i].Author = authors[a.Author]
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// pageOf slices one page out of ids
func pageOf(ids []string, page, limit int) []string {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if limit <= 0 || start >= len(ids) {
		return nil
	}
	return ids[start:min(start+limit, len(ids))]
}
