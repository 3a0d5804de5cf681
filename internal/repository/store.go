package repository

import "context"

// Backend is the connection behind a Store
type Backend interface {
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// Store bundles the repositories of one storage backend
type Store struct {
	Users         UserRepository
	Articles      ArticleRepository
	Categories    CategoryRepository
	Tags          TagRepository
	Comments      CommentRepository
	Likes         LikeRepository
	Verifications VerificationRepository
	Backend       Backend
}
