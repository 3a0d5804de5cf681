package mongodb

import "github.com/amiyamandal-dev/inkwell/internal/repository"

// NewStore wires every MongoDB repository onto db
func NewStore(db *DB) *repository.Store {
	return &repository.Store{
		Users:         NewUserRepo(db),
		Articles:      NewArticleRepo(db),
		Categories:    NewCategoryRepo(db),
		Tags:          NewTagRepo(db),
		Comments:      NewCommentRepo(db),
		Likes:         NewLikeRepo(db),
		Verifications: NewVerificationRepo(db),
		Backend:       db,
	}
}
