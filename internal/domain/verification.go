package domain

import "time"

// Verification is a short-lived email confirmation code
type Verification struct {
	ID         string    `json:"id" bson:"_id"`
	Email      string    `json:"email" bson:"email"`
	Code       string    `json:"-" bson:"code"`
	IsVerified bool      `json:"isVerified" bson:"isVerified"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt" bson:"expiresAt"`
}

// Expired reports whether the code is past its lifetime at now
func (v *Verification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// SendCodeRequest asks for a verification code
type SendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyEmailRequest submits a received code
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}
