package domain

import (
	"slices"
	"time"
)

// Role is the authorisation level of an account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Social holds optional links to external profiles
type Social struct {
	Github  string `json:"github" bson:"github"`
	Twitter string `json:"twitter" bson:"twitter"`
	Weibo   string `json:"weibo" bson:"weibo"`
}

// Profile is the user-editable part of an account
type Profile struct {
	Nickname string     `json:"nickname" bson:"nickname"`
	Bio      string     `json:"bio" bson:"bio"`
	Location string     `json:"location" bson:"location"`
	Website  string     `json:"website" bson:"website"`
	Birthday *time.Time `json:"birthday,omitempty" bson:"birthday,omitempty"`
	Gender   string     `json:"gender" bson:"gender"`
	Social   Social     `json:"social" bson:"social"`
}

// UserStats are counters denormalized onto the user document.
// FollowingCount equals len(Following) and FollowersCount equals len(Followers).
type UserStats struct {
	FollowingCount int64 `json:"followingCount" bson:"followingCount"`
	FollowersCount int64 `json:"followersCount" bson:"followersCount"`
	ArticleCount   int64 `json:"articleCount" bson:"articleCount"`
}

// User represents a registered account
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"` // Never expose
	Avatar       string    `json:"avatar" bson:"avatar"`
	Role         Role      `json:"role" bson:"role"`
	IsActive     bool      `json:"isActive" bson:"isActive"`
	IsVerified   bool      `json:"isVerified" bson:"isVerified"`
	Profile      Profile   `json:"profile" bson:"profile"`
	Following    []string  `json:"following" bson:"following"`
	Followers    []string  `json:"followers" bson:"followers"`
	Stats        UserStats `json:"stats" bson:"stats"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SetAccountFields copies the fields an account edit owns from src.
// Follow lists and stats belong to their own operations and are left alone.
func (u *User) SetAccountFields(src *User) {
	u.Username = src.Username
	u.Email = src.Email
	u.PasswordHash = src.PasswordHash
	u.Avatar = src.Avatar
	u.Role = src.Role
	u.IsActive = src.IsActive
	u.IsVerified = src.IsVerified
	u.Profile = src.Profile
	u.UpdatedAt = src.UpdatedAt
}

// IsFollowing reports whether u follows the user with the given id
func (u *User) IsFollowing(id string) bool {
	return slices.Contains(u.Following, id)
}

// Summary returns the display fields embedded into other resources
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Nickname: u.Profile.Nickname,
	}
}

// UserSummary is the author/follower shape used inside other responses
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Nickname string `json:"nickname,omitempty"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateAccountRequest changes account identity fields
type UpdateAccountRequest struct {
	Username *string `json:"username" binding:"omitempty,min=2,max=30"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

// ChangePasswordRequest replaces the account password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,password"`
}

// UpdateProfileRequest carries the editable profile fields; nil means unchanged
type UpdateProfileRequest struct {
	Nickname *string    `json:"nickname" binding:"omitempty,max=30"`
	Bio      *string    `json:"bio" binding:"omitempty,max=200"`
	Location *string    `json:"location" binding:"omitempty,max=100"`
	Website  *string    `json:"website" binding:"omitempty,url"`
	Birthday *time.Time `json:"birthday"`
	Gender   *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	Github   *string    `json:"github" binding:"omitempty,max=100"`
	Twitter  *string    `json:"twitter" binding:"omitempty,max=100"`
	Weibo    *string    `json:"weibo" binding:"omitempty,max=100"`
}

// Apply copies the non-nil fields onto p
func (r *UpdateProfileRequest) Apply(p *Profile) {
	if r.Nickname != nil {
		p.Nickname = *r.Nickname
	}
	if r.Bio != nil {
		p.Bio = *r.Bio
	}
	if r.Location != nil {
		p.Location = *r.Location
	}
	if r.Website != nil {
		p.Website = *r.Website
	}
	if r.Birthday != nil {
		p.Birthday = r.Birthday
	}
	if r.Gender != nil {
		p.Gender = *r.Gender
	}
	if r.Github != nil {
		p.Social.Github = *r.Github
	}
	if r.Twitter != nil {
		p.Social.Twitter = *r.Twitter
	}
	if r.Weibo != nil {
		p.Social.Weibo = *r.Weibo
	}
}

// AuthTokens represents authentication tokens
type AuthTokens struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// LoginResponse represents a successful login or registration
type LoginResponse struct {
	User   *User       `json:"user"`
	Tokens *AuthTokens `json:"tokens"`
}

// ProfileView is the public profile page payload
type ProfileView struct {
	User      *User            `json:"user"`
	Following []*UserSummary   `json:"following"`
	Followers []*UserSummary   `json:"followers"`
	Articles  []*ArticleDigest `json:"articles"`
}

// FollowResult is returned by the follow toggle
type FollowResult struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}
