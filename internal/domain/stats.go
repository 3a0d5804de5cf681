package domain

import "time"

// ArticleStats summarises engagement with one article
type ArticleStats struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// UserActivity summarises what one user has produced
type UserActivity struct {
	Articles int64 `json:"articles"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// Totals are whole-site counts
type Totals struct {
	Users    int64 `json:"users"`
	Articles int64 `json:"articles"`
	Comments int64 `json:"comments"`
	Likes    int64 `json:"likes"`
}

// RecentTotals count what was created inside a recent window
type RecentTotals struct {
	NewUsers    int64 `json:"newUsers"`
	NewArticles int64 `json:"newArticles"`
	NewComments int64 `json:"newComments"`
}

// OverallStats combines totals with the last week
type OverallStats struct {
	Total  Totals       `json:"total"`
	Recent RecentTotals `json:"recent"`
}

// ActiveUser is a user ranked by authored articles
type ActiveUser struct {
	*UserSummary
	Stats UserStats `json:"stats"`
}

// HotStats lists the most viewed articles and most productive users
type HotStats struct {
	HotArticles []*ArticleDigest `json:"hotArticles"`
	ActiveUsers []*ActiveUser    `json:"activeUsers"`
}

// ViewOverview aggregates article views
type ViewOverview struct {
	TotalViews int64 `json:"totalViews"`
	TodayViews int64 `json:"todayViews"`
}

// Counter is a total plus how many arrived today
type Counter struct {
	Total int64 `json:"total"`
	Today int64 `json:"today"`
}

// Dashboard is the admin landing payload
type Dashboard struct {
	Users    Counter `json:"users"`
	Articles Counter `json:"articles"`
	Comments Counter `json:"comments"`
	Views    struct {
		Total int64 `json:"total"`
	} `json:"views"`
}

// SystemStats is the admin system overview
type SystemStats struct {
	UserCount    int64        `json:"userCount"`
	ArticleCount int64        `json:"articleCount"`
	CommentCount int64        `json:"commentCount"`
	LikeCount    int64        `json:"likeCount"`
	RecentStats  RecentTotals `json:"recentStats"`
}

// ShareData is everything a client needs to render a share sheet
type ShareData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
	ShareURL    string `json:"shareUrl"`
	QRCode      string `json:"qrCode"`
	ShareText   string `json:"shareText"`
}

// SharedArticle is the public read-only view served to share links
type SharedArticle struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	ContentHTML string       `json:"contentHtml"`
	Author      *UserSummary `json:"author"`
	CreatedAt   time.Time    `json:"createdAt"`
	Views       int64        `json:"views"`
	Likes       int64        `json:"likes"`
}
