package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTime(t *testing.T) {
	assert.Equal(t, 1, ReadTime(""))
	assert.Equal(t, 1, ReadTime("short text"))
	assert.Equal(t, 1, ReadTime(strings.Repeat("word ", 200)))
	assert.Equal(t, 2, ReadTime(strings.Repeat("word ", 201)))
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "go", "", "Databases", "GO", "databases "})
	assert.Equal(t, []string{"Go", "Databases"}, got)
}

func TestArticleFilterMatches(t *testing.T) {
	a := &Article{
		Title:       "Building a blog in Go",
		Content:     "Handlers, stores and counters",
		Category:    "技术",
		Tags:        []string{"Go", "Web"},
		Author:      "u1",
		IsPublished: true,
		CreatedAt:   time.Now(),
	}

	assert.True(t, ArticleFilter{Keyword: "blog"}.Matches(a))
	assert.True(t, ArticleFilter{Keyword: "COUNTERS"}.Matches(a))
	assert.True(t, ArticleFilter{Keyword: "web"}.Matches(a))
	assert.False(t, ArticleFilter{Keyword: "rust"}.Matches(a))
	assert.True(t, ArticleFilter{Tag: "go", Category: "技术"}.Matches(a))
	assert.False(t, ArticleFilter{Author: "u2"}.Matches(a))
	assert.False(t, ArticleFilter{Since: time.Now().Add(time.Hour)}.Matches(a))

	a.IsPublished = false
	assert.False(t, ArticleFilter{PublishedOnly: true}.Matches(a))
	assert.True(t, ArticleFilter{}.Matches(a))
}

func TestArticleValidate(t *testing.T) {
	a := &Article{Title: "T", Content: "0123456789", Category: "c", Tags: []string{"x"}, Author: "u"}
	err := a.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	a.Title = "Title"
	require.NoError(t, a.Validate())

	a.Tags = nil
	assert.True(t, IsValidation(a.Validate()))
}

func TestNewLikeTarget(t *testing.T) {
	now := time.Now()

	l := NewLike("l1", "u1", TargetComment, "c1", now)
	kind, id := l.Target()
	assert.Equal(t, TargetComment, kind)
	assert.Equal(t, "c1", id)
	assert.Nil(t, l.Article)

	l = NewLike("l2", "u1", TargetArticle, "a1", now)
	kind, id = l.Target()
	assert.Equal(t, TargetArticle, kind)
	assert.Equal(t, "a1", id)
	assert.Nil(t, l.Comment)
}

func TestUpdateProfileRequestApply(t *testing.T) {
	bio := "hello"
	gh := "octo"
	p := Profile{Nickname: "keep"}

	(&UpdateProfileRequest{Bio: &bio, Github: &gh}).Apply(&p)

	assert.Equal(t, "keep", p.Nickname)
	assert.Equal(t, "hello", p.Bio)
	assert.Equal(t, "octo", p.Social.Github)
}

func TestVerificationExpired(t *testing.T) {
	now := time.Now()
	v := &Verification{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, v.Expired(now))
	assert.True(t, v.Expired(now.Add(time.Minute)))
}
