package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PaginationParams holds parsed pagination parameters
type PaginationParams struct {
	Page  int
	Limit int
}

// QueryParamParser provides helpers for parsing and validating query parameters
type QueryParamParser struct {
	c   *gin.Context
	err error
}

// NewQueryParamParser creates a new query parameter parser
func NewQueryParamParser(c *gin.Context) *QueryParamParser {
	return &QueryParamParser{c: c}
}

// Error returns any parsing error that occurred
func (p *QueryParamParser) Error() error {
	return p.err
}

// Pagination parses and validates pagination parameters
func (p *QueryParamParser) Pagination(defaultLimit int) PaginationParams {
	page := p.Int("page", 1)
	limit := p.Int("limit", defaultLimit)
	if p.err != nil {
		return PaginationParams{Page: 1, Limit: defaultLimit}
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return PaginationParams{Page: page, Limit: limit}
}

// Int parses an integer parameter
func (p *QueryParamParser) Int(key string, defaultValue int) int {
	if p.err != nil {
		return defaultValue
	}

	raw := p.c.Query(key)
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		p.err = fmt.Errorf("invalid '%s' parameter: must be a number", key)
		return defaultValue
	}
	return parsed
}

// Bool parses a boolean parameter; anything but a valid bool is an error
func (p *QueryParamParser) Bool(key string) bool {
	if p.err != nil {
		return false
	}

	raw := p.c.Query(key)
	if raw == "" {
		return false
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		p.err = fmt.Errorf("invalid '%s' parameter: must be true or false", key)
		return false
	}
	return parsed
}

// String gets a string parameter with optional default
func (p *QueryParamParser) String(key, defaultValue string) string {
	if p.err != nil {
		return defaultValue
	}

	value := strings.TrimSpace(p.c.Query(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// paginate parses page and limit, answering 400 on malformed values
func paginate(c *gin.Context) (PaginationParams, bool) {
	parser := NewQueryParamParser(c)
	pagination := parser.Pagination(defaultPageSize)
	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return pagination, false
	}
	return pagination, true
}
