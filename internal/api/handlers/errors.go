package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/amiyamandal-dev/inkwell/internal/validator"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/amiyamandal-dev/inkwell/pkg/response"
)

// errorStatus maps domain errors to HTTP status codes
var errorStatus = []struct {
	err    error
	status int
}{
	{domain.ErrArticleNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrCommentNotFound, http.StatusNotFound},
	{domain.ErrCategoryNotFound, http.StatusNotFound},
	{domain.ErrTagNotFound, http.StatusNotFound},
	{domain.ErrFileNotFound, http.StatusNotFound},
	{domain.ErrNotFound, http.StatusNotFound},

	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrWrongPassword, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusUnauthorized},

	{domain.ErrUserNotActive, http.StatusForbidden},
	{domain.ErrForbidden, http.StatusForbidden},

	{domain.ErrUserAlreadyExists, http.StatusBadRequest},
	{domain.ErrCategoryExists, http.StatusBadRequest},
	{domain.ErrTagExists, http.StatusBadRequest},
	{domain.ErrConflict, http.StatusBadRequest},
	{domain.ErrEmailAlreadyRegistered, http.StatusBadRequest},
	{domain.ErrEmailNotVerified, http.StatusBadRequest},
	{domain.ErrInvalidCode, http.StatusBadRequest},
	{domain.ErrSelfFollow, http.StatusBadRequest},
	{domain.ErrInvalidParent, http.StatusBadRequest},
	{domain.ErrTaxonomyInUse, http.StatusBadRequest},
	{domain.ErrUnsupportedFile, http.StatusBadRequest},
	{domain.ErrFileTooLarge, http.StatusBadRequest},
	{domain.ErrInvalidInput, http.StatusBadRequest},
}

// respondError writes the response for err. Unknown errors are logged and
// answered with a generic 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	if domain.IsValidation(err) {
		response.BadRequest(c, capitalize(err.Error()))
		return
	}

	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			response.Error(c, e.status, capitalize(err.Error()))
			return
		}
	}

	log.Error("Request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	)
	response.InternalServerError(c, "Internal server error")
}

// bindJSON decodes the body into req, answering 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return false
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return strings.TrimSpace(string(r))
}
