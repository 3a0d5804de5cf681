package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/internal/search"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// HealthHandler handles health check requests
type HealthHandler struct {
	backend     repository.Backend
	searchIndex search.Index
	logger      *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(backend repository.Backend, searchIndex search.Index, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		backend:     backend,
		searchIndex: searchIndex,
		logger:      logger.WithComponent("health-handler"),
	}
}

// Health returns basic health status
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Readiness checks the store and the search index in parallel
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	var (
		dbErr       error
		searchErr   error
		searchCount uint64
		wg          sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		dbErr = h.backend.HealthCheck(ctx)
	}()
	go func() {
		defer wg.Done()
		searchCount, searchErr = h.searchIndex.Count()
	}()
	wg.Wait()

	if dbErr != nil {
		h.logger.Warn("Database health check failed", "error", dbErr)
	}
	if searchErr != nil {
		h.logger.Warn("Search index health check failed", "error", searchErr)
	}

	checks := gin.H{
		"database": gin.H{"healthy": dbErr == nil},
		"search": gin.H{
			"healthy":        searchErr == nil,
			"document_count": searchCount,
		},
	}

	status, code := "ready", http.StatusOK
	if dbErr != nil || searchErr != nil {
		status, code = "not ready", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
	})
}

// Liveness checks if the service is alive
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
