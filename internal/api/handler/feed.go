package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/vidfeed/internal/api/middleware"
	"github.com/timmy/vidfeed/internal/logger"
	"github.com/timmy/vidfeed/internal/service"
)

// FeedProvider produces ranked feed pages.
type FeedProvider interface {
	GetRecommendedVideos(ctx context.Context, viewerID *string, cursor *string, limit int) (*service.FeedResponse, error)
}

// FeedHandler handles feed endpoints.
type FeedHandler struct {
	feed    FeedProvider
	timeout time.Duration
}

// NewFeedHandler creates a new feed handler.
// Parameters:
//   - feed: feed service instance.
//   - timeout: per-request deadline for ranking; zero disables it.
//
// Returns:
//   - *FeedHandler: initialized handler.
func NewFeedHandler(feed FeedProvider, timeout time.Duration) *FeedHandler {
	return &FeedHandler{feed: feed, timeout: timeout}
}

// GetFeed handles GET /api/v1/feed.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *FeedHandler) GetFeed(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	resp, err := h.feed.GetRecommendedVideos(ctx, middleware.ViewerID(c), cursor, limit)
	if err != nil {
		logger.CtxError(ctx, "[FeedHandler] feed request failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feed unavailable, retry"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
