package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumina/lts/internal/cache"
	"github.com/lumina/lts/internal/chain"
	"github.com/lumina/lts/internal/ics"
	"github.com/lumina/lts/internal/logger"
)

// EventReader is the chain surface the event endpoints need.
type EventReader interface {
	GetEvent(ctx context.Context, eventID int64) (*chain.EventRecord, error)
	GetAllEvents(ctx context.Context) ([]*chain.EventRecord, error)
}

// EventHandler serves chain event views through the read cache. The cache
// only ever shortens the read path; a miss or a cache error falls through
// to the chain.
type EventHandler struct {
	events EventReader
	cache  *cache.Cache
}

func NewEventHandler(events EventReader, c *cache.Cache) *EventHandler {
	return &EventHandler{events: events, cache: c}
}

// GetEvents handles GET /api/v1/events.
func (h *EventHandler) GetEvents(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		var cached []*chain.EventRecord
		if err := h.cache.Get(ctx, cache.EventsKey(), &cached); err == nil {
			Success(c, cached)
			return
		}
	}

	events, err := h.events.GetAllEvents(ctx)
	if err != nil {
		logger.Error("Failed to read event window: %v", err)
		FailFromError(c, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, cache.EventsKey(), events); err != nil {
			logger.Warn("Could not cache event window: %v", err)
		}
	}
	Success(c, events)
}

// GetEvent handles GET /api/v1/events/:eventId.
func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid event id")
		return
	}
	ctx := c.Request.Context()

	if h.cache != nil {
		var cached chain.EventRecord
		if err := h.cache.Get(ctx, cache.EventKey(eventID), &cached); err == nil {
			Success(c, &cached)
			return
		}
	}

	event, err := h.events.GetEvent(ctx, eventID)
	if err != nil {
		FailFromError(c, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, cache.EventKey(eventID), event); err != nil {
			logger.Warn("Could not cache event %d: %v", eventID, err)
		}
	}
	Success(c, event)
}

// ExportICS handles GET /api/v1/events/:eventId/calendar and returns the
// event as an iCalendar attachment.
func (h *EventHandler) ExportICS(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		FailFromError(c, err)
		return
	}

	body := ics.Build(event, time.Now())
	c.Header("Content-Disposition", `attachment; filename="event.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
