package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shaobohan917/douyin-toolbox/internal/api/dto"
	"github.com/shaobohan917/douyin-toolbox/internal/api/errors"
	"github.com/shaobohan917/douyin-toolbox/internal/api/middleware"
	"github.com/shaobohan917/douyin-toolbox/internal/app/store"
)

// HistoryHandler serves the parse-history endpoints.
type HistoryHandler struct {
	store  *store.HistoryStore
	logger *slog.Logger
}

func NewHistoryHandler(historyStore *store.HistoryStore, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{store: historyStore, logger: logger}
}

// List returns history newest first. An optional search query narrows the
// result by title, author or video id.
func (h *HistoryHandler) List(c *gin.Context) {
	var (
		items []store.HistoryItem
		err   error
	)

	if query := c.Query("search"); query != "" {
		items, err = h.store.Search(query)
	} else {
		items, err = h.store.List()
	}
	if err != nil {
		h.logger.Error("List history failed", "error", err)
		middleware.HandleError(c, errors.NewInternalError("Failed to get history"))
		return
	}

	c.JSON(http.StatusOK, dto.OK("History retrieved successfully", items))
}

// Add records one parsed video.
func (h *HistoryHandler) Add(c *gin.Context) {
	var req dto.AddHistoryRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	item, err := h.store.Add(store.HistoryItem{
		VideoID:     req.VideoID,
		URL:         req.URL,
		Title:       req.Title,
		Cover:       req.Cover,
		DownloadURL: req.DownloadURL,
		Author:      req.Author,
	})
	if err != nil {
		h.logger.Error("Add history failed", "videoId", req.VideoID, "error", err)
		middleware.HandleError(c, errors.NewInternalError("Failed to add to history"))
		return
	}

	c.JSON(http.StatusOK, dto.OK("Added to history successfully", item))
}

// Delete removes one entry by id. Deleting an absent id is not an error.
func (h *HistoryHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		h.logger.Error("Delete history failed", "id", c.Param("id"), "error", err)
		middleware.HandleError(c, errors.NewInternalError("Failed to delete from history"))
		return
	}

	c.JSON(http.StatusOK, dto.OK("Deleted from history successfully", nil))
}

// Clear empties the whole history.
func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := h.store.Clear(); err != nil {
		h.logger.Error("Clear history failed", "error", err)
		middleware.HandleError(c, errors.NewInternalError("Failed to clear history"))
		return
	}

	c.JSON(http.StatusOK, dto.OK("History cleared successfully", nil))
}

// Stats returns the aggregate counters over the stored history.
func (h *HistoryHandler) Stats(c *gin.Context) {
	stats, err := h.store.Stats()
	if err != nil {
		h.logger.Error("History stats failed", "error", err)
		middleware.HandleError(c, errors.NewInternalError("Failed to get stats"))
		return
	}

	c.JSON(http.StatusOK, dto.OK("Stats retrieved successfully", stats))
}

// Export streams the history as a downloadable json, csv or xlsx file.
func (h *HistoryHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", store.FormatJSON)

	data, contentType, err := h.store.Export(format)
	if err != nil {
		h.logger.Error("Export history failed", "format", format, "error", err)
		middleware.HandleError(c, errors.NewBadRequestError("Unsupported export format: "+format))
		return
	}

	fileName := "history_" + time.Now().Format("20060102") + "." + format
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, contentType, data)
}
