package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shaobohan917/douyin-toolbox/internal/api/dto"
	"github.com/shaobohan917/douyin-toolbox/internal/api/errors"
	"github.com/shaobohan917/douyin-toolbox/internal/api/middleware"
	"github.com/shaobohan917/douyin-toolbox/internal/app/store"
)

// ConfigHandler serves the application-settings endpoints. Secret values
// never leave the server unmasked.
type ConfigHandler struct {
	store  *store.ConfigStore
	logger *slog.Logger
}

func NewConfigHandler(configStore *store.ConfigStore, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{store: configStore, logger: logger}
}

// Get returns the stored settings with the API key masked.
func (h *ConfigHandler) Get(c *gin.Context) {
	config, err := h.store.Get()
	if err != nil {
		h.logger.Error("Get config failed", "error", err)
		middleware.HandleError(c, errors.NewInternalError("Failed to get config"))
		return
	}

	c.JSON(http.StatusOK, dto.OK("Config retrieved successfully", config))
}

// Update merges the posted settings into the stored ones. Posting the mask
// placeholder keeps the existing secret.
func (h *ConfigHandler) Update(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("Invalid config payload"))
		return
	}

	config, err := h.store.Update(updates)
	if err != nil {
		h.logger.Error("Update config failed", "error", err)
		middleware.HandleError(c, errors.NewInternalError("Failed to update config"))
		return
	}

	c.JSON(http.StatusOK, dto.OK("Config updated successfully", config))
}
