package handlers

import (
	"errors"
	"net/http"

	"vaulted/internal/repo"
	"vaulted/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ExportHandler handles inventory export endpoints
type ExportHandler struct {
	exportService *services.ExportService
	inventoryRepo *repo.InventoryRepository
	userRepo      *repo.UserRepository
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *services.ExportService, inventoryRepo *repo.InventoryRepository, userRepo *repo.UserRepository) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		inventoryRepo: inventoryRepo,
		userRepo:      userRepo,
	}
}

// Export builds the user's inventory spreadsheet and emails it to them
func (h *ExportHandler) Export(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user identity"})
	}

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not found"})
	}

	items, err := h.inventoryRepo.ListAll(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load inventory"})
	}

	if err := h.exportService.Export(c.Request().Context(), user, items); err != nil {
		switch {
		case errors.Is(err, services.ErrEmailNotVerified), errors.Is(err, services.ErrMailNotConfigured):
			return c.JSON(http.StatusPreconditionFailed, map[string]string{"error": err.Error()})
		case errors.Is(err, services.ErrNoItems):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Inventory export failed")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to export inventory"})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Inventory export sent to " + user.Email,
		"count":   len(items),
	})
}
