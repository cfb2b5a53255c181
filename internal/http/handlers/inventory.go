package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"vaulted/internal/repo"
	"vaulted/internal/services"
	"vaulted/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InventoryHandler handles inventory CRUD endpoints
type InventoryHandler struct {
	inventoryRepo *repo.InventoryRepository
	storage       *services.StorageService
}

// NewInventoryHandler creates a new inventory handler. storage may be nil
// when object storage is unconfigured.
func NewInventoryHandler(inventoryRepo *repo.InventoryRepository, storage *services.StorageService) *InventoryHandler {
	return &InventoryHandler{inventoryRepo: inventoryRepo, storage: storage}
}

// ItemRequest carries the writable item fields for create and update
type ItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Brand       string  `json:"brand"`
	Silhouette  string  `json:"silhouette"`
	StyleID     string  `json:"style_id"`
	Size        string  `json:"size"`
	Color       string  `json:"color"`
	Quantity    int     `json:"quantity"`
	Value       float64 `json:"value"`
	RetailValue float64 `json:"retail_value"`
	ReleaseDate string  `json:"release_date"`
	Condition   string  `json:"condition"`
	Notes       string  `json:"notes"`
	ImageURL    string  `json:"image_url"`
	ImageKey    string  `json:"image_key"`
	Barcode     string  `json:"barcode"`
	Source      string  `json:"source" validate:"omitempty,oneof=manual barcode"`
}

// List returns one page of the user's items
func (h *InventoryHandler) List(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user identity"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	result, err := h.inventoryRepo.List(userID, page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list items"})
	}

	return c.JSON(http.StatusOK, result)
}

// GetByID returns a single item owned by the user
func (h *InventoryHandler) GetByID(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user identity"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item ID"})
	}

	item, err := h.inventoryRepo.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get item"})
	}

	return c.JSON(http.StatusOK, item)
}

// Create adds a manually entered item to the user's collection
func (h *InventoryHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user identity"})
	}

	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	item := &models.Item{UserID: userID}
	applyItemRequest(item, &req)
	if item.Source == "" {
		item.Source = models.SourceManual
	}

	if err := h.inventoryRepo.Create(item); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create item"})
	}

	return c.JSON(http.StatusCreated, item)
}

// Update replaces the writable fields of an item owned by the user
func (h *InventoryHandler) Update(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user identity"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item ID"})
	}

	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	item, err := h.inventoryRepo.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get item"})
	}

	applyItemRequest(item, &req)
	if req.Source != "" {
		item.Source = req.Source
	}

	if err := h.inventoryRepo.Update(item); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update item"})
	}

	return c.JSON(http.StatusOK, item)
}

// Delete removes an item and, best effort, its stored image
func (h *InventoryHandler) Delete(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user identity"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item ID"})
	}

	item, err := h.inventoryRepo.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get item"})
	}

	if err := h.inventoryRepo.Delete(userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete item"})
	}

	// The record is gone; a stranded object only costs storage
	if h.storage != nil && item.ImageKey != "" {
		if err := h.storage.DeleteObject(item.ImageKey); err != nil {
			log.Warn().Err(err).Str("key", item.ImageKey).Msg("Failed to delete stored image for removed item")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Item deleted"})
}

// applyItemRequest copies request fields onto the item, filling the defaults
// every entry path shares: a minimum quantity of one and the two value
// columns mirroring each other when only one is supplied.
func applyItemRequest(item *models.Item, req *ItemRequest) {
	item.Name = req.Name
	item.Brand = req.Brand
	item.Silhouette = req.Silhouette
	item.StyleID = req.StyleID
	item.Size = req.Size
	item.Color = req.Color
	item.Quantity = req.Quantity
	item.Value = req.Value
	item.RetailValue = req.RetailValue
	item.ReleaseDate = req.ReleaseDate
	item.Condition = req.Condition
	item.Notes = req.Notes
	item.ImageURL = req.ImageURL
	item.ImageKey = req.ImageKey
	item.Barcode = req.Barcode

	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if item.Value == 0 && item.RetailValue > 0 {
		item.Value = item.RetailValue
	}
	if item.RetailValue == 0 && item.Value > 0 {
		item.RetailValue = item.Value
	}
}
