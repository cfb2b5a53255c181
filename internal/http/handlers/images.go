package handlers

import (
	"io"
	"net/http"

	"vaulted/internal/services"

	"github.com/labstack/echo/v4"
)

// ImageHandler handles direct image uploads
type ImageHandler struct {
	storage *services.StorageService
}

// NewImageHandler creates a new image handler. storage may be nil when
// object storage is unconfigured.
func NewImageHandler(storage *services.StorageService) *ImageHandler {
	return &ImageHandler{storage: storage}
}

// Upload stores a multipart image under the user's path and returns its URL
func (h *ImageHandler) Upload(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user identity"})
	}

	if h.storage == nil {
		return c.JSON(http.StatusPreconditionFailed, map[string]string{"error": "Image storage is not configured"})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing image file"})
	}
	if fileHeader.Size > services.MaxRehostedImageBytes {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Image exceeds the 8 MiB limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to open uploaded file"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxRehostedImageBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read uploaded file"})
	}

	url, key, err := h.storage.UploadImage(userID, fileHeader.Filename, data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url": url,
		"key": key,
	})
}
