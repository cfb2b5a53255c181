package handlers

import (
	"net/http"

	"vaulted/internal/ai"
	"vaulted/internal/repo"
	"vaulted/internal/services"
	"vaulted/pkg/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AnalyzeHandler handles AI-driven item ingestion
type AnalyzeHandler struct {
	vision   *ai.VisionService
	storage  *services.StorageService
	writer   *services.InventoryWriter
	userRepo *repo.UserRepository
}

// NewAnalyzeHandler creates a new analyze handler. vision may be nil when no
// AI key is configured; storage may be nil when object storage is off.
func NewAnalyzeHandler(vision *ai.VisionService, storage *services.StorageService, writer *services.InventoryWriter, userRepo *repo.UserRepository) *AnalyzeHandler {
	return &AnalyzeHandler{vision: vision, storage: storage, writer: writer, userRepo: userRepo}
}

// AnalyzeRequest carries a batch of image URIs to analyze
type AnalyzeRequest struct {
	ImageURIs []string `json:"image_uris" validate:"required,min=1,max=10,dive,required"`
	ShoeSize  string   `json:"shoe_size"`
}

// AnalyzeResponse reports the extracted drafts. The records themselves are
// persisted in the background after the response is sent.
type AnalyzeResponse struct {
	Success     bool           `json:"success"`
	Metadata    []*models.Item `json:"metadata"`
	QueuedCount int            `json:"queued_count"`
}

// Analyze extracts item metadata from a batch of images, responds with the
// drafts, and queues them for persistence.
func (h *AnalyzeHandler) Analyze(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user identity"})
	}

	if h.vision == nil {
		return c.JSON(http.StatusPreconditionFailed, map[string]string{"error": "AI analysis is not configured"})
	}

	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	shoeSize := req.ShoeSize
	if shoeSize == "" {
		if user, err := h.userRepo.GetByID(userID); err == nil {
			shoeSize = user.ShoeSize
		}
	}

	// Re-upload every image we can so records never point at URLs that
	// expire; analysis runs against the stable copies.
	imageURLs := make([]string, len(req.ImageURIs))
	imageKeys := make([]string, len(req.ImageURIs))
	for i, uri := range req.ImageURIs {
		imageURLs[i] = uri
		if h.storage == nil {
			continue
		}
		if rehosted, ok := h.storage.RehostImage(c.Request().Context(), uri, userID); ok {
			imageURLs[i] = rehosted.URL
			imageKeys[i] = rehosted.Key
		}
	}

	content, err := h.vision.AnalyzeImages(c.Request().Context(), imageURLs)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int("images", len(imageURLs)).Msg("AI analysis failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to analyze images"})
	}

	metadata, err := ai.ParseMetadataArray(content)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("AI response could not be parsed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	items := make([]*models.Item, 0, len(imageURLs))
	for i, url := range imageURLs {
		entry := map[string]any{}
		if i < len(metadata) {
			entry = metadata[i]
		}
		item := ai.MapMetadata(entry, url, userID, i, shoeSize)
		if item == nil {
			continue
		}
		item.ImageKey = imageKeys[i]
		items = append(items, item)
	}

	h.writer.Enqueue(items)

	return c.JSON(http.StatusOK, AnalyzeResponse{
		Success:     true,
		Metadata:    items,
		QueuedCount: len(items),
	})
}
