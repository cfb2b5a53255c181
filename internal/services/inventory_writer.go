package services

import (
	"vaulted/internal/repo"
	"vaulted/pkg/models"

	"github.com/rs/zerolog/log"
)

// InventoryWriter persists batches of derived items without making the
// caller wait for the commit. The analysis entry point responds to the
// client as soon as metadata is extracted; the records catch up
// asynchronously, and a failed commit is logged rather than surfaced.
type InventoryWriter struct {
	inventoryRepo *repo.InventoryRepository
}

// NewInventoryWriter creates a new inventory writer
func NewInventoryWriter(inventoryRepo *repo.InventoryRepository) *InventoryWriter {
	return &InventoryWriter{inventoryRepo: inventoryRepo}
}

// Enqueue submits items for background persistence and returns immediately.
// An empty batch is a no-op.
func (w *InventoryWriter) Enqueue(items []*models.Item) {
	if len(items) == 0 {
		return
	}

	userID := items[0].UserID

	go func() {
		if err := w.inventoryRepo.CreateBatch(items); err != nil {
			log.Error().Err(err).
				Str("user_id", userID.String()).
				Int("count", len(items)).
				Msg("Background inventory batch write failed")
			return
		}
		log.Info().
			Str("user_id", userID.String()).
			Int("count", len(items)).
			Msg("Background inventory batch committed")
	}()
}
