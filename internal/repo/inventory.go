package repo

import (
	"vaulted/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryRepository handles inventory item data access. Every query is
// scoped to the owning user.
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetByID gets an item by ID, scoped to its owner
func (r *InventoryRepository) GetByID(userID, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns one page of a user's items, newest first
func (r *InventoryRepository) List(userID uuid.UUID, page, perPage int) (*models.PaginationResult[models.Item], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var total int64
	if err := r.db.Model(&models.Item{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Item
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &models.PaginationResult[models.Item]{
		Data:       items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// ListAll returns every item a user owns, newest first
func (r *InventoryRepository) ListAll(userID uuid.UUID) ([]models.Item, error) {
	var items []models.Item
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Create creates a new item
func (r *InventoryRepository) Create(item *models.Item) error {
	return r.db.Create(item).Error
}

// CreateBatch writes all items in a single transaction
func (r *InventoryRepository) CreateBatch(items []*models.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(items, 100).Error
	})
}

// Update updates an item
func (r *InventoryRepository) Update(item *models.Item) error {
	return r.db.Save(item).Error
}

// Delete removes an item, scoped to its owner
func (r *InventoryRepository) Delete(userID, id uuid.UUID) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
