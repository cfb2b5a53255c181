package app

import (
	"context"
	"errors"

	"vaulted/internal/ai"
	"vaulted/internal/auth"
	"vaulted/internal/barcode"
	"vaulted/internal/cache"
	"vaulted/internal/config"
	"vaulted/internal/repo"
	"vaulted/internal/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Services holds all application services
type Services struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  cache.Cache

	UserRepo      *repo.UserRepository
	InventoryRepo *repo.InventoryRepository

	AuthService     *auth.Service
	StorageService  *services.StorageService
	EmailService    *services.EmailService
	VisionService   *ai.VisionService
	BarcodeService  *barcode.Service
	ExportService   *services.ExportService
	InventoryWriter *services.InventoryWriter
}

// NewServices creates a new services container. Optional integrations that
// lack credentials stay nil; their handlers report a failed precondition
// instead of the whole server refusing to start.
func NewServices(cfg *config.Config, db *gorm.DB) *Services {
	userRepo := repo.NewUserRepository(db)
	inventoryRepo := repo.NewInventoryRepository(db)

	authService := auth.NewService(userRepo, cfg.Auth)

	var storageService *services.StorageService
	if cfg.Storage.Configured() {
		svc, err := services.NewStorageService(cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("Object storage disabled")
		} else {
			storageService = svc
		}
	} else {
		log.Warn().Msg("Object storage not configured, images will not be rehosted")
	}

	emailService, err := services.NewEmailService(cfg.Mail)
	if err != nil {
		if errors.Is(err, services.ErrMailNotConfigured) {
			log.Warn().Msg("Mail relay not configured, inventory export disabled")
		} else {
			log.Warn().Err(err).Msg("Mail relay disabled")
		}
		emailService = nil
	}

	var visionService *ai.VisionService
	if cfg.OpenAI.APIKey != "" {
		visionService = ai.NewVisionService(cfg.OpenAI.APIKey)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, AI analysis disabled")
	}

	lookupCache := newLookupCache(cfg.Cache)

	var rehoster barcode.Rehoster
	if storageService != nil {
		rehoster = &storageRehoster{storage: storageService}
	}
	barcodeService := barcode.NewService(cfg.Barcode, lookupCache, rehoster)

	return &Services{
		Config:          cfg,
		DB:              db,
		Cache:           lookupCache,
		UserRepo:        userRepo,
		InventoryRepo:   inventoryRepo,
		AuthService:     authService,
		StorageService:  storageService,
		EmailService:    emailService,
		VisionService:   visionService,
		BarcodeService:  barcodeService,
		ExportService:   services.NewExportService(emailService),
		InventoryWriter: services.NewInventoryWriter(inventoryRepo),
	}
}

// newLookupCache builds the configured cache backend, falling back to the
// in-process cache when Redis is unreachable.
func newLookupCache(cfg config.CacheConfig) cache.Cache {
	if cfg.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "vaulted")
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
			return cache.NewMemoryCache()
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache connected")
		return redisCache
	}
	return cache.NewMemoryCache()
}

// storageRehoster adapts StorageService to the barcode adapter's interface
type storageRehoster struct {
	storage *services.StorageService
}

func (r *storageRehoster) RehostImage(ctx context.Context, rawURL string, userID uuid.UUID) (string, string, bool) {
	rehosted, ok := r.storage.RehostImage(ctx, rawURL, userID)
	if !ok {
		return "", "", false
	}
	return rehosted.URL, rehosted.Key, true
}
