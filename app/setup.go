package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sahilchouksey/devcamper-api/api"
	"github.com/sahilchouksey/devcamper-api/config"
	"github.com/sahilchouksey/devcamper-api/database"
	"github.com/sahilchouksey/devcamper-api/router"
	"github.com/sahilchouksey/devcamper-api/services"
	"github.com/sahilchouksey/devcamper-api/services/cron"
	"github.com/sahilchouksey/devcamper-api/services/geocoder"
	"github.com/sahilchouksey/devcamper-api/services/storage"
	"github.com/sahilchouksey/devcamper-api/utils"
	"github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/cache"
	"github.com/sahilchouksey/devcamper-api/utils/middleware"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	geocodeCacheTTL = 30 * 24 * time.Hour
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}
	if err := getEnv.Validate(); err != nil {
		return err
	}

	logger, err := utils.NewLogger(getEnv.GO_ENV)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	// Initialize GORM database connection
	store, err := database.StartGORM(getEnv, logger)
	if err != nil {
		logger.Error("check whether Postgres is running", zap.Error(err))
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		return fmt.Errorf("initialize database tables: %w", err)
	}
	db := store.GetDB()

	// Redis is optional: without it rate limiting stays in memory and
	// brute force protection and the geocode cache are off
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			logger.Warn("redis unavailable, continuing without it", zap.Error(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	deps := router.Dependencies{
		Env:    getEnv,
		Store:  store,
		Logger: logger,
		JWTManager: auth.NewJWTManager(auth.JWTConfig{
			Secret: getEnv.JWT_SECRET,
			Expiry: getEnv.JWT_EXPIRE,
			Issuer: getEnv.JWT_ISSUER,
		}),
		Blacklist: auth.NewBlacklistService(db),
		Mailer:    services.NewEmailService(getEnv, logger),
		Metrics:   middleware.NewMetrics(),
	}
	if redisCache != nil {
		deps.BruteForce = middleware.NewBruteForceProtection(redisCache, logger)
		deps.RateLimitStorage = cache.NewStorage(redisCache, "ratelimit:")
	}

	gc := newGeocoder(getEnv, redisCache, logger)

	deps.Photos, err = newPhotoStore(getEnv)
	if err != nil {
		return err
	}
	deps.Bootcamps = services.NewBootcampService(db, gc, deps.Photos, logger)

	// Initialize Cron Manager (only if enabled via environment variable)
	if getEnv.CRON_ENABLED {
		cronManager := cron.NewCronManager(db, deps.Blacklist, logger)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			logger.Warn("failed to start cron jobs", zap.Error(err))
		} else {
			defer cronManager.Stop()
		}
	}

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), getEnv.MAX_FILE_UPLOAD, logger)
	router.SetupRoutes(server.GetEngine(), deps)

	return run(server, logger)
}

// run serves until the listener fails or SIGINT/SIGTERM arrives
func run(server *api.APIServer, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil {
		logger.Warn("listener closed", zap.Error(err))
	}
	return nil
}

// newGeocoder returns nil when no API key is set, bootcamps then carry the
// location sent by the client
func newGeocoder(env *config.EnviornmentVariable, redisCache *cache.RedisCache, logger *zap.Logger) geocoder.Geocoder {
	if env.GEOCODER_API_KEY == "" {
		logger.Warn("GEOCODER_API_KEY not set, geocoding disabled")
		return nil
	}
	if env.GEOCODER_PROVIDER != "mapquest" {
		logger.Warn("unsupported geocoder provider, geocoding disabled", zap.String("provider", env.GEOCODER_PROVIDER))
		return nil
	}

	var gc geocoder.Geocoder = geocoder.NewMapQuest(geocoder.MapQuestConfig{APIKey: env.GEOCODER_API_KEY})
	if redisCache != nil {
		gc = geocoder.NewCached(gc, redisCache, geocodeCacheTTL, logger)
	}
	return gc
}

func newPhotoStore(env *config.EnviornmentVariable) (storage.PhotoStore, error) {
	if env.PHOTO_STORAGE == "spaces" {
		return storage.NewSpacesStore(storage.SpacesConfig{
			AccessKey: env.DO_SPACES_ACCESS_KEY,
			SecretKey: env.DO_SPACES_SECRET_KEY,
			Bucket:    env.DO_SPACES_BUCKET,
			Region:    env.DO_SPACES_REGION,
			Endpoint:  env.DO_SPACES_ENDPOINT,
			CDNURL:    env.DO_SPACES_CDN_ENDPOINT,
			Prefix:    "photos/",
		})
	}

	urlPath := "/uploads"
	if rel, err := filepath.Rel(env.PUBLIC_DIR, env.FILE_UPLOAD_PATH); err == nil {
		urlPath = "/" + filepath.ToSlash(rel)
	}
	return storage.NewLocalStore(env.FILE_UPLOAD_PATH, urlPath)
}
