package container

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"atlas-backend/internal/config"
	infraCache "atlas-backend/internal/infrastructure/cache"
	"atlas-backend/internal/infrastructure/database"
	"atlas-backend/internal/infrastructure/queue"
	"atlas-backend/internal/infrastructure/storage"
	"atlas-backend/pkg/cache"
	"atlas-backend/pkg/jwt"
	"atlas-backend/pkg/logger"

	"atlas-backend/internal/domains/post"
	postHandler "atlas-backend/internal/domains/post/handler"
	postRepo "atlas-backend/internal/domains/post/repository"
	postService "atlas-backend/internal/domains/post/service"
	"atlas-backend/internal/domains/upload"
	uploadHandler "atlas-backend/internal/domains/upload/handler"
	uploadService "atlas-backend/internal/domains/upload/service"
	"atlas-backend/internal/domains/user"
	userHandler "atlas-backend/internal/domains/user/handler"
	userRepo "atlas-backend/internal/domains/user/repository"
	userService "atlas-backend/internal/domains/user/service"
)

// Container is the root of the dependency graph. Initialization order:
// config, infrastructure, repositories, services, handlers.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Queue      *asynq.Client

	UserRepo user.Repository
	PostRepo post.Repository

	UserService   user.Service
	PostService   post.Service
	UploadService upload.Service

	AuthHandler   *userHandler.AuthHandler
	GoogleHandler *userHandler.GoogleHandler
	PostHandler   *postHandler.PostHandler
	UploadHandler *uploadHandler.UploadHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	logger.Info("config loaded", map[string]interface{}{"environment": cfg.App.Environment})

	// The signing key is the only hard startup requirement; everything else
	// degrades.
	c.JWTManager, err = jwt.NewManager(cfg.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	// The pool connects lazily on first use so an unreachable database keeps
	// the server up in degraded auth mode.
	c.DB = database.NewPostgresDB(cfg.Database)
	if !cfg.Database.Configured() {
		logger.Info("no database configured, auth runs in degraded mode", nil)
	}

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(context.Background()); err != nil {
		// Cache failure is non-critical.
		logger.Error("redis connection failed", err)
	}
	c.Cache = redisCache

	c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	return c, nil
}

func (c *Container) initRepositories() {
	c.UserRepo = userRepo.NewPostgresRepository(c.DB)
	c.PostRepo = postRepo.NewPostgresRepository(c.DB)
}

func (c *Container) initServices() {
	c.UserService = userService.NewAuthService(c.UserRepo, c.JWTManager, c.Queue)

	// The asset host is optional: without it the upload relay answers 503.
	var store uploadService.ObjectStore
	if c.Config.MinIO.Configured() {
		minioStore, err := storage.NewMinIOStorage(c.Config.MinIO)
		if err != nil {
			logger.Error("minio initialization failed, uploads disabled", err)
		} else {
			store = minioStore
		}
	}
	c.UploadService = uploadService.NewUploadService(store, storage.NewImageProcessor())

	// The upload relay doubles as the cover cleaner so deleting a post also
	// removes its hosted cover image.
	c.PostService = postService.NewPostService(c.PostRepo, c.Cache, c.UploadService)
}

func (c *Container) initHandlers() {
	c.AuthHandler = userHandler.NewAuthHandler(c.UserService, c.Config.App.Environment)
	c.GoogleHandler = userHandler.NewGoogleHandler(c.UserService, c.Config.Google, c.Config.App)
	c.PostHandler = postHandler.NewPostHandler(c.PostService)
	c.UploadHandler = uploadHandler.NewUploadHandler(c.UploadService)
}

// Cleanup releases held connections during graceful shutdown.
func (c *Container) Cleanup() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			logger.Error("close queue client", err)
		}
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			logger.Error("close redis", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
