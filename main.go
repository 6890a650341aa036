package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/teamconnect/go-services/handlers"
	"github.com/teamconnect/go-services/internal/activity"
	"github.com/teamconnect/go-services/internal/auth"
	"github.com/teamconnect/go-services/internal/blob"
	"github.com/teamconnect/go-services/internal/config"
	"github.com/teamconnect/go-services/internal/files"
	"github.com/teamconnect/go-services/internal/messages"
	"github.com/teamconnect/go-services/internal/service"
	"github.com/teamconnect/go-services/internal/sessions"
	"github.com/teamconnect/go-services/internal/snippets"
	"github.com/teamconnect/go-services/internal/store"
	"github.com/teamconnect/go-services/internal/users"
	"github.com/teamconnect/go-services/pkg/logger"
	"github.com/teamconnect/go-services/pkg/metrics"
	"github.com/teamconnect/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: data_dir=%s uploads_dir=%s redis=%v", cfg.Storage.DataDir, cfg.Storage.UploadsDir, cfg.Redis.Host != "")

	st, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		logger.Fatalf("failed to open data directory: %v", err)
	}

	userRepo := users.NewRepository(st)
	if err := userRepo.Seed(); err != nil {
		logger.Fatalf("failed to seed user accounts: %v", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Connect to Redis early so sessions and the rate limiter can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Prefer Redis-backed sessions when available; the in-process store
	// otherwise, which forgets every session on restart.
	var sessionRepo sessions.Repository
	if redisClient != nil {
		sessionRepo = sessions.NewRedisRepository(redisClient, "session:", 0)
		logger.Infof("Using Redis for session storage")
	} else {
		sessionRepo = sessions.NewMemoryRepository()
	}
	sessionSvc := sessions.NewService(sessionRepo)
	gate := auth.NewGate(sessionSvc, userRepo)

	// Uploaded blobs go to MinIO when configured, local disk otherwise.
	var blobs blob.Store
	if mc := blob.LoadMinIOConfig(); mc.Endpoint != "" {
		blobs, err = blob.NewMinIOStore(mc)
		if err != nil {
			logger.Fatalf("failed to connect to MinIO: %v", err)
		}
		logger.Infof("Using MinIO for upload storage: %s/%s", mc.Endpoint, mc.Bucket)
	} else {
		blobs, err = blob.NewDiskStore(cfg.Storage.UploadsDir)
		if err != nil {
			logger.Fatalf("failed to open uploads directory: %v", err)
		}
	}

	svc := service.New(
		userRepo,
		files.NewRepository(st),
		snippets.NewRepository(st),
		messages.NewRepository(st),
		activity.NewLog(st),
		sessionSvc,
		gate,
		blobs,
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the critical dependencies respond
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["storage"] = true
		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil && redisClient.Ping(c.Request.Context()).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		}

		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.NewAuthHandler(svc).Register(r.Group("/"))

	api := r.Group("/api/v1")
	api.Use(middleware.SessionMiddleware(gate))
	handlers.NewFilesHandler(svc).Register(api)
	handlers.NewSnippetsHandler(svc).Register(api)
	handlers.NewMessagesHandler(svc).Register(api)
	handlers.NewAdminHandler(svc).Register(api)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
