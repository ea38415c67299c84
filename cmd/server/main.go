package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/YasiruRavidith/Chat-Room/internal/broker"
	"github.com/YasiruRavidith/Chat-Room/internal/cache"
	"github.com/YasiruRavidith/Chat-Room/internal/config"
	"github.com/YasiruRavidith/Chat-Room/internal/delegate"
	"github.com/YasiruRavidith/Chat-Room/internal/genai"
	"github.com/YasiruRavidith/Chat-Room/internal/handlers"
	"github.com/YasiruRavidith/Chat-Room/internal/handlers/ws"
	"github.com/YasiruRavidith/Chat-Room/internal/httpx"
	"github.com/YasiruRavidith/Chat-Room/internal/logger"
	"github.com/YasiruRavidith/Chat-Room/internal/middleware"
	"github.com/YasiruRavidith/Chat-Room/internal/presence"
	"github.com/YasiruRavidith/Chat-Room/internal/repository"
	"github.com/YasiruRavidith/Chat-Room/internal/service"
	"github.com/YasiruRavidith/Chat-Room/internal/storage"
	"github.com/YasiruRavidith/Chat-Room/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	if _, err := logger.Init(cfg.Debug); err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer zap.L().Sync()

	db, err := repository.InitDB(cfg.Database)
	if err != nil {
		zap.L().Fatal("database connection failed", zap.Error(err))
	}

	redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(); err != nil {
		zap.L().Warn("redis unavailable, running without cache", zap.Error(err))
		redisCache = nil
	}

	var bus broker.Broker
	switch cfg.Broker.Backend {
	case "redis":
		if redisCache == nil {
			zap.L().Fatal("broker backend 'redis' requires a reachable redis")
		}
		bus = broker.NewRedisBroker(redisCache.Client())
	default:
		bus = broker.NewMemoryBroker()
	}

	messageCache := cache.NewMessageCache(redisCache)
	presenceCache := cache.NewPresenceCache(redisCache)

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	statusRepo := repository.NewMessageStatusRepository(db)

	tracker := presence.NewTracker(userRepo, presenceCache)

	userService := service.NewUserService(userRepo, groupRepo, bus)
	tracker.SetNotifier(userService.NotifyPresence)
	groupService := service.NewGroupService(groupRepo)
	messageService := service.NewMessageService(messageRepo, groupRepo, userRepo, statusRepo, bus, messageCache, tracker)

	// Object storage is best-effort: without it, image attachments simply
	// contribute no inline context to delegate replies.
	var attachments delegate.AttachmentFetcher
	if cfg.Storage.Configured() {
		if store, err := storage.NewS3Storage(cfg.Storage); err != nil {
			zap.L().Warn("object storage unavailable", zap.Error(err))
		} else {
			attachments = store
		}
	}

	pool := worker.NewPool(cfg.Delegate.Workers, cfg.Delegate.QueueSize)
	generator := genai.NewClient(cfg.GenAI)
	responder := delegate.NewResponder(messageRepo, groupRepo, userRepo, tracker, generator, attachments, messageService, *cfg)
	scheduler := delegate.NewScheduler(pool, responder, cfg.Delegate.Delay)
	messageService.SetDelegateScheduler(scheduler)

	hub := ws.NewHub(bus, tracker, groupRepo, cfg.WS.PingInterval, cfg.WS.PongTimeout)

	wsHandler := handlers.NewWebSocketHandler(messageService, userService, hub, cfg.WS.SendBuffer)
	messageHandler := handlers.NewMessageHandler(messageService)
	userHandler := handlers.NewUserHandler(userService, tracker)
	groupHandler := handlers.NewGroupHandler(groupService, tracker)

	app := fiber.New(fiber.Config{
		AppName:   "Chat Room Backend",
		BodyLimit: 8 * 1024 * 1024,
	})

	app.Use(requestid.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	api := app.Group("/api", middleware.AuthRequired(cfg.JWTSecret, userService))
	api.Get("/users/me", userHandler.GetMe)
	api.Get("/users/me/delegate", userHandler.GetDelegateSettings)
	api.Put("/users/me/delegate", userHandler.UpdateDelegateSettings)
	api.Post("/users/me/status", userHandler.UpdateStatus)
	api.Get("/users/:id/status", userHandler.GetStatus)
	api.Get("/groups/:id", groupHandler.GetGroup)
	api.Get("/groups/:id/members", groupHandler.GetMembers)
	api.Get("/groups/:id/messages", messageHandler.GetGroupMessages)
	api.Post(
		"/groups/:id/messages",
		limiter.New(limiter.Config{
			Max:        60,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				if uid, err := httpx.LocalUint(c, "userID"); err == nil {
					return "send:" + strconv.FormatUint(uint64(uid), 10)
				}
				return c.IP()
			},
		}),
		messageHandler.SendGroupMessage,
	)
	api.Post("/groups/:id/read", messageHandler.MarkGroupRead)
	api.Post("/messages/:id/status", messageHandler.UpdateMessageStatus)
	api.Delete("/messages/:id", messageHandler.DeleteMessage)

	app.Use(
		"/ws",
		middleware.AuthRequired(cfg.JWTSecret, userService),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"connections": hub.ConnectionCount(),
		})
	})

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zap.L().Fatal("server stopped", zap.Error(err))
		}
	}()
	zap.L().Info("server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("shutting down")
	hub.Close()
	if err := app.Shutdown(); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}
	pool.Close()
	if err := bus.Close(); err != nil {
		zap.L().Error("broker close failed", zap.Error(err))
	}
	if redisCache != nil {
		redisCache.Close()
	}
}
