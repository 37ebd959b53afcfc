package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sergis-author/internal/auth"
	"sergis-author/internal/config"
	"sergis-author/internal/database"
	deliveryhttp "sergis-author/internal/delivery/http"
	"sergis-author/internal/delivery/http/middleware"
	"sergis-author/internal/delivery/websocket"
	"sergis-author/internal/lock"
	"sergis-author/internal/logger"
	"sergis-author/internal/messaging"
	"sergis-author/internal/repository"
	"sergis-author/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Server exited")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Postgres ---
	if cfg.DBMigrationsUp {
		if err := database.ApplyMigrations(cfg.DatabaseURL(), log); err != nil {
			return err
		}
	}
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	pool, err := database.NewPool(connectCtx, database.PoolConfig{
		URL:         cfg.DatabaseURL(),
		MaxConns:    cfg.DBMaxConns,
		IdleTimeout: cfg.DBIdleTimeout,
	}, log)
	cancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = redisClient.Close() }()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = redisClient.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))

	// --- RabbitMQ: без брокера сервер работает, события публикации теряются ---
	var publisher messaging.GameEventPublisher = messaging.NopPublisher{}
	mqConn, err := messaging.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQRetries, cfg.RabbitMQRetryDelay, log)
	if err != nil {
		log.Error("RabbitMQ unavailable, game events are disabled", zap.Error(err))
	} else {
		defer func() { _ = mqConn.Close() }()
		rabbitPublisher, err := messaging.NewRabbitMQGamePublisher(mqConn, log)
		if err != nil {
			return err
		}
		defer func() { _ = rabbitPublisher.Close() }()
		publisher = rabbitPublisher
	}

	// --- Dependency Injection ---
	tokens, err := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL, log)
	if err != nil {
		return err
	}
	authors := repository.NewPgAuthorRepository(pool, log)
	games := repository.NewPgGameRepository(pool, log)
	previews := repository.NewRedisPreviewStore(redisClient, log)
	promptLocks := lock.NewPromptLocks(lock.NewRedisLocker(redisClient), cfg.PromptLockTTL, log)

	sessionService := service.NewSessionService(authors, auth.NewPasswordHasher(cfg.BcryptCost), tokens, log)
	gameService := service.NewGameService(games, previews, publisher, promptLocks,
		service.GameServiceConfig{PreviewTTL: cfg.PreviewTTL}, log)

	connections := websocket.NewConnectionManager(log)
	rpcHandler := websocket.NewHandler(gameService, tokens, connections, cfg.PublicURL, log)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.GinZapLogger(log.Named("HTTP")))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	deliveryhttp.NewHandler(sessionService, gameService, tokens, rpcHandler.ServeWS, log).RegisterRoutes(router)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		// Shutdown не ждет hijacked websocket-соединения, их закрываем сами.
		connections.CloseAll()
		if err := connections.WaitIdle(shutdownCtx); err != nil {
			log.Warn("Connections did not finish before shutdown timeout", zap.Int("open", connections.Count()))
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
