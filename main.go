package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CUknot/fairmind/ai"
	"github.com/CUknot/fairmind/config"
	"github.com/CUknot/fairmind/controllers"
	"github.com/CUknot/fairmind/database"
	"github.com/CUknot/fairmind/docs"
	"github.com/CUknot/fairmind/middleware"
	"github.com/CUknot/fairmind/quota"
	"github.com/CUknot/fairmind/service"
	"github.com/CUknot/fairmind/store"
	"github.com/CUknot/fairmind/utils"
	"github.com/CUknot/fairmind/websocket"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const redisKeyPrefix = "fairmind:"

// @title           FairMind API
// @version         1.0
// @description     API server for two-party dispute mediation rooms
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	cfg.SetupLogger(logrus.StandardLogger())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	st, err := openStore(cfg)
	if err != nil {
		logrus.Fatal(err)
	}
	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		logrus.Fatal(err)
	}

	var limiter quota.Limiter = quota.NewMemory(cfg.DailyResolutionQuota)
	if rdb != nil {
		limiter = quota.NewRedis(rdb, cfg.DailyResolutionQuota, redisKeyPrefix)
	} else {
		logrus.Warn("REDIS_ADDR not set, quota is kept in process memory")
	}

	model := ai.NewOpenAI(&http.Client{}, cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITranscribeModel)
	guard := service.NewGuard(st.Rooms)
	hub := websocket.NewHub(websocket.NewRegistry(), guard)
	svc := service.New(service.Config{
		Store:       st,
		Guard:       guard,
		Quota:       limiter,
		Generator:   model,
		Transcriber: model,
		Broadcaster: hub,
		AITimeout:   cfg.AITimeout,
	})
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	router := newRouter(rdb, cfg)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	controllers.RegisterRoutes(router,
		controllers.NewAuthController(service.NewAccounts(st.Users, tokens)),
		controllers.NewRoomController(svc),
		middleware.JWTAuth(tokens),
		hub.HandleConnection,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		logrus.Infof("Server running on port %s", cfg.Port)
		logrus.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shut down")
	}
	if rdb != nil {
		rdb.Close()
	}
	logrus.Info("Server exited")
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.Store == config.StoreMemory {
		logrus.Warn("Using in-memory SQLite store, data is lost on restart")
		return store.OpenMemory()
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return store.NewGorm(db), nil
}

func newRouter(rdb *redis.Client, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if rdb != nil && cfg.RateLimitMax > 0 {
		router.Use(middleware.RateLimit(rdb, redisKeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow))
	}
	return router
}
