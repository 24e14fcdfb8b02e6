package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"youapp-backend/internal/config"
	"youapp-backend/internal/db"
	"youapp-backend/internal/handlers"
	"youapp-backend/internal/middleware"
	"youapp-backend/internal/observability"
	"youapp-backend/internal/pkg/jwtauth"
	"youapp-backend/internal/rabbitmq"
	"youapp-backend/internal/repositories"
	"youapp-backend/internal/rpc"
	"youapp-backend/internal/telemetry"
)

const serviceName = "users"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, serviceName)
	if err != nil {
		log.Fatalf("init tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	conn, err := rabbitmq.Dial(cfg.AMQPURL)
	if err != nil {
		log.Fatalf("failed to connect to broker: %v", err)
	}
	defer conn.Close()

	userRepo := repositories.NewUserRepo(database)

	// The users queue answers user-login and user-detail for the other
	// services.
	rpcServer, err := rpc.NewServer(conn, cfg.UsersQueue)
	if err != nil {
		log.Fatalf("failed to start rpc server: %v", err)
	}
	defer rpcServer.Close()
	handlers.NewUsersRPC(userRepo).Register(rpcServer)
	if err := rpcServer.Start(ctx); err != nil {
		log.Fatalf("failed to consume rpc queue: %v", err)
	}

	publisher := rabbitmq.NewPublisher(conn, cfg.EventsExchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, "audit.users", serviceName, cfg.Environment)

	jwtSvc := jwtauth.New(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTRefreshTTL)
	usersHandler := handlers.NewUsersHandler(userRepo, cfg.StorageDir, audit)
	authMiddleware := middleware.AuthMiddleware(jwtSvc, middleware.RepoUserResolver{Repo: userRepo})

	router := gin.Default()
	router.Use(middleware.CORS())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware(serviceName))

	api := router.Group("/api")
	api.GET("", usersHandler.Welcome)
	api.POST("/register", usersHandler.Register)
	api.GET("/getProfile/:id", authMiddleware, usersHandler.GetProfile)
	api.GET("/createProfile", authMiddleware, usersHandler.CreateProfile)
	api.PATCH("/updateProfile/:id", authMiddleware, usersHandler.UpdateProfile)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
