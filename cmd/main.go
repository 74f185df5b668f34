package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"community-service/api"
	"community-service/cache"
	"community-service/config"
	"community-service/db"
	"community-service/handler"
	"community-service/httpapi"
	"community-service/interceptor"
	natsClient "community-service/nats"
	"community-service/pkg/jwt"
	"community-service/publisher"
	"community-service/repository"
	"community-service/service"
	"community-service/storage"
	"community-service/subscriber"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		log.Println("failed to load Community .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load Community config: %v", err)
	}

	// Create database connection
	dbConn, err := database.NewConnection(database.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		DBName:       cfg.Database.DBName,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxLifetime:  cfg.Database.MaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Community database: %v", err)
	}
	defer dbConn.Close()
	log.Println("Community Database connected successfully")

	if err := dbConn.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate Community database: %v", err)
	}

	// Initialize NATS client
	nats, err := natsClient.NewClient(natsClient.Config{
		URL:           cfg.Nats.URL,
		MaxReconnects: cfg.Nats.MaxReconnects,
		ReconnectWait: cfg.Nats.ReconnectWait,
		ClientID:      cfg.Nats.ClientID,
	})
	if err != nil {
		log.Fatalf("Failed to initialize NATS client: %v", err)
	}
	defer nats.Close()
	log.Println("NATS client initialized successfully")

	// Events published by this instance carry its origin so the refresh
	// subscriber can skip them.
	origin := uuid.NewString()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: 10,
	})
	defer redisClient.Close()

	var snapshots service.SnapshotStore
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Feed Redis unavailable, running without snapshot cache: %v", err)
	} else {
		snapshots = cache.NewSnapshotCache(redisClient, cfg.Redis.SnapshotTTL)
		log.Println("Feed Redis connected successfully")
	}

	images, err := storage.NewImageStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	// Initialize repositories
	postRepo := repository.NewPostRepository(dbConn.DB)
	profileRepo := repository.NewProfileRepository(dbConn.DB)
	likeRepo := repository.NewLikeRepository(dbConn.DB)
	commentRepo := repository.NewCommentRepository(dbConn.DB)

	feed := service.NewAggregator(postRepo, profileRepo, likeRepo, commentRepo, snapshots)
	gateway := service.NewGateway(
		postRepo,
		likeRepo,
		commentRepo,
		profileRepo,
		images,
		publisher.NewEventPublisher(nats, origin),
		feed,
	)

	if err := feed.Warm(ctx); err != nil {
		log.Printf("Starting with an empty feed: %v", err)
	}
	if err := feed.Reload(ctx); err != nil {
		log.Printf("Initial feed load failed: %v", err)
	}
	if err := feed.ReloadMembers(ctx); err != nil {
		log.Printf("Initial members load failed: %v", err)
	}
	go feed.Run(ctx)

	sub := subscriber.NewRefreshSubscriber(nats, feed, origin)
	if err := sub.Start(); err != nil {
		log.Fatalf("Failed to start NATS subscriber: %v", err)
	}

	tokens := jwt.NewManager(cfg.Server.JWTSecret)

	grpcServer := newGRPCServer(handler.NewCommunityHandler(feed, gateway), tokens)
	go func() {
		if err := startGRPCServer(grpcServer, cfg.Server.GRPCPort); err != nil {
			log.Fatalf("Failed to start gRPC server: %v", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:           httpapi.NewRouter(feed, gateway, tokens, dbConn, nats),
		ReadHeaderTimeout: 10 * time.Second,
		// Notice streams outlive Shutdown unless their context ends with ours.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		log.Printf("HTTP server starting on port %s", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	log.Printf("Community Service started")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Community Service...")
	sub.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	grpcServer.GracefulStop()

	log.Println("Community Service stopped cleanly")
}

func newGRPCServer(h *handler.CommunityHandler, tokens *jwt.Manager) *grpc.Server {
	auth := interceptor.NewAuthInterceptor(tokens, api.PublicMethods)

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Logging, auth.Unary()),
		grpc.MaxRecvMsgSize(10*1024*1024), // 10MB
		grpc.MaxSendMsgSize(10*1024*1024), // 10MB
	)
	api.RegisterCommunityServiceServer(server, h)
	return server
}

func startGRPCServer(server *grpc.Server, port string) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	log.Printf("gRPC server starting on port %s", port)
	return server.Serve(lis)
}
