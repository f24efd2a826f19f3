package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/config"
	grpcserver "github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/grpc"
	handlers "github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/http"
	customMiddleware "github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/middleware"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/repository"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/service"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/logger"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/middleware"
)

func main() {
	logrusLogger := logger.Init("todolist")

	cfg, err := config.Load()
	if err != nil {
		logrusLogger.WithError(err).Fatal("failed to load config")
	}

	// Инициализация репозитория
	repo, err := openRepository(cfg.DB)
	if err != nil {
		logrusLogger.WithError(err).WithField("driver", cfg.DB.Driver).Fatal("failed to open store")
	}
	defer repo.Close()
	logrusLogger.WithField("driver", cfg.DB.Driver).Info("store opened")

	todoService := service.NewToDoListService(repository.NewInstrumented(repo), cfg.StoreTimeout)
	todoHandler := handlers.NewToDoListHandler(todoService, logrusLogger)

	mux := handlers.NewRouter(todoHandler)
	mux.Handle("GET /metrics", customMiddleware.MetricsHandler())

	// Цепочка middleware (порядок важен!): оборачиваем изнутри наружу,
	// request-id снаружи, чтобы он попал в логи и метрики
	handler := http.Handler(mux)
	if cfg.CSRFEnabled {
		handler = customMiddleware.CSRFMiddleware(handler) // 6. CSRF защита
	}
	handler = customMiddleware.CORSMiddleware(cfg.CORSOrigins)(handler) // 5. CORS
	handler = customMiddleware.SecurityHeadersMiddleware(handler)       // 4. заголовки безопасности
	handler = customMiddleware.MetricsMiddleware(handler)               // 3. метрики
	handler = middleware.LoggingMiddleware(handler)                     // 2. логирование
	handler = middleware.RequestIDMiddleware(handler)                   // 1. request-id

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrusLogger.WithField("port", cfg.HTTPPort).Info("todolist HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrusLogger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// gRPC health для оркестратора
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logrusLogger.WithError(err).Fatal("failed to listen")
	}
	grpcServer := grpcserver.NewServer(todoService, cfg.StoreTimeout, logrusLogger)
	grpcServer.Refresh(context.Background())

	go func() {
		logrusLogger.WithField("port", cfg.GRPCPort).Info("todolist gRPC health server starting")
		if err := grpcServer.Serve(lis); err != nil {
			logrusLogger.WithError(err).Fatal("failed to serve gRPC")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logrusLogger.WithField("signal", sig.String()).Info("shutting down todolist server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// HTTP и gRPC делят один SHUTDOWN_TIMEOUT
	if err := httpServer.Shutdown(ctx); err != nil {
		logrusLogger.WithError(err).Error("HTTP shutdown did not complete")
	}
	grpcServer.Shutdown(ctx)
}

// openRepository выбирает хранилище по DB_DRIVER
func openRepository(db config.DatabaseConfig) (repository.ToDoListRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch db.Driver {
	case config.DriverMemory:
		logrus.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryToDoListRepository(), nil
	case config.DriverPostgres:
		return repository.NewPostgresToDoListRepository(ctx, db.DSN())
	case config.DriverSQLite:
		return repository.NewSQLiteToDoListRepository(ctx, db.DSN())
	case config.DriverMongo:
		return repository.NewMongoToDoListRepository(ctx, db.DSN(), db.DBName)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", db.Driver)
	}
}
