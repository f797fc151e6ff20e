package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/DataPR0/multiagenteBackendEquirent/cmd/api/router/v1"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/config"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/database"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/logger"
	nadapter "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/notifier/adapter"
	nport "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/notifier/port"
	psadapter "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/pubsub/adapter"
	qadapter "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/queue/adapter"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/realtime"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/task"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/adapter"
	httpHandler "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/presentation/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logg := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the database on startup
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.Connect(connCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logg.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	broker, err := psadapter.NewRedisBroker(ctx, cfg.RedisURL)
	if err != nil {
		logg.WithError(err).Fatal("failed to connect to redis")
	}
	defer broker.Close()

	manager := realtime.NewManager(broker, logg)
	defer manager.Close()

	queueClient, err := qadapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		logg.WithError(err).Fatal("failed to create queue client")
	}
	defer queueClient.Close()

	queueServer, err := qadapter.NewAsynqServer(cfg.RedisURL, 10, logg)
	if err != nil {
		logg.WithError(err).Fatal("failed to create queue server")
	}

	var customer nport.CustomerChannel = nadapter.NewChatbotChannel(cfg.ChatbotURL, logg)
	if cfg.Testing {
		customer = nadapter.NoopChannel{}
	}

	task.RegisterUnattendedConversationTask(
		queueServer,
		adapter.NewPgConversationRepository(pool),
		adapter.NewPgMessageRepository(pool),
		customer,
		logg,
	)

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, httpHandler.Deps{
		Pool:            pool,
		Manager:         manager,
		Queue:           queueClient,
		Customer:        customer,
		MaxAssignments:  cfg.MaxAssignmentsPerAgent,
		UnattendedAfter: cfg.UnattendedTimeout,
		Log:             logg,
	})

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- queueServer.Run(ctx)
	}()

	srv := &http.Server{Addr: cfg.Address, Handler: r}
	go func() {
		logg.WithField("address", cfg.Address).Info("starting api server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.WithError(err).Error("api server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.WithError(err).Error("api server shutdown failed")
	}
	if err := <-workerDone; err != nil {
		logg.WithError(err).Error("queue server stopped with error")
	}
}
