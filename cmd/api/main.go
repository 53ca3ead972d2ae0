package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/p2h/backend/internal/chat"
	"github.com/example/p2h/backend/internal/checklist"
	"github.com/example/p2h/backend/internal/config"
	"github.com/example/p2h/backend/internal/db"
	"github.com/example/p2h/backend/internal/draft"
	httpserver "github.com/example/p2h/backend/internal/http"
	"github.com/example/p2h/backend/internal/identity"
	"github.com/example/p2h/backend/internal/models"
	"github.com/example/p2h/backend/internal/mq"
	"github.com/example/p2h/backend/internal/notify"
	"github.com/example/p2h/backend/internal/repository"
	"github.com/example/p2h/backend/internal/service"
	"github.com/example/p2h/backend/internal/worker"
)

func main() {
	cfg := config.Load()

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("connect database")
	}
	autoMigrate(database)

	drafts, err := draft.Open(cfg.DraftDir)
	if err != nil {
		logrus.WithError(err).Fatal("open draft store")
	}
	defer drafts.Close()

	var publisher mq.Publisher
	rabbit, err := mq.NewRabbitPublisher(cfg.MQURL, cfg.MQExchange)
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq unavailable, continuing without events")
	} else {
		publisher = rabbit
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go runAuditWorker(ctx, cfg)

	gateway := notify.NewGateway(cfg.WhatsAppURL, cfg.WhatsAppAPIKey)
	assistant := chat.NewClient(cfg.ChatAPIURL, cfg.ChatAPIKey, cfg.ChatModel)
	tokens := identity.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)

	inspectionRepo := repository.NewInspectionRepository(database)
	userRepo := repository.NewUserRepository(database)
	inspectionService := service.NewInspectionService(inspectionRepo, userRepo, gateway, publisher, cfg.FrontendURL, cfg.SupervisorPhone)
	apiServer := httpserver.NewServer(tokens, userRepo, inspectionRepo, inspectionService, drafts, assistant, checklist.Excavator())

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: apiServer.Engine,
	}

	go func() {
		logrus.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutdown initiated")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server shutdown")
	}

	if rabbit != nil {
		_ = rabbit.Close()
	}
	logrus.Info("bye")
}

func autoMigrate(db *gorm.DB) {
	if err := db.AutoMigrate(&models.User{}, &models.Inspection{}); err != nil {
		logrus.WithError(err).Fatal("auto migrate")
	}
}

func runAuditWorker(ctx context.Context, cfg config.Config) {
	consumer, err := mq.NewRabbitConsumer(cfg.MQURL, cfg.MQExchange, cfg.MQAuditQueue)
	if err != nil {
		logrus.WithError(err).Warn("audit worker disabled, rabbitmq unavailable")
		return
	}
	worker.NewAuditWorker(consumer).Run(ctx)
}

func init() {
	if mode := os.Getenv("GIN_MODE"); mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}
