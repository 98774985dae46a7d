package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/fraud_reporting/internal/events"
	"github.com/Skotchmaster/fraud_reporting/internal/httpserver"
	"github.com/Skotchmaster/fraud_reporting/internal/models"
	"github.com/Skotchmaster/fraud_reporting/internal/repo"
	"github.com/Skotchmaster/fraud_reporting/internal/scoring"
	"github.com/Skotchmaster/fraud_reporting/internal/search"
	"github.com/Skotchmaster/fraud_reporting/internal/service"
	"github.com/Skotchmaster/fraud_reporting/pkg/config"
	"github.com/Skotchmaster/fraud_reporting/pkg/db"
	"github.com/Skotchmaster/fraud_reporting/pkg/logging"
	"github.com/Skotchmaster/fraud_reporting/pkg/tokens"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	cfg.MustServe()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	conn, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(initCtx, conn, models.All()...); err != nil {
		cancel()
		log.Fatalf("db migrate error: %v", err)
	}
	cancel()
	defer db.Close(conn)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := events.NewProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
		publisher = prod
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}
	defer publisher.Close()

	store := &repo.GormRepo{DB: conn}
	txSvc := &service.TransactionService{
		Store:  store,
		Scorer: scoring.NewClient(cfg.ScoringURL, cfg.ScoringTimeout),
		Events: publisher,
	}
	adminSvc := &service.AdminService{Store: store}

	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := search.NewClient(esCtx, search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		}, logger)
		esCancel()
		if err != nil {
			log.Fatalf("es init error: %v", err)
		}
		index := &search.TransactionIndex{ES: client, Index: cfg.ESIndex}
		txSvc.Indexer = index
		adminSvc.Searcher = index
	}

	iss := tokens.NewIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)

	e := httpserver.New(logger, cfg.CORSOrigins)
	httpserver.Register(e, &httpserver.Deps{
		DB:           conn,
		AccessSecret: cfg.JWTAccessSecret,
		UserAuth: &httpserver.AuthHTTP{
			Label:        "User",
			CookieSecure: cfg.CookieSecure,
			Svc: &service.SessionService{
				Store:  repo.NewUserIdentities(conn),
				Tokens: iss,
				Policy: service.UserPolicy(cfg.AccessTTL, cfg.UserRefreshTTL),
				Events: publisher,
			},
		},
		AdminAuth: &httpserver.AuthHTTP{
			Label:        "Admin",
			CookieSecure: cfg.CookieSecure,
			Svc: &service.SessionService{
				Store:  repo.NewAdminIdentities(conn),
				Tokens: iss,
				Policy: service.AdminPolicy(cfg.AccessTTL, cfg.AdminRefreshTTL),
				Events: publisher,
			},
		},
		User: &httpserver.UserHTTP{
			Users:        &service.UserService{Store: store},
			Transactions: txSvc,
		},
		Admin: &httpserver.AdminHTTP{Svc: adminSvc},
	})

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	go func() {
		logger.Info("server_start", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown", "error", err)
	}
	logger.Info("server_stopped")
}
