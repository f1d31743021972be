package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bookhaven/library-app/config"
	"github.com/bookhaven/library-app/internal/adapter/captcha"
	"github.com/bookhaven/library-app/internal/adapter/openlibrary"
	"github.com/bookhaven/library-app/internal/handler"
	"github.com/bookhaven/library-app/internal/repository"
	"github.com/bookhaven/library-app/internal/server"
	"github.com/bookhaven/library-app/internal/service"
	"github.com/bookhaven/library-app/migrations"
	"github.com/bookhaven/library-app/pkg/auth"
	"github.com/bookhaven/library-app/pkg/logger"
	"github.com/bookhaven/library-app/pkg/postgres"
)

func Run(cfg config.Config) error {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repository %v", err)
	}

	catalogSvc := service.NewCatalog(repo, log)
	userSvc := service.NewUsers(repo, log)
	reservationSvc := service.NewReservations(repo, log)

	captchaVerifier := captcha.New(cfg.Captcha, log)
	if !captchaVerifier.Enabled() {
		log.Warn("captcha server key is not set, registration is ungated")
	}
	openLibraryClient := openlibrary.New(cfg.OpenLibrary, log)
	if !openLibraryClient.Available() {
		log.Warn("book metadata gateway is not configured")
	}

	sessions := auth.NewManager(cfg.Session)
	h := handler.New(catalogSvc, userSvc, reservationSvc, captchaVerifier, openLibraryClient, sessions, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
