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

	"hackdash/config"
	"hackdash/dao/model"
	"hackdash/dao/query"
	"hackdash/logutils"
	"hackdash/mail"
	"hackdash/manager"
	"hackdash/service"
	"hackdash/settings"
	"hackdash/storage"
	"hackdash/util"
)

func main() {
	cfg := config.GetConfig()
	if err := logutils.SetLevel(cfg.Log.Level); err != nil {
		logutils.Log.Warn("invalid log level: ", err)
	}

	db, err := query.InitDB(cfg)
	if err != nil {
		fmt.Println("err init:", err)
		os.Exit(1)
	}
	if err := query.Migrate(db); err != nil {
		logutils.Log.Fatal("migrate: ", err)
	}

	ctx := context.Background()
	images, err := storage.New(ctx, cfg)
	if err != nil {
		logutils.Log.Fatal("init image storage: ", err)
	}
	mailer, err := mail.New(cfg)
	if err != nil {
		logutils.Log.Fatal("init mailer: ", err)
	}

	st := settings.New(db)
	tokens := util.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.SignInTTL, cfg.Auth.SessionTTL)
	year := model.Year(cfg.Hackathon.Year)

	srv := service.New(service.Managers{
		Identity: manager.NewIdentity(db, st, tokens, mailer, cfg.Server.BaseURL),
		Accounts: manager.NewAccounts(db),
		Admin:    manager.NewAdmin(db, st),
		Teams:    manager.NewTeams(db, st, images, year, cfg.Server.BaseURL, cfg.Uploads.MaxSize),
		Posts:    manager.NewPosts(db),
		Votes:    manager.NewVotes(db, year),
	}, service.Options{
		CookieName:   cfg.Server.CookieName,
		SecureCookie: cfg.Server.SecureCookie,
		WelcomePath:  cfg.Auth.WelcomePath,
		MaxUpload:    cfg.Uploads.MaxSize,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logutils.Log.Info("starting server on ", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logutils.Log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logutils.Log.Error("shutdown: ", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logutils.Log.Info("server stopped")
}
