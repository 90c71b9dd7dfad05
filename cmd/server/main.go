package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tably/config"
	"tably/internal/database"
	"tably/internal/router"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logrus.Fatalf("migrate: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("redis: %v", err)
	}

	engine, deps := router.Setup(cfg, db, rdb)

	// Payout loop: periodic batch over queued unstake requests. Strictly one
	// run at a time; the ticker fires into a sequential loop.
	stopPayouts := make(chan struct{})
	if cfg.Payouts.Interval > 0 {
		go func() {
			tick := time.NewTicker(cfg.Payouts.Interval)
			defer tick.Stop()
			for {
				select {
				case <-tick.C:
					if _, err := deps.PayoutSvc.Run(context.Background()); err != nil {
						logrus.WithError(err).Error("payout run failed")
					}
				case <-stopPayouts:
					return
				}
			}
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logrus.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down...")
	close(stopPayouts)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("server shutdown: %v", err)
	}
	logrus.Info("server stopped")
}
