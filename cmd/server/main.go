package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/stratusops/stratus/internal/api"
	"github.com/stratusops/stratus/internal/bq"
	"github.com/stratusops/stratus/internal/bqml"
	"github.com/stratusops/stratus/internal/config"
	"github.com/stratusops/stratus/internal/db"
	"github.com/stratusops/stratus/internal/logging"
	"github.com/stratusops/stratus/internal/middleware"
	"github.com/stratusops/stratus/internal/s3"
	"github.com/stratusops/stratus/internal/storage"
	"github.com/stratusops/stratus/internal/warehouse"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env)

	if err := db.Init(cfg, logger); err != nil {
		logger.Fatal("failed to init db", "error", err)
	}

	store, err := s3.New(cfg)
	if err != nil {
		logger.Fatal("failed to init object store", "error", err)
	}

	wh, err := bq.New(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to init warehouse client", "error", err)
	}
	defer wh.Close()

	svcs := api.Services{
		Storage:   storage.New(store),
		Warehouse: warehouse.New(wh),
		Models:    bqml.New(wh),
	}

	r := api.Router(cfg, logger, svcs)

	srv := &http.Server{
		Addr:              ":" + cfg.HttpPort,
		Handler:           middleware.Recoverer(r, logger),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       0, // allow long-running uploads/downloads; rely on LB timeouts
		WriteTimeout:      0,
		MaxHeaderBytes:    1 << 20, // 1MB headers
	}
	logger.Info("server starting", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("server error:", err)
		os.Exit(1)
	}
}
