package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"treesync/config"
	"treesync/internal/httpapi"
	"treesync/internal/pipeline"
	"treesync/internal/store"
	"treesync/internal/watch"
	"treesync/metrics"
	"treesync/opendata"
	"treesync/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	m := metrics.New()
	client := opendata.NewClient(cfg.SourceURL, cfg.PageSize, cfg.FetchRetries, nil)
	syncer := pipeline.New(client, st, m)
	service := stats.NewService(st.DB())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watch.New(cfg, syncer).Start(ctx); err != nil {
		log.Fatalf("sync watcher: %v", err)
	}

	mux := http.NewServeMux()
	httpapi.NewRouter(cfg, st, service, syncer, m).Register(mux)

	server := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(ctxTimeout)
	}()

	log.Printf("server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
