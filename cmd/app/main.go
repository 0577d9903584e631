package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"app/cfg"
	"app/db"
	"app/internal/app/api"
	"app/internal/app/gateway"
	"app/internal/app/metrics"
	"app/pkg/auth"
	"app/pkg/resemble"
	"app/pkg/slg"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "cfg", "cfg/cfg.yaml", "path to config file")
	flag.Parse()

	var cfg *cfg.Config
	if cfgFile, err := os.ReadFile(cfgPath); err != nil {
		log.Fatalf("can't open %s file: %v", cfgPath, err)
	} else if err = yaml.Unmarshal(cfgFile, &cfg); err != nil {
		log.Fatal("can't unmarshal cfg file", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = slg.WithSlog(ctx, logger)

	createDbCtx, createDbCancel := context.WithTimeout(ctx, 10*time.Second)
	database, err := db.New(createDbCtx, &cfg.DB)
	createDbCancel()
	if err != nil {
		log.Fatal("failed to init postgres db: ", err)
	}
	defer database.Close()

	timeout := cfg.Api.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}

	resembleClient := resemble.New(httpClient, &cfg.Resemble)

	synthGateway := gateway.New(&cfg.Gateway, gateway.RealClock(), resembleClient)

	metrics.RegisterMetrics(prometheus.DefaultRegisterer)

	authService := auth.New(&cfg.Auth)

	apiClient := api.NewAPI(&cfg.Api, logger.WithGroup("api"), authService, database, database, synthGateway)

	router := apiClient.NewRouter()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Api.Port),
		Handler: router,
	}

	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()

		logger.Info("Starting server", "port", cfg.Api.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ListenAndServe finished", "err", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()

		logger.Info("Starting synthesis gateway")

		if err := synthGateway.Run(ctx); err != nil {
			logger.Error("Synthesis gateway finished", "err", err)
		}
	}()

	select {
	case <-ctx.Done():
	case <-stop:
		logger.Info("Interrupt triggered")
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down server", "err", err)
	}

	wg.Wait()
}
