package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/PedroLeon917/cybdates/api/config"
	"github.com/PedroLeon917/cybdates/api/web"
	lwamw "github.com/its-felix/aws-lwa-go-middleware"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	log, err := config.Config.Logger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	s, closeStore, err := config.Config.Store(ctx)
	if err != nil {
		log.Fatal("failed to create store", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("failed to close store", zap.Error(err))
		}
	}()

	fh := web.NewFlightsHandler(
		s,
		config.Config.Parallelism(),
		web.NewMetrics(prometheus.DefaultRegisterer),
		log,
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(
		lwamw.EchoMiddleware(
			lwamw.WithMaskError(),
			lwamw.WithRemoveHeaders(),
		),
		web.ErrorLogAndMaskMiddleware(log),
		web.NoCacheOnErrorMiddleware(),
	)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	web.Register(e, fh, config.Config.UploadLimiter())

	if err := run(ctx, e, log); err != nil {
		log.Error("echo server failed", zap.Error(err))
	}
}

func run(ctx context.Context, e *echo.Echo, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		if err := e.Shutdown(context.Background()); err != nil {
			log.Error("error shutting down the echo server", zap.Error(err))
		}
	}()

	if err := e.Start(fmt.Sprintf(":%d", config.Config.EchoPort())); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}

	return nil
}
