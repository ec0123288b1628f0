// Package main inicia o servidor HTTP do sistema de gestão da oficina.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lfarias/oficina-system/internal/auth"
	"github.com/lfarias/oficina-system/internal/config"
	"github.com/lfarias/oficina-system/internal/handler"
	"github.com/lfarias/oficina-system/internal/middleware"
	"github.com/lfarias/oficina-system/internal/repository"
	"github.com/lfarias/oficina-system/internal/service"
)

func main() {
	// Em desenvolvimento as variáveis podem vir de um arquivo .env.
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	svc := service.NewService(repo, logger)
	defer svc.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	authMiddleware := middleware.NewAuthMiddleware(tokens)
	h := handler.NewHandler(svc, logger, tokens)

	r := handler.NewRouter(h, authMiddleware, logger)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Varredura periódica que mantém o status das faturas consistente
	g.Go(func() error {
		svc.StartStatusSweeper(ctx)
		return nil
	})

	// Servidor HTTP
	g.Go(func() error {
		sugar.Infow("starting oficina server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown quando o contexto é cancelado (sinal ou erro em outra goroutine)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
