package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	envFile := flag.String("env", ".env", "Path to an optional env file")
	addr := flag.String("addr", "", "HTTP listen address (overrides SERVER_ADDR)")
	flag.Parse()

	if err := run(*envFile, *addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(envFile, addr string) error {
	cfg, err := LoadConfig(envFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	logger := NewLogger(cfg.Logging, os.Stdout)
	log := logger.With("component", "main")

	db, err := OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	defer db.Close()

	if err := db.SeedItems(DefaultItems); err != nil {
		return fmt.Errorf("seed items: %w", err)
	}
	defs, err := db.LoadItems()
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	items := NewItemCatalog(defs)

	auth, err := NewAuth(cfg.Auth, db, logger)
	if err != nil {
		return err
	}

	combatLog := NewCombatLog(db, logger)
	defer combatLog.Stop()

	game := NewGame(cfg, items, db, combatLog, logger)
	if err := game.Seed(); err != nil {
		return fmt.Errorf("seed sector: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go game.Run(ctx)
	hub := NewHub(game, auth, cfg, logger)
	go hub.Run(ctx)

	server := &http.Server{Addr: cfg.Server.Addr, Handler: SetupRoutes(hub)}
	errc := make(chan error, 1)
	go func() {
		log.Info("Server starting", "addr", cfg.Server.Addr, "environment", cfg.Server.Environment, "items", len(defs))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Shutdown incomplete", "error", err)
	}
	return nil
}
