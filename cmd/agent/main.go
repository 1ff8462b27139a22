package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/postty/showcase-agent/internal/backend"
	"github.com/postty/showcase-agent/internal/config"
	"github.com/postty/showcase-agent/internal/handler"
	"github.com/postty/showcase-agent/internal/lineproto"
	"github.com/postty/showcase-agent/internal/service/agent"
	"github.com/postty/showcase-agent/internal/service/ai"
	"github.com/postty/showcase-agent/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("failed to load configuration: %v", err)
	}

	var snapshots session.Snapshotter
	if cfg.Session.RedisAddr != "" {
		snapshots, err = session.NewRedisSnapshotter(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
		if err != nil {
			log.Printf("warning: redis snapshotter unavailable: %v", err)
			log.Println("continuing with in-memory sessions only")
			snapshots = nil
		} else {
			log.Println("session snapshots enabled via redis")
		}
	}

	sessions := session.NewStore(session.Config{
		IdleTTL:     cfg.Session.IdleTTL,
		MaxSessions: cfg.Session.MaxSessions,
	}, snapshots)
	sessions.StartJanitor(ctx)

	generator, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		fatalf("failed to initialize generation models: %v", err)
	}
	log.Println("generation models initialized successfully")

	backendClient := backend.New(cfg.Backend.BaseURL)
	agentService := agent.New(sessions, generator, backendClient, cfg.Agent, cfg.Backend.UserID)

	switch cfg.Agent.Mode {
	case config.ModeStdio:
		log.Printf("agent %s serving on stdin/stdout", agentService.AgentID())
		if err := lineproto.New(agentService, os.Stdin, os.Stdout).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fatalf("line server error: %v", err)
		}
	default:
		router := handler.NewRouter(agentService)
		startServer(ctx, cfg.Server, router)
	}
}

// fatalf logs the failure and exits. In stdio mode the embedding parent
// reads stdout, so a machine-readable error line goes there first.
func fatalf(format string, args ...any) {
	if strings.TrimSpace(os.Getenv("AGENT_MODE")) == config.ModeStdio {
		lineproto.WriteStartupError(os.Stdout, fmt.Sprintf(format, args...))
	}
	log.Fatalf(format, args...)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("showcase agent listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
