// Command agentcli is an interactive console for exercising the agent
// without the HTTP layer. It talks to the agent service directly, one
// terminal session mapped to one conversation session.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/postty/showcase-agent/internal/backend"
	"github.com/postty/showcase-agent/internal/config"
	"github.com/postty/showcase-agent/internal/imageref"
	"github.com/postty/showcase-agent/internal/service/agent"
	"github.com/postty/showcase-agent/internal/service/ai"
	"github.com/postty/showcase-agent/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	sessions := session.NewStore(session.Config{
		IdleTTL:     cfg.Session.IdleTTL,
		MaxSessions: cfg.Session.MaxSessions,
	}, nil)

	generator, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize generation models: %v", err)
	}

	backendClient := backend.New(cfg.Backend.BaseURL)
	agentService := agent.New(sessions, generator, backendClient, cfg.Agent, cfg.Backend.UserID)

	sessionID := uuid.New().String()

	fmt.Printf("Agente %s listo. Escribí 'exit' o 'quit' para salir.\n", agentService.AgentID())
	fmt.Println("Ejemplos:")
	fmt.Println("  Quiero un post para mi yerba mate ./fotos/mate.jpg")
	fmt.Println("  Hacé un reel con la imagen final")
	fmt.Println("  Quiero empezar con otro producto")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		if _, ref := imageref.Extract(line); ref != "" {
			source := "archivo"
			if imageref.IsURL(ref) {
				source = "URL"
			}
			display := ref
			if len(display) > 60 {
				display = display[:57] + "..."
			}
			fmt.Printf("[imagen detectada: %s %s]\n", source, display)
		}

		result, err := agentService.Chat(ctx, sessionID, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResult(result)
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
	fmt.Println("¡Hasta luego!")
}

func printResult(result agent.Result) {
	switch result.Kind {
	case agent.KindImage:
		fmt.Printf("%s\n[imagen generada: %s]\n", result.Text, result.File)
	case agent.KindReferenceOptions:
		fmt.Println(result.Text)
	default:
		fmt.Println(result.Text)
	}
}
