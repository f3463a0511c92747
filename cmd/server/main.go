package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chatline/auth"
	"chatline/domain"
	"chatline/game"
	"chatline/gateway"
	"chatline/history"
	"chatline/internal"
	"chatline/moderation"
	"chatline/runtime"
	"chatline/services"
	"chatline/transport"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanups execute before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	secretHash, err := auth.HashSecret(config.ServerSecret)
	if err != nil {
		return fmt.Errorf("hashing server secret: %w", err)
	}
	replacement, err := internal.CharacterRune(config.CensorReplacement)
	if err != nil {
		return err
	}

	// 2. Core services: registry, history, censor, hub
	registry := runtime.NewRegistry()
	historyLog := history.NewLog()
	censor, err := moderation.NewDefaultCensor(replacement)
	if err != nil {
		return fmt.Errorf("building censor: %w", err)
	}
	hub := runtime.NewHub(log, registry, historyLog, censor)

	// 3. Game engine and moderation controller share the broadcast path
	engine := game.NewEngine(log, hub, domain.CapitalQuestions(), game.Config{
		QuestionTimeout: config.QuestionTimeout,
		NextDelay:       config.NextQuestionDelay,
		WinningScore:    config.WinningScore,
	})
	moderator := moderation.NewController(log, registry, hub, config.ModerationGrace)
	chatService := services.NewChatService(log, hub, registry, historyLog, engine)

	// 4. Transports and gateway under supervision
	chatAddr := fmt.Sprintf("%s:%d", config.Host, config.ChatPort)
	httpAddr := fmt.Sprintf("%s:%d", config.Host, config.HTTPPort)

	chatServer := transport.NewServer(log, chatAddr, secretHash, chatService, config.SessionBuffer)
	wsHandler := transport.NewWSHandler(log, chatServer)
	gatewayServer := gateway.NewServer(log, httpAddr, secretHash, chatService, moderator, wsHandler)

	supervisor := runtime.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(chatServer, gatewayServer)

	// 5. Context & signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting chatline", "chat", chatAddr, "http", httpAddr)
	supervisor.Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}
