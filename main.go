package main

import (
	"context"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/subosito/gotenv"

	"github.com/shovelbot/shovel/adapters/credentials"
	opshttp "github.com/shovelbot/shovel/adapters/http"
	"github.com/shovelbot/shovel/adapters/llm"
	"github.com/shovelbot/shovel/adapters/telegram"
	"github.com/shovelbot/shovel/domain"
	"github.com/shovelbot/shovel/usecase"
)

func main() {
	gotenv.Load()

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	credentialsPath := os.Getenv("CREDENTIALS_FILE")
	if credentialsPath == "" {
		credentialsPath = "api_keys.json"
	}
	model := os.Getenv("HF_MODEL")
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	store := credentials.NewFileStore(credentialsPath)
	factory := func(token string) domain.Llm {
		return llm.NewHuggingFaceClient(token, llm.Config{Model: model})
	}
	svc := usecase.NewChatService(store, factory)

	bot, err := telegram.NewBot(botToken, svc)
	if err != nil {
		log.Fatal(err)
	}

	opsHandler := opshttp.NewOpsHandler(svc, store)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	api := e.Group("/api/v1")
	api.GET("/health", opsHandler.HealthCheck)
	api.GET("/status", opsHandler.Status)

	go func() {
		log.Println("Starting ops server on " + httpAddr)
		log.Println("Available endpoints:")
		log.Println("  GET /api/v1/health - Health check")
		log.Println("  GET /api/v1/status - Registry counters")
		log.Fatal(e.Start(httpAddr))
	}()

	log.Println("Starting Telegram long polling")
	if err := bot.Run(context.Background()); err != nil && err != context.Canceled {
		log.Fatal(err)
	}
}
