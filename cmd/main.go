package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/urvold/bot-brigadress/internal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := internal.LoadConfig()

	db := internal.NewDB(ctx, cfg.DatabaseURL)
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Ошибка инициализации схемы: %v", err)
	}
	if err := db.SeedContent(ctx, cfg.SeedFile); err != nil {
		log.Fatalf("Ошибка наполнения контента: %v", err)
	}

	svc := internal.NewServices(db)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Ошибка подключения к Telegram: %v", err)
	}
	log.Printf("Бот авторизован как @%s", api.Self.UserName)

	client := internal.NewAPIClient(cfg.APIInternalURL, cfg.TelegramToken)
	bot := internal.NewBot(api, cfg, internal.NewDialog(), client)
	web := internal.NewWeb(cfg, db, svc, bot)

	if cfg.UseWebhook {
		wh, err := tgbotapi.NewWebhook(cfg.PublicBaseURL + cfg.WebhookPath)
		if err != nil {
			log.Fatalf("Ошибка конфигурации вебхука: %v", err)
		}
		if _, err := api.Request(wh); err != nil {
			log.Fatalf("Ошибка установки вебхука: %v", err)
		}
		log.Printf("Вебхук установлен: %s", cfg.PublicBaseURL+cfg.WebhookPath)
	} else {
		if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.Printf("Не удалось снять вебхук: %v", err)
		}
		go func() {
			if err := bot.StartLongPolling(ctx); err != nil && ctx.Err() == nil {
				log.Fatalf("Бот остановился с ошибкой: %v", err)
			}
		}()
	}

	go func() {
		if err := web.StartHTTP(ctx); err != nil {
			log.Fatalf("HTTP-сервер остановился с ошибкой: %v", err)
		}
	}()

	log.Println("Сервис запущен")
	<-ctx.Done()
	log.Println("Завершение работы")
}
