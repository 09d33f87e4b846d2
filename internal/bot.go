package internal

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	API      *tgbotapi.BotAPI
	Cfg      *Config
	Dialog   *Dialog
	Client   *APIClient
	sessions *sessionStore
}

func NewBot(api *tgbotapi.BotAPI, cfg *Config, dialog *Dialog, client *APIClient) *Bot {
	return &Bot{
		API:      api,
		Cfg:      cfg,
		Dialog:   dialog,
		Client:   client,
		sessions: newSessionStore(),
	}
}

func (b *Bot) StartLongPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.API.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) HandleWebhookUpdate(ctx context.Context, upd tgbotapi.Update) {
	b.handleUpdate(ctx, upd)
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		b.handleMessage(ctx, upd.Message)
		return
	}
	if upd.CallbackQuery != nil {
		b.handleCallback(ctx, upd.CallbackQuery)
		return
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if !m.Chat.IsPrivate() {
		return
	}

	if m.IsCommand() {
		b.handleCommand(ctx, m)
		return
	}

	ev := Event{
		Text:         m.Text,
		FromID:       m.From.ID,
		FromUsername: m.From.UserName,
	}
	if len(m.Photo) > 0 {
		// телеграм присылает несколько размеров, берём самый крупный
		ev.PhotoFileID = m.Photo[len(m.Photo)-1].FileID
		if ev.Text == "" {
			ev.Text = m.Caption
		}
	}

	b.sessions.withSession(m.Chat.ID, func(s *Session) {
		if s.State == StateIdle {
			b.reply(m.Chat.ID, "Нажмите /start и выберите действие в меню.")
			return
		}

		reply := b.Dialog.Handle(s, ev)
		if !reply.Done {
			b.reply(m.Chat.ID, reply.Text)
			return
		}

		// при ошибке отправки черновик остаётся: повторное ГОТОВО досдаёт заявку
		created, err := b.Client.CreateLead(ctx, reply.Lead)
		if err != nil {
			log.Printf("Не удалось отправить заявку из чата %d: %v", m.Chat.ID, err)
			return
		}

		b.reply(m.Chat.ID, fmt.Sprintf("✅ Заявка создана: #%d\nСтатус: %s\n\nСпасибо! Мы свяжемся с вами.", created.ID, created.Status))
		b.notifyAdmins(adminNoticeText(created.ID, reply.Lead))
		resetSession(s)
	})
}

func (b *Bot) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	switch m.Command() {
	case "start":
		b.sessions.withSession(m.Chat.ID, func(s *Session) {
			resetSession(s)
		})
		msg := tgbotapi.NewMessage(m.Chat.ID,
			"БригАдрес 🧩\n\n"+
				"Заявки на ремонт, документы, FAQ и витрина проектов.\n"+
				"Выберите действие ниже 👇",
		)
		msg.ReplyMarkup = b.mainMenu()
		b.API.Send(msg)
	case "help":
		b.reply(m.Chat.ID, "Справка: /start — главное меню. Оставить заявку можно в боте или в мини-приложении.")
	default:
		b.reply(m.Chat.ID, "Не знаю такую команду. Нажмите /start.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	switch cq.Data {
	case "lead":
		b.sessions.withSession(chatID, func(s *Session) {
			r := b.Dialog.StartClient(s)
			b.reply(chatID, r.Text)
		})
	case "contractor":
		b.sessions.withSession(chatID, func(s *Session) {
			r := b.Dialog.StartContractor(s)
			b.reply(chatID, r.Text)
		})
	case "docs":
		b.sendDocuments(ctx, chatID)
	case "faq":
		b.sendFAQ(ctx, chatID)
	}

	b.answerCallback(cq, "")
}

func (b *Bot) mainMenu() tgbotapi.InlineKeyboardMarkup {
	webappURL := strings.TrimRight(b.Cfg.PublicBaseURL, "/") + "/webapp/"
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🚀 Открыть WebApp", webappURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧾 Документы (PDF)", "docs"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ FAQ", "faq"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛠️ Оставить заявку", "lead"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👷 Стать подрядчиком", "contractor"),
		),
	)
}

func (b *Bot) sendDocuments(ctx context.Context, chatID int64) {
	docs, err := b.Client.GetDocuments(ctx)
	if err != nil {
		log.Printf("Ошибка загрузки документов: %v", err)
		b.reply(chatID, "Не получилось загрузить документы, попробуйте позже.")
		return
	}

	base := strings.TrimRight(b.Cfg.PublicBaseURL, "/")
	lines := []string{"🧾 Документы:"}
	for _, d := range docs {
		lines = append(lines, fmt.Sprintf("• %s: %s", d.Title, base+d.URL))
	}
	b.reply(chatID, strings.Join(lines, "\n"))
}

func (b *Bot) sendFAQ(ctx context.Context, chatID int64) {
	items, err := b.Client.GetFAQ(ctx)
	if err != nil {
		log.Printf("Ошибка загрузки FAQ: %v", err)
		b.reply(chatID, "Не получилось загрузить FAQ, попробуйте позже.")
		return
	}

	var sb strings.Builder
	sb.WriteString("❓ FAQ (кратко):\n\n")
	for i, item := range items {
		if i == 5 {
			break
		}
		fmt.Fprintf(&sb, "%d) %s\n", i+1, item.Question)
	}
	sb.WriteString("\nПолные ответы — в WebApp.")
	b.reply(chatID, sb.String())
}

// notifyAdmins шлёт уведомление каждому администратору в своей горутине,
// ошибки доставки только логируются.
func (b *Bot) notifyAdmins(text string) {
	for id := range b.Cfg.AdminIDs {
		go func(adminID int64) {
			if _, err := b.API.Send(tgbotapi.NewMessage(adminID, text)); err != nil {
				log.Printf("Не удалось уведомить администратора %d: %v", adminID, err)
			}
		}(id)
	}
}

func adminNoticeText(leadID int64, lead *LeadRequest) string {
	kind := "клиент"
	if lead.LeadType == LeadTypeContractor {
		kind = "подрядчик"
	}
	return fmt.Sprintf("🆕 Новая заявка (%s) #%d\nГород: %s\nРаботы: %s\nТелефон: %s",
		kind, leadID, deref(lead.City), deref(lead.WorkType), deref(lead.Phone))
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	b.API.Send(msg)
}

func (b *Bot) answerCallback(cq *tgbotapi.CallbackQuery, text string) {
	b.API.Request(tgbotapi.NewCallback(cq.ID, text))
}
