package internal

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// структура HTTP-сервера (API + статика + webhook)
type Web struct {
	Cfg      *Config
	DB       *DB
	Services *Services
	Bot      *Bot
}

func NewWeb(cfg *Config, db *DB, svc *Services, bot *Bot) *Web {
	return &Web{
		Cfg:      cfg,
		DB:       db,
		Services: svc,
		Bot:      bot,
	}
}

func (w *Web) StartHTTP(ctx context.Context) error {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, X-Telegram-Init-Data, X-Bot-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	// Справочный контент

	r.GET("/api/content/faq", func(c *gin.Context) {
		items, err := w.DB.ListFAQ(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"detail": "Ошибка загрузки FAQ"})
			return
		}
		out := make([]FAQOut, 0, len(items))
		for _, f := range items {
			out = append(out, FAQOut{ID: f.ID, Question: f.Question, Answer: f.Answer})
		}
		c.JSON(200, out)
	})

	r.GET("/api/content/documents", func(c *gin.Context) {
		items, err := w.DB.ListDocuments(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"detail": "Ошибка загрузки документов"})
			return
		}
		out := make([]DocumentOut, 0, len(items))
		for _, d := range items {
			out = append(out, DocumentOut{ID: d.ID, Title: d.Title, URL: d.PublicURL()})
		}
		c.JSON(200, out)
	})

	r.GET("/api/content/projects", func(c *gin.Context) {
		items, err := w.DB.ListProjects(c.Request.Context())
		if err != nil {
			c.JSON(500, gin.H{"detail": "Ошибка загрузки проектов"})
			return
		}
		out := make([]ProjectOut, 0, len(items))
		for _, p := range items {
			out = append(out, ProjectOut{ID: p.ID, Title: p.Title, Description: p.Description, Image: p.Image})
		}
		c.JSON(200, out)
	})

	// Создание заявки из мини-приложения: личность подтверждает initData
	r.POST("/api/leads", func(c *gin.Context) {
		tgUser, ok := w.authUser(c)
		if !ok {
			return
		}

		var req LeadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(422, gin.H{"detail": "Некорректные данные заявки"})
			return
		}

		lead, err := w.Services.CreateLeadFromWebApp(c.Request.Context(), tgUser, &req)
		if err != nil {
			log.Printf("createLead: %v", err)
			c.JSON(500, gin.H{"detail": "Ошибка при создании заявки"})
			return
		}

		c.JSON(200, leadOut(lead))
	})

	// Заявка из бота: авторизация общим токеном, без привязки к пользователю
	r.POST("/api/bot/leads", func(c *gin.Context) {
		token := c.GetHeader("X-Bot-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(w.Cfg.TelegramToken)) != 1 {
			c.JSON(401, gin.H{"detail": "Bad bot token"})
			return
		}

		var req LeadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(422, gin.H{"detail": "Некорректные данные заявки"})
			return
		}

		lead, err := w.Services.CreateLeadFromBot(c.Request.Context(), &req)
		if err != nil {
			log.Printf("createBotLead: %v", err)
			c.JSON(500, gin.H{"detail": "Ошибка при создании заявки"})
			return
		}

		c.JSON(200, leadOut(lead))
	})

	// Админка: initData + числовой id в списке администраторов

	admin := r.Group("/api/admin", w.requireAdmin)

	admin.GET("/leads", func(c *gin.Context) {
		limit := 200
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		leads, err := w.DB.ListLeads(c.Request.Context(), limit)
		if err != nil {
			c.JSON(500, gin.H{"detail": "Ошибка загрузки заявок"})
			return
		}
		out := make([]LeadOut, 0, len(leads))
		for i := range leads {
			out = append(out, leadOut(&leads[i]))
		}
		c.JSON(200, out)
	})

	admin.GET("/leads/:id", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(422, gin.H{"detail": "Некорректный id заявки"})
			return
		}

		lead, err := w.DB.GetLead(c.Request.Context(), id)
		if errors.Is(err, ErrLeadNotFound) {
			c.JSON(404, gin.H{"detail": "Lead not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"detail": "Ошибка загрузки заявки"})
			return
		}

		c.JSON(200, leadOut(lead))
	})

	admin.PATCH("/leads/:id", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(422, gin.H{"detail": "Некорректный id заявки"})
			return
		}

		var req LeadStatusUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(422, gin.H{"detail": "Некорректные данные"})
			return
		}

		lead, err := w.DB.SetLeadStatus(c.Request.Context(), id, req.Status)
		if errors.Is(err, ErrLeadNotFound) {
			c.JSON(404, gin.H{"detail": "Lead not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"detail": "Ошибка смены статуса"})
			return
		}

		c.JSON(200, leadOut(lead))
	})

	admin.DELETE("/leads/:id", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(422, gin.H{"detail": "Некорректный id заявки"})
			return
		}

		err = w.DB.DeleteLead(c.Request.Context(), id)
		if errors.Is(err, ErrLeadNotFound) {
			c.JSON(404, gin.H{"detail": "Lead not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"detail": "Ошибка удаления заявки"})
			return
		}

		c.JSON(200, gin.H{"ok": true})
	})

	admin.GET("/export/leads.csv", func(c *gin.Context) {
		c.Header("Content-Disposition", "attachment; filename=leads.csv")
		c.Header("Content-Type", "text/csv; charset=utf-8")
		if err := w.Services.ExportLeadsCSV(c.Request.Context(), c.Writer); err != nil {
			log.Printf("exportLeads: %v", err)
		}
	})

	// Webhook

	if w.Cfg.UseWebhook {
		r.POST(w.Cfg.WebhookPath, func(c *gin.Context) {
			var update tgbotapi.Update
			if err := c.BindJSON(&update); err != nil {
				c.String(400, err.Error())
				return
			}
			w.Bot.HandleWebhookUpdate(c.Request.Context(), update)
			c.Status(200)
		})
		log.Printf("📡 Webhook включен: %s", w.Cfg.WebhookPath)
	}

	// Статика: витрина и мини-приложение
	r.Static(siteMount, w.Cfg.SiteDir)
	r.Static("/webapp", w.Cfg.WebappDir)

	addr := ":" + w.Cfg.Port
	log.Printf("🌐 HTTP сервер запущен на http://localhost%s", addr)
	return r.Run(addr)
}

// authUser проверяет подпись initData из заголовка и возвращает пользователя.
// Любая проблема с подписью или личностью — 401.
func (w *Web) authUser(c *gin.Context) (*InitDataUser, bool) {
	initData := c.GetHeader("X-Telegram-Init-Data")
	if initData == "" {
		c.AbortWithStatusJSON(401, gin.H{"detail": "Missing Telegram initData"})
		return nil, false
	}

	u, err := UserFromInitData(initData, w.Cfg.TelegramToken)
	if err != nil {
		c.AbortWithStatusJSON(401, gin.H{"detail": err.Error()})
		return nil, false
	}
	return u, true
}

func (w *Web) requireAdmin(c *gin.Context) {
	u, ok := w.authUser(c)
	if !ok {
		return
	}
	if _, ok := w.Cfg.AdminIDs[u.ID]; !ok {
		c.AbortWithStatusJSON(403, gin.H{"detail": "Admin only"})
		return
	}
	c.Next()
}
