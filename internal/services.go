package internal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

type Services struct {
	DB *DB
}

func NewServices(db *DB) *Services {
	return &Services{DB: db}
}

// CreateLeadFromWebApp — заявка из мини-приложения: пользователь уже прошёл
// проверку initData, поэтому сначала обновляем его карточку, затем пишем
// заявку со ссылкой на него.
func (s *Services) CreateLeadFromWebApp(ctx context.Context, tg *InitDataUser, req *LeadRequest) (*Lead, error) {
	u, err := s.DB.UpsertUser(ctx, &User{
		TelegramID: tg.ID,
		Username:   strPtrEmptyToNil(tg.Username),
		FirstName:  strPtrEmptyToNil(tg.FirstName),
		LastName:   strPtrEmptyToNil(tg.LastName),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при сохранении пользователя: %w", err)
	}

	lead, err := s.DB.CreateLead(ctx, req, &u.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании заявки: %w", err)
	}

	log.Printf("Новая заявка из WebApp ID=%d (%s)", lead.ID, lead.LeadType)
	return lead, nil
}

// CreateLeadFromBot — заявка из бота: связи с пользователем нет, кто её
// оставил — видно только по подписи в описании.
func (s *Services) CreateLeadFromBot(ctx context.Context, req *LeadRequest) (*Lead, error) {
	lead, err := s.DB.CreateLead(ctx, req, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании заявки: %w", err)
	}

	log.Printf("Новая заявка из бота ID=%d (%s)", lead.ID, lead.LeadType)
	return lead, nil
}

const exportLimit = 5000

func (s *Services) ExportLeadsCSV(ctx context.Context, w io.Writer) error {
	leads, err := s.DB.ListLeads(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("ошибка при экспорте: %w", err)
	}

	if err := writeLeadsCSV(w, leads); err != nil {
		return err
	}

	log.Printf("CSV экспорт выполнен: %d строк", len(leads))
	return nil
}

func writeLeadsCSV(w io.Writer, leads []Lead) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{
		"id", "lead_type", "name", "phone", "city", "work_type", "budget", "status", "created_at", "description",
	})

	for _, l := range leads {
		// переводы строки в описании ломают построчную обработку выгрузки
		desc := strings.ReplaceAll(deref(l.Description), "\n", " ")

		_ = cw.Write([]string{
			fmt.Sprintf("%d", l.ID),
			l.LeadType,
			deref(l.Name),
			deref(l.Phone),
			deref(l.City),
			deref(l.WorkType),
			deref(l.Budget),
			l.Status,
			l.CreatedAt.Format(time.RFC3339),
			desc,
		})
	}

	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
