package internal

import (
	"fmt"
	"strings"
)

// Состояния диалога. Две независимые анкеты — клиентская заявка на ремонт
// и заявка подрядчика, каждая строго линейная.

type State string

const (
	StateIdle State = ""

	StateClientName        State = "client_name"
	StateClientPhone             = "client_phone"
	StateClientCity              = "client_city"
	StateClientWorkType          = "client_work_type"
	StateClientBudget            = "client_budget"
	StateClientDescription       = "client_description"
	StateClientPhotos            = "client_photos"

	StateContractorName           = "contractor_name"
	StateContractorPhone          = "contractor_phone"
	StateContractorCity           = "contractor_city"
	StateContractorSpecialization = "contractor_specialization"
	StateContractorExperience     = "contractor_experience"
	StateContractorDescription    = "contractor_description"
)

// Session — черновик одной анкеты: текущий шаг, собранные ответы и
// накопленные file_id фотографий. Живёт только в памяти процесса.
type Session struct {
	State       State
	Data        map[string]string
	Attachments []string
}

// Event — входящее событие диалога: текст сообщения и/или фото.
// Отправитель нужен для трассировочной подписи в описании заявки.
type Event struct {
	Text         string
	PhotoFileID  string
	FromID       int64
	FromUsername string
}

// Reply — ответ движка. Done=true означает, что анкета собрана и Lead
// готов к отправке; очищать сессию должен вызывающий, и только после
// успешной отправки.
type Reply struct {
	Text string
	Done bool
	Lead *LeadRequest
}

type step struct {
	field  string
	prompt string // вопрос следующего шага
	next   State
}

var clientSteps = map[State]step{
	StateClientName:        {"name", "Телефон для связи?", StateClientPhone},
	StateClientPhone:       {"phone", "Город?", StateClientCity},
	StateClientCity:        {"city", "Тип работ (например: плитка/электрика/ремонт под ключ)?", StateClientWorkType},
	StateClientWorkType:    {"work_type", "Бюджет (если есть ориентир)?", StateClientBudget},
	StateClientBudget:      {"budget", "Коротко опишите задачу (что нужно сделать, сроки, нюансы).", StateClientDescription},
	StateClientDescription: {"description", "Если есть фото — отправьте их сообщением (можно несколько).\nКогда закончите — напишите: ГОТОВО", StateClientPhotos},
}

var contractorSteps = map[State]step{
	StateContractorName:           {"name", "Телефон?", StateContractorPhone},
	StateContractorPhone:          {"phone", "Город / регион?", StateContractorCity},
	StateContractorCity:           {"city", "Специализация (например: ремонт квартир / электрика / плитка)?", StateContractorSpecialization},
	StateContractorSpecialization: {"specialization", "Опыт (лет) / сколько объектов?", StateContractorExperience},
	StateContractorExperience:     {"experience", "Коротко о вашей бригаде (команда, портфолио ссылкой, условия).", StateContractorDescription},
}

type Dialog struct{}

func NewDialog() *Dialog { return &Dialog{} }

// StartClient начинает клиентскую анкету. Любой недособранный черновик
// сбрасывается: две анкеты одновременно в одном чате не живут.
func (d *Dialog) StartClient(s *Session) Reply {
	resetSession(s)
	s.State = StateClientName
	return Reply{Text: "🛠️ Заявка на ремонт.\nКак вас зовут?"}
}

func (d *Dialog) StartContractor(s *Session) Reply {
	resetSession(s)
	s.State = StateContractorName
	return Reply{Text: "👷 Заявка подрядчика.\nКак вас зовут / как называется бригада?"}
}

// Handle обрабатывает одно событие. На обычном шаге ответ сохраняется под
// именем поля шага (с обрезкой пробелов, без иной валидации) и состояние
// двигается дальше безусловно.
func (d *Dialog) Handle(s *Session, ev Event) Reply {
	switch s.State {
	case StateClientPhotos:
		return d.handlePhotos(s, ev)
	case StateContractorDescription:
		return d.completeContractor(s, ev)
	}

	if st, ok := clientSteps[s.State]; ok {
		s.Data[st.field] = strings.TrimSpace(ev.Text)
		s.State = st.next
		return Reply{Text: st.prompt}
	}
	if st, ok := contractorSteps[s.State]; ok {
		s.Data[st.field] = strings.TrimSpace(ev.Text)
		s.State = st.next
		return Reply{Text: st.prompt}
	}

	return Reply{Text: "Не понял. Нажмите /start и выберите действие."}
}

// handlePhotos — терминальный шаг клиентской анкеты: копим фото, пока не
// придёт слово ГОТОВО. Всё прочее — переспрос без смены состояния.
func (d *Dialog) handlePhotos(s *Session, ev Event) Reply {
	if ev.PhotoFileID != "" {
		s.Attachments = append(s.Attachments, ev.PhotoFileID)
		return Reply{Text: "Фото добавлено. Ещё? Если всё — напишите: ГОТОВО"}
	}

	if isDoneKeyword(ev.Text) {
		lead := &LeadRequest{
			LeadType:    LeadTypeClient,
			Name:        strPtrEmptyToNil(s.Data["name"]),
			Phone:       strPtrEmptyToNil(s.Data["phone"]),
			City:        strPtrEmptyToNil(s.Data["city"]),
			WorkType:    strPtrEmptyToNil(s.Data["work_type"]),
			Budget:      strPtrEmptyToNil(s.Data["budget"]),
			Description: describeWithSender(s.Data["description"], ev),
			Attachments: append([]string(nil), s.Attachments...),
		}
		return Reply{Done: true, Lead: lead}
	}

	return Reply{Text: "Пришлите фото или напишите ГОТОВО."}
}

// completeContractor — последний шаг анкеты подрядчика: любой текст
// завершает её. Специализация и опыт едут в work_type и budget.
func (d *Dialog) completeContractor(s *Session, ev Event) Reply {
	lead := &LeadRequest{
		LeadType:    LeadTypeContractor,
		Name:        strPtrEmptyToNil(s.Data["name"]),
		Phone:       strPtrEmptyToNil(s.Data["phone"]),
		City:        strPtrEmptyToNil(s.Data["city"]),
		WorkType:    strPtrEmptyToNil(s.Data["specialization"]),
		Budget:      strPtrEmptyToNil(s.Data["experience"]),
		Description: describeWithSender(strings.TrimSpace(ev.Text), ev),
		Attachments: []string{},
	}
	return Reply{Done: true, Lead: lead}
}

func isDoneKeyword(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "готово" || t == "done"
}

// describeWithSender дописывает к описанию подпись с отправителем — заявка
// из бота сохраняется без связи с пользователем, и это единственный след.
func describeWithSender(desc string, ev Event) *string {
	username := ev.FromUsername
	if username == "" {
		username = "no_username"
	}
	text := fmt.Sprintf("%s\n\n[Telegram user: @%s | id=%d]", desc, username, ev.FromID)
	return &text
}

func resetSession(s *Session) {
	s.State = StateIdle
	s.Data = make(map[string]string)
	s.Attachments = nil
}

func strPtrEmptyToNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
