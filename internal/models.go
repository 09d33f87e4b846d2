package internal

import "time"

type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	Username   *string   `db:"username"`
	FirstName  *string   `db:"first_name"`
	LastName   *string   `db:"last_name"`
	CreatedAt  time.Time `db:"created_at"`
}

const (
	LeadTypeClient     = "client_request"
	LeadTypeContractor = "contractor_application"
)

const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusRejected   = "rejected"
)

type Lead struct {
	ID          int64     `db:"id"`
	UserID      *int64    `db:"user_id"`
	LeadType    string    `db:"lead_type"`
	Name        *string   `db:"name"`
	Phone       *string   `db:"phone"`
	City        *string   `db:"city"`
	WorkType    *string   `db:"work_type"`
	Budget      *string   `db:"budget"`
	Description *string   `db:"description"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`

	AttachmentCount int
}

type LeadAttachment struct {
	ID       int64  `db:"id"`
	LeadID   int64  `db:"lead_id"`
	FileID   string `db:"file_id"`
	FileType string `db:"file_type"`
}

type FAQ struct {
	ID       int64  `db:"id"`
	Question string `db:"question"`
	Answer   string `db:"answer"`
}

type Document struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
	Path  string `db:"path"` // относительный путь внутри статики /site
}

type Project struct {
	ID          int64   `db:"id"`
	Title       string  `db:"title"`
	Description string  `db:"description"`
	Image       *string `db:"image"`
}

// LeadRequest — тело запроса на создание заявки (и из WebApp, и из бота).
// Вложения — список телеграмовских file_id, сами файлы нигде не храним.
type LeadRequest struct {
	LeadType    string   `json:"lead_type" binding:"required"`
	Name        *string  `json:"name"`
	Phone       *string  `json:"phone"`
	City        *string  `json:"city"`
	WorkType    *string  `json:"work_type"`
	Budget      *string  `json:"budget"`
	Description *string  `json:"description"`
	Attachments []string `json:"attachments"`
}

type LeadOut struct {
	ID              int64   `json:"id"`
	LeadType        string  `json:"lead_type"`
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	City            *string `json:"city"`
	WorkType        *string `json:"work_type"`
	Budget          *string `json:"budget"`
	Description     *string `json:"description"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	AttachmentCount int     `json:"attachment_count"`
}

func leadOut(l *Lead) LeadOut {
	return LeadOut{
		ID:              l.ID,
		LeadType:        l.LeadType,
		Name:            l.Name,
		Phone:           l.Phone,
		City:            l.City,
		WorkType:        l.WorkType,
		Budget:          l.Budget,
		Description:     l.Description,
		Status:          l.Status,
		CreatedAt:       l.CreatedAt.Format(time.RFC3339),
		AttachmentCount: l.AttachmentCount,
	}
}

type FAQOut struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type DocumentOut struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ProjectOut struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

type LeadStatusUpdate struct {
	Status string `json:"status" binding:"required"`
}
