package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrLeadNotFound = errors.New("lead not found")

type DB struct {
	Pool *pgxpool.Pool
}

func NewDB(ctx context.Context, url string) *DB {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Fatalf("Ошибка подключения к БД: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Ошибка пинга БД: %v", err)
	}

	log.Println("Подключение к базе данных успешно установлено")
	return &DB{Pool: pool}
}

func (db *DB) Close() {
	db.Pool.Close()
}

// создание таблиц если их нет
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id bigserial PRIMARY KEY,
		telegram_id bigint UNIQUE NOT NULL,
		username text,
		first_name text,
		last_name text,
		created_at timestamptz NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS leads (
		id bigserial PRIMARY KEY,
		user_id bigint REFERENCES users(id),
		lead_type text NOT NULL,
		name text,
		phone text,
		city text,
		work_type text,
		budget text,
		description text,
		status text NOT NULL DEFAULT 'new',
		created_at timestamptz NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
	CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);

	CREATE TABLE IF NOT EXISTS lead_attachments (
		id bigserial PRIMARY KEY,
		lead_id bigint NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
		file_id text NOT NULL,
		file_type text NOT NULL DEFAULT 'photo'
	);

	CREATE INDEX IF NOT EXISTS idx_lead_attachments_lead_id ON lead_attachments(lead_id);

	CREATE TABLE IF NOT EXISTS faq (
		id bigserial PRIMARY KEY,
		question text NOT NULL,
		answer text NOT NULL
	);

	CREATE TABLE IF NOT EXISTS documents (
		id bigserial PRIMARY KEY,
		title text NOT NULL,
		path text NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id bigserial PRIMARY KEY,
		title text NOT NULL,
		description text NOT NULL DEFAULT '',
		image text
	);
	`

	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ошибка при инициализации схемы: %w", err)
	}

	log.Println("Схема базы данных успешно инициализирована")
	return nil
}

// UpsertUser создаёт пользователя по telegram_id либо обновляет изменяемые
// поля существующего. telegram_id и created_at не перезаписываются.
func (db *DB) UpsertUser(ctx context.Context, u *User) (*User, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username=excluded.username,
			first_name=excluded.first_name,
			last_name=excluded.last_name
		RETURNING id, created_at
	`, u.TelegramID, u.Username, u.FirstName, u.LastName)

	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateLead сохраняет заявку и все её вложения одной транзакцией:
// либо записывается всё, либо ничего.
func (db *DB) CreateLead(ctx context.Context, req *LeadRequest, userID *int64) (*Lead, error) {
	if strings.TrimSpace(req.LeadType) == "" {
		return nil, errors.New("lead_type is required")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lead := &Lead{
		UserID:      userID,
		LeadType:    req.LeadType,
		Name:        req.Name,
		Phone:       req.Phone,
		City:        req.City,
		WorkType:    req.WorkType,
		Budget:      req.Budget,
		Description: req.Description,
	}

	row := tx.QueryRow(ctx, `
		insert into leads (user_id, lead_type, name, phone, city, work_type, budget, description)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
		returning id, status, created_at
	`,
		lead.UserID,
		lead.LeadType,
		lead.Name,
		lead.Phone,
		lead.City,
		lead.WorkType,
		lead.Budget,
		lead.Description,
	)
	if err := row.Scan(&lead.ID, &lead.Status, &lead.CreatedAt); err != nil {
		return nil, err
	}

	for _, fileID := range req.Attachments {
		if _, err := tx.Exec(ctx, `
			insert into lead_attachments (lead_id, file_id, file_type)
			values ($1,$2,'photo')
		`, lead.ID, fileID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	lead.AttachmentCount = len(req.Attachments)
	return lead, nil
}

const leadColumns = `id, user_id, lead_type, name, phone, city, work_type, budget, description, status, created_at,
	(select count(*) from lead_attachments a where a.lead_id = leads.id)`

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	if err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.LeadType,
		&l.Name,
		&l.Phone,
		&l.City,
		&l.WorkType,
		&l.Budget,
		&l.Description,
		&l.Status,
		&l.CreatedAt,
		&l.AttachmentCount,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func (db *DB) GetLead(ctx context.Context, id int64) (*Lead, error) {
	row := db.Pool.QueryRow(ctx, `select `+leadColumns+` from leads where id=$1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	return lead, err
}

func (db *DB) ListLeads(ctx context.Context, limit int) ([]Lead, error) {
	rows, err := db.Pool.Query(ctx, `
		select `+leadColumns+`
		from leads
		order by created_at desc
		limit $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *l)
	}
	return res, rows.Err()
}

// SetLeadStatus безусловно перезаписывает статус: переходы между статусами
// ничем не ограничены, меняет их только администратор.
func (db *DB) SetLeadStatus(ctx context.Context, id int64, status string) (*Lead, error) {
	row := db.Pool.QueryRow(ctx, `
		update leads set status=$2 where id=$1
		returning `+leadColumns,
		id, status)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	return lead, err
}

// DeleteLead удаляет заявку; вложения уходят каскадом на уровне схемы.
func (db *DB) DeleteLead(ctx context.Context, id int64) error {
	cmd, err := db.Pool.Exec(ctx, `delete from leads where id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}
