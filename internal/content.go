package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

// siteMount — публичный префикс статики, под которым лежат документы.
const siteMount = "/site"

// PublicURL — публичная ссылка на документ. В базе хранится только
// относительный путь, префикс добавляется здесь.
func (d Document) PublicURL() string {
	return siteMount + "/" + strings.TrimPrefix(d.Path, "/")
}

func (db *DB) ListFAQ(ctx context.Context) ([]FAQ, error) {
	rows, err := db.Pool.Query(ctx, `select id, question, answer from faq order by id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []FAQ
	for rows.Next() {
		var f FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer); err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

func (db *DB) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := db.Pool.Query(ctx, `select id, title, path from documents order by id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Path); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (db *DB) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := db.Pool.Query(ctx, `select id, title, description, image from projects order by id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Image); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

type seedData struct {
	FAQ []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"faq"`
	Documents []struct {
		Title string `json:"title"`
		Path  string `json:"path"`
	} `json:"documents"`
	Projects []struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Image       *string `json:"image"`
	} `json:"projects"`
}

// seedLockID — ключ advisory-блокировки, чтобы два одновременно стартующих
// процесса не засеяли контент дважды.
const seedLockID = 420401

// SeedContent один раз наполняет справочный контент из файла.
// Повторный запуск ничего не делает: признак — непустая таблица faq.
func (db *DB) SeedContent(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Файл с контентом %s не найден, пропускаем посев", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка чтения файла контента: %w", err)
	}

	var data seedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("ошибка разбора файла контента: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock($1)`, seedLockID); err != nil {
		return err
	}

	var count int
	if err := tx.QueryRow(ctx, `select count(*) from faq`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return tx.Commit(ctx)
	}

	for _, item := range data.FAQ {
		if _, err := tx.Exec(ctx, `insert into faq (question, answer) values ($1,$2)`,
			item.Question, item.Answer); err != nil {
			return err
		}
	}
	for _, item := range data.Documents {
		if _, err := tx.Exec(ctx, `insert into documents (title, path) values ($1,$2)`,
			item.Title, item.Path); err != nil {
			return err
		}
	}
	for _, item := range data.Projects {
		if _, err := tx.Exec(ctx, `insert into projects (title, description, image) values ($1,$2,$3)`,
			item.Title, item.Description, item.Image); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("Контент засеян: faq=%d, документов=%d, проектов=%d",
		len(data.FAQ), len(data.Documents), len(data.Projects))
	return nil
}
