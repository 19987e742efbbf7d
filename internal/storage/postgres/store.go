package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
)

const (
	defaultConnTimeout     = 5 * time.Second
	defaultOpTimeout       = 5 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute

	// Документ магазина хранится одной JSONB-строкой с фиксированным id.
	documentRowID = 1
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS shop_document (
    id   SMALLINT PRIMARY KEY CHECK (id = 1),
    doc  JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store — документное хранилище поверх PostgreSQL: весь документ лежит в
// одной JSONB-строке, а SELECT ... FOR UPDATE внутри транзакции даёт тот же
// эксклюзивный store-wide лок, что и мьютекс файлового хранилища.
type Store struct {
	db *sql.DB
}

// Open открывает подключение к PostgreSQL и проверяет доступность базы.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: db}, nil
}

// EnsureSchema создаёт таблицу документа и сажает стартовый документ,
// если строки ещё нет. Повторный вызов ничего не меняет.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create shop_document table: %w", err)
	}
	seed, err := json.Marshal(domain.NewDocument())
	if err != nil {
		return fmt.Errorf("encode seed document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO shop_document (id, doc) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		documentRowID, seed,
	)
	if err != nil {
		return fmt.Errorf("seed shop document: %w", err)
	}
	return nil
}

// Load возвращает свежую копию документа без блокировки записи.
func (s *Store) Load() (domain.Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM shop_document WHERE id = $1`, documentRowID,
	).Scan(&raw)
	if err != nil {
		return domain.Document{}, fmt.Errorf("load shop document: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("decode shop document: %w", err)
	}
	// Строки, записанные до появления settings, мигрируем через Mutate,
	// чтобы backfill был зафиксирован ровно один раз.
	if needsBackfill(doc) {
		return s.Mutate(func(*domain.Document) error { return nil })
	}
	return doc, nil
}

// Mutate выполняет цикл load-modify-save одной SQL-транзакцией: строка
// документа удерживается FOR UPDATE до коммита, параллельные мутации ждут.
func (s *Store) Mutate(fn domain.MutateFunc) (domain.Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Document{}, fmt.Errorf("begin mutate tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM shop_document WHERE id = $1 FOR UPDATE`, documentRowID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, fmt.Errorf("shop document row is missing, run EnsureSchema: %w", err)
		}
		return domain.Document{}, fmt.Errorf("lock shop document: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("decode shop document: %w", err)
	}
	domain.BackfillSettings(&doc)

	if err := fn(&doc); err != nil {
		return domain.Document{}, err
	}

	updated, err := json.Marshal(doc)
	if err != nil {
		return domain.Document{}, fmt.Errorf("encode shop document: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE shop_document SET doc = $1, updated_at = now() WHERE id = $2`,
		updated, documentRowID,
	); err != nil {
		return domain.Document{}, fmt.Errorf("save shop document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Document{}, fmt.Errorf("commit mutate tx: %w", err)
	}
	return doc, nil
}

// Ping проверяет доступность подключения (health-проверка).
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}
	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// Close закрывает подключение к БД.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func needsBackfill(doc domain.Document) bool {
	return doc.Settings.Categories == nil || doc.Settings.MenuRows == nil
}

var _ domain.DocumentStore = (*Store)(nil)
