package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool        *pgxpool.Pool
	tableChats  string
	tableEvents string
}

var _ Store = (*PgStore)(nil)

func OpenPostgres(ctx context.Context, url string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	prefix := os.Getenv("DB_TABLE_PREFIX")
	s := &PgStore{
		pool:        pool,
		tableChats:  prefix + "chats",
		tableEvents: prefix + "events",
	}
	if err := s.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PgStore) init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`create table if not exists %s (
            chat_id bigint primary key,
            title text not null default '',
            username text not null default '',
            first_name text not null default '',
            last_name text not null default '',
            language text not null default 'en',
            is_active boolean not null default true,
            created_at timestamptz not null default now(),
            updated_at timestamptz not null default now()
        )`, s.tableChats),
		fmt.Sprintf(`create table if not exists %s (
            id bigserial primary key,
            chat_id bigint not null references %s(chat_id) on delete cascade,
            kind text not null,
            payload text not null default '',
            created_at timestamptz not null default now()
        )`, s.tableEvents, s.tableChats),
	}
	for _, q := range stmts {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *PgStore) Close() error { s.pool.Close(); return nil }

func (s *PgStore) UpsertChat(c Chat) error {
	if c.ChatID == 0 {
		return fmt.Errorf("chat id required")
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.LastUpdatedAt = now
	if c.Language == "" {
		c.Language = "en"
	}
	_, err := s.pool.Exec(context.Background(),
		fmt.Sprintf(`insert into %s (chat_id, title, username, first_name, last_name, language, is_active, created_at, updated_at)
         values ($1,$2,$3,$4,$5,$6,true,$7,$8)
         on conflict (chat_id) do update set title=excluded.title, username=excluded.username, first_name=excluded.first_name, last_name=excluded.last_name, language=excluded.language, is_active=true, updated_at=excluded.updated_at`, s.tableChats),
		c.ChatID, c.Title, c.Username, c.FirstName, c.LastName, c.Language, c.CreatedAt, c.LastUpdatedAt,
	)
	return err
}

func (s *PgStore) GetChat(chatID int64) (Chat, error) {
	var c Chat
	err := s.pool.QueryRow(context.Background(),
		fmt.Sprintf(`select chat_id, title, username, first_name, last_name, language, is_active, created_at, updated_at from %s where chat_id=$1`, s.tableChats), chatID,
	).Scan(&c.ChatID, &c.Title, &c.Username, &c.FirstName, &c.LastName, &c.Language, &c.IsActive, &c.CreatedAt, &c.LastUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Chat{}, ErrNotFound
	}
	if err != nil {
		return Chat{}, err
	}
	return c, nil
}

func (s *PgStore) ListChats() ([]Chat, error) {
	rows, err := s.pool.Query(context.Background(),
		fmt.Sprintf(`select chat_id, title, username, first_name, last_name, language, is_active, created_at, updated_at from %s where is_active=true order by chat_id`, s.tableChats))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var chats []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ChatID, &c.Title, &c.Username, &c.FirstName, &c.LastName, &c.Language, &c.IsActive, &c.CreatedAt, &c.LastUpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (s *PgStore) DeactivateChat(chatID int64) error {
	tag, err := s.pool.Exec(context.Background(), fmt.Sprintf(`update %s set is_active=false, updated_at=now() where chat_id=$1`, s.tableChats), chatID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) AddEvent(e Event) (string, error) {
	var id int64
	err := s.pool.QueryRow(context.Background(),
		fmt.Sprintf(`insert into %s (chat_id, kind, payload, created_at) values ($1,$2,$3, now()) returning id`, s.tableEvents),
		e.ChatID, e.Kind, e.Payload,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *PgStore) ListEventsByChat(chatID int64) ([]Event, error) {
	rows, err := s.pool.Query(context.Background(),
		fmt.Sprintf(`select id, chat_id, kind, payload, created_at from %s where chat_id=$1 order by id`, s.tableEvents), chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Event
	for rows.Next() {
		var e Event
		var id int64
		if err := rows.Scan(&id, &e.ChatID, &e.Kind, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ID = strconv.FormatInt(id, 10)
		res = append(res, e)
	}
	return res, rows.Err()
}
