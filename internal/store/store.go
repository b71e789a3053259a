package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Chat is a conversation that has talked to the bot.
type Chat struct {
	ChatID        int64     `json:"chat_id"`
	Title         string    `json:"title"`
	Username      string    `json:"username"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Language      string    `json:"language"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	IsActive      bool      `json:"is_active"`
}

// Event is one handled update.
type Event struct {
	ID        string    `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Kind      string    `json:"kind"`    // text, location, contact, callback_query
	Payload   string    `json:"payload"` // message text, callback data, "lat,lon" or phone
	CreatedAt time.Time `json:"created_at"`
}

// Store abstracts persistent storage operations
type Store interface {
	Close() error

	// Chats
	UpsertChat(c Chat) error
	GetChat(chatID int64) (Chat, error)
	ListChats() ([]Chat, error)
	DeactivateChat(chatID int64) error

	// Events
	AddEvent(e Event) (string, error)
	ListEventsByChat(chatID int64) ([]Event, error)
}

var ErrNotFound = errors.New("not found")

// Open selects a backend by driver name: "bolt" opens boltPath, "postgres"
// connects to databaseURL.
func Open(ctx context.Context, driver, boltPath, databaseURL string) (Store, error) {
	switch driver {
	case "bolt":
		if boltPath == "" {
			return nil, fmt.Errorf("bolt path is empty")
		}
		return OpenBolt(boltPath)
	case "postgres":
		if databaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is empty")
		}
		return OpenPostgres(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
