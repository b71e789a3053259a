package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

type BoltStore struct {
	db        *bolt.DB
	bktChats  []byte
	bktEvents []byte
}

var (
	bucketChats  = []byte("chats")
	bucketEvents = []byte("events")
)

var _ Store = (*BoltStore)(nil)

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	prefix := os.Getenv("DB_TABLE_PREFIX")
	bktChats := []byte(prefix + string(bucketChats))
	bktEvents := []byte(prefix + string(bucketEvents))
	err = db.Update(func(tx *bolt.Tx) error {
		if _, e := tx.CreateBucketIfNotExists(bktChats); e != nil {
			return e
		}
		if _, e := tx.CreateBucketIfNotExists(bktEvents); e != nil {
			return e
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, bktChats: bktChats, bktEvents: bktEvents}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func chatKey(chatID int64) []byte { return []byte(strconv.FormatInt(chatID, 10)) }

// UpsertChat saves c as active, keeping the original creation time.
func (s *BoltStore) UpsertChat(c Chat) error {
	if c.ChatID == 0 {
		return fmt.Errorf("chat id required")
	}
	c.IsActive = true
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bktChats)
		now := time.Now()
		if v := bucket.Get(chatKey(c.ChatID)); v != nil && c.CreatedAt.IsZero() {
			var prev Chat
			if err := json.Unmarshal(v, &prev); err == nil {
				c.CreatedAt = prev.CreatedAt
			}
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.LastUpdatedAt = now
		return putJSON(bucket, chatKey(c.ChatID), c)
	})
}

func (s *BoltStore) GetChat(chatID int64) (Chat, error) {
	var c Chat
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bktChats).Get(chatKey(chatID))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &c)
	})
	return c, err
}

func (s *BoltStore) ListChats() ([]Chat, error) {
	var chats []Chat
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bktChats).ForEach(func(k, v []byte) error {
			var c Chat
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			if c.IsActive {
				chats = append(chats, c)
			}
			return nil
		})
	})
	return chats, err
}

func (s *BoltStore) DeactivateChat(chatID int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bktChats)
		v := bucket.Get(chatKey(chatID))
		if v == nil {
			return ErrNotFound
		}
		var c Chat
		if err := json.Unmarshal(v, &c); err != nil {
			return err
		}
		c.IsActive = false
		c.LastUpdatedAt = time.Now()
		return putJSON(bucket, chatKey(chatID), c)
	})
}

// AddEvent appends e to the journal. Ids come from the bucket sequence so
// iteration order is insertion order.
func (s *BoltStore) AddEvent(e Event) (string, error) {
	e.CreatedAt = time.Now()
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bktEvents)
		if e.ID == "" {
			seq, err := bucket.NextSequence()
			if err != nil {
				return err
			}
			e.ID = fmt.Sprintf("%020d", seq)
		}
		return putJSON(bucket, []byte(e.ID), e)
	})
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

func (s *BoltStore) ListEventsByChat(chatID int64) ([]Event, error) {
	var res []Event
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bktEvents).ForEach(func(k, v []byte) error {
			var e Event
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			if e.ChatID == chatID {
				res = append(res, e)
			}
			return nil
		})
	})
	return res, err
}

func putJSON(bucket *bolt.Bucket, key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return bucket.Put(key, b)
}
