package event

import (
	"context"

	"moneymarket/core"

	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.EventStore {
	return &eventStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})
		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Create append events, an event whose trace id is already journaled is skipped
func (s *eventStore) Create(ctx context.Context, events []*core.Event) error {
	return s.db.Tx(func(tx *db.DB) error {
		for _, event := range events {
			if err := tx.Update().Where("trace_id=?", event.TraceID).FirstOrCreate(event).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// List events with id greater than from, oldest first
func (s *eventStore) List(ctx context.Context, from int64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().Where("id > ?", from).Order("id").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
