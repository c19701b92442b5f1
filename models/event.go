package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is an audit record written in the same transaction as the
// mutation it describes.
type Event struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Event     string          `gorm:"not null" json:"event"`
	Version   int             `gorm:"not null" json:"version"`
	Entity    string          `gorm:"not null" json:"entity"`
	Timestamp time.Time       `gorm:"not null" json:"timestamp"`
	Data      json.RawMessage `gorm:"not null" json:"data"`
}

func NewEvent(event, entity string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Event:     event,
		Version:   1,
		Entity:    entity,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
	}, nil
}
