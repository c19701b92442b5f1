package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskJSONFieldNames(t *testing.T) {
	task := Task{
		ID:          7,
		Title:       "Buy groceries",
		Description: "milk and eggs",
		Completed:   false,
		CreatedAt:   time.Now().UTC(),
		UserID:      1,
	}

	data, err := json.Marshal(task)
	assert.NoError(t, err)

	var result map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &result))

	assert.Contains(t, result, "id")
	assert.Contains(t, result, "title")
	assert.Contains(t, result, "description")
	assert.Contains(t, result, "completed")
	assert.Contains(t, result, "createdAt")
	assert.Contains(t, result, "user_id")
	assert.Equal(t, float64(1), result["user_id"])
}
