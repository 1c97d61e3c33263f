package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/eallion/webstack-sync/internal/notify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	targets := []string{"assets/data/webstack.json", "static/webstack.json"}
	event := notify.NewEvent("webstack", 42, targets)

	_, err := uuid.Parse(event.RunID)
	require.NoError(t, err)
	assert.Equal(t, "webstack", event.Collection)
	assert.Equal(t, 42, event.Records)
	assert.Equal(t, targets, event.Targets)
	assert.False(t, event.Purged)
	assert.WithinDuration(t, time.Now(), event.FinishedAt, time.Minute)

	targets[0] = "changed"
	assert.Equal(t, "assets/data/webstack.json", event.Targets[0])

	other := notify.NewEvent("webstack", 42, nil)
	assert.NotEqual(t, event.RunID, other.RunID)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	event := notify.Event{
		RunID:      "6f1f0c57-3c55-4e0b-9d43-08a5f3a3c111",
		Collection: "webstack",
		Records:    3,
		Targets:    []string{"static/webstack.json"},
		Purged:     true,
		FinishedAt: time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC),
	}

	data, err := notify.Encode(event)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"run_id": "6f1f0c57-3c55-4e0b-9d43-08a5f3a3c111",
		"collection": "webstack",
		"records": 3,
		"targets": ["static/webstack.json"],
		"purged": true,
		"finished_at": "2026-10-18T08:30:00Z"
	}`, string(data))

	var decoded notify.Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.FinishedAt.Equal(event.FinishedAt))
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var publisher notify.Publisher = notify.Noop{}

	require.NoError(t, publisher.Publish(context.Background(), notify.NewEvent("webstack", 0, nil)))
	require.NoError(t, publisher.Close())
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := notify.Connect("nats://127.0.0.1:1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to NATS")
}
