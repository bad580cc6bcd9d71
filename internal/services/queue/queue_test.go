package queue

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/agrimesh/fieldops/internal/model"
	"github.com/agrimesh/fieldops/internal/model/messages"
	"github.com/agrimesh/fieldops/internal/services/broadcast"
	"github.com/agrimesh/fieldops/internal/store"
)

func newTestQueue(t *testing.T) (*Queue, *broadcast.Hub) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(st.Close)
	hub := broadcast.NewHub()
	return New(st, hub), hub
}

func TestSubmitAssignsUniqueIDs(t *testing.T) {
	q, _ := newTestQueue(t)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		cmd, err := q.Submit("irrigation", "Z1", nil)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if seen[cmd.CommandID] {
			t.Fatalf("command_id %s assigned twice", cmd.CommandID)
		}
		seen[cmd.CommandID] = true
		if cmd.Status != model.StatusPending {
			t.Errorf("fresh command status = %s, want pending", cmd.Status)
		}
	}
}

func TestSubmitValidation(t *testing.T) {
	q, _ := newTestQueue(t)

	if _, err := q.Submit("", "Z1", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("missing command_type: got %v, want ErrValidation", err)
	}
	if _, err := q.Submit("irrigation", "  ", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("blank zone: got %v, want ErrValidation", err)
	}
}

func TestSubmitPublishesSubmissionEvent(t *testing.T) {
	q, hub := newTestQueue(t)

	sub := hub.Subscribe(4)
	defer sub.Close()

	cmd, err := q.Submit("fertilizer", "Z2", model.Params{"npk": "10-10-10"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	evt := <-sub.Events()
	if evt.Type != messages.EventCommandSubmitted {
		t.Fatalf("event type = %s, want command_submitted", evt.Type)
	}
	got := evt.Payload.(model.Command)
	if got.CommandID != cmd.CommandID {
		t.Errorf("event carries %s, want %s", got.CommandID, cmd.CommandID)
	}
}
