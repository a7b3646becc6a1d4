package outbox

import (
	"encoding/json"
	"testing"

	"github.com/mcdev12/tourney/go/internal/models"
)

func TestJetStreamMessage(t *testing.T) {
	p := &JetStreamPublisher{config: DefaultJetStreamConfig()}
	ann := models.Announcement{ID: 42, CreatedAtMs: 1_000, Type: "rebalance", Payload: json.RawMessage(`{"message":"Rebalanced tables."}`)}

	msg, msgID, err := p.message(ann)
	if err != nil {
		t.Fatalf("message() error = %v", err)
	}
	if msg.Subject != "tourney.events.rebalance" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if msg.Header.Get("Event-Type") != "rebalance" || msg.Header.Get("Announcement-ID") != "42" {
		t.Fatalf("headers = %v", msg.Header)
	}
	if msgID != announcementMsgID(42) || msg.Header.Get("Event-ID") != msgID {
		t.Fatalf("msg id = %q", msgID)
	}

	var env struct {
		EventID     string          `json:"eventId"`
		EventType   string          `json:"eventType"`
		CreatedAtMs int64           `json:"createdAtMs"`
		Payload     json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.EventType != "rebalance" || env.CreatedAtMs != 1_000 || string(env.Payload) != `{"message":"Rebalanced tables."}` {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestAnnouncementMsgIDIsStable(t *testing.T) {
	if announcementMsgID(7) != announcementMsgID(7) {
		t.Fatal("message id not deterministic")
	}
	if announcementMsgID(7) == announcementMsgID(8) {
		t.Fatal("distinct announcements share a message id")
	}
}
