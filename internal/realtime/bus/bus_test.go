package bus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/realtime"
)

func TestRedisBus_ForwardsPublishedMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := NewRedisBus(logger.Nop(), RedisConfig{Addr: mr.Addr(), Channel: "engagement-test"})
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan realtime.SSEMessage, 1)
	if err := b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	userID := uuid.New()
	msg := realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventSkipDetected,
		Data:    map[string]any{"content_id": "respira", "skips": 2},
	}
	if err := b.Publish(ctx, msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case m := <-got:
		if m.Channel != msg.Channel || m.Event != msg.Event {
			t.Fatalf("unexpected message: %+v", m)
		}
		data, ok := m.Data.(map[string]any)
		if !ok || data["content_id"] != "respira" {
			t.Fatalf("payload lost: %+v", m.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for forwarded message")
	}
}

func TestRedisBus_RejectsMessagesWithoutUserChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := NewRedisBus(logger.Nop(), RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	err = b.Publish(context.Background(), realtime.SSEMessage{Channel: "lobby", Event: realtime.SSEEventSkipDetected})
	if !errors.Is(err, errNotUserChannel) {
		t.Fatalf("expected errNotUserChannel, got %v", err)
	}
	err = b.Publish(context.Background(), realtime.SSEMessage{Channel: realtime.UserChannel(uuid.New()), Event: "Chat"})
	if !errors.Is(err, errUnknownEvent) {
		t.Fatalf("expected errUnknownEvent, got %v", err)
	}
}

func TestRedisBus_DropsForeignPayloads(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := NewRedisBus(logger.Nop(), RedisConfig{Addr: mr.Addr(), Channel: "engagement-test"})
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan realtime.SSEMessage, 4)
	if err := b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	userID := uuid.New()
	future, _ := json.Marshal(engagementEnvelope{Version: envelopeVersion + 1, UserID: userID, Event: realtime.SSEEventSkipDetected})
	for _, raw := range []string{
		"not json",
		`{"channel":"` + userID.String() + `","event":"SkipDetected"}`,
		string(future),
	} {
		mr.Publish("engagement-test", raw)
	}
	if err := b.Publish(ctx, realtime.SSEMessage{Channel: realtime.UserChannel(userID), Event: realtime.SSEEventSessionRestarted}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case m := <-got:
		if m.Event != realtime.SSEEventSessionRestarted || m.Channel != realtime.UserChannel(userID) || m.Data != nil {
			t.Fatalf("only the well-formed envelope should arrive, got %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for forwarded message")
	}
	select {
	case m := <-got:
		t.Fatalf("unexpected extra delivery: %+v", m)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEnvelope_CarriesUserAndPayload(t *testing.T) {
	userID := uuid.New()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CLT", -3*3600))
	raw, err := encodeEnvelope(realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventSessionProgress,
		Data:    map[string]any{"completion_percentage": 40},
	}, at)
	if err != nil {
		t.Fatalf("encodeEnvelope: %v", err)
	}
	var env engagementEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Version != envelopeVersion || env.UserID != userID || !env.PublishedAt.Equal(at) || env.PublishedAt.Location() != time.UTC {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	msg, err := decodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
	data, ok := msg.Data.(map[string]any)
	if !ok || data["completion_percentage"] != float64(40) {
		t.Fatalf("payload lost: %+v", msg.Data)
	}
}

func TestNewRedisBus_RequiresAddress(t *testing.T) {
	if _, err := NewRedisBus(logger.Nop(), RedisConfig{}); err == nil {
		t.Fatalf("expected error without address")
	}
}

func TestLocalBus_DeliversInProcess(t *testing.T) {
	b := NewLocalBus()
	var seen []realtime.SSEEvent
	if err := b.StartForwarder(context.Background(), func(m realtime.SSEMessage) { seen = append(seen, m.Event) }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	_ = b.Publish(context.Background(), realtime.SSEMessage{Channel: "c", Event: realtime.SSEEventSessionRestarted})
	if len(seen) != 1 || seen[0] != realtime.SSEEventSessionRestarted {
		t.Fatalf("unexpected deliveries: %v", seen)
	}
	_ = b.Close()
	_ = b.Publish(context.Background(), realtime.SSEMessage{Channel: "c", Event: realtime.SSEEventSkipDetected})
	if len(seen) != 1 {
		t.Fatalf("closed bus should not deliver")
	}
}
