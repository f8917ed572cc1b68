package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/realtime"
)

// DefaultChannel is the pub/sub channel engagement events travel on.
const DefaultChannel = "engagement"

const envelopeVersion = 1

var (
	errNotUserChannel = errors.New("engagement events are addressed to a user channel")
	errUnknownEvent   = errors.New("unknown engagement event")
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// engagementEnvelope is the wire form shared by every instance on the channel. Events
// are addressed to a user, never to an arbitrary stream name.
type engagementEnvelope struct {
	Version     int               `json:"v"`
	UserID      uuid.UUID         `json:"user_id"`
	Event       realtime.SSEEvent `json:"event"`
	Data        json.RawMessage   `json:"data,omitempty"`
	PublishedAt time.Time         `json:"published_at"`
}

func encodeEnvelope(msg realtime.SSEMessage, now time.Time) ([]byte, error) {
	userID, err := uuid.Parse(msg.Channel)
	if err != nil || userID == uuid.Nil {
		return nil, fmt.Errorf("%w: %q", errNotUserChannel, msg.Channel)
	}
	if !msg.Event.Known() {
		return nil, fmt.Errorf("%w: %q", errUnknownEvent, msg.Event)
	}
	env := engagementEnvelope{
		Version:     envelopeVersion,
		UserID:      userID,
		Event:       msg.Event,
		PublishedAt: now.UTC(),
	}
	if msg.Data != nil {
		if env.Data, err = json.Marshal(msg.Data); err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msg.Event, err)
		}
	}
	return json.Marshal(env)
}

func decodeEnvelope(raw []byte) (realtime.SSEMessage, error) {
	var env engagementEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return realtime.SSEMessage{}, err
	}
	if env.Version != envelopeVersion {
		return realtime.SSEMessage{}, fmt.Errorf("envelope version %d not supported", env.Version)
	}
	if env.UserID == uuid.Nil {
		return realtime.SSEMessage{}, errNotUserChannel
	}
	if !env.Event.Known() {
		return realtime.SSEMessage{}, fmt.Errorf("%w: %q", errUnknownEvent, env.Event)
	}
	msg := realtime.SSEMessage{Channel: realtime.UserChannel(env.UserID), Event: env.Event}
	if len(env.Data) > 0 {
		var data any
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return realtime.SSEMessage{}, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
		msg.Data = data
	}
	return msg, nil
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	now     func() time.Time
}

// NewRedisBus connects to cfg.Addr and fans engagement events out to every instance
// subscribed to cfg.Channel.
func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisBus{
		log:     log.With("service", "RedisEngagementBus"),
		rdb:     rdb,
		channel: ch,
		now:     time.Now,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("engagement bus not initialized")
	}
	raw, err := encodeEnvelope(msg, b.now())
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Event, err)
	}
	return nil
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("engagement bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	// wait for the subscription confirmation so no publish after return is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				msg, err := decodeEnvelope([]byte(m.Payload))
				if err != nil {
					b.log.Warn("dropping engagement envelope", "channel", m.Channel, "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
