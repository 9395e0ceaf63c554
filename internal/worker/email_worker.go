package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/config"
	"github.com/summitprep/satprep-backend/internal/email"
	"github.com/summitprep/satprep-backend/internal/outbox"
)

const (
	EmailPollTimeout = 1 * time.Second
	EmailMaxAttempts = 3
	EmailRetryDelay  = 5 * time.Second
)

// EmailWorker drains the outbox queue and delivers messages through
// SendGrid. Delivery is at-least-once: a failed send is requeued up to
// EmailMaxAttempts before the event is dropped with an error log.
type EmailWorker struct {
	rdb    *redis.Client
	sender *email.Sender
	cfg    *config.Config
	log    zerolog.Logger
}

func NewEmailWorker(rdb *redis.Client, sender *email.Sender, cfg *config.Config, log zerolog.Logger) *EmailWorker {
	return &EmailWorker{
		rdb:    rdb,
		sender: sender,
		cfg:    cfg,
		log:    log.With().Str("component", "email_worker").Logger(),
	}
}

type queuedEvent struct {
	outbox.Event
	Attempts int `json:"attempts,omitempty"`
}

func (w *EmailWorker) Start(ctx context.Context) {
	w.log.Info().Msg("EmailWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return

		default:
			item, err := w.rdb.BLPop(ctx, EmailPollTimeout, config.WorkerKey.EmailOutboxQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var ev queuedEvent
			if err := json.Unmarshal([]byte(item[1]), &ev); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			w.deliver(ctx, ev)
		}
	}
}

func (w *EmailWorker) deliver(ctx context.Context, ev queuedEvent) {
	rendered, err := email.Render(ev.Event, w.cfg.PublicBaseURL)
	if err != nil {
		w.log.Error().Err(err).Str("type", string(ev.Type)).Msg("Unrenderable event dropped")
		return
	}

	err = w.sender.Send(ev.Name, ev.To, rendered.Subject, rendered.Plain, rendered.HTML)
	if err == nil {
		w.log.Info().Str("type", string(ev.Type)).Str("to", ev.To).Msg("Email delivered")
		return
	}

	// Without credentials the content is logged so local flows stay visible.
	if errors.Is(err, email.ErrNotConfigured) {
		w.log.Info().Str("type", string(ev.Type)).Str("to", ev.To).
			Str("subject", rendered.Subject).Msg("SendGrid not configured, logging instead of sending")
		return
	}

	ev.Attempts++
	if ev.Attempts >= EmailMaxAttempts {
		w.log.Error().Err(err).Str("type", string(ev.Type)).Str("to", ev.To).
			Int("attempts", ev.Attempts).Msg("Email dropped after repeated failures")
		return
	}

	w.log.Warn().Err(err).Str("type", string(ev.Type)).Int("attempts", ev.Attempts).Msg("Send failed, requeueing")
	raw, _ := json.Marshal(ev)

	// Back off before requeueing so a provider outage does not spin the loop.
	select {
	case <-ctx.Done():
	case <-time.After(EmailRetryDelay):
	}
	w.rdb.RPush(ctx, config.WorkerKey.EmailOutboxQueue, raw)
}
