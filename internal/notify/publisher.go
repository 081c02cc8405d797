package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/projectlibrary/internal/kafka"
)

const (
	EventPurchaseConfirmed     = "PurchaseConfirmed"
	EventCustomRequestReceived = "CustomRequestReceived"
)

type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Publisher defers notifications to the notifier worker by publishing them as
// events. It satisfies the same notifier contracts as Mailer.
type Publisher struct {
	producer Producer
	source   string
}

func NewPublisher(producer Producer, source string) *Publisher {
	return &Publisher{producer: producer, source: source}
}

func (p *Publisher) publish(ctx context.Context, eventType, key string, payload any) error {
	env, err := kafka.NewEnvelope(eventType, p.source, key, payload)
	if err != nil {
		return err
	}

	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}

	if err := p.producer.Publish(ctx, []byte(key), b); err != nil {
		return fmt.Errorf("publishing %s: %w", eventType, err)
	}

	return nil
}

func (p *Publisher) PurchaseConfirmed(ctx context.Context, purchase Purchase) error {
	return p.publish(ctx, EventPurchaseConfirmed, purchase.OrderID, purchase)
}

func (p *Publisher) CustomRequestReceived(ctx context.Context, r CustomRequest) error {
	return p.publish(ctx, EventCustomRequestReceived, r.ID.String(), r)
}

// Dispatch decodes one published event and delivers it through the mailer.
// Unknown event types are skipped so their offsets are still committed.
func Dispatch(ctx context.Context, m *Mailer, raw []byte) error {
	env, err := kafka.DecodeEnvelope(raw)
	if err != nil {
		slog.Warn("dropping malformed event", "error", err)
		return nil
	}

	switch env.EventType {
	case EventPurchaseConfirmed:
		purchase, err := kafka.UnwrapPayload[Purchase](env.Payload)
		if err != nil {
			slog.Warn("dropping malformed event", "event_id", env.EventID, "error", err)
			return nil
		}

		return m.PurchaseConfirmed(ctx, purchase)
	case EventCustomRequestReceived:
		req, err := kafka.UnwrapPayload[CustomRequest](env.Payload)
		if err != nil {
			slog.Warn("dropping malformed event", "event_id", env.EventID, "error", err)
			return nil
		}

		return m.CustomRequestReceived(ctx, req)
	default:
		slog.Debug("skipping event", "event_type", env.EventType, "event_id", env.EventID)
		return nil
	}
}
