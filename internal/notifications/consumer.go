package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/teoalvarez/cartline-backend/pkg/config"
	"github.com/teoalvarez/cartline-backend/pkg/enums"
	"github.com/teoalvarez/cartline-backend/pkg/logger"
	"github.com/teoalvarez/cartline-backend/pkg/outbox"
	"github.com/teoalvarez/cartline-backend/pkg/outbox/idempotency"
)

const orderNotificationConsumer = "order-notifications"

// Consumer watches order domain events and turns them into customer emails.
type Consumer struct {
	repo         Repository
	sender       Sender
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	cfg          config.NotificationsConfig
	logg         *logger.Logger
}

// NewConsumer builds an order notification consumer.
func NewConsumer(
	repo Repository,
	sender Sender,
	subscription *pubsub.Subscriber,
	manager *idempotency.Manager,
	cfg config.NotificationsConfig,
	logg *logger.Logger,
) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		sender:       sender,
		subscription: subscription,
		idempotency:  manager,
		cfg:          cfg,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType.String(),
	})

	switch eventType {
	case enums.EventOrderStatusChanged, enums.EventPurchaseReceipt, enums.EventReviewRequest:
	default:
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventOrderStatusChanged:
		var payload orderStatusChangedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse status payload: %w", err)
		}
		return c.sendStatusEmail(ctx, payload, logCtx)
	case enums.EventPurchaseReceipt:
		var payload purchaseReceiptPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse receipt payload: %w", err)
		}
		return c.sendReceiptEmail(ctx, payload, logCtx)
	case enums.EventReviewRequest:
		var payload reviewRequestPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse review payload: %w", err)
		}
		return c.sendReviewEmail(ctx, payload, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) sendStatusEmail(ctx context.Context, payload orderStatusChangedPayload, logCtx context.Context) error {
	user, err := c.repo.FindUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	body := fmt.Sprintf("Hi %s,\n\nYour order %s is now %s.", user.Name, payload.OrderID, payload.NewStatus)
	if payload.Reason != nil && *payload.Reason != "" {
		body = fmt.Sprintf("%s\nNote: %s", body, *payload.Reason)
	}
	body = fmt.Sprintf("%s\n\nTrack it at %s/orders/%s\n\n%s", body, c.cfg.SiteURL, payload.OrderID, c.cfg.SiteName)

	if err := c.sender.Send(ctx, Email{
		To:      user.Email,
		From:    c.cfg.FromEmail,
		Subject: fmt.Sprintf("Your %s order is %s", c.cfg.SiteName, payload.NewStatus),
		Body:    body,
	}); err != nil {
		return err
	}
	c.logg.Info(logCtx, "status change email sent")
	return nil
}

func (c *Consumer) sendReceiptEmail(ctx context.Context, payload purchaseReceiptPayload, logCtx context.Context) error {
	user, err := c.repo.FindUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	total := fmt.Sprintf("$%.2f", float64(payload.TotalPriceCents)/100)
	body := fmt.Sprintf(
		"Hi %s,\n\nThanks for your purchase. We received your payment of %s for order %s.\n\n%s",
		user.Name, total, payload.OrderID, c.cfg.SiteName,
	)

	if err := c.sender.Send(ctx, Email{
		To:      user.Email,
		From:    c.cfg.FromEmail,
		Subject: fmt.Sprintf("Receipt for your %s order", c.cfg.SiteName),
		Body:    body,
	}); err != nil {
		return err
	}
	c.logg.Info(logCtx, "receipt email sent")
	return nil
}

func (c *Consumer) sendReviewEmail(ctx context.Context, payload reviewRequestPayload, logCtx context.Context) error {
	user, err := c.repo.FindUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour order %s was delivered. We would love to hear what you think: %s/orders/%s/review\n\n%s",
		user.Name, payload.OrderID, c.cfg.SiteURL, payload.OrderID, c.cfg.SiteName,
	)

	if err := c.sender.Send(ctx, Email{
		To:      user.Email,
		From:    c.cfg.FromEmail,
		Subject: "How was your order?",
		Body:    body,
	}); err != nil {
		return err
	}
	c.logg.Info(logCtx, "review request email sent")
	return nil
}
