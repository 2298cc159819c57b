package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/teoalvarez/cartline-backend/pkg/db/models"
	"github.com/teoalvarez/cartline-backend/pkg/enums"
	pkgerrors "github.com/teoalvarez/cartline-backend/pkg/errors"
	"github.com/teoalvarez/cartline-backend/pkg/logger"
	"github.com/teoalvarez/cartline-backend/pkg/metrics"
	"github.com/teoalvarez/cartline-backend/pkg/outbox"
	"github.com/teoalvarez/cartline-backend/pkg/pagination"
	"github.com/teoalvarez/cartline-backend/pkg/paypal"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PaymentGateway abstracts the PayPal Orders API surface the service needs.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, referenceID string, amountCents int) (*paypal.OrderResult, error)
	CaptureOrder(ctx context.Context, paypalOrderID string) (*paypal.OrderResult, error)
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDetail, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters, actor Actor) (*OrderList, error)
	ListMine(ctx context.Context, params pagination.Params, actor Actor) (*OrderList, error)
	SetStatus(ctx context.Context, input SetStatusInput) (*StatusChangeResult, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, actor Actor) (*StatusChangeResult, error)
	Deliver(ctx context.Context, orderID uuid.UUID, actor Actor) (*StatusChangeResult, error)
	BulkSetStatus(ctx context.Context, input BulkSetStatusInput) (*BulkStatusResult, error)
	Delete(ctx context.Context, orderID uuid.UUID, actor Actor) error
	CreatePayPalOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*PayPalOrderResult, error)
	CapturePayPalOrder(ctx context.Context, input CapturePayPalInput) (*StatusChangeResult, error)
}

type service struct {
	repo           Repository
	tx             txRunner
	outbox         outboxPublisher
	gateway        PaymentGateway
	logg           *logger.Logger
	metrics        *metrics.OrderMetrics
	taxRatePercent int
	now            func() time.Time
}

// OrderStatusChangedEvent is emitted on every committed transition.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID         `json:"order_id"`
	UserID         uuid.UUID         `json:"user_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	NewStatus      enums.OrderStatus `json:"new_status"`
	Reason         *string           `json:"reason,omitempty"`
}

// PurchaseReceiptEvent asks the notification worker to mail a receipt.
type PurchaseReceiptEvent struct {
	OrderID         uuid.UUID `json:"order_id"`
	UserID          uuid.UUID `json:"user_id"`
	TotalPriceCents int       `json:"total_price_cents"`
}

// ReviewRequestEvent asks the notification worker to mail a review prompt.
type ReviewRequestEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}

// NewService builds the order lifecycle service with its dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	gateway PaymentGateway,
	logg *logger.Logger,
	orderMetrics *metrics.OrderMetrics,
	taxRatePercent int,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if taxRatePercent < 0 {
		return nil, fmt.Errorf("tax rate cannot be negative")
	}
	return &service{
		repo:           repo,
		tx:             tx,
		outbox:         outboxSvc,
		gateway:        gateway,
		logg:           logg,
		metrics:        orderMetrics,
		taxRatePercent: taxRatePercent,
		now:            time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if input.PaymentMethod != "" && !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.repo.FindProducts(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	pricingItems := make([]PricingItem, 0, len(input.Items))
	orderItems := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]string{"product_id": item.ProductID.String()})
		}
		pricingItems = append(pricingItems, PricingItem{
			UnitPriceCents: product.PriceCents,
			Qty:            item.Qty,
		})
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID:           product.ID,
			Name:                product.Name,
			Slug:                product.Slug,
			Image:               image,
			Category:            product.Category,
			UnitPriceCents:      product.PriceCents,
			Qty:                 item.Qty,
			Size:                item.Size,
			Color:               item.Color,
			CountInStockAtOrder: product.CountInStock,
		})
	}

	options, err := s.repo.FindDeliveryOptions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery options")
	}

	now := s.now()
	pricing, err := CalcDeliveryDateAndPrice(PricingInput{
		Items:           pricingItems,
		HasAddress:      !input.ShippingAddress.IsZero(),
		DeliveryOptions: options,
		DeliveryIndex:   input.DeliveryIndex,
		TaxRatePercent:  s.taxRatePercent,
		Now:             now,
	})
	if err != nil {
		return nil, err
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = enums.PaymentMethodPayPal
	}

	order := &models.Order{
		UserID:             input.UserID,
		ShippingAddress:    input.ShippingAddress,
		PaymentMethod:      paymentMethod,
		ItemsPriceCents:    pricing.ItemsPriceCents,
		ShippingPriceCents: pricing.ShippingPriceCents,
		TaxPriceCents:      pricing.TaxPriceCents,
		TotalPriceCents:    pricing.TotalPriceCents,
		Status:             enums.OrderStatusPending,
		ExpectedDeliveryAt: pricing.ExpectedDeliveryAt,
		Items:              orderItems,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		note := "order created"
		return repo.AppendStatusEntry(ctx, &models.OrderStatusEntry{
			OrderID:   order.ID,
			Status:    enums.OrderStatusPending,
			Note:      &note,
			ChangedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(logCtx, "order created")

	detail, err := s.Get(ctx, order.ID, Actor{UserID: input.UserID, Role: enums.UserRoleUser})
	if err != nil {
		return &CreateOrderResult{OrderID: order.ID}, nil
	}
	return &CreateOrderResult{OrderID: order.ID, Detail: detail}, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDetail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return detailFromModel(order), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters, actor Actor) (*OrderList, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListMine(ctx context.Context, params pagination.Params, actor Actor) (*OrderList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID := actor.UserID
	list, err := s.repo.ListOrders(ctx, params, ListFilters{UserID: &userID})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// SetStatus runs the full transition: validation, implicit payment, stock
// moves, boolean/timestamp projections, history append, and outbox events —
// all inside a single transaction.
func (s *service) SetStatus(ctx context.Context, input SetStatusInput) (*StatusChangeResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	return s.transition(ctx, input.OrderID, input.Status, input.Reason, input.Actor)
}

func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, actor Actor) (*StatusChangeResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	return s.transition(ctx, orderID, enums.OrderStatusProcessing, nil, actor)
}

func (s *service) Deliver(ctx context.Context, orderID uuid.UUID, actor Actor) (*StatusChangeResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	return s.transition(ctx, orderID, enums.OrderStatusDelivered, nil, actor)
}

func (s *service) BulkSetStatus(ctx context.Context, input BulkSetStatusInput) (*BulkStatusResult, error) {
	if !input.Actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	if len(input.OrderIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	result := &BulkStatusResult{Total: len(input.OrderIDs)}
	var errs error
	for _, orderID := range input.OrderIDs {
		if _, err := s.transition(ctx, orderID, input.Status, input.Reason, input.Actor); err != nil {
			result.Failed++
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", orderID, err))
			continue
		}
		result.Successful++
	}
	if errs != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"total":      result.Total,
			"successful": result.Successful,
			"failed":     result.Failed,
		})
		s.logg.Warn(logCtx, fmt.Sprintf("bulk status update finished with failures: %v", errs))
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, orderID uuid.UUID, actor Actor) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteOrder(ctx, orderID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
	if err != nil {
		return err
	}
	logCtx := s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(logCtx, "order deleted")
	return nil
}

func (s *service) CreatePayPalOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*PayPalOrderResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured")
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	if order.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if order.PaymentMethod != enums.PaymentMethodPayPal {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not a paypal order")
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, order.ID.String(), order.TotalPriceCents)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create paypal order")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdateOrder(ctx, order.ID, map[string]any{
			"payment_gateway_order_id": gatewayOrder.ID,
			"payment_gateway_status":   gatewayOrder.Status,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record paypal order")
	}

	return &PayPalOrderResult{PayPalOrderID: gatewayOrder.ID}, nil
}

func (s *service) CapturePayPalOrder(ctx context.Context, input CapturePayPalInput) (*StatusChangeResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.PayPalOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paypal order id required")
	}
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured")
	}

	order, err := s.repo.FindOrder(ctx, input.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !input.Actor.IsAdmin() && order.UserID != input.Actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	if order.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if order.PaymentResult.GatewayOrderID != input.PayPalOrderID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "captured payment does not match order")
	}

	captured, err := s.gateway.CaptureOrder(ctx, input.PayPalOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "capture paypal order")
	}
	if captured.Status != paypal.CaptureStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment capture incomplete").
			WithDetails(map[string]string{"status": captured.Status})
	}
	if captured.CapturedCents != order.TotalPriceCents {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "captured amount does not match order total").
			WithDetails(map[string]any{
				"captured_cents": captured.CapturedCents,
				"total_cents":    order.TotalPriceCents,
			})
	}

	return s.transitionWithPayment(ctx, order.ID, enums.OrderStatusProcessing, nil, input.Actor, &models.PaymentResult{
		GatewayOrderID: captured.ID,
		Status:         captured.Status,
		PayerEmail:     captured.PayerEmail,
		CapturedCents:  captured.CapturedCents,
	})
}

func (s *service) transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, reason *string, actor Actor) (*StatusChangeResult, error) {
	return s.transitionWithPayment(ctx, orderID, target, reason, actor, nil)
}

func (s *service) transitionWithPayment(
	ctx context.Context,
	orderID uuid.UUID,
	target enums.OrderStatus,
	reason *string,
	actor Actor,
	payment *models.PaymentResult,
) (*StatusChangeResult, error) {
	started := s.now()
	var result *StatusChangeResult

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if err := ValidateTransition(order.Status, target, order.IsPaid); err != nil {
			s.metrics.IncTransitionBlocked(order.Status.String(), target.String())
			return err
		}

		now := s.now()
		previous := order.Status
		updates := map[string]any{"status": target}

		becomingPaid := !order.IsPaid && (target.ImpliesPaid() || payment != nil)
		if becomingPaid {
			for _, item := range order.Items {
				if err := repo.DecrementProductStock(ctx, item.ProductID, item.Qty); err != nil {
					if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
						s.metrics.IncInsufficientStock()
					}
					return err
				}
			}
			updates["is_paid"] = true
			updates["paid_at"] = now
		}
		if payment != nil {
			updates["payment_gateway_order_id"] = payment.GatewayOrderID
			updates["payment_gateway_status"] = payment.Status
			updates["payment_payer_email"] = payment.PayerEmail
			updates["payment_captured_cents"] = payment.CapturedCents
		}

		switch target {
		case enums.OrderStatusShipped:
			updates["shipped_at"] = now
		case enums.OrderStatusDelivered:
			updates["is_delivered"] = true
			updates["delivered_at"] = now
		case enums.OrderStatusCompleted:
			if !order.IsDelivered {
				updates["is_delivered"] = true
				updates["delivered_at"] = now
			}
			updates["completed_at"] = now
		case enums.OrderStatusCancelled:
			updates["is_cancelled"] = true
			updates["cancelled_at"] = now
			if reason != nil {
				updates["cancellation_reason"] = *reason
			}
		case enums.OrderStatusRejected:
			updates["is_rejected"] = true
			updates["rejected_at"] = now
			if reason != nil {
				updates["rejection_reason"] = *reason
			}
		}

		// Stock returns to the shelf only if it actually left it.
		if (target == enums.OrderStatusCancelled || target == enums.OrderStatusRejected) && order.IsPaid {
			for _, item := range order.Items {
				if err := repo.RestoreProductStock(ctx, item.ProductID, item.Qty); err != nil {
					return err
				}
			}
		}

		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		if err := repo.AppendStatusEntry(ctx, &models.OrderStatusEntry{
			OrderID:   order.ID,
			Status:    target,
			Note:      reason,
			ChangedAt: now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		actorRef := &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()}
		statusEvent := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef,
			Data: OrderStatusChangedEvent{
				OrderID:        order.ID,
				UserID:         order.UserID,
				PreviousStatus: previous,
				NewStatus:      target,
				Reason:         reason,
			},
		}
		if err := s.outbox.Emit(ctx, tx, statusEvent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit status event")
		}

		if becomingPaid {
			receipt := outbox.DomainEvent{
				EventType:     enums.EventPurchaseReceipt,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         actorRef,
				Data: PurchaseReceiptEvent{
					OrderID:         order.ID,
					UserID:          order.UserID,
					TotalPriceCents: order.TotalPriceCents,
				},
			}
			if err := s.outbox.Emit(ctx, tx, receipt); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit receipt event")
			}
		}
		if target == enums.OrderStatusDelivered {
			review := outbox.DomainEvent{
				EventType:     enums.EventReviewRequest,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         actorRef,
				Data: ReviewRequestEvent{
					OrderID: order.ID,
					UserID:  order.UserID,
				},
			}
			if err := s.outbox.Emit(ctx, tx, review); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit review event")
			}
		}

		result = &StatusChangeResult{
			OrderID:        order.ID,
			PreviousStatus: previous,
			NewStatus:      target,
			Message:        StatusChangeMessage(target),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(result.PreviousStatus.String(), result.NewStatus.String())
	s.metrics.ObserveDuration("set_status", s.now().Sub(started))

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":        result.OrderID.String(),
		"previous_status": result.PreviousStatus.String(),
		"new_status":      result.NewStatus.String(),
	})
	s.logg.Info(logCtx, "order status changed")
	return result, nil
}

func detailFromModel(order *models.Order) *OrderDetail {
	detail := &OrderDetail{
		ID:                 order.ID,
		UserID:             order.UserID,
		Status:             order.Status,
		ShippingAddress:    order.ShippingAddress,
		PaymentMethod:      order.PaymentMethod,
		ItemsPriceCents:    order.ItemsPriceCents,
		ShippingPriceCents: order.ShippingPriceCents,
		TaxPriceCents:      order.TaxPriceCents,
		TotalPriceCents:    order.TotalPriceCents,
		IsPaid:             order.IsPaid,
		PaidAt:             order.PaidAt,
		IsDelivered:        order.IsDelivered,
		DeliveredAt:        order.DeliveredAt,
		IsCancelled:        order.IsCancelled,
		IsRejected:         order.IsRejected,
		CancellationReason: order.CancellationReason,
		RejectionReason:    order.RejectionReason,
		ExpectedDeliveryAt: order.ExpectedDeliveryAt,
		CreatedAt:          order.CreatedAt,
	}
	for _, item := range order.Items {
		detail.Items = append(detail.Items, OrderItemView{
			ProductID:      item.ProductID,
			Name:           item.Name,
			Slug:           item.Slug,
			Image:          item.Image,
			Category:       item.Category,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			Size:           item.Size,
			Color:          item.Color,
		})
	}
	for _, entry := range order.StatusHistory {
		detail.StatusHistory = append(detail.StatusHistory, StatusHistoryView{
			Status:    entry.Status,
			Note:      entry.Note,
			ChangedAt: entry.ChangedAt,
		})
	}
	return detail
}
