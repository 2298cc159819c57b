package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teoalvarez/cartline-backend/pkg/db/models"
	"github.com/teoalvarez/cartline-backend/pkg/enums"
	pkgerrors "github.com/teoalvarez/cartline-backend/pkg/errors"
	"github.com/teoalvarez/cartline-backend/pkg/logger"
	"github.com/teoalvarez/cartline-backend/pkg/outbox"
	"github.com/teoalvarez/cartline-backend/pkg/pagination"
	"github.com/teoalvarez/cartline-backend/pkg/paypal"
)

type stubOrdersRepo struct {
	orders          map[uuid.UUID]*models.Order
	products        map[uuid.UUID]*models.Product
	deliveryOptions []models.DeliveryOption
	history         []models.OrderStatusEntry
}

func newStubRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders:   make(map[uuid.UUID]*models.Order),
		products: make(map[uuid.UUID]*models.Product),
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) AppendStatusEntry(ctx context.Context, entry *models.OrderStatusEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	s.history = append(s.history, *entry)
	return nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.StatusHistory = s.historyFor(orderID)
	return &copied, nil
}

func (s *stubOrdersRepo) FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.FindOrder(ctx, orderID)
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			if v, ok := value.(enums.OrderStatus); ok {
				order.Status = v
			}
		case "is_paid":
			order.IsPaid = value.(bool)
		case "paid_at":
			t := value.(time.Time)
			order.PaidAt = &t
		case "is_delivered":
			order.IsDelivered = value.(bool)
		case "delivered_at":
			t := value.(time.Time)
			order.DeliveredAt = &t
		case "is_cancelled":
			order.IsCancelled = value.(bool)
		case "cancelled_at":
			t := value.(time.Time)
			order.CancelledAt = &t
		case "is_rejected":
			order.IsRejected = value.(bool)
		case "rejected_at":
			t := value.(time.Time)
			order.RejectedAt = &t
		case "shipped_at":
			t := value.(time.Time)
			order.ShippedAt = &t
		case "completed_at":
			t := value.(time.Time)
			order.CompletedAt = &t
		case "cancellation_reason":
			v := value.(string)
			order.CancellationReason = &v
		case "rejection_reason":
			v := value.(string)
			order.RejectionReason = &v
		case "payment_gateway_order_id":
			order.PaymentResult.GatewayOrderID = value.(string)
		case "payment_gateway_status":
			order.PaymentResult.Status = value.(string)
		case "payment_payer_email":
			order.PaymentResult.PayerEmail = value.(string)
		case "payment_captured_cents":
			order.PaymentResult.CapturedCents = value.(int)
		}
	}
	return nil
}

func (s *stubOrdersRepo) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if _, ok := s.orders[orderID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.orders, orderID)
	return nil
}

func (s *stubOrdersRepo) ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		if filters.UserID != nil && order.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		list.Orders = append(list.Orders, OrderSummaryView{
			ID:     order.ID,
			UserID: order.UserID,
			Status: order.Status,
		})
	}
	return list, nil
}

func (s *stubOrdersRepo) FindProducts(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error) {
	out := make([]models.Product, 0, len(productIDs))
	for _, id := range productIDs {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) FindDeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error) {
	return s.deliveryOptions, nil
}

func (s *stubOrdersRepo) DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int) error {
	product, ok := s.products[productID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.CountInStock < qty {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for product")
	}
	product.CountInStock -= qty
	return nil
}

func (s *stubOrdersRepo) RestoreProductStock(ctx context.Context, productID uuid.UUID, qty int) error {
	if product, ok := s.products[productID]; ok {
		product.CountInStock += qty
	}
	return nil
}

func (s *stubOrdersRepo) historyFor(orderID uuid.UUID) []models.OrderStatusEntry {
	entries := make([]models.OrderStatusEntry, 0)
	for _, entry := range s.history {
		if entry.OrderID == orderID {
			entries = append(entries, entry)
		}
	}
	return entries
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutboxPublisher) eventTypes() []enums.OutboxEventType {
	types := make([]enums.OutboxEventType, 0, len(s.events))
	for _, event := range s.events {
		types = append(types, event.EventType)
	}
	return types
}

type stubGateway struct {
	created  *paypal.OrderResult
	captured *paypal.OrderResult
	err      error
}

func (s *stubGateway) CreateOrder(ctx context.Context, referenceID string, amountCents int) (*paypal.OrderResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.created, nil
}

func (s *stubGateway) CaptureOrder(ctx context.Context, paypalOrderID string) (*paypal.OrderResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.captured, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
}

func newTestService(t *testing.T, repo Repository, pub outboxPublisher, gateway PaymentGateway) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, pub, gateway, testLogger(), nil, 15)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func seedStubOrder(repo *stubOrdersRepo, status enums.OrderStatus, paid bool, items ...models.OrderItem) *models.Order {
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Status:          status,
		IsPaid:          paid,
		TotalPriceCents: 10000,
		Items:           items,
	}
	repo.orders[order.ID] = order
	return order
}

func seedProduct(repo *stubOrdersRepo, stock int) *models.Product {
	product := &models.Product{
		ID:           uuid.New(),
		Slug:         "classic-tee",
		Name:         "Classic Tee",
		Category:     "Shirts",
		PriceCents:   5000,
		CountInStock: stock,
	}
	repo.products[product.ID] = product
	return product
}

func TestHappyPathLifecycle(t *testing.T) {
	repo := newStubRepo()
	product := seedProduct(repo, 10)
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)
	actor := adminActor()

	order := seedStubOrder(repo, enums.OrderStatusPending, false, models.OrderItem{
		ProductID: product.ID,
		Qty:       2,
	})

	result, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusProcessing,
		Actor:   actor,
	})
	if err != nil {
		t.Fatalf("processing transition failed: %v", err)
	}
	if result.PreviousStatus != enums.OrderStatusPending || result.NewStatus != enums.OrderStatusProcessing {
		t.Fatalf("unexpected status delta %s -> %s", result.PreviousStatus, result.NewStatus)
	}
	if !repo.orders[order.ID].IsPaid || repo.orders[order.ID].PaidAt == nil {
		t.Fatal("expected implicit payment on processing")
	}
	if product.CountInStock != 8 {
		t.Fatalf("expected stock 8 after payment, got %d", product.CountInStock)
	}

	if _, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusDelivered,
		Actor:   actor,
	}); err != nil {
		t.Fatalf("delivered transition failed: %v", err)
	}
	if !repo.orders[order.ID].IsDelivered {
		t.Fatal("expected delivered flag set")
	}

	if _, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusCompleted,
		Actor:   actor,
	}); err != nil {
		t.Fatalf("completed transition failed: %v", err)
	}
	if repo.orders[order.ID].CompletedAt == nil {
		t.Fatal("expected completed timestamp")
	}

	types := pub.eventTypes()
	wantReceipt, wantReview := false, false
	for _, typ := range types {
		if typ == enums.EventPurchaseReceipt {
			wantReceipt = true
		}
		if typ == enums.EventReviewRequest {
			wantReview = true
		}
	}
	if !wantReceipt {
		t.Fatal("expected purchase receipt event")
	}
	if !wantReview {
		t.Fatal("expected review request event")
	}

	history := repo.historyFor(order.ID)
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	if history[len(history)-1].Status != enums.OrderStatusCompleted {
		t.Fatalf("last history entry should match current status, got %s", history[len(history)-1].Status)
	}
}

func TestRejectionAfterPaymentRestoresStock(t *testing.T) {
	repo := newStubRepo()
	product := seedProduct(repo, 10)
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)
	actor := adminActor()

	order := seedStubOrder(repo, enums.OrderStatusPending, false, models.OrderItem{
		ProductID: product.ID,
		Qty:       3,
	})

	if _, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusProcessing,
		Actor:   actor,
	}); err != nil {
		t.Fatalf("processing transition failed: %v", err)
	}
	if product.CountInStock != 7 {
		t.Fatalf("expected stock 7 after payment, got %d", product.CountInStock)
	}

	reason := "out of stock elsewhere"
	if _, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusRejected,
		Reason:  &reason,
		Actor:   actor,
	}); err != nil {
		t.Fatalf("rejection failed: %v", err)
	}

	if product.CountInStock != 10 {
		t.Fatalf("expected stock restored to 10, got %d", product.CountInStock)
	}
	stored := repo.orders[order.ID]
	if !stored.IsRejected {
		t.Fatal("expected rejected flag set")
	}
	if stored.RejectionReason == nil || *stored.RejectionReason != reason {
		t.Fatalf("unexpected rejection reason %v", stored.RejectionReason)
	}
	if len(repo.historyFor(order.ID)) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(repo.historyFor(order.ID)))
	}
}

func TestMarkPaidTwiceFails(t *testing.T) {
	repo := newStubRepo()
	product := seedProduct(repo, 10)
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)
	actor := adminActor()

	order := seedStubOrder(repo, enums.OrderStatusPending, false, models.OrderItem{
		ProductID: product.ID,
		Qty:       1,
	})

	if _, err := svc.MarkPaid(context.Background(), order.ID, actor); err != nil {
		t.Fatalf("first mark paid failed: %v", err)
	}
	if product.CountInStock != 9 {
		t.Fatalf("expected stock 9, got %d", product.CountInStock)
	}

	_, err := svc.MarkPaid(context.Background(), order.ID, actor)
	if err == nil {
		t.Fatal("expected second mark paid to fail")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
	if product.CountInStock != 9 {
		t.Fatalf("stock must not be decremented twice, got %d", product.CountInStock)
	}
}

func TestInsufficientStockBlocksPayment(t *testing.T) {
	repo := newStubRepo()
	product := seedProduct(repo, 1)
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	order := seedStubOrder(repo, enums.OrderStatusPending, false, models.OrderItem{
		ProductID: product.ID,
		Qty:       2,
	})

	_, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusProcessing,
		Actor:   adminActor(),
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatal("no events should be emitted for a failed transition")
	}
}

func TestNonAdminCannotSetStatus(t *testing.T) {
	repo := newStubRepo()
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	order := seedStubOrder(repo, enums.OrderStatusPending, false)

	_, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusProcessing,
		Actor:   Actor{UserID: uuid.New(), Role: enums.UserRoleUser},
	})
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error %v", err)
	}
	if repo.orders[order.ID].Status != enums.OrderStatusPending {
		t.Fatal("order must remain unmodified")
	}
}

func TestTerminalStateIsFrozen(t *testing.T) {
	repo := newStubRepo()
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	order := seedStubOrder(repo, enums.OrderStatusCompleted, true)

	_, err := svc.SetStatus(context.Background(), SetStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusPending,
		Actor:   adminActor(),
	})
	if err == nil {
		t.Fatal("expected state conflict")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDeliverRequiresPayment(t *testing.T) {
	repo := newStubRepo()
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	order := seedStubOrder(repo, enums.OrderStatusPending, false)

	_, err := svc.Deliver(context.Background(), order.ID, adminActor())
	if err == nil {
		t.Fatal("expected precondition failure")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestBulkSetStatusPartialFailure(t *testing.T) {
	repo := newStubRepo()
	product := seedProduct(repo, 10)
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	order := seedStubOrder(repo, enums.OrderStatusProcessing, true, models.OrderItem{
		ProductID: product.ID,
		Qty:       1,
	})

	result, err := svc.BulkSetStatus(context.Background(), BulkSetStatusInput{
		OrderIDs: []uuid.UUID{order.ID, uuid.New()},
		Status:   enums.OrderStatusShipped,
		Actor:    adminActor(),
	})
	if err != nil {
		t.Fatalf("bulk update failed: %v", err)
	}
	if result.Total != 2 || result.Successful != 1 || result.Failed != 1 {
		t.Fatalf("unexpected bulk result %+v", result)
	}
	if repo.orders[order.ID].Status != enums.OrderStatusShipped {
		t.Fatalf("expected shipped status, got %s", repo.orders[order.ID].Status)
	}
}

func TestDeleteOrder(t *testing.T) {
	repo := newStubRepo()
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	order := seedStubOrder(repo, enums.OrderStatusPending, false)

	if err := svc.Delete(context.Background(), order.ID, adminActor()); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := repo.orders[order.ID]; ok {
		t.Fatal("order should be gone")
	}

	err := svc.Delete(context.Background(), order.ID, adminActor())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateOrderComputesPricing(t *testing.T) {
	repo := newStubRepo()
	product := seedProduct(repo, 10)
	repo.deliveryOptions = []models.DeliveryOption{
		{Name: "Express", DaysToDeliver: 2, ShippingPriceCents: 2500},
		{Name: "Standard", DaysToDeliver: 7, ShippingPriceCents: 1500, FreeShippingMinCents: 10000},
	}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	result, err := svc.Create(context.Background(), CreateOrderInput{
		UserID: uuid.New(),
		Items: []CreateOrderItemInput{
			{ProductID: product.ID, Qty: 2},
		},
		ShippingAddress: models.ShippingAddress{
			FullName:   "Ada Lovelace",
			Street:     "12 Analytical Way",
			City:       "London",
			PostalCode: "E1 6AN",
			Country:    "UK",
		},
		PaymentMethod: enums.PaymentMethodPayPal,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	stored := repo.orders[result.OrderID]
	if stored == nil {
		t.Fatal("order not persisted")
	}
	if stored.ItemsPriceCents != 10000 {
		t.Fatalf("expected items price 10000, got %d", stored.ItemsPriceCents)
	}
	// default option is the last (Standard) whose free-shipping threshold is met
	if stored.ShippingPriceCents == nil || *stored.ShippingPriceCents != 0 {
		t.Fatalf("expected free shipping, got %v", stored.ShippingPriceCents)
	}
	if stored.TaxPriceCents == nil || *stored.TaxPriceCents != 1500 {
		t.Fatalf("expected tax 1500, got %v", stored.TaxPriceCents)
	}
	if stored.TotalPriceCents != 11500 {
		t.Fatalf("expected total 11500, got %d", stored.TotalPriceCents)
	}
	if stored.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", stored.Status)
	}
	if product.CountInStock != 10 {
		t.Fatal("stock must not move at creation time")
	}
	if len(repo.historyFor(result.OrderID)) != 1 {
		t.Fatal("expected initial history entry")
	}
}

func TestCapturePayPalOrder(t *testing.T) {
	repo := newStubRepo()
	product := seedProduct(repo, 10)
	pub := &stubOutboxPublisher{}
	gateway := &stubGateway{
		captured: &paypal.OrderResult{
			ID:            "PP-1",
			Status:        paypal.CaptureStatusCompleted,
			PayerEmail:    "buyer@example.com",
			CapturedCents: 10000,
		},
	}
	svc := newTestService(t, repo, pub, gateway)

	owner := uuid.New()
	order := seedStubOrder(repo, enums.OrderStatusPending, false, models.OrderItem{
		ProductID: product.ID,
		Qty:       1,
	})
	order.UserID = owner
	order.TotalPriceCents = 10000
	order.PaymentResult.GatewayOrderID = "PP-1"

	result, err := svc.CapturePayPalOrder(context.Background(), CapturePayPalInput{
		OrderID:       order.ID,
		PayPalOrderID: "PP-1",
		Actor:         Actor{UserID: owner, Role: enums.UserRoleUser},
	})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if result.NewStatus != enums.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", result.NewStatus)
	}
	stored := repo.orders[order.ID]
	if !stored.IsPaid {
		t.Fatal("expected paid order")
	}
	if stored.PaymentResult.PayerEmail != "buyer@example.com" {
		t.Fatalf("payer email not recorded: %+v", stored.PaymentResult)
	}
	if product.CountInStock != 9 {
		t.Fatalf("expected stock 9, got %d", product.CountInStock)
	}
}

func TestCapturePayPalOrderGatewayMismatch(t *testing.T) {
	repo := newStubRepo()
	pub := &stubOutboxPublisher{}
	gateway := &stubGateway{
		captured: &paypal.OrderResult{ID: "PP-2", Status: paypal.CaptureStatusCompleted, CapturedCents: 10000},
	}
	svc := newTestService(t, repo, pub, gateway)

	owner := uuid.New()
	order := seedStubOrder(repo, enums.OrderStatusPending, false)
	order.UserID = owner
	order.PaymentResult.GatewayOrderID = "PP-1"

	_, err := svc.CapturePayPalOrder(context.Background(), CapturePayPalInput{
		OrderID:       order.ID,
		PayPalOrderID: "PP-2",
		Actor:         Actor{UserID: owner, Role: enums.UserRoleUser},
	})
	if err == nil {
		t.Fatal("expected gateway mismatch error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error %v", err)
	}
}
