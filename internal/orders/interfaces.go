package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teoalvarez/cartline-backend/pkg/db/models"
	"github.com/teoalvarez/cartline-backend/pkg/pagination"
)

// Repository defines persistence operations for order lifecycle tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	AppendStatusEntry(ctx context.Context, entry *models.OrderStatusEntry) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	FindProducts(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error)
	FindDeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error)
	DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int) error
	RestoreProductStock(ctx context.Context, productID uuid.UUID, qty int) error
}
