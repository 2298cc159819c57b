package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/teoalvarez/cartline-backend/internal/orders"
	pkgerrors "github.com/teoalvarez/cartline-backend/pkg/errors"
	"github.com/teoalvarez/cartline-backend/pkg/logger"
)

const (
	monthlyWindowMonths = 6
	topLimit            = 5
	latestOrdersLimit   = 10
)

// Service builds the admin dashboard report.
type Service interface {
	Report(ctx context.Context, req Request, actor orders.Actor) (*Report, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the summary service with its dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("summary repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Report(ctx context.Context, req Request, actor orders.Actor) (*Report, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}

	now := s.now()
	from, to, err := resolveWindow(req, now)
	if err != nil {
		return nil, err
	}

	report := &Report{}

	if report.OrdersCount, err = s.repo.CountOrders(ctx, from, to); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	if report.ProductsCount, err = s.repo.CountProducts(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	if report.UsersCount, err = s.repo.CountUsers(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if report.TotalSalesCents, err = s.repo.TotalSalesCents(ctx, from, to); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sales")
	}

	monthlySince := now.AddDate(0, -monthlyWindowMonths, 0)
	if report.MonthlySales, err = s.repo.MonthlySales(ctx, monthlySince); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "monthly sales")
	}
	if report.DailyOrders, err = s.repo.DailyOrders(ctx, from, to); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "daily orders")
	}
	if report.TopProducts, err = s.repo.TopProducts(ctx, from, to, topLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products")
	}
	if report.TopCategories, err = s.repo.TopCategories(ctx, from, to, topLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top categories")
	}
	if report.LatestOrders, err = s.repo.LatestOrders(ctx, latestOrdersLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "latest orders")
	}

	return report, nil
}

// resolveWindow defaults the report window to the last 30 days.
func resolveWindow(req Request, now time.Time) (time.Time, time.Time, error) {
	to := now
	if req.DateTo != nil {
		to = *req.DateTo
	}
	from := to.AddDate(0, 0, -30)
	if req.DateFrom != nil {
		from = *req.DateFrom
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date range end must be after start")
	}
	return from, to, nil
}
