package services

import (
	"context"
	"fmt"
	"time"

	"lavanderia/internal/models"
	"lavanderia/internal/reports"
	"lavanderia/internal/repositories"

	"github.com/rs/zerolog/log"
)

// ReportCache stores rendered reports for a short while.
type ReportCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
}

// ReportService loads active data and hands it to the reports package.
type ReportService struct {
	orderRepo    repositories.OrderRepository
	userRepo     repositories.UserRepository
	serviceRepo  repositories.ServiceRepository
	cache        ReportCache
	placeholders reports.Placeholders
	now          func() time.Time
}

// NewReportService creates a new ReportService. cache may be nil.
func NewReportService(
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	serviceRepo repositories.ServiceRepository,
	cache ReportCache,
	placeholders reports.Placeholders,
) *ReportService {
	return &ReportService{
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		serviceRepo:  serviceRepo,
		cache:        cache,
		placeholders: placeholders,
		now:          time.Now,
	}
}

// Summary returns the headline dashboard numbers.
func (s *ReportService) Summary(ctx context.Context) (reports.Summary, error) {
	return cached(ctx, s, "reports:summary", func() (reports.Summary, error) {
		orders, err := s.orderRepo.List(ctx, repositories.OrderFilter{})
		if err != nil {
			return reports.Summary{}, err
		}
		customers, err := s.userRepo.CountActiveByRole(ctx, models.RoleCustomer)
		if err != nil {
			return reports.Summary{}, err
		}
		services, err := s.serviceRepo.CountActive(ctx)
		if err != nil {
			return reports.Summary{}, err
		}
		return reports.Summarize(orders, int(customers), int(services)), nil
	})
}

// OrdersByStatus groups orders created inside the filtered window by status.
func (s *ReportService) OrdersByStatus(ctx context.Context, filter reports.DateFilter) (reports.StatusBreakdown, error) {
	r, err := filter.Resolve(s.now())
	if err != nil {
		return reports.StatusBreakdown{}, err
	}
	orders, err := s.orderRepo.List(ctx, repositories.OrderFilter{})
	if err != nil {
		return reports.StatusBreakdown{}, err
	}
	return reports.OrdersByStatus(orders, r), nil
}

// Revenue reports finished and delivered revenue inside the filtered window.
func (s *ReportService) Revenue(ctx context.Context, filter reports.DateFilter) (reports.RevenueReport, error) {
	r, err := filter.Resolve(s.now())
	if err != nil {
		return reports.RevenueReport{}, err
	}
	orders, err := s.orderRepo.List(ctx, repositories.OrderFilter{})
	if err != nil {
		return reports.RevenueReport{}, err
	}
	return reports.Revenue(orders, r), nil
}

// PopularServices ranks services by number of orders. limit 0 means the default.
func (s *ReportService) PopularServices(ctx context.Context, limit int) ([]reports.ServiceStat, error) {
	if limit == 0 {
		limit = reports.DefaultServiceLimit
	}
	if limit < 1 || limit > reports.MaxServiceLimit {
		return nil, ErrInvalidLimit
	}
	key := fmt.Sprintf("reports:popular-services:%d", limit)
	return cached(ctx, s, key, func() ([]reports.ServiceStat, error) {
		orders, err := s.orderRepo.List(ctx, repositories.OrderFilter{})
		if err != nil {
			return nil, err
		}
		return reports.PopularServices(orders, limit), nil
	})
}

// ClientStats ranks customers by revenue.
func (s *ReportService) ClientStats(ctx context.Context) (reports.ClientReport, error) {
	return cached(ctx, s, "reports:clients", func() (reports.ClientReport, error) {
		orders, err := s.orderRepo.List(ctx, repositories.OrderFilter{})
		if err != nil {
			return reports.ClientReport{}, err
		}
		users, err := s.userRepo.List(ctx, repositories.UserFilter{Role: models.RoleCustomer})
		if err != nil {
			return reports.ClientReport{}, err
		}
		customers := make(map[string]reports.Customer, len(users))
		for _, u := range users {
			customers[u.ID] = reports.Customer{Name: u.Name, Email: u.Email}
		}
		return reports.ClientStats(orders, customers, s.placeholders), nil
	})
}

// cached serves key from the cache when possible. Cache failures are logged
// and fall through to build.
func cached[T any](ctx context.Context, s *ReportService, key string, build func() (T, error)) (T, error) {
	var out T
	if s.cache != nil {
		hit, err := s.cache.GetJSON(ctx, key, &out)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		} else if hit {
			return out, nil
		}
	}

	out, err := build()
	if err != nil {
		return out, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, out); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("report cache write failed")
		}
	}
	return out, nil
}
