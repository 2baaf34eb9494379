// Package reports turns already-loaded orders into dashboard summaries.
// Callers pass active orders only; nothing here touches storage.
package reports

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"lavanderia/internal/models"
)

const (
	DefaultWindow       = 30 * 24 * time.Hour
	OpenEndedWindow     = 365 * 24 * time.Hour
	MaxRange            = 365 * 24 * time.Hour
	DefaultServiceLimit = 10
	MaxServiceLimit     = 50
	TopClientsLimit     = 10
)

var ErrInvalidDateRange = errors.New("invalid date range")

// Range is an inclusive time window over order creation dates.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the window, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// DateFilter holds the bounds a caller asked for. WholeDayTo marks a to given
// as a bare date, which covers that entire day.
type DateFilter struct {
	From       *time.Time
	To         *time.Time
	WholeDayTo bool
}

// Resolve fills in missing bounds and validates the window.
//
// No bounds gives the last 30 days ending at now. A lone from extends 365 days
// forward, a lone to reaches 30 days back. Order and span are checked on the
// supplied dates; a whole-day to is widened to the end of that day afterwards.
func (f DateFilter) Resolve(now time.Time) (Range, error) {
	var r Range
	switch {
	case f.From == nil && f.To == nil:
		r = Range{From: now.Add(-DefaultWindow), To: now}
	case f.To == nil:
		r = Range{From: *f.From, To: f.From.Add(OpenEndedWindow)}
	case f.From == nil:
		r = Range{From: f.To.Add(-DefaultWindow), To: *f.To}
	default:
		r = Range{From: *f.From, To: *f.To}
	}

	if r.From.After(r.To) {
		return Range{}, fmt.Errorf("%w: from %s is after to %s", ErrInvalidDateRange,
			r.From.Format(time.DateOnly), r.To.Format(time.DateOnly))
	}
	if r.To.Sub(r.From) > MaxRange {
		return Range{}, fmt.Errorf("%w: range cannot exceed 365 days", ErrInvalidDateRange)
	}
	if f.To != nil && f.WholeDayTo {
		r.To = r.To.Add(24*time.Hour - time.Nanosecond)
	}
	return r, nil
}

// ResolveRange resolves exact bounds. See DateFilter.Resolve.
func ResolveRange(from, to *time.Time, now time.Time) (Range, error) {
	return DateFilter{From: from, To: to}.Resolve(now)
}

// Summary is the headline dashboard block.
type Summary struct {
	TotalOrders      int             `json:"total_orders"`
	TotalCustomers   int             `json:"total_customers"`
	TotalServices    int             `json:"total_services"`
	PendingOrders    int             `json:"pending_orders"`
	InProgressOrders int             `json:"in_progress_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
}

// Summarize counts orders and sums their estimated price regardless of status.
func Summarize(orders []models.Order, totalCustomers, totalServices int) Summary {
	s := Summary{
		TotalOrders:    len(orders),
		TotalCustomers: totalCustomers,
		TotalServices:  totalServices,
		TotalRevenue:   decimal.Zero,
	}
	for _, o := range orders {
		switch o.Status {
		case models.StatusPending:
			s.PendingOrders++
		case models.StatusInProgress:
			s.InProgressOrders++
		}
		s.TotalRevenue = s.TotalRevenue.Add(o.EstimatedPrice)
	}
	return s
}

type StatusGroup struct {
	Count    int      `json:"count"`
	OrderIDs []string `json:"order_ids"`
}

type StatusBreakdown struct {
	Range    Range                               `json:"range"`
	Total    int                                 `json:"total"`
	ByStatus map[models.OrderStatus]*StatusGroup `json:"by_status"`
}

// OrdersByStatus groups the orders created inside r by their status.
func OrdersByStatus(orders []models.Order, r Range) StatusBreakdown {
	out := StatusBreakdown{Range: r, ByStatus: make(map[models.OrderStatus]*StatusGroup)}
	for _, o := range orders {
		if !r.Contains(o.CreatedAt) {
			continue
		}
		g, ok := out.ByStatus[o.Status]
		if !ok {
			g = &StatusGroup{}
			out.ByStatus[o.Status] = g
		}
		g.Count++
		g.OrderIDs = append(g.OrderIDs, o.ID)
		out.Total++
	}
	return out
}

type RevenueReport struct {
	Range   Range                      `json:"range"`
	Orders  int                        `json:"orders"`
	Total   decimal.Decimal            `json:"total"`
	Average decimal.Decimal            `json:"average"`
	ByMonth map[string]decimal.Decimal `json:"by_month"`
}

// Revenue sums finished and delivered orders created inside r, per "YYYY-MM".
func Revenue(orders []models.Order, r Range) RevenueReport {
	out := RevenueReport{
		Range:   r,
		Total:   decimal.Zero,
		Average: decimal.Zero,
		ByMonth: make(map[string]decimal.Decimal),
	}
	for _, o := range orders {
		if o.Status != models.StatusFinished && o.Status != models.StatusDelivered {
			continue
		}
		if !r.Contains(o.CreatedAt) {
			continue
		}
		out.Orders++
		out.Total = out.Total.Add(o.EstimatedPrice)
		month := o.CreatedAt.Format("2006-01")
		out.ByMonth[month] = out.ByMonth[month].Add(o.EstimatedPrice)
	}
	if out.Orders > 0 {
		out.Average = out.Total.Div(decimal.NewFromInt(int64(out.Orders))).Round(2)
	}
	return out
}

type ServiceStat struct {
	ServiceID   string          `json:"service_id"`
	ServiceName string          `json:"service_name"`
	Orders      int             `json:"orders"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// PopularServices ranks services by order count. Ties go to the lower service id
// so the ranking does not depend on storage order. limit <= 0 means the default.
func PopularServices(orders []models.Order, limit int) []ServiceStat {
	if limit <= 0 {
		limit = DefaultServiceLimit
	}
	byID := make(map[string]*ServiceStat)
	for _, o := range orders {
		st, ok := byID[o.Service.ID]
		if !ok {
			st = &ServiceStat{ServiceID: o.Service.ID, ServiceName: o.Service.Name, Revenue: decimal.Zero}
			byID[o.Service.ID] = st
		}
		st.Orders++
		st.Revenue = st.Revenue.Add(o.EstimatedPrice)
	}

	stats := make([]ServiceStat, 0, len(byID))
	for _, st := range byID {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Orders != stats[j].Orders {
			return stats[i].Orders > stats[j].Orders
		}
		return stats[i].ServiceID < stats[j].ServiceID
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

// Customer is the contact data joined into client statistics.
type Customer struct {
	Name  string
	Email string
}

// Placeholders fill in contact data for orders whose customer is unknown.
type Placeholders struct {
	Name  string
	Email string
}

type ClientStat struct {
	CustomerID string          `json:"customer_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Orders     int             `json:"orders"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type ClientReport struct {
	TopClients     []ClientStat    `json:"top_clients"`
	ActiveClients  int             `json:"active_clients"`
	AverageRevenue decimal.Decimal `json:"average_revenue"`
}

// ClientStats ranks customers by revenue and averages revenue over every
// customer with at least one order.
func ClientStats(orders []models.Order, customers map[string]Customer, ph Placeholders) ClientReport {
	byID := make(map[string]*ClientStat)
	total := decimal.Zero
	for _, o := range orders {
		st, ok := byID[o.CustomerID]
		if !ok {
			st = &ClientStat{CustomerID: o.CustomerID, Name: ph.Name, Email: ph.Email, Revenue: decimal.Zero}
			if c, found := customers[o.CustomerID]; found {
				st.Name, st.Email = c.Name, c.Email
			}
			byID[o.CustomerID] = st
		}
		st.Orders++
		st.Revenue = st.Revenue.Add(o.EstimatedPrice)
		total = total.Add(o.EstimatedPrice)
	}

	stats := make([]ClientStat, 0, len(byID))
	for _, st := range byID {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if c := stats[i].Revenue.Cmp(stats[j].Revenue); c != 0 {
			return c > 0
		}
		return stats[i].CustomerID < stats[j].CustomerID
	})

	out := ClientReport{ActiveClients: len(stats), AverageRevenue: decimal.Zero}
	if len(stats) > 0 {
		out.AverageRevenue = total.Div(decimal.NewFromInt(int64(len(stats)))).Round(2)
	}
	if len(stats) > TopClientsLimit {
		stats = stats[:TopClientsLimit]
	}
	out.TopClients = stats
	return out
}
