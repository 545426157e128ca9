// services/summary.go
package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salonbook-backend/models"
	"salonbook-backend/utils"
)

// Uncategorized labels expenses whose category is empty.
const Uncategorized = "Uncategorized"

type VisitRangeReader interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Visit, error)
}

type ExpenseRangeReader interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error)
}

type DayTotals struct {
	Date     string  `json:"date"`
	Earnings float64 `json:"earnings"`
	Expenses float64 `json:"expenses"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Summary is the financial report over an inclusive date range. ByDay has
// one entry per calendar day of the range, in ascending order.
type Summary struct {
	From               *string         `json:"from"`
	To                 *string         `json:"to"`
	TotalEarnings      float64         `json:"totalEarnings"`
	TotalExpenses      float64         `json:"totalExpenses"`
	NetProfit          float64         `json:"netProfit"`
	TotalVisits        int             `json:"totalVisits"`
	ByDay              []DayTotals     `json:"byDay"`
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
}

// DateRange is a resolved report interval. From and To keep the request
// values and are empty for the unfiltered range.
type DateRange struct {
	Start time.Time
	End   time.Time
	From  string
	To    string
}

func (r DateRange) Filtered() bool {
	return r.From != ""
}

// CacheKey identifies the range independently of when it was resolved.
func (r DateRange) CacheKey() string {
	if !r.Filtered() {
		return "all"
	}
	return r.Start.UTC().Format(time.RFC3339) + "_" + r.End.UTC().Format(time.RFC3339)
}

// ResolveRange turns optional from/to values into an interval. With neither
// value the range runs from the Unix epoch to now. With both, to is widened
// to the end of its calendar day in loc.
func ResolveRange(from, to string, loc *time.Location, now time.Time) (DateRange, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)

	if from == "" && to == "" {
		return DateRange{Start: time.Unix(0, 0).In(loc), End: now.In(loc)}, nil
	}
	if from == "" || to == "" {
		return DateRange{}, utils.InvalidInput("Both 'from' and 'to' are required when filtering by date.")
	}

	start, err := utils.ParseDate(from, loc)
	if err != nil {
		return DateRange{}, utils.InvalidInput("Invalid 'from': " + err.Error())
	}
	end, err := utils.ParseDate(to, loc)
	if err != nil {
		return DateRange{}, utils.InvalidInput("Invalid 'to': " + err.Error())
	}
	start = start.In(loc)
	end = utils.EndOfDay(end.In(loc))

	if start.After(end) {
		return DateRange{}, utils.InvalidInput("'from' must not be after 'to'")
	}
	return DateRange{Start: start, End: end, From: from, To: to}, nil
}

// Aggregate computes the summary of rng from the given records. Records
// outside the range are ignored. Calendar days are cut in loc.
func Aggregate(rng DateRange, visits []models.Visit, expenses []models.Expense, loc *time.Location) *Summary {
	inRange := func(t time.Time) bool {
		return !t.Before(rng.Start) && !t.After(rng.End)
	}

	earnings := decimal.Zero
	visitCount := 0
	earningsByDay := map[string]decimal.Decimal{}
	for _, v := range visits {
		if !inRange(v.VisitDate) {
			continue
		}
		amount := decimal.NewFromFloat(v.TotalAmount)
		earnings = earnings.Add(amount)
		visitCount++
		day := utils.DayKey(v.VisitDate, loc)
		earningsByDay[day] = earningsByDay[day].Add(amount)
	}

	spent := decimal.Zero
	expensesByDay := map[string]decimal.Decimal{}
	byCategory := map[string]decimal.Decimal{}
	for _, e := range expenses {
		if !inRange(e.Date) {
			continue
		}
		amount := decimal.NewFromFloat(e.Amount)
		spent = spent.Add(amount)
		day := utils.DayKey(e.Date, loc)
		expensesByDay[day] = expensesByDay[day].Add(amount)

		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = Uncategorized
		}
		byCategory[category] = byCategory[category].Add(amount)
	}

	days := utils.CalendarDays(rng.Start, rng.End, loc)
	byDay := make([]DayTotals, 0, len(days))
	for _, day := range days {
		byDay = append(byDay, DayTotals{
			Date:     day,
			Earnings: earningsByDay[day].InexactFloat64(),
			Expenses: expensesByDay[day].InexactFloat64(),
		})
	}

	type categorySum struct {
		name  string
		total decimal.Decimal
	}
	sums := make([]categorySum, 0, len(byCategory))
	for name, total := range byCategory {
		sums = append(sums, categorySum{name, total})
	}
	sort.Slice(sums, func(i, j int) bool {
		if c := sums[i].total.Cmp(sums[j].total); c != 0 {
			return c > 0
		}
		return sums[i].name < sums[j].name
	})
	categories := make([]CategoryTotal, 0, len(sums))
	for _, s := range sums {
		categories = append(categories, CategoryTotal{Category: s.name, Total: s.total.InexactFloat64()})
	}

	summary := &Summary{
		TotalEarnings:      earnings.InexactFloat64(),
		TotalExpenses:      spent.InexactFloat64(),
		NetProfit:          earnings.Sub(spent).InexactFloat64(),
		TotalVisits:        visitCount,
		ByDay:              byDay,
		ExpensesByCategory: categories,
	}
	if rng.Filtered() {
		from, to := rng.From, rng.To
		summary.From, summary.To = &from, &to
	}
	return summary
}

// SummaryService reads visits and expenses for a range and aggregates them,
// going through the summary cache when one is configured.
type SummaryService struct {
	visits   VisitRangeReader
	expenses ExpenseRangeReader
	cache    SummaryCache
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

func NewSummaryService(visits VisitRangeReader, expenses ExpenseRangeReader, cache SummaryCache, loc *time.Location, logger *slog.Logger) *SummaryService {
	if cache == nil {
		cache = NopSummaryCache{}
	}
	return &SummaryService{
		visits:   visits,
		expenses: expenses,
		cache:    cache,
		loc:      loc,
		now:      time.Now,
		logger:   logger.With("component", "summary"),
	}
}

func (s *SummaryService) Location() *time.Location {
	return s.loc
}

// Range resolves from/to against the report timezone and the current time.
func (s *SummaryService) Range(from, to string) (DateRange, error) {
	return ResolveRange(from, to, s.loc, s.now())
}

func (s *SummaryService) Summary(ctx context.Context, from, to string) (*Summary, error) {
	rng, err := s.Range(from, to)
	if err != nil {
		return nil, err
	}
	return s.SummaryFor(ctx, rng)
}

func (s *SummaryService) SummaryFor(ctx context.Context, rng DateRange) (*Summary, error) {
	key := rng.CacheKey()
	entry, err := s.cache.Entry(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "summary cache unavailable", "key", key, "error", err)
		return s.compute(ctx, rng)
	}
	if cached, ok, err := s.cache.Get(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "summary cache read failed", "key", entry, "error", err)
	} else if ok {
		return cached, nil
	}

	summary, err := s.compute(ctx, rng)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, entry, summary); err != nil {
		s.logger.WarnContext(ctx, "summary cache write failed", "key", entry, "error", err)
	}
	return summary, nil
}

func (s *SummaryService) compute(ctx context.Context, rng DateRange) (*Summary, error) {
	visits, err := s.visits.ListBetween(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, utils.Internal("Failed to load visits", err)
	}
	expenses, err := s.expenses.ListBetween(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, utils.Internal("Failed to load expenses", err)
	}

	return Aggregate(rng, visits, expenses, s.loc), nil
}

// Invalidate drops cached summaries after a visit or expense write.
func (s *SummaryService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "summary cache invalidation failed", "error", err)
	}
}
