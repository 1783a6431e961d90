package service

import (
	"sort"
	"time"

	"github.com/pitaka-app/pitaka-backend/internal/domain"
	"github.com/pitaka-app/pitaka-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultTopCategories is the default size of the top-categories list
const DefaultTopCategories = 5

// AnalyticsService derives analytics view models from transaction rows and
// the category registry. Every computation is a fresh single pass over one
// pulled batch of rows; nothing is cached between requests.
type AnalyticsService struct {
	transactionRepo domain.TransactionRepository
	now             func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(transactionRepo domain.TransactionRepository) *AnalyticsService {
	return &AnalyticsService{
		transactionRepo: transactionRepo,
		now:             time.Now,
	}
}

// unboundedRange is the fetch window when no explicit dates are given
func unboundedRange() (time.Time, time.Time) {
	start := time.Date(domain.MinYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(domain.MaxYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}

// CategoryBreakdown returns per-category totals and counts for a date range,
// sorted by total descending. Equal totals order by category key ascending so
// the output is deterministic. With a class filter, only keys of that class
// contribute (unknown keys never match a class). Without one, every key
// present in the data appears. Empty input yields an empty list.
func (s *AnalyticsService) CategoryBreakdown(startDate, endDate *time.Time, class *domain.CategoryClass) ([]domain.CategoryBreakdown, error) {
	start, end := unboundedRange()
	if startDate != nil {
		start = *startDate
	}
	if endDate != nil {
		end = *endDate
	}

	entries, err := s.transactionRepo.EntriesByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	accumulated := make(map[domain.CategoryKey]*domain.CategoryBreakdown)
	for _, entry := range entries {
		if class != nil {
			category, ok := domain.LookupCategory(entry.Type)
			if !ok || category.Class != *class {
				continue
			}
		}
		if existing, ok := accumulated[entry.Type]; ok {
			existing.Total = existing.Total.Add(entry.Amount)
			existing.Count++
		} else {
			accumulated[entry.Type] = &domain.CategoryBreakdown{
				Type:  entry.Type,
				Total: entry.Amount,
				Count: 1,
			}
		}
	}

	result := make([]domain.CategoryBreakdown, 0, len(accumulated))
	for _, breakdown := range accumulated {
		result = append(result, *breakdown)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].Type < result[j].Type
	})
	return result, nil
}

// TopCategories returns the highest-spending expense categories
func (s *AnalyticsService) TopCategories(limit int, startDate, endDate *time.Time) ([]domain.CategoryBreakdown, error) {
	if limit <= 0 {
		limit = DefaultTopCategories
	}

	class := domain.ClassExpense
	breakdown, err := s.CategoryBreakdown(startDate, endDate, &class)
	if err != nil {
		return nil, err
	}
	if len(breakdown) > limit {
		breakdown = breakdown[:limit]
	}
	return breakdown, nil
}

// MonthlyTrend returns income and expense totals for every month of a year.
// The result always has exactly 12 points, months 1..12, zero-valued where
// there was no activity. Keys that do not resolve as income count as expense.
func (s *AnalyticsService) MonthlyTrend(year int) ([]domain.MonthlyTrendPoint, error) {
	if year < domain.MinYear || year > domain.MaxYear {
		return nil, domain.ErrInvalidYear
	}

	start, end := util.YearRange(year)
	entries, err := s.transactionRepo.EntriesByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	trend := make([]domain.MonthlyTrendPoint, 12)
	for i := range trend {
		trend[i] = domain.MonthlyTrendPoint{
			Month:   i + 1,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
	}

	for _, entry := range entries {
		month := int(entry.Date.Month()) - 1
		if isIncome(entry.Type) {
			trend[month].Income = trend[month].Income.Add(entry.Amount)
		} else {
			trend[month].Expense = trend[month].Expense.Add(entry.Amount)
		}
	}
	return trend, nil
}

// YearlySummary builds the grouped summary table for a year: 12 monthly rows
// with totals bucketed by summary group, plus one grand-total row of the same
// shape. Rows whose category key does not resolve in the registry contribute
// to no bucket; they are counted and logged instead of failing the summary.
func (s *AnalyticsService) YearlySummary(year int) (*domain.YearlySummary, error) {
	if year < domain.MinYear || year > domain.MaxYear {
		return nil, domain.ErrInvalidYear
	}

	start, end := util.YearRange(year)
	entries, err := s.transactionRepo.EntriesByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.MonthlySummaryRow, 12)
	for i := range rows {
		rows[i] = domain.MonthlySummaryRow{
			Month:         i + 1,
			Expenses:      zeroGroupMap(domain.ExpenseGroups),
			Income:        zeroGroupMap(domain.IncomeGroups),
			TotalExpenses: decimal.Zero,
			TotalIncome:   decimal.Zero,
			Savings:       decimal.Zero,
		}
	}
	totals := domain.YearlySummaryTotals{
		Expenses:      zeroGroupMap(domain.ExpenseGroups),
		Income:        zeroGroupMap(domain.IncomeGroups),
		TotalExpenses: decimal.Zero,
		TotalIncome:   decimal.Zero,
		Savings:       decimal.Zero,
	}

	skipped := 0
	for _, entry := range entries {
		category, ok := domain.LookupCategory(entry.Type)
		if !ok {
			skipped++
			continue
		}

		row := &rows[int(entry.Date.Month())-1]
		if category.Class == domain.ClassIncome {
			row.Income[category.Group] = row.Income[category.Group].Add(entry.Amount)
			row.TotalIncome = row.TotalIncome.Add(entry.Amount)
			totals.Income[category.Group] = totals.Income[category.Group].Add(entry.Amount)
			totals.TotalIncome = totals.TotalIncome.Add(entry.Amount)
		} else {
			row.Expenses[category.Group] = row.Expenses[category.Group].Add(entry.Amount)
			row.TotalExpenses = row.TotalExpenses.Add(entry.Amount)
			totals.Expenses[category.Group] = totals.Expenses[category.Group].Add(entry.Amount)
			totals.TotalExpenses = totals.TotalExpenses.Add(entry.Amount)
		}
	}

	// Savings is derived, never accumulated independently
	for i := range rows {
		rows[i].Savings = rows[i].TotalIncome.Sub(rows[i].TotalExpenses)
	}
	totals.Savings = totals.TotalIncome.Sub(totals.TotalExpenses)

	if skipped > 0 {
		log.Warn().Int("year", year).Int("skipped_rows", skipped).
			Msg("Yearly summary skipped rows with unknown category keys")
	}

	return &domain.YearlySummary{
		Rows:        rows,
		Totals:      totals,
		SkippedRows: skipped,
	}, nil
}

// RollingAverages computes per-day, per-week, and per-month average income,
// expenses, and savings for a year. For the in-progress current year the
// denominators are the elapsed counts so far; for a completed year they are
// the full-year counts. Quotients are returned unrounded.
func (s *AnalyticsService) RollingAverages(year int) (*domain.RollingAverages, error) {
	if year < domain.MinYear || year > domain.MaxYear {
		return nil, domain.ErrInvalidYear
	}

	start, end := util.YearRange(year)
	entries, err := s.transactionRepo.EntriesByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	totals := sumPeriod(entries)
	days, weeks, months := util.ElapsedYearPeriods(year, s.now())

	return &domain.RollingAverages{
		Daily:   dividePeriod(totals, days),
		Weekly:  dividePeriod(totals, weeks),
		Monthly: dividePeriod(totals, months),
	}, nil
}

// Comparison computes income/expense totals for a target month, the
// immediately preceding month, and the same month one year earlier. The three
// ranges are disjoint by construction, so a single fetch over their union is
// classified per row without double counting.
func (s *AnalyticsService) Comparison(year, month int) (*domain.ComparisonData, error) {
	if year < domain.MinYear || year > domain.MaxYear {
		return nil, domain.ErrInvalidYear
	}
	if month < 1 || month > 12 {
		return nil, domain.ErrInvalidMonth
	}

	currentStart, currentEnd := util.MonthRange(year, month)
	prevYear, prevMonth := util.PreviousMonth(year, month)
	previousStart, previousEnd := util.MonthRange(prevYear, prevMonth)
	lastYearStart, lastYearEnd := util.MonthRange(year-1, month)

	fetchStart := minTime(currentStart, previousStart, lastYearStart)
	fetchEnd := maxTime(currentEnd, previousEnd, lastYearEnd)

	entries, err := s.transactionRepo.EntriesByDateRange(fetchStart, fetchEnd)
	if err != nil {
		return nil, err
	}

	comparison := &domain.ComparisonData{
		CurrentMonth:      zeroPeriodTotals(),
		PreviousMonth:     zeroPeriodTotals(),
		SameMonthLastYear: zeroPeriodTotals(),
	}

	for _, entry := range entries {
		var target *domain.PeriodTotals
		switch {
		case inRange(entry.Date, currentStart, currentEnd):
			target = &comparison.CurrentMonth
		case inRange(entry.Date, previousStart, previousEnd):
			target = &comparison.PreviousMonth
		case inRange(entry.Date, lastYearStart, lastYearEnd):
			target = &comparison.SameMonthLastYear
		default:
			continue
		}
		if isIncome(entry.Type) {
			target.Income = target.Income.Add(entry.Amount)
		} else {
			target.Expense = target.Expense.Add(entry.Amount)
		}
	}
	return comparison, nil
}

// CurrentMonthStats returns income/expense/savings totals for the running
// calendar month
func (s *AnalyticsService) CurrentMonthStats() (*domain.PeriodStats, error) {
	now := s.now()
	start, end := util.MonthRange(now.Year(), int(now.Month()))

	entries, err := s.transactionRepo.EntriesByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	stats := sumPeriod(entries)
	return &stats, nil
}

// PercentChange computes the percentage change between two period values:
// zero when both are zero, 100 when rising from zero, otherwise
// (current - previous) / previous * 100. Direction polarity (whether an
// increase is favorable) depends on the figure's classification and is a
// presentation concern.
func PercentChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.GreaterThan(decimal.Zero) {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
}

// Helpers

// isIncome reports whether a key classifies as income. Keys missing from the
// registry count as expense, mirroring the write-path default.
func isIncome(key domain.CategoryKey) bool {
	category, ok := domain.LookupCategory(key)
	return ok && category.Class == domain.ClassIncome
}

func sumPeriod(entries []domain.Entry) domain.PeriodStats {
	stats := domain.PeriodStats{
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
		Savings:  decimal.Zero,
	}
	for _, entry := range entries {
		if isIncome(entry.Type) {
			stats.Income = stats.Income.Add(entry.Amount)
		} else {
			stats.Expenses = stats.Expenses.Add(entry.Amount)
		}
	}
	stats.Savings = stats.Income.Sub(stats.Expenses)
	return stats
}

func dividePeriod(totals domain.PeriodStats, periods int) domain.PeriodStats {
	divisor := decimal.NewFromInt(int64(periods))
	return domain.PeriodStats{
		Income:   totals.Income.Div(divisor),
		Expenses: totals.Expenses.Div(divisor),
		Savings:  totals.Savings.Div(divisor),
	}
}

func zeroGroupMap(groups []string) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(groups))
	for _, g := range groups {
		m[g] = decimal.Zero
	}
	return m
}

func zeroPeriodTotals() domain.PeriodTotals {
	return domain.PeriodTotals{Income: decimal.Zero, Expense: decimal.Zero}
}

func inRange(date, start, end time.Time) bool {
	return !date.Before(start) && !date.After(end)
}

func minTime(times ...time.Time) time.Time {
	min := times[0]
	for _, t := range times[1:] {
		if t.Before(min) {
			min = t
		}
	}
	return min
}

func maxTime(times ...time.Time) time.Time {
	max := times[0]
	for _, t := range times[1:] {
		if t.After(max) {
			max = t
		}
	}
	return max
}
