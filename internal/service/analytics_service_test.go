package service

import (
	"testing"
	"time"

	"github.com/pitaka-app/pitaka-backend/internal/domain"
	"github.com/pitaka-app/pitaka-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func TestCategoryBreakdown_SortsByTotalDescending(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2024, 3, 1), domain.CategoryGroceries, "200")
	transactionRepo.AddEntry(date(2024, 3, 2), domain.CategoryGroceries, "300")
	transactionRepo.AddEntry(date(2024, 3, 3), domain.CategorySchool, "800")
	transactionRepo.AddEntry(date(2024, 3, 4), domain.CategoryPersonal, "50")

	breakdown, err := analyticsService.CategoryBreakdown(nil, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(breakdown) != 3 {
		t.Fatalf("Expected 3 categories, got %d", len(breakdown))
	}
	if breakdown[0].Type != domain.CategorySchool {
		t.Errorf("Expected school first, got %s", breakdown[0].Type)
	}
	if breakdown[1].Type != domain.CategoryGroceries {
		t.Errorf("Expected groceries second, got %s", breakdown[1].Type)
	}
	if !breakdown[1].Total.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected groceries total 500, got %s", breakdown[1].Total.String())
	}
	if breakdown[1].Count != 2 {
		t.Errorf("Expected groceries count 2, got %d", breakdown[1].Count)
	}
}

func TestCategoryBreakdown_TieBreaksByKey(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2024, 3, 1), domain.CategoryPersonal, "100")
	transactionRepo.AddEntry(date(2024, 3, 2), domain.CategoryGeneral, "100")

	breakdown, err := analyticsService.CategoryBreakdown(nil, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if breakdown[0].Type != domain.CategoryGeneral || breakdown[1].Type != domain.CategoryPersonal {
		t.Errorf("Expected key-ascending tie break, got %s then %s", breakdown[0].Type, breakdown[1].Type)
	}
}

func TestCategoryBreakdown_ClassFilter(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2024, 3, 1), domain.CategoryGroceries, "500")
	transactionRepo.AddEntry(date(2024, 3, 2), domain.CategoryAllowance, "1000")
	// Unknown keys never match a class filter
	transactionRepo.AddEntry(date(2024, 3, 3), domain.CategoryKey("mystery"), "42")

	class := domain.ClassIncome
	breakdown, err := analyticsService.CategoryBreakdown(nil, nil, &class)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(breakdown) != 1 {
		t.Fatalf("Expected 1 income category, got %d", len(breakdown))
	}
	if breakdown[0].Type != domain.CategoryAllowance {
		t.Errorf("Expected allowance, got %s", breakdown[0].Type)
	}
}

func TestCategoryBreakdown_DateRange(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2024, 2, 28), domain.CategoryGroceries, "100")
	transactionRepo.AddEntry(date(2024, 3, 1), domain.CategoryGroceries, "200")
	transactionRepo.AddEntry(date(2024, 3, 31), domain.CategoryGroceries, "300")
	transactionRepo.AddEntry(date(2024, 4, 1), domain.CategoryGroceries, "400")

	start := date(2024, 3, 1)
	end := date(2024, 3, 31)
	breakdown, err := analyticsService.CategoryBreakdown(&start, &end, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Both boundary dates are inclusive
	if !breakdown[0].Total.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected total 500, got %s", breakdown[0].Total.String())
	}
}

func TestCategoryBreakdown_EmptyInput(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	breakdown, err := analyticsService.CategoryBreakdown(nil, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(breakdown) != 0 {
		t.Errorf("Expected empty breakdown, got %d entries", len(breakdown))
	}
}

func TestCategoryBreakdown_ReconcilesWithAcceptedWrites(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	transactionService := NewTransactionService(transactionRepo)
	analyticsService := NewAnalyticsService(transactionRepo)

	// Every date the write path accepts must be visible to the date-less
	// breakdown, including the window boundaries
	writes := []struct {
		date   time.Time
		key    domain.CategoryKey
		amount int64
	}{
		{date(domain.MinYear, 1, 1), domain.CategoryGroceries, 100},
		{date(2024, 3, 5), domain.CategoryGroceries, 500},
		{date(domain.MaxYear, 12, 31), domain.CategoryAllowance, 1000},
	}
	for _, w := range writes {
		d := w.date
		if _, err := transactionService.CreateTransaction(CreateTransactionInput{
			Date:   &d,
			Type:   w.key,
			Amount: decimal.NewFromInt(w.amount),
		}); err != nil {
			t.Fatalf("Create for %v: expected no error, got %v", w.date, err)
		}
	}

	breakdown, err := analyticsService.CategoryBreakdown(nil, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	total := decimal.Zero
	count := 0
	for _, entry := range breakdown {
		total = total.Add(entry.Total)
		count += entry.Count
	}
	if count != len(writes) {
		t.Errorf("Expected %d rows counted, got %d", len(writes), count)
	}
	if !total.Equal(decimal.NewFromInt(1600)) {
		t.Errorf("Expected breakdown totals 1600, got %s", total.String())
	}
}

func TestTopCategories_LimitsAndFiltersExpenses(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2024, 3, 1), domain.CategorySchool, "500")
	transactionRepo.AddEntry(date(2024, 3, 2), domain.CategoryGroceries, "400")
	transactionRepo.AddEntry(date(2024, 3, 3), domain.CategoryPersonal, "300")
	transactionRepo.AddEntry(date(2024, 3, 4), domain.CategoryAllowance, "9999")

	top, err := analyticsService.TopCategories(2, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(top) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(top))
	}
	if top[0].Type != domain.CategorySchool || top[1].Type != domain.CategoryGroceries {
		t.Errorf("Expected school then groceries, got %s then %s", top[0].Type, top[1].Type)
	}
}

func TestMonthlyTrend_AlwaysTwelvePoints(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2024, 3, 5), domain.CategoryGroceries, "500")
	transactionRepo.AddEntry(date(2024, 3, 10), domain.CategoryAllowance, "1000")

	trend, err := analyticsService.MonthlyTrend(2024)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(trend) != 12 {
		t.Fatalf("Expected 12 points, got %d", len(trend))
	}
	for i, point := range trend {
		if point.Month != i+1 {
			t.Errorf("Expected month %d at index %d, got %d", i+1, i, point.Month)
		}
	}

	march := trend[2]
	if !march.Income.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected March income 1000, got %s", march.Income.String())
	}
	if !march.Expense.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected March expense 500, got %s", march.Expense.String())
	}

	// Every other month stays zero-valued
	if !trend[0].Income.IsZero() || !trend[0].Expense.IsZero() {
		t.Errorf("Expected January zero, got %v", trend[0])
	}
}

func TestMonthlyTrend_UnknownKeyCountsAsExpense(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2024, 5, 1), domain.CategoryKey("mystery"), "77")

	trend, err := analyticsService.MonthlyTrend(2024)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !trend[4].Expense.Equal(decimal.NewFromInt(77)) {
		t.Errorf("Expected May expense 77, got %s", trend[4].Expense.String())
	}
}

func TestMonthlyTrend_InvalidYear(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	if _, err := analyticsService.MonthlyTrend(1800); err != domain.ErrInvalidYear {
		t.Errorf("Expected ErrInvalidYear, got %v", err)
	}
}

func TestYearlySummary_GroupsAndTotals(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2024, 3, 5), domain.CategoryGroceries, "500")
	transactionRepo.AddEntry(date(2024, 3, 10), domain.CategoryAllowance, "1000")
	transactionRepo.AddEntry(date(2024, 7, 1), domain.CategorySchool, "250")

	summary, err := analyticsService.YearlySummary(2024)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(summary.Rows) != 12 {
		t.Fatalf("Expected 12 rows, got %d", len(summary.Rows))
	}

	march := summary.Rows[2]
	groceriesGroup := mustGroup(t, domain.CategoryGroceries)
	if !march.Expenses[groceriesGroup].Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected March %s group 500, got %s", groceriesGroup, march.Expenses[groceriesGroup].String())
	}
	if !march.Savings.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected March savings 500, got %s", march.Savings.String())
	}

	// Savings identity holds on every row and on the totals
	for _, row := range summary.Rows {
		if !row.Savings.Equal(row.TotalIncome.Sub(row.TotalExpenses)) {
			t.Errorf("Month %d: savings %s != income %s - expenses %s",
				row.Month, row.Savings, row.TotalIncome, row.TotalExpenses)
		}
	}
	if !summary.Totals.Savings.Equal(summary.Totals.TotalIncome.Sub(summary.Totals.TotalExpenses)) {
		t.Error("Totals row violates the savings identity")
	}

	// Totals reconcile with the monthly rows
	sumExpenses := decimal.Zero
	for _, row := range summary.Rows {
		sumExpenses = sumExpenses.Add(row.TotalExpenses)
	}
	if !summary.Totals.TotalExpenses.Equal(sumExpenses) {
		t.Errorf("Expected totals %s to equal row sum %s", summary.Totals.TotalExpenses, sumExpenses)
	}

	// All groups are present even when zero
	for _, group := range domain.ExpenseGroups {
		if _, ok := summary.Rows[0].Expenses[group]; !ok {
			t.Errorf("Expected group %q pre-initialized", group)
		}
	}
	for _, group := range domain.IncomeGroups {
		if _, ok := summary.Rows[0].Income[group]; !ok {
			t.Errorf("Expected income group %q pre-initialized", group)
		}
	}
}

func TestYearlySummary_SkipsUnknownKeys(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2024, 3, 5), domain.CategoryGroceries, "500")
	transactionRepo.AddEntry(date(2024, 3, 6), domain.CategoryKey("mystery"), "999")

	summary, err := analyticsService.YearlySummary(2024)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.SkippedRows != 1 {
		t.Errorf("Expected 1 skipped row, got %d", summary.SkippedRows)
	}
	if !summary.Totals.TotalExpenses.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected skipped row excluded from totals, got %s", summary.Totals.TotalExpenses.String())
	}
}

func TestRollingAverages_CompletedYear(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)
	analyticsService.now = func() time.Time { return date(2025, 6, 15) }

	// 2024 is a leap year: 366 days
	transactionRepo.AddEntry(date(2024, 3, 5), domain.CategoryGroceries, "366")
	transactionRepo.AddEntry(date(2024, 8, 1), domain.CategoryAllowance, "732")

	averages, err := analyticsService.RollingAverages(2024)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !averages.Daily.Expenses.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected daily expenses 1, got %s", averages.Daily.Expenses.String())
	}
	if !averages.Daily.Income.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected daily income 2, got %s", averages.Daily.Income.String())
	}
	if !averages.Weekly.Expenses.Equal(decimal.RequireFromString("366").Div(decimal.NewFromInt(52))) {
		t.Errorf("Expected weekly expenses 366/52, got %s", averages.Weekly.Expenses.String())
	}
	if !averages.Monthly.Income.Equal(decimal.NewFromInt(61)) {
		t.Errorf("Expected monthly income 61, got %s", averages.Monthly.Income.String())
	}
}

func TestRollingAverages_CurrentYearUsesElapsedPeriods(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)
	// Feb 10 of a non-leap year: 41 elapsed days, 6 weeks, 2 months
	analyticsService.now = func() time.Time { return date(2025, 2, 10) }

	transactionRepo.AddEntry(date(2025, 1, 15), domain.CategoryGroceries, "82")

	averages, err := analyticsService.RollingAverages(2025)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !averages.Daily.Expenses.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected daily expenses 82/41=2, got %s", averages.Daily.Expenses.String())
	}
	if !averages.Monthly.Expenses.Equal(decimal.NewFromInt(41)) {
		t.Errorf("Expected monthly expenses 82/2=41, got %s", averages.Monthly.Expenses.String())
	}
	// Savings averages are negative with expenses only
	if !averages.Daily.Savings.Equal(decimal.NewFromInt(-2)) {
		t.Errorf("Expected daily savings -2, got %s", averages.Daily.Savings.String())
	}
}

func TestRollingAverages_DecreaseAsYearProgresses(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2025, 1, 10), domain.CategoryGroceries, "1000")

	analyticsService.now = func() time.Time { return date(2025, 2, 1) }
	early, err := analyticsService.RollingAverages(2025)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	analyticsService.now = func() time.Time { return date(2025, 11, 1) }
	late, err := analyticsService.RollingAverages(2025)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// With totals fixed, a later observation point means larger denominators
	if !late.Daily.Expenses.LessThan(early.Daily.Expenses) {
		t.Errorf("Expected daily average to shrink: early %s, late %s",
			early.Daily.Expenses.String(), late.Daily.Expenses.String())
	}
	if !late.Weekly.Expenses.LessThan(early.Weekly.Expenses) {
		t.Errorf("Expected weekly average to shrink: early %s, late %s",
			early.Weekly.Expenses.String(), late.Weekly.Expenses.String())
	}
	if !late.Monthly.Expenses.LessThan(early.Monthly.Expenses) {
		t.Errorf("Expected monthly average to shrink: early %s, late %s",
			early.Monthly.Expenses.String(), late.Monthly.Expenses.String())
	}
}

func TestComparison_ClassifiesThreePeriods(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	// Target month
	transactionRepo.AddEntry(date(2024, 3, 5), domain.CategoryGroceries, "500")
	transactionRepo.AddEntry(date(2024, 3, 10), domain.CategoryAllowance, "1000")
	// Previous month
	transactionRepo.AddEntry(date(2024, 2, 15), domain.CategoryGroceries, "400")
	// Same month last year
	transactionRepo.AddEntry(date(2023, 3, 20), domain.CategoryGroceries, "300")
	// Outside all three windows
	transactionRepo.AddEntry(date(2023, 6, 1), domain.CategoryGroceries, "9999")

	comparison, err := analyticsService.Comparison(2024, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !comparison.CurrentMonth.Expense.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected current expense 500, got %s", comparison.CurrentMonth.Expense.String())
	}
	if !comparison.CurrentMonth.Income.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected current income 1000, got %s", comparison.CurrentMonth.Income.String())
	}
	if !comparison.PreviousMonth.Expense.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected previous expense 400, got %s", comparison.PreviousMonth.Expense.String())
	}
	if !comparison.SameMonthLastYear.Expense.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected last-year expense 300, got %s", comparison.SameMonthLastYear.Expense.String())
	}
}

func TestComparison_JanuaryWrapsToPreviousDecember(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2023, 12, 25), domain.CategoryGroceries, "150")
	transactionRepo.AddEntry(date(2024, 1, 5), domain.CategoryGroceries, "100")
	transactionRepo.AddEntry(date(2023, 1, 10), domain.CategoryGroceries, "50")

	comparison, err := analyticsService.Comparison(2024, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !comparison.PreviousMonth.Expense.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected December 2023 as previous month, got %s", comparison.PreviousMonth.Expense.String())
	}
	if !comparison.SameMonthLastYear.Expense.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected January 2023 as last year, got %s", comparison.SameMonthLastYear.Expense.String())
	}
}

func TestComparison_Validation(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	if _, err := analyticsService.Comparison(2024, 0); err != domain.ErrInvalidMonth {
		t.Errorf("Expected ErrInvalidMonth, got %v", err)
	}
	if _, err := analyticsService.Comparison(2200, 3); err != domain.ErrInvalidYear {
		t.Errorf("Expected ErrInvalidYear, got %v", err)
	}
}

func TestCurrentMonthStats(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)
	analyticsService.now = func() time.Time { return date(2024, 3, 15) }

	transactionRepo.AddEntry(date(2024, 3, 5), domain.CategoryGroceries, "500")
	transactionRepo.AddEntry(date(2024, 3, 10), domain.CategoryAllowance, "1000")
	transactionRepo.AddEntry(date(2024, 2, 28), domain.CategoryGroceries, "9999")

	stats, err := analyticsService.CurrentMonthStats()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !stats.Income.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected income 1000, got %s", stats.Income.String())
	}
	if !stats.Expenses.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected expenses 500, got %s", stats.Expenses.String())
	}
	if !stats.Savings.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected savings 500, got %s", stats.Savings.String())
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		current, previous, expected string
	}{
		{"150", "100", "50"},
		{"50", "100", "-50"},
		{"100", "100", "0"},
		{"0", "0", "0"},
		{"75", "0", "100"},
		{"0", "100", "-100"},
	}

	for _, tt := range tests {
		got := PercentChange(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.previous))
		if !got.Equal(decimal.RequireFromString(tt.expected)) {
			t.Errorf("PercentChange(%s, %s) = %s, want %s", tt.current, tt.previous, got.String(), tt.expected)
		}
	}
}

func TestAnalytics_ExcludesSoftDeleted(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	analyticsService := NewAnalyticsService(transactionRepo)

	transactionRepo.AddEntry(date(2024, 3, 5), domain.CategoryGroceries, "500")
	removed := transactionRepo.AddEntry(date(2024, 3, 6), domain.CategoryGroceries, "999")
	if _, err := transactionRepo.SoftDelete(removed.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	trend, err := analyticsService.MonthlyTrend(2024)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !trend[2].Expense.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected deleted row excluded, got %s", trend[2].Expense.String())
	}
}

func mustGroup(t *testing.T, key domain.CategoryKey) string {
	t.Helper()
	category, ok := domain.LookupCategory(key)
	if !ok {
		t.Fatalf("Category %s missing from registry", key)
	}
	return category.Group
}
