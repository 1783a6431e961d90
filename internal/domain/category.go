package domain

// CategoryKey identifies a transaction category. The set of keys is closed:
// adding a new category is a code change, not a data change.
type CategoryKey string

// CategoryClass is the income/expense polarity of a category
type CategoryClass string

const (
	ClassIncome  CategoryClass = "income"
	ClassExpense CategoryClass = "expense"
)

// Expense category keys
const (
	CategorySchool       CategoryKey = "school"
	CategoryGroceries    CategoryKey = "groceries"
	CategoryPersonal     CategoryKey = "personal"
	CategoryGeneral      CategoryKey = "general"
	CategoryOtherExpense CategoryKey = "other_expense"
)

// Income category keys
const (
	CategoryAllowance   CategoryKey = "allowance"
	CategoryScholarship CategoryKey = "scholarship"
	CategoryOtherIncome CategoryKey = "other_income"
)

// Category describes a single entry in the static category registry
type Category struct {
	Key   CategoryKey   `json:"key"`
	Label string        `json:"label"`
	Class CategoryClass `json:"class"`
	Group string        `json:"group"`
	Icon  string        `json:"icon"`
	Color string        `json:"color"`
}

// categoryRegistry is the program-wide immutable category table. Keep the
// order stable: it is the display order for forms and listings.
var categoryRegistry = []Category{
	{Key: CategorySchool, Label: "School", Class: ClassExpense, Group: "school", Icon: "GraduationCap", Color: "#ef4444"},
	{Key: CategoryGroceries, Label: "Groceries & Food", Class: ClassExpense, Group: "groceries and food", Icon: "ShoppingCart", Color: "#f97316"},
	{Key: CategoryPersonal, Label: "Personal", Class: ClassExpense, Group: "personal", Icon: "User", Color: "#8b5cf6"},
	{Key: CategoryGeneral, Label: "General", Class: ClassExpense, Group: "general", Icon: "Package", Color: "#6b7280"},
	{Key: CategoryOtherExpense, Label: "Other", Class: ClassExpense, Group: "other", Icon: "MoreHorizontal", Color: "#6b7280"},
	{Key: CategoryAllowance, Label: "Allowance", Class: ClassIncome, Group: "allowance", Icon: "Wallet", Color: "#22c55e"},
	{Key: CategoryScholarship, Label: "Scholarship", Class: ClassIncome, Group: "scholarships", Icon: "Award", Color: "#3b82f6"},
	{Key: CategoryOtherIncome, Label: "Other Income", Class: ClassIncome, Group: "other", Icon: "Plus", Color: "#22c55e"},
}

var categoryIndex = func() map[CategoryKey]Category {
	index := make(map[CategoryKey]Category, len(categoryRegistry))
	for _, c := range categoryRegistry {
		index[c.Key] = c
	}
	return index
}()

// ExpenseGroups lists the summary-group columns for expenses, in display order
var ExpenseGroups = []string{"school", "groceries and food", "personal", "general", "other"}

// IncomeGroups lists the summary-group columns for income, in display order
var IncomeGroups = []string{"allowance", "scholarships", "other"}

// Categories returns all registry entries in display order. The returned
// slice is a copy; the registry itself is never mutated.
func Categories() []Category {
	out := make([]Category, len(categoryRegistry))
	copy(out, categoryRegistry)
	return out
}

// LookupCategory resolves a key against the registry
func LookupCategory(key CategoryKey) (Category, bool) {
	c, ok := categoryIndex[key]
	return c, ok
}

// IsValidCategory reports whether the key exists in the registry
func IsValidCategory(key CategoryKey) bool {
	_, ok := categoryIndex[key]
	return ok
}

// KeysByClass returns the category keys with the given classification,
// in display order
func KeysByClass(class CategoryClass) []CategoryKey {
	var keys []CategoryKey
	for _, c := range categoryRegistry {
		if c.Class == class {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// CategoriesByClass returns the registry entries with the given classification
func CategoriesByClass(class CategoryClass) []Category {
	var out []Category
	for _, c := range categoryRegistry {
		if c.Class == class {
			out = append(out, c)
		}
	}
	return out
}
