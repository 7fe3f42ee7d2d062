package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuote() *ManualQuote {
	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	return &ManualQuote{
		QuoteName:            "Golden Triangle 4D",
		Category:             QuoteCategoryB2BFIT,
		StartDate:            start,
		EndDate:              start.AddDate(0, 0, 3),
		TourType:             TourTypeSIC,
		Pax:                  2,
		Markup:               decimal.NewFromInt(15),
		Tax:                  decimal.NewFromInt(8),
		TransportPricingMode: TransportPricingTotal,
	}
}

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ManualQuote)
		wantErr bool
		field   string
	}{
		{"valid", func(q *ManualQuote) {}, false, ""},
		{"empty name", func(q *ManualQuote) { q.QuoteName = "" }, true, "quoteName"},
		{"unknown category", func(q *ManualQuote) { q.Category = "RETAIL" }, true, "category"},
		{"missing category is allowed", func(q *ManualQuote) { q.Category = "" }, false, ""},
		{"unknown tour type", func(q *ManualQuote) { q.TourType = "GROUP" }, true, "tourType"},
		{"unknown transport mode", func(q *ManualQuote) { q.TransportPricingMode = "PER_SEAT" }, true, "transportPricingMode"},
		{"zero pax", func(q *ManualQuote) { q.Pax = 0 }, true, "pax"},
		{"negative pax", func(q *ManualQuote) { q.Pax = -3 }, true, "pax"},
		{"negative markup", func(q *ManualQuote) { q.Markup = decimal.NewFromInt(-1) }, true, "markup"},
		{"markup above 100", func(q *ManualQuote) { q.Markup = decimal.NewFromInt(101) }, true, "markup"},
		{"negative tax", func(q *ManualQuote) { q.Tax = decimal.NewFromInt(-5) }, true, "tax"},
		{"end equals start", func(q *ManualQuote) { q.EndDate = q.StartDate }, true, "endDate"},
		{"end before start", func(q *ManualQuote) { q.EndDate = q.StartDate.AddDate(0, 0, -1) }, true, "endDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuote()
			tt.mutate(q)

			err := q.ValidateHeader()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, IsValidation(err))

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestAddDay_AssignsContiguousNumbers(t *testing.T) {
	q := validQuote()

	for i := range 3 {
		day := q.AddDay(q.StartDate.AddDate(0, 0, i))
		assert.Equal(t, i+1, day.DayNumber)
	}

	assert.True(t, q.PricingStale)
}

func TestGenerateDays_CoversTripSpan(t *testing.T) {
	q := validQuote() // 4-day span
	q.GenerateDays()

	require.Len(t, q.Days, 4)
	for i, day := range q.Days {
		assert.Equal(t, i+1, day.DayNumber)
		assert.Equal(t, q.StartDate.AddDate(0, 0, i), day.Date)
	}
}

func TestRemoveDay_CascadesAndRenumbers(t *testing.T) {
	q := validQuote()
	q.GenerateDays()
	require.Len(t, q.Days, 4)

	second := q.Days[1]
	expense, err := q.AddExpense(second.ID, QuoteExpense{
		Category: ExpenseMeals,
		Price:    decimal.NewFromInt(40),
	})
	require.NoError(t, err)

	require.NoError(t, q.RemoveDay(second.ID))

	// Remaining days renumbered to close the gap.
	require.Len(t, q.Days, 3)
	for i, day := range q.Days {
		assert.Equal(t, i+1, day.DayNumber)
	}

	// Cascade: the removed day's expense is gone.
	err = q.RemoveExpense(expense.ID)
	assert.True(t, IsNotFound(err))
}

func TestRemoveDay_UnknownID(t *testing.T) {
	q := validQuote()
	q.GenerateDays()

	err := q.RemoveDay(uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestAddExpense(t *testing.T) {
	q := validQuote()
	q.GenerateDays()
	dayID := q.Days[0].ID

	t.Run("success", func(t *testing.T) {
		expense, err := q.AddExpense(dayID, QuoteExpense{
			Category: ExpenseHotelAccommodation,
			Location: "Jaipur",
			Price:    decimal.NewFromInt(120),
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, expense.ID)
		assert.True(t, q.PricingStale)
	})

	t.Run("unknown day", func(t *testing.T) {
		_, err := q.AddExpense(uuid.New(), QuoteExpense{
			Category: ExpenseMeals,
			Price:    decimal.NewFromInt(10),
		})
		assert.True(t, IsNotFound(err))
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := q.AddExpense(dayID, QuoteExpense{
			Category: ExpenseMeals,
			Price:    decimal.NewFromInt(-10),
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := q.AddExpense(dayID, QuoteExpense{
			Category: "helicopter",
			Price:    decimal.NewFromInt(10),
		})
		assert.True(t, IsValidation(err))
	})
}

func TestUpdateExpense(t *testing.T) {
	q := validQuote()
	q.GenerateDays()

	expense, err := q.AddExpense(q.Days[0].ID, QuoteExpense{
		Category:    ExpenseGuide,
		Description: "local guide",
		Price:       decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	t.Run("partial merge keeps unset fields", func(t *testing.T) {
		newPrice := decimal.NewFromInt(75)
		updated, err := q.UpdateExpense(expense.ID, ExpenseUpdate{Price: &newPrice})
		require.NoError(t, err)

		assert.True(t, updated.Price.Equal(newPrice))
		assert.Equal(t, ExpenseGuide, updated.Category)
		assert.Equal(t, "local guide", updated.Description)
	})

	t.Run("negative price rejected without change", func(t *testing.T) {
		bad := decimal.NewFromInt(-1)
		_, err := q.UpdateExpense(expense.ID, ExpenseUpdate{Price: &bad})
		assert.True(t, IsValidation(err))

		_, current := q.Expense(expense.ID)
		require.NotNil(t, current)
		assert.Equal(t, "75", current.Price.String())
	})

	t.Run("unknown expense", func(t *testing.T) {
		_, err := q.UpdateExpense(uuid.New(), ExpenseUpdate{})
		assert.True(t, IsNotFound(err))
	})
}

func TestRemoveExpense(t *testing.T) {
	q := validQuote()
	q.GenerateDays()

	expense, err := q.AddExpense(q.Days[2].ID, QuoteExpense{
		Category: ExpenseParking,
		Price:    decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	require.NoError(t, q.RemoveExpense(expense.ID))
	assert.True(t, IsNotFound(q.RemoveExpense(expense.ID)))
}

func TestClone_IsolatesMutations(t *testing.T) {
	q := validQuote()
	q.GenerateDays()
	_, err := q.AddExpense(q.Days[0].ID, QuoteExpense{
		Category: ExpenseTips,
		Price:    decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	q.PricingTable = GeneratePricingTable(q)

	clone := q.Clone()
	clone.Days[0].Expenses[0].Price = decimal.NewFromInt(999)
	clone.PricingTable.Rows[0].TotalCost = decimal.NewFromInt(-1)
	require.NoError(t, clone.RemoveDay(clone.Days[1].ID))

	assert.Equal(t, "20", q.Days[0].Expenses[0].Price.String())
	assert.Len(t, q.Days, 4)
	assert.False(t, q.PricingTable.Rows[0].TotalCost.IsNegative())
}
