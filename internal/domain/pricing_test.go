package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildQuote returns a valid quote with one empty day, ready for expenses.
func buildQuote(t *testing.T, pax int, markup, tax int64, mode TransportPricingMode) *ManualQuote {
	t.Helper()

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	q := &ManualQuote{
		QuoteName:            "Test Itinerary",
		Category:             QuoteCategoryB2C,
		StartDate:            start,
		EndDate:              start.AddDate(0, 0, 3),
		TourType:             TourTypePrivate,
		Pax:                  pax,
		Markup:               decimal.NewFromInt(markup),
		Tax:                  decimal.NewFromInt(tax),
		TransportPricingMode: mode,
	}
	require.NoError(t, q.ValidateHeader())
	q.AddDay(start)

	return q
}

func addExpense(t *testing.T, q *ManualQuote, category ExpenseCategory, price float64) {
	t.Helper()

	_, err := q.AddExpense(q.Days[0].ID, QuoteExpense{
		Category: category,
		Price:    decimal.NewFromFloat(price),
	})
	require.NoError(t, err)
}

func TestGeneratePricingTable_ConcreteScenario(t *testing.T) {
	// PRIVATE quote, pax=2, markup=15, tax=8, VEHICLE mode, one day with a
	// per-person hotel line of 100 and a fixed transportation line of 50.
	q := buildQuote(t, 2, 15, 8, TransportPricingVehicle)
	addExpense(t, q, ExpenseHotelAccommodation, 100)
	addExpense(t, q, ExpenseTransportation, 50)

	table := GeneratePricingTable(q)
	require.Len(t, table.Rows, len(PricingBrackets))

	row := table.Row(4)
	require.NotNil(t, row)

	assert.Equal(t, "250", row.TotalCost.String())
	assert.Equal(t, "37.5", row.Markup.String())
	assert.Equal(t, "23", row.Tax.String())
	assert.Equal(t, "310.5", row.TotalPrice.String())
	assert.Equal(t, "77.63", row.PricePerPerson.String(), "310.5/4 = 77.625 rounds half up")
}

func TestGeneratePricingTable_EmptyDayYieldsZeros(t *testing.T) {
	q := buildQuote(t, 2, 15, 8, TransportPricingTotal)

	table := GeneratePricingTable(q)

	for _, row := range table.Rows {
		assert.True(t, row.TotalCost.IsZero(), "bracket %d total cost", row.Pax)
		assert.True(t, row.TotalPrice.IsZero(), "bracket %d total price", row.Pax)
		assert.True(t, row.PricePerPerson.IsZero(), "bracket %d per person", row.Pax)
	}
}

func TestGeneratePricingTable_PerPersonScalingInvariant(t *testing.T) {
	// A PER_PERSON expense of price x at reference pax r contributes
	// (x/r)*p to each bracket p.
	q := buildQuote(t, 3, 0, 0, TransportPricingTotal)
	addExpense(t, q, ExpenseMeals, 90)

	table := GeneratePricingTable(q)

	for _, p := range PricingBrackets {
		row := table.Row(p)
		require.NotNil(t, row)

		expected := decimal.NewFromInt(90).
			Div(decimal.NewFromInt(3)).
			Mul(decimal.NewFromInt(int64(p))).
			Round(2)
		assert.True(t, row.TotalCost.Equal(expected),
			"bracket %d: got %s want %s", p, row.TotalCost, expected)
	}
}

func TestGeneratePricingTable_FixedInvariant(t *testing.T) {
	// FIXED expenses contribute their price unchanged in every bracket.
	q := buildQuote(t, 4, 0, 0, TransportPricingVehicle)
	addExpense(t, q, ExpenseParking, 25.5)
	addExpense(t, q, ExpenseGuideDriverAccommodation, 80)
	addExpense(t, q, ExpenseTransportation, 120)

	table := GeneratePricingTable(q)

	for _, row := range table.Rows {
		assert.Equal(t, "225.5", row.TotalCost.String(), "bracket %d", row.Pax)
	}
}

func TestGeneratePricingTable_MonotonicTotalForPerPersonOnly(t *testing.T) {
	q := buildQuote(t, 2, 10, 5, TransportPricingTotal)
	addExpense(t, q, ExpenseHotelAccommodation, 75)
	addExpense(t, q, ExpenseEntranceFees, 12.4)
	addExpense(t, q, ExpenseTransportation, 60) // PER_PERSON in TOTAL mode

	table := GeneratePricingTable(q)

	for i := 1; i < len(table.Rows); i++ {
		prev, cur := table.Rows[i-1], table.Rows[i]
		assert.True(t, cur.TotalCost.GreaterThanOrEqual(prev.TotalCost),
			"totalCost must not decrease from pax %d to %d", prev.Pax, cur.Pax)
	}
}

func TestGeneratePricingTable_Idempotent(t *testing.T) {
	q := buildQuote(t, 2, 15, 8, TransportPricingVehicle)
	addExpense(t, q, ExpenseHotelAccommodation, 99.99)
	addExpense(t, q, ExpenseTips, 10)
	addExpense(t, q, ExpenseTransportation, 47.5)

	first := GeneratePricingTable(q)
	second := GeneratePricingTable(q)

	require.Equal(t, len(first.Rows), len(second.Rows))
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i].Pax, second.Rows[i].Pax)
		assert.True(t, first.Rows[i].TotalCost.Equal(second.Rows[i].TotalCost))
		assert.True(t, first.Rows[i].Markup.Equal(second.Rows[i].Markup))
		assert.True(t, first.Rows[i].Tax.Equal(second.Rows[i].Tax))
		assert.True(t, first.Rows[i].TotalPrice.Equal(second.Rows[i].TotalPrice))
		assert.True(t, first.Rows[i].PricePerPerson.Equal(second.Rows[i].PricePerPerson))
	}
}

func TestGeneratePricingTable_RoundsOnceAtTheEnd(t *testing.T) {
	// Three lines of 0.10 at reference pax 3: the per-head unit 0.0333... must
	// not be rounded per expense before summing.
	q := buildQuote(t, 3, 0, 0, TransportPricingTotal)
	addExpense(t, q, ExpenseMeals, 0.10)
	addExpense(t, q, ExpenseMeals, 0.10)
	addExpense(t, q, ExpenseMeals, 0.10)

	table := GeneratePricingTable(q)

	// (0.3/3)*2 = 0.2 exactly; per-expense rounding would distort this.
	row := table.Row(2)
	require.NotNil(t, row)
	assert.Equal(t, "0.2", row.TotalCost.String())
}

func TestPricingTable_RowMissingBracket(t *testing.T) {
	table := &PricingTable{Rows: []PricingRow{{Pax: 2}}}

	assert.NotNil(t, table.Row(2))
	assert.Nil(t, table.Row(5))
}
