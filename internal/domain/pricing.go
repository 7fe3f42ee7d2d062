package domain

import "github.com/shopspring/decimal"

// PricingBrackets are the standard passenger counts a price breakdown is
// computed for.
var PricingBrackets = []int{2, 4, 6, 8, 10}

// moneyPlaces is the terminal rounding precision for all published amounts.
const moneyPlaces = 2

// PricingRow is the full price breakdown for one passenger bracket.
// All amounts are rounded to two decimal places, half up.
type PricingRow struct {
	// Pax is the bracket's passenger count.
	Pax int

	// TotalCost is the summed cost of every expense, scaled to this bracket.
	TotalCost decimal.Decimal

	// Markup is the markup amount applied on TotalCost.
	Markup decimal.Decimal

	// Tax is the tax amount applied on TotalCost plus Markup.
	Tax decimal.Decimal

	// TotalPrice is TotalCost + Markup + Tax.
	TotalPrice decimal.Decimal

	// PricePerPerson is TotalPrice divided by the bracket's passenger count.
	PricePerPerson decimal.Decimal
}

// PricingTable is the derived per-bracket price breakdown cached on a quote.
// It is a replaceable snapshot: regenerated whole by an explicit
// recalculation, never edited in place.
type PricingTable struct {
	Rows []PricingRow
}

// Row returns the breakdown for the given bracket pax, or nil.
func (t *PricingTable) Row(pax int) *PricingRow {
	for i := range t.Rows {
		if t.Rows[i].Pax == pax {
			return &t.Rows[i]
		}
	}

	return nil
}

// GeneratePricingTable computes the full per-bracket breakdown for a quote.
// Deterministic and side-effect-free: the same quote state always yields an
// identical table, so recalculation is idempotent and safely retryable.
//
// Per-person expenses are normalized to a per-head unit using the quote's
// reference pax, then scaled to each bracket; fixed expenses contribute their
// price unchanged. Rounding happens exactly once per published amount, after
// all arithmetic, to avoid compounding rounding error across expenses.
func GeneratePricingTable(q *ManualQuote) *PricingTable {
	hundred := decimal.NewFromInt(percentMax)
	refPax := decimal.NewFromInt(int64(q.Pax))

	table := &PricingTable{Rows: make([]PricingRow, 0, len(PricingBrackets))}

	for _, pax := range PricingBrackets {
		bracket := decimal.NewFromInt(int64(pax))

		totalCost := decimal.Zero
		for i := range q.Days {
			for _, expense := range q.Days[i].Expenses {
				switch ScalingRuleFor(expense.Category, q.TransportPricingMode) {
				case ScaleFixed:
					totalCost = totalCost.Add(expense.Price)
				case ScalePerPerson:
					totalCost = totalCost.Add(expense.Price.Div(refPax).Mul(bracket))
				}
			}
		}

		markup := totalCost.Mul(q.Markup).Div(hundred)
		preTax := totalCost.Add(markup)
		tax := preTax.Mul(q.Tax).Div(hundred)
		totalPrice := preTax.Add(tax)
		perPerson := totalPrice.Div(bracket)

		table.Rows = append(table.Rows, PricingRow{
			Pax:            pax,
			TotalCost:      totalCost.Round(moneyPlaces),
			Markup:         markup.Round(moneyPlaces),
			Tax:            tax.Round(moneyPlaces),
			TotalPrice:     totalPrice.Round(moneyPlaces),
			PricePerPerson: perPerson.Round(moneyPlaces),
		})
	}

	return table
}
