// Package domain contains core business entities and rules.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteCategory identifies the sales channel a quote is built for.
type QuoteCategory string

// Quote categories.
const (
	QuoteCategoryB2C       QuoteCategory = "B2C"
	QuoteCategoryB2B       QuoteCategory = "B2B"
	QuoteCategoryB2BFIT    QuoteCategory = "B2B_FIT"
	QuoteCategoryB2BGroups QuoteCategory = "B2B_GROUPS"
	QuoteCategoryInternal  QuoteCategory = "INTERNAL"
)

// Valid reports whether the category is a known value.
func (c QuoteCategory) Valid() bool {
	switch c {
	case QuoteCategoryB2C, QuoteCategoryB2B, QuoteCategoryB2BFIT,
		QuoteCategoryB2BGroups, QuoteCategoryInternal:
		return true
	}

	return false
}

// TourType distinguishes seat-in-coach tours from private tours.
type TourType string

// Tour types.
const (
	TourTypeSIC     TourType = "SIC"
	TourTypePrivate TourType = "PRIVATE"
)

// Valid reports whether the tour type is a known value.
func (t TourType) Valid() bool {
	return t == TourTypeSIC || t == TourTypePrivate
}

// TransportPricingMode controls how transportation expenses scale with
// passenger count. In TOTAL mode a transportation line is an aggregate cost
// entered for the quote's reference pax; in VEHICLE mode it is one vehicle's
// fixed charge.
type TransportPricingMode string

// Transport pricing modes.
const (
	TransportPricingTotal   TransportPricingMode = "TOTAL"
	TransportPricingVehicle TransportPricingMode = "VEHICLE"
)

// Valid reports whether the mode is a known value.
func (m TransportPricingMode) Valid() bool {
	return m == TransportPricingTotal || m == TransportPricingVehicle
}

// ExpenseCategory classifies what kind of cost an expense line represents.
type ExpenseCategory string

// Expense categories.
const (
	ExpenseHotelAccommodation       ExpenseCategory = "hotelAccommodation"
	ExpenseMeals                    ExpenseCategory = "meals"
	ExpenseEntranceFees             ExpenseCategory = "entranceFees"
	ExpenseSICTourCost              ExpenseCategory = "sicTourCost"
	ExpenseTips                     ExpenseCategory = "tips"
	ExpenseTransportation           ExpenseCategory = "transportation"
	ExpenseGuide                    ExpenseCategory = "guide"
	ExpenseGuideDriverAccommodation ExpenseCategory = "guideDriverAccommodation"
	ExpenseParking                  ExpenseCategory = "parking"
)

// ExpenseCategories lists every known category.
var ExpenseCategories = []ExpenseCategory{
	ExpenseHotelAccommodation,
	ExpenseMeals,
	ExpenseEntranceFees,
	ExpenseSICTourCost,
	ExpenseTips,
	ExpenseTransportation,
	ExpenseGuide,
	ExpenseGuideDriverAccommodation,
	ExpenseParking,
}

// Valid reports whether the category is a known value.
func (c ExpenseCategory) Valid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}

	return false
}

// ManualQuote is a hand-built tour quotation: a header, an ordered list of
// itinerary days and a cached pricing table. It is the aggregate root; days
// and expenses are only reachable (and only mutated) through it.
type ManualQuote struct {
	// ID is the unique identifier for this quote.
	ID uuid.UUID

	// QuoteName is the operator-facing display name.
	QuoteName string

	// Category is the sales channel this quote is built for.
	Category QuoteCategory

	// SeasonName optionally labels the rate season the quote was priced in.
	SeasonName string

	// ValidFrom and ValidTo optionally bound the offer's validity.
	ValidFrom *time.Time
	ValidTo   *time.Time

	// StartDate and EndDate are the trip dates.
	StartDate time.Time
	EndDate   time.Time

	// TourType is SIC or PRIVATE.
	TourType TourType

	// Pax is the reference passenger count the raw expense prices were
	// entered for. Always at least 1.
	Pax int

	// Markup and Tax are percentages applied by the pricing table generator.
	Markup decimal.Decimal
	Tax    decimal.Decimal

	// TransportPricingMode controls transportation expense scaling.
	TransportPricingMode TransportPricingMode

	// Days holds the itinerary ordered by DayNumber (contiguous from 1).
	Days []QuoteDay

	// PricingTable is the cached result of the last explicit recalculation.
	// Nil until the first recalculation.
	PricingTable *PricingTable

	// PricingStale marks the cached table as out of date. Set by every
	// mutation, cleared only by a recalculation.
	PricingStale bool

	// Version is the optimistic concurrency token, incremented on every
	// persisted change.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuoteDay is one itinerary day holding its expense line items.
type QuoteDay struct {
	ID uuid.UUID

	// DayNumber is the 1-based position in the itinerary, unique within the
	// quote and contiguous.
	DayNumber int

	// Date is the calendar date, within the quote's trip dates.
	Date time.Time

	Expenses []QuoteExpense
}

// QuoteExpense is a single costed line item within a day.
type QuoteExpense struct {
	ID uuid.UUID

	Category    ExpenseCategory
	Location    string
	Description string

	// Price is a non-negative amount denominated for the quote's reference
	// pax (or one vehicle, for transportation in VEHICLE mode).
	Price decimal.Decimal
}

const percentMax = 100

// ValidateHeader checks the quote header invariants.
func (q *ManualQuote) ValidateHeader() error {
	if q.QuoteName == "" {
		return NewValidationError("quoteName", "must not be empty")
	}

	if q.Category != "" && !q.Category.Valid() {
		return NewValidationErrorWithValue("category", "unknown quote category", string(q.Category))
	}

	if !q.TourType.Valid() {
		return NewValidationErrorWithValue("tourType", "unknown tour type", string(q.TourType))
	}

	if !q.TransportPricingMode.Valid() {
		return NewValidationErrorWithValue("transportPricingMode", "unknown transport pricing mode", string(q.TransportPricingMode))
	}

	if q.Pax < 1 {
		return NewValidationErrorWithValue("pax", "must be at least 1", q.Pax)
	}

	if q.Markup.IsNegative() || q.Markup.GreaterThan(decimal.NewFromInt(percentMax)) {
		return NewValidationErrorWithValue("markup", "must be between 0 and 100", q.Markup.String())
	}

	if q.Tax.IsNegative() || q.Tax.GreaterThan(decimal.NewFromInt(percentMax)) {
		return NewValidationErrorWithValue("tax", "must be between 0 and 100", q.Tax.String())
	}

	if !q.StartDate.Before(q.EndDate) {
		return NewValidationError("endDate", "must be after startDate")
	}

	return nil
}

// MarkPricingStale flags the cached pricing table for recomputation.
// The cached table itself is kept so readers still see the last result.
func (q *ManualQuote) MarkPricingStale() {
	q.PricingStale = true
}

// Day returns the day with the given ID, or nil.
func (q *ManualQuote) Day(id uuid.UUID) *QuoteDay {
	for i := range q.Days {
		if q.Days[i].ID == id {
			return &q.Days[i]
		}
	}

	return nil
}

// Expense returns the expense with the given ID and its owning day, or nils.
func (q *ManualQuote) Expense(id uuid.UUID) (*QuoteDay, *QuoteExpense) {
	for i := range q.Days {
		for j := range q.Days[i].Expenses {
			if q.Days[i].Expenses[j].ID == id {
				return &q.Days[i], &q.Days[i].Expenses[j]
			}
		}
	}

	return nil, nil
}

// AddDay appends a new day with the next contiguous day number.
func (q *ManualQuote) AddDay(date time.Time) *QuoteDay {
	day := QuoteDay{
		ID:        uuid.New(),
		DayNumber: len(q.Days) + 1,
		Date:      date,
	}
	q.Days = append(q.Days, day)
	q.MarkPricingStale()

	return &q.Days[len(q.Days)-1]
}

// RemoveDay deletes the day and all its expenses, then renumbers the
// remaining days so DayNumber stays contiguous from 1.
// Returns ErrNotFound if the day does not belong to this quote.
func (q *ManualQuote) RemoveDay(id uuid.UUID) error {
	idx := -1

	for i := range q.Days {
		if q.Days[i].ID == id {
			idx = i
			break
		}
	}

	if idx < 0 {
		return NewNotFoundError("day", id.String())
	}

	q.Days = append(q.Days[:idx], q.Days[idx+1:]...)
	for i := range q.Days {
		q.Days[i].DayNumber = i + 1
	}

	q.MarkPricingStale()

	return nil
}

// AddExpense creates an expense line under the given day.
// Returns ErrNotFound if the day does not belong to this quote and
// ErrValidation if the expense fields are invalid.
func (q *ManualQuote) AddExpense(dayID uuid.UUID, expense QuoteExpense) (*QuoteExpense, error) {
	day := q.Day(dayID)
	if day == nil {
		return nil, NewNotFoundError("day", dayID.String())
	}

	if !expense.Category.Valid() {
		return nil, NewValidationErrorWithValue("category", "unknown expense category", string(expense.Category))
	}

	if expense.Price.IsNegative() {
		return nil, NewValidationErrorWithValue("price", "must not be negative", expense.Price.String())
	}

	expense.ID = uuid.New()
	day.Expenses = append(day.Expenses, expense)
	q.MarkPricingStale()

	return &day.Expenses[len(day.Expenses)-1], nil
}

// ExpenseUpdate carries a partial expense update; nil fields are left as-is.
type ExpenseUpdate struct {
	Category    *ExpenseCategory
	Location    *string
	Description *string
	Price       *decimal.Decimal
}

// UpdateExpense merges the provided fields into an existing expense.
// Returns ErrNotFound if the expense does not belong to this quote and
// ErrValidation if a supplied field is invalid.
func (q *ManualQuote) UpdateExpense(expenseID uuid.UUID, update ExpenseUpdate) (*QuoteExpense, error) {
	_, expense := q.Expense(expenseID)
	if expense == nil {
		return nil, NewNotFoundError("expense", expenseID.String())
	}

	if update.Category != nil && !update.Category.Valid() {
		return nil, NewValidationErrorWithValue("category", "unknown expense category", string(*update.Category))
	}

	if update.Price != nil && update.Price.IsNegative() {
		return nil, NewValidationErrorWithValue("price", "must not be negative", update.Price.String())
	}

	if update.Category != nil {
		expense.Category = *update.Category
	}

	if update.Location != nil {
		expense.Location = *update.Location
	}

	if update.Description != nil {
		expense.Description = *update.Description
	}

	if update.Price != nil {
		expense.Price = *update.Price
	}

	q.MarkPricingStale()

	return expense, nil
}

// RemoveExpense deletes a single expense line. No cascading effects.
// Returns ErrNotFound if the expense does not belong to this quote.
func (q *ManualQuote) RemoveExpense(expenseID uuid.UUID) error {
	for i := range q.Days {
		day := &q.Days[i]
		for j := range day.Expenses {
			if day.Expenses[j].ID == expenseID {
				day.Expenses = append(day.Expenses[:j], day.Expenses[j+1:]...)
				q.MarkPricingStale()

				return nil
			}
		}
	}

	return NewNotFoundError("expense", expenseID.String())
}

// GenerateDays creates one day per calendar date in [StartDate, EndDate].
// Used when a quote is created with its full date span prefilled.
func (q *ManualQuote) GenerateDays() {
	for d := q.StartDate; !d.After(q.EndDate); d = d.AddDate(0, 0, 1) {
		q.AddDay(d)
	}
}

// Clone returns a deep copy of the quote, safe to mutate independently.
func (q *ManualQuote) Clone() *ManualQuote {
	clone := *q

	clone.Days = make([]QuoteDay, len(q.Days))
	for i, day := range q.Days {
		clone.Days[i] = day
		clone.Days[i].Expenses = make([]QuoteExpense, len(day.Expenses))
		copy(clone.Days[i].Expenses, day.Expenses)
	}

	if q.PricingTable != nil {
		table := *q.PricingTable
		table.Rows = make([]PricingRow, len(q.PricingTable.Rows))
		copy(table.Rows, q.PricingTable.Rows)
		clone.PricingTable = &table
	}

	if q.ValidFrom != nil {
		from := *q.ValidFrom
		clone.ValidFrom = &from
	}

	if q.ValidTo != nil {
		to := *q.ValidTo
		clone.ValidTo = &to
	}

	return &clone
}
