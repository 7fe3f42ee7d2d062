package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tourwise/quoting-service/internal/domain"
)

// dateLayout is the wire format for itinerary dates. Quote dates are
// calendar days; time-of-day and zone carry no meaning here.
const dateLayout = "2006-01-02"

// Date is a calendar date that marshals as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate builds a Date from a time, truncated to midnight UTC.
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// UnmarshalJSON parses a quoted "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}

	d.Time = t

	return nil
}

// MarshalJSON renders the date as a quoted "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.Time.Format(dateLayout))), nil
}

// CreateQuoteRequest is the payload for POST /quotes.
type CreateQuoteRequest struct {
	QuoteName            string          `json:"quoteName" validate:"required,notempty"`
	Category             string          `json:"category"`
	SeasonName           string          `json:"seasonName"`
	ValidFrom            *Date           `json:"validFrom"`
	ValidTo              *Date           `json:"validTo"`
	StartDate            Date            `json:"startDate" validate:"required"`
	EndDate              Date            `json:"endDate" validate:"required"`
	TourType             string          `json:"tourType" validate:"required"`
	Pax                  int             `json:"pax" validate:"required,gte=1"`
	Markup               decimal.Decimal `json:"markup"`
	Tax                  decimal.Decimal `json:"tax"`
	TransportPricingMode string          `json:"transportPricingMode"`

	// GenerateDays prefills one empty day per date in the trip span.
	GenerateDays bool `json:"generateDays"`
}

// UpdateQuoteRequest is the payload for PATCH /quotes/:id. Absent fields are
// left unchanged. Version, when present, must match the stored aggregate
// version or the update is rejected with a conflict.
type UpdateQuoteRequest struct {
	QuoteName            *string          `json:"quoteName"`
	Category             *string          `json:"category"`
	SeasonName           *string          `json:"seasonName"`
	ValidFrom            *Date            `json:"validFrom"`
	ValidTo              *Date            `json:"validTo"`
	StartDate            *Date            `json:"startDate"`
	EndDate              *Date            `json:"endDate"`
	TourType             *string          `json:"tourType"`
	Pax                  *int             `json:"pax" validate:"omitempty,gte=1"`
	Markup               *decimal.Decimal `json:"markup"`
	Tax                  *decimal.Decimal `json:"tax"`
	TransportPricingMode *string          `json:"transportPricingMode"`
	Version              *int64           `json:"version"`
}

// AddDayRequest is the payload for POST /quotes/:id/days.
type AddDayRequest struct {
	Date Date `json:"date" validate:"required"`
}

// AddExpenseRequest is the payload for POST /quotes/:id/days/:dayId/expenses.
type AddExpenseRequest struct {
	Category    string          `json:"category" validate:"required,notempty"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// UpdateExpenseRequest is the payload for PATCH /quotes/:id/expenses/:expenseId.
// Absent fields are left unchanged.
type UpdateExpenseRequest struct {
	Category    *string          `json:"category"`
	Location    *string          `json:"location"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

// ExpenseResponse is the wire form of an expense line. ScalingRule reports
// how the line participates in pricing under the quote's current transport
// mode.
type ExpenseResponse struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Location    string          `json:"location,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ScalingRule string          `json:"scalingRule"`
}

// DayResponse is the wire form of an itinerary day.
type DayResponse struct {
	ID        string            `json:"id"`
	DayNumber int               `json:"dayNumber"`
	Date      Date              `json:"date"`
	Expenses  []ExpenseResponse `json:"expenses"`
}

// PricingRowResponse is one bracket of the generated pricing table.
type PricingRowResponse struct {
	Pax            int             `json:"pax"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	Markup         decimal.Decimal `json:"markup"`
	Tax            decimal.Decimal `json:"tax"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	PricePerPerson decimal.Decimal `json:"pricePerPerson"`
}

// PricingTableResponse is the wire form of a cached pricing table.
type PricingTableResponse struct {
	Rows []PricingRowResponse `json:"rows"`
}

// QuoteResponse is the wire form of a full quote aggregate.
type QuoteResponse struct {
	ID                   string                `json:"id"`
	QuoteName            string                `json:"quoteName"`
	Category             string                `json:"category,omitempty"`
	SeasonName           string                `json:"seasonName,omitempty"`
	ValidFrom            *Date                 `json:"validFrom,omitempty"`
	ValidTo              *Date                 `json:"validTo,omitempty"`
	StartDate            Date                  `json:"startDate"`
	EndDate              Date                  `json:"endDate"`
	TourType             string                `json:"tourType"`
	Pax                  int                   `json:"pax"`
	Markup               decimal.Decimal       `json:"markup"`
	Tax                  decimal.Decimal       `json:"tax"`
	TransportPricingMode string                `json:"transportPricingMode"`
	Days                 []DayResponse         `json:"days"`
	PricingTable         *PricingTableResponse `json:"pricingTable,omitempty"`
	PricingStale         bool                  `json:"pricingStale"`
	Version              int64                 `json:"version"`
	CreatedAt            time.Time             `json:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt"`
}

// ToQuoteResponse converts a domain aggregate to its wire form.
func ToQuoteResponse(q *domain.ManualQuote) *QuoteResponse {
	resp := &QuoteResponse{
		ID:                   q.ID.String(),
		QuoteName:            q.QuoteName,
		Category:             string(q.Category),
		SeasonName:           q.SeasonName,
		StartDate:            NewDate(q.StartDate),
		EndDate:              NewDate(q.EndDate),
		TourType:             string(q.TourType),
		Pax:                  q.Pax,
		Markup:               q.Markup,
		Tax:                  q.Tax,
		TransportPricingMode: string(q.TransportPricingMode),
		Days:                 make([]DayResponse, 0, len(q.Days)),
		PricingStale:         q.PricingStale,
		Version:              q.Version,
		CreatedAt:            q.CreatedAt,
		UpdatedAt:            q.UpdatedAt,
	}

	if q.ValidFrom != nil {
		from := NewDate(*q.ValidFrom)
		resp.ValidFrom = &from
	}

	if q.ValidTo != nil {
		to := NewDate(*q.ValidTo)
		resp.ValidTo = &to
	}

	for i := range q.Days {
		resp.Days = append(resp.Days, toDayResponse(&q.Days[i], q.TransportPricingMode))
	}

	if q.PricingTable != nil {
		resp.PricingTable = ToPricingTableResponse(q.PricingTable)
	}

	return resp
}

func toDayResponse(day *domain.QuoteDay, mode domain.TransportPricingMode) DayResponse {
	resp := DayResponse{
		ID:        day.ID.String(),
		DayNumber: day.DayNumber,
		Date:      NewDate(day.Date),
		Expenses:  make([]ExpenseResponse, 0, len(day.Expenses)),
	}

	for i := range day.Expenses {
		resp.Expenses = append(resp.Expenses, ToExpenseResponse(&day.Expenses[i], mode))
	}

	return resp
}

// ToExpenseResponse converts a domain expense to its wire form.
func ToExpenseResponse(e *domain.QuoteExpense, mode domain.TransportPricingMode) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID.String(),
		Category:    string(e.Category),
		Location:    e.Location,
		Description: e.Description,
		Price:       e.Price,
		ScalingRule: string(domain.ScalingRuleFor(e.Category, mode)),
	}
}

// ToPricingTableResponse converts a domain pricing table to its wire form.
func ToPricingTableResponse(t *domain.PricingTable) *PricingTableResponse {
	resp := &PricingTableResponse{
		Rows: make([]PricingRowResponse, 0, len(t.Rows)),
	}

	for _, row := range t.Rows {
		resp.Rows = append(resp.Rows, PricingRowResponse{
			Pax:            row.Pax,
			TotalCost:      row.TotalCost,
			Markup:         row.Markup,
			Tax:            row.Tax,
			TotalPrice:     row.TotalPrice,
			PricePerPerson: row.PricePerPerson,
		})
	}

	return resp
}
