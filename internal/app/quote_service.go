// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourwise/quoting-service/internal/domain"
	"github.com/tourwise/quoting-service/internal/platform/logging"
	"github.com/tourwise/quoting-service/internal/ports"
)

// QuoteService orchestrates quote, day and expense use cases and owns the
// explicit pricing recalculation workflow. It depends on port interfaces,
// not concrete implementations.
type QuoteService struct {
	repo          ports.QuoteRepository
	exec          *Executor
	logger        *slog.Logger
	recalcWorkers int
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Repository ports.QuoteRepository
	Logger     *slog.Logger

	// RecalcWorkers bounds concurrency of the stale-quote batch
	// recalculation. Defaults to 4.
	RecalcWorkers int
}

// NewQuoteService creates a new quote service with the provided dependencies.
// Panics if the repository is missing; defaults the logger when absent.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Repository == nil {
		panic("app: QuoteService requires a repository")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := cfg.RecalcWorkers
	if workers <= 0 {
		workers = 4
	}

	return &QuoteService{
		repo:          cfg.Repository,
		exec:          NewExecutor(logger),
		logger:        logger,
		recalcWorkers: workers,
	}
}

// CreateQuoteInput carries the header fields for a new quote.
type CreateQuoteInput struct {
	QuoteName            string
	Category             domain.QuoteCategory
	SeasonName           string
	ValidFrom            *time.Time
	ValidTo              *time.Time
	StartDate            time.Time
	EndDate              time.Time
	TourType             domain.TourType
	Pax                  int
	Markup               decimal.Decimal
	Tax                  decimal.Decimal
	TransportPricingMode domain.TransportPricingMode

	// GenerateDays prefills one itinerary day per date in the trip span.
	GenerateDays bool
}

// CreateQuote validates the header invariants and persists a new quote with
// no pricing table.
func (s *QuoteService) CreateQuote(ctx context.Context, input CreateQuoteInput) (*domain.ManualQuote, error) {
	logger := logging.FromContext(ctx)

	mode := input.TransportPricingMode
	if mode == "" {
		mode = domain.TransportPricingTotal
	}

	quote := &domain.ManualQuote{
		QuoteName:            input.QuoteName,
		Category:             input.Category,
		SeasonName:           input.SeasonName,
		ValidFrom:            input.ValidFrom,
		ValidTo:              input.ValidTo,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		TourType:             input.TourType,
		Pax:                  input.Pax,
		Markup:               input.Markup,
		Tax:                  input.Tax,
		TransportPricingMode: mode,
	}

	if err := quote.ValidateHeader(); err != nil {
		return nil, err
	}

	if input.GenerateDays {
		quote.GenerateDays()
		quote.PricingStale = false
	}

	created, err := s.repo.Create(ctx, quote)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "quote created",
		slog.String("quote_id", created.ID.String()),
		slog.Int("days", len(created.Days)),
	)

	return created, nil
}

// GetQuote returns the quote with its days, expenses and cached pricing
// table.
func (s *QuoteService) GetQuote(ctx context.Context, id uuid.UUID) (*domain.ManualQuote, error) {
	return s.repo.Get(ctx, id)
}

// ListQuotes returns a page of quotes and the total count.
func (s *QuoteService) ListQuotes(ctx context.Context, opts ports.QuoteListOptions) ([]*domain.ManualQuote, int, error) {
	return s.repo.List(ctx, opts)
}

// UpdateQuoteInput carries a partial header update; nil fields are left
// as-is. When Version is set it must match the stored aggregate version.
type UpdateQuoteInput struct {
	QuoteName            *string
	Category             *domain.QuoteCategory
	SeasonName           *string
	ValidFrom            *time.Time
	ValidTo              *time.Time
	StartDate            *time.Time
	EndDate              *time.Time
	TourType             *domain.TourType
	Pax                  *int
	Markup               *decimal.Decimal
	Tax                  *decimal.Decimal
	TransportPricingMode *domain.TransportPricingMode

	Version *int64
}

// UpdateQuote merges the supplied header fields, re-validates the invariants
// and persists the aggregate with pricing marked stale.
func (s *QuoteService) UpdateQuote(ctx context.Context, id uuid.UUID, input UpdateQuoteInput) (*domain.ManualQuote, error) {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Version != nil && *input.Version != quote.Version {
		return nil, domain.NewConflictErrorWithDetails("quote", "version mismatch", id.String())
	}

	applyHeaderUpdate(quote, input)

	if err := quote.ValidateHeader(); err != nil {
		return nil, err
	}

	quote.MarkPricingStale()

	updated, err := s.repo.Update(ctx, quote)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "quote updated",
		slog.String("quote_id", id.String()),
		slog.Int64("version", updated.Version),
	)

	return updated, nil
}

func applyHeaderUpdate(quote *domain.ManualQuote, input UpdateQuoteInput) {
	if input.QuoteName != nil {
		quote.QuoteName = *input.QuoteName
	}

	if input.Category != nil {
		quote.Category = *input.Category
	}

	if input.SeasonName != nil {
		quote.SeasonName = *input.SeasonName
	}

	if input.ValidFrom != nil {
		quote.ValidFrom = input.ValidFrom
	}

	if input.ValidTo != nil {
		quote.ValidTo = input.ValidTo
	}

	if input.StartDate != nil {
		quote.StartDate = *input.StartDate
	}

	if input.EndDate != nil {
		quote.EndDate = *input.EndDate
	}

	if input.TourType != nil {
		quote.TourType = *input.TourType
	}

	if input.Pax != nil {
		quote.Pax = *input.Pax
	}

	if input.Markup != nil {
		quote.Markup = *input.Markup
	}

	if input.Tax != nil {
		quote.Tax = *input.Tax
	}

	if input.TransportPricingMode != nil {
		quote.TransportPricingMode = *input.TransportPricingMode
	}
}

// DeleteQuote removes the aggregate and everything it owns.
func (s *QuoteService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logging.FromContext(ctx).InfoContext(ctx, "quote deleted",
		slog.String("quote_id", id.String()),
	)

	return nil
}

// AddDay appends an itinerary day with the next contiguous day number.
func (s *QuoteService) AddDay(ctx context.Context, quoteID uuid.UUID, date time.Time) (*domain.QuoteDay, error) {
	quote, err := s.repo.Get(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	day := quote.AddDay(date)
	dayID := day.ID

	updated, err := s.repo.Update(ctx, quote)
	if err != nil {
		return nil, err
	}

	return updated.Day(dayID), nil
}

// AddExpenseInput carries the fields for a new expense line.
type AddExpenseInput struct {
	Category    domain.ExpenseCategory
	Location    string
	Description string
	Price       decimal.Decimal
}

// AddExpense creates an expense line under the given day and marks pricing
// stale. The mutation either fully applies or not at all. Returns the
// updated aggregate together with the created expense.
func (s *QuoteService) AddExpense(ctx context.Context, quoteID, dayID uuid.UUID, input AddExpenseInput) (*domain.ManualQuote, *domain.QuoteExpense, error) {
	quote, err := s.repo.Get(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}

	expense, err := quote.AddExpense(dayID, domain.QuoteExpense{
		Category:    input.Category,
		Location:    input.Location,
		Description: input.Description,
		Price:       input.Price,
	})
	if err != nil {
		return nil, nil, err
	}

	expenseID := expense.ID

	updated, err := s.repo.Update(ctx, quote)
	if err != nil {
		return nil, nil, err
	}

	_, created := updated.Expense(expenseID)

	return updated, created, nil
}

// UpdateExpense merges the supplied fields into an expense and marks pricing
// stale. Returns the updated aggregate together with the changed expense.
func (s *QuoteService) UpdateExpense(ctx context.Context, quoteID, expenseID uuid.UUID, update domain.ExpenseUpdate) (*domain.ManualQuote, *domain.QuoteExpense, error) {
	quote, err := s.repo.Get(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}

	if _, err := quote.UpdateExpense(expenseID, update); err != nil {
		return nil, nil, err
	}

	updated, err := s.repo.Update(ctx, quote)
	if err != nil {
		return nil, nil, err
	}

	_, expense := updated.Expense(expenseID)

	return updated, expense, nil
}

// RemoveExpense deletes a single expense line and marks pricing stale.
func (s *QuoteService) RemoveExpense(ctx context.Context, quoteID, expenseID uuid.UUID) error {
	quote, err := s.repo.Get(ctx, quoteID)
	if err != nil {
		return err
	}

	if err := quote.RemoveExpense(expenseID); err != nil {
		return err
	}

	_, err = s.repo.Update(ctx, quote)

	return err
}

// RemoveDay deletes a day with all its expenses, renumbers the remaining
// days and marks pricing stale.
func (s *QuoteService) RemoveDay(ctx context.Context, quoteID, dayID uuid.UUID) (*domain.ManualQuote, error) {
	quote, err := s.repo.Get(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if err := quote.RemoveDay(dayID); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, quote)
}

// recalcState carries the loaded aggregate and its freshly generated table
// between recalculation steps.
type recalcState struct {
	quote *domain.ManualQuote
	table *domain.PricingTable
}

// RecalculatePricing regenerates the per-bracket pricing table from the
// quote's current days and expenses, persists it and clears the stale flag.
// The recomputation is deterministic for a given aggregate state, so the
// operation is idempotent and safely retryable. It fails only if the quote
// does not exist (or a concurrent edit wins the version check, in which case
// retrying recomputes from the fresh state).
func (s *QuoteService) RecalculatePricing(ctx context.Context, quoteID uuid.UUID) (*domain.PricingTable, error) {
	op := Operation[uuid.UUID, *domain.ManualQuote, recalcState, *domain.PricingTable]{
		Name: "recalculate_pricing",

		Perform: func(ctx context.Context, id uuid.UUID) (*domain.ManualQuote, error) {
			return s.repo.Get(ctx, id)
		},

		Verify: func(ctx context.Context, id uuid.UUID, quote *domain.ManualQuote) (recalcState, error) {
			table := domain.GeneratePricingTable(quote)
			if len(table.Rows) != len(domain.PricingBrackets) {
				return recalcState{}, domain.NewValidationError("pricingTable", "incomplete bracket coverage")
			}

			return recalcState{quote: quote, table: table}, nil
		},

		Archive: func(ctx context.Context, id uuid.UUID, state recalcState) error {
			state.quote.PricingTable = state.table
			state.quote.PricingStale = false

			_, err := s.repo.Update(ctx, state.quote)

			return err
		},

		Respond: func(ctx context.Context, id uuid.UUID, state recalcState) (*domain.PricingTable, error) {
			return state.table, nil
		},
	}

	table, err := Execute(ctx, s.exec, op, quoteID)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "pricing recalculated",
		slog.String("quote_id", quoteID.String()),
	)

	return table, nil
}

// RecalcStaleResult summarizes a batch recalculation run.
type RecalcStaleResult struct {
	// Recalculated counts quotes whose table was refreshed.
	Recalculated int `json:"recalculated"`

	// Skipped counts quotes that vanished or were concurrently edited
	// mid-run; a later run picks them up again.
	Skipped int `json:"skipped"`
}

// RecalculateStalePricing refreshes every quote whose pricing table is
// marked stale, with bounded concurrency. Quotes that are deleted or edited
// while the batch runs are skipped rather than failing the batch; staleness
// makes them eligible for the next run.
func (s *QuoteService) RecalculateStalePricing(ctx context.Context) (*RecalcStaleResult, error) {
	logger := logging.FromContext(ctx)
	result := &RecalcStaleResult{}

	for {
		stale, _, err := s.repo.List(ctx, ports.QuoteListOptions{StaleOnly: true})
		if err != nil {
			return nil, err
		}

		if len(stale) == 0 {
			break
		}

		fns := make([]func(context.Context) (bool, error), 0, len(stale))
		for _, quote := range stale {
			id := quote.ID
			fns = append(fns, func(ctx context.Context) (bool, error) {
				_, err := s.RecalculatePricing(ctx, id)
				if err != nil {
					if domain.IsNotFound(err) || domain.IsConflict(err) {
						logger.WarnContext(ctx, "skipping stale quote",
							slog.String("quote_id", id.String()),
							slog.Any("error", err),
						)

						return false, nil
					}

					return false, err
				}

				return true, nil
			})
		}

		done, err := ParallelLimit(ctx, s.recalcWorkers, fns...)
		if err != nil {
			return nil, err
		}

		recalculatedThisPass := 0
		for _, ok := range done {
			if ok {
				result.Recalculated++
				recalculatedThisPass++
			} else {
				result.Skipped++
			}
		}

		// Everything in this page was skipped; stop rather than spin on
		// quotes that stay stale.
		if recalculatedThisPass == 0 {
			break
		}
	}

	logger.InfoContext(ctx, "stale pricing recalculated",
		slog.Int("recalculated", result.Recalculated),
		slog.Int("skipped", result.Skipped),
	)

	return result, nil
}
