// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrConflict, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/tourwise/quoting-service/internal/domain"
)

// QuoteListOptions controls pagination for quote listings.
type QuoteListOptions struct {
	// Offset is the number of quotes to skip.
	Offset int

	// Limit is the maximum number of quotes to return. Zero means the
	// adapter's default.
	Limit int

	// StaleOnly restricts the listing to quotes whose pricing table is
	// marked stale.
	StaleOnly bool
}

// QuoteRepository is the persistence boundary for the quote aggregate.
// Implementations store and return whole aggregates: a quote together with
// its days, expenses and cached pricing table. Partial writes are not part
// of the contract; the application layer mutates a loaded copy and saves it
// back atomically.
type QuoteRepository interface {
	// Create persists a new quote and assigns its identity and version.
	Create(ctx context.Context, quote *domain.ManualQuote) (*domain.ManualQuote, error)

	// Get returns a copy of the quote the caller may freely mutate.
	// Returns domain.ErrNotFound if the quote does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.ManualQuote, error)

	// List returns a page of quotes plus the total count.
	List(ctx context.Context, opts QuoteListOptions) ([]*domain.ManualQuote, int, error)

	// Update replaces the stored aggregate. The incoming quote's Version
	// must match the stored one; on a match the version is incremented,
	// otherwise domain.ErrConflict is returned and nothing changes.
	// Returns domain.ErrNotFound if the quote does not exist.
	Update(ctx context.Context, quote *domain.ManualQuote) (*domain.ManualQuote, error)

	// Delete removes the quote and everything it owns.
	// Returns domain.ErrNotFound if the quote does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
