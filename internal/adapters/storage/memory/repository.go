// Package memory provides an in-memory implementation of the quote
// repository. It is the storage adapter used when no external database is
// configured; the aggregate semantics (whole-aggregate writes, optimistic
// version checks) match what a database-backed adapter must provide.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tourwise/quoting-service/internal/domain"
	"github.com/tourwise/quoting-service/internal/ports"
)

// DefaultListLimit caps a listing page when the caller does not set one.
const DefaultListLimit = 50

// QuoteRepository is a thread-safe, in-memory ports.QuoteRepository.
// Stored aggregates are deep-copied on the way in and out so callers can
// never alias internal state.
type QuoteRepository struct {
	mu     sync.RWMutex
	quotes map[uuid.UUID]*domain.ManualQuote
	now    func() time.Time
}

// NewQuoteRepository creates an empty in-memory repository.
func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{
		quotes: make(map[uuid.UUID]*domain.ManualQuote),
		now:    time.Now,
	}
}

// Create persists a new quote, assigning identity, version and timestamps.
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.ManualQuote) (*domain.ManualQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := quote.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}

	stored.Version = 1
	stored.CreatedAt = r.now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	r.quotes[stored.ID] = stored

	return stored.Clone(), nil
}

// Get returns a deep copy of the stored quote.
func (r *QuoteRepository) Get(ctx context.Context, id uuid.UUID) (*domain.ManualQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.quotes[id]
	if !ok {
		return nil, domain.NewNotFoundError("quote", id.String())
	}

	return stored.Clone(), nil
}

// List returns a page of quotes ordered by creation time, oldest first.
func (r *QuoteRepository) List(ctx context.Context, opts ports.QuoteListOptions) ([]*domain.ManualQuote, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.ManualQuote, 0, len(r.quotes))
	for _, q := range r.quotes {
		if opts.StaleOnly && !q.PricingStale {
			continue
		}

		all = append(all, q)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}

		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := len(all)

	offset := opts.Offset
	if offset > total {
		offset = total
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]*domain.ManualQuote, 0, end-offset)
	for _, q := range all[offset:end] {
		page = append(page, q.Clone())
	}

	return page, total, nil
}

// Update replaces the stored aggregate after an optimistic version check.
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.ManualQuote) (*domain.ManualQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.quotes[quote.ID]
	if !ok {
		return nil, domain.NewNotFoundError("quote", quote.ID.String())
	}

	if quote.Version != stored.Version {
		return nil, domain.NewConflictErrorWithDetails("quote", "version mismatch", quote.ID.String())
	}

	updated := quote.Clone()
	updated.Version = stored.Version + 1
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.now().UTC()

	r.quotes[updated.ID] = updated

	return updated.Clone(), nil
}

// Delete removes a quote and everything it owns.
func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quotes[id]; !ok {
		return domain.NewNotFoundError("quote", id.String())
	}

	delete(r.quotes, id)

	return nil
}

// Name implements ports.HealthChecker.
func (r *QuoteRepository) Name() string {
	return "quote-store"
}

// Check implements ports.HealthChecker. The in-memory store has no external
// dependency to probe, so it only reports context errors.
func (r *QuoteRepository) Check(ctx context.Context) error {
	return ctx.Err()
}
