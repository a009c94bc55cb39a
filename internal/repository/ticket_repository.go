package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/clock"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// TicketRepository encapsulates ticket persistence. Records are returned
// without derived fields.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	All(ctx context.Context) ([]domain.Ticket, error)
	Load(ctx context.Context, seed []domain.Ticket) error
}

type ticketRepository struct {
	tickets *collection[domain.Ticket]
	clock   clock.Clock
}

// NewTicketRepository instantiates repository. Call Load before use.
func NewTicketRepository(store persistence.Store, clk clock.Clock, logger *zap.Logger) TicketRepository {
	return &ticketRepository{
		tickets: newCollection[domain.Ticket](persistence.KeyTickets, store, logger),
		clock:   clk,
	}
}

func (r *ticketRepository) Load(ctx context.Context, seed []domain.Ticket) error {
	return r.tickets.load(ctx, seed)
}

// Create assigns ID and CreatedAt when unset and appends the ticket.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = r.clock.Now()
	}
	ticket.CreatorName = ""
	return r.tickets.mutate(ctx, func(records []domain.Ticket) ([]domain.Ticket, error) {
		return append(records, *ticket), nil
	})
}

// Update applies fn to the stored ticket atomically and returns the result.
func (r *ticketRepository) Update(ctx context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error) {
	var updated domain.Ticket
	err := r.tickets.mutate(ctx, func(records []domain.Ticket) ([]domain.Ticket, error) {
		idx := indexOfTicket(records, id)
		if idx < 0 {
			return nil, ErrNotFound
		}
		if err := fn(&records[idx]); err != nil {
			return nil, err
		}
		records[idx].ID = id
		records[idx].CreatorName = ""
		updated = records[idx]
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	records := r.tickets.snapshot(ctx)
	idx := indexOfTicket(records, id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &records[idx], nil
}

// List returns tickets matching filter, newest first. Tickets created at
// the same instant keep insertion order.
func (r *ticketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	records := r.tickets.snapshot(ctx)
	result := make([]domain.Ticket, 0, len(records))
	for i := range records {
		if filter.Matches(&records[i]) {
			result = append(result, records[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// All returns the full collection in insertion order.
func (r *ticketRepository) All(ctx context.Context) ([]domain.Ticket, error) {
	return r.tickets.snapshot(ctx), nil
}

func indexOfTicket(records []domain.Ticket, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
