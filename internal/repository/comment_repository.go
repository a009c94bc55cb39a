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

// CommentRepository manages ticket comment threads.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
	Load(ctx context.Context, seed []domain.Comment) error
}

type commentRepository struct {
	comments *collection[domain.Comment]
	clock    clock.Clock
}

// NewCommentRepository builds repository. Call Load before use.
func NewCommentRepository(store persistence.Store, clk clock.Clock, logger *zap.Logger) CommentRepository {
	return &commentRepository{
		comments: newCollection[domain.Comment](persistence.KeyComments, store, logger),
		clock:    clk,
	}
}

func (r *commentRepository) Load(ctx context.Context, seed []domain.Comment) error {
	return r.comments.load(ctx, seed)
}

// Create assigns ID and CreatedAt when unset and appends the comment.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = r.clock.Now()
	}
	comment.UserName, comment.UserRole = "", ""
	return r.comments.mutate(ctx, func(records []domain.Comment) ([]domain.Comment, error) {
		return append(records, *comment), nil
	})
}

// ListByTicket returns the ticket's comments oldest first; equal
// timestamps keep insertion order.
func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	records := r.comments.snapshot(ctx)
	result := make([]domain.Comment, 0)
	for _, c := range records {
		if c.TicketID == ticketID {
			result = append(result, c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
