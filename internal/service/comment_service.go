package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/clock"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// CommentService manages ticket discussion threads.
type CommentService struct {
	comments   repository.CommentRepository
	users      repository.UserRepository
	tickets    *TicketService
	clock      clock.Clock
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CommentDependencies bundles collaborators for comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Tickets     *TicketService
	Clock       clock.Clock
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// CommentInput describes a new comment.
type CommentInput struct {
	TicketID string
	UserID   string
	Message  string
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &CommentService{
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		tickets:    deps.Tickets,
		clock:      clk,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns the ticket's comments oldest first with author details.
func (s *CommentService) List(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		s.enrich(ctx, &comments[i])
	}
	return comments, nil
}

// Add appends a comment. Ticket and user references are not checked.
func (s *CommentService) Add(ctx context.Context, input CommentInput) (*domain.Comment, error) {
	comment := &domain.Comment{
		TicketID:  input.TicketID,
		UserID:    input.UserID,
		Message:   input.Message,
		CreatedAt: s.clock.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.enrich(ctx, comment)

	actor := events.Actor{UserID: comment.UserID}
	if comment.UserRole != UnknownRole {
		actor.Role = domain.Role(comment.UserRole)
	}
	publishEvent(ctx, s.dispatcher, s.clock, s.logger, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: comment.TicketID,
		Actor:    actor,
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.UserID,
			BodyPreview: stringPreview(comment.Message, 120),
		},
	})
	return comment, nil
}

// ListFor returns comments of a ticket the principal can view.
func (s *CommentService) ListFor(ctx context.Context, p *auth.Principal, ticketID string) ([]domain.Comment, error) {
	if _, err := s.tickets.GetFor(ctx, p, ticketID); err != nil {
		return nil, err
	}
	return s.List(ctx, ticketID)
}

// AddAs posts message as the principal on a ticket it can view.
func (s *CommentService) AddAs(ctx context.Context, p *auth.Principal, ticketID, message string) (*domain.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("comment message is required", map[string]any{"field": "message"})
	}
	if _, err := s.tickets.GetFor(ctx, p, ticketID); err != nil {
		return nil, err
	}
	return s.Add(ctx, CommentInput{TicketID: ticketID, UserID: p.User.ID, Message: message})
}

func (s *CommentService) enrich(ctx context.Context, comment *domain.Comment) {
	comment.UserName, comment.UserRole = UnknownUser, UnknownRole
	if user := s.users.GetByID(ctx, comment.UserID); user != nil {
		comment.UserName, comment.UserRole = user.Name, string(user.Role)
	}
}
