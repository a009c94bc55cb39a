package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/clock"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/stats"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// Display fallbacks for references the directory cannot resolve.
const (
	UnknownUser = "Unknown User"
	UnknownRole = "Unknown Role"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	clock      clock.Clock
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject       string
	Details       string
	Department    string
	CreatorID     string
	AttachmentURL *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		clock:      clk,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns tickets matching every set filter field, newest first.
func (s *TicketService) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		s.enrich(ctx, &tickets[i])
	}
	return tickets, nil
}

// Get fetches one ticket.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketErr(err, id)
	}
	s.enrich(ctx, ticket)
	return ticket, nil
}

// Create stores a new Open ticket. Content is not validated here.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Subject:       input.Subject,
		Details:       input.Details,
		Status:        domain.TicketStatusOpen,
		Department:    input.Department,
		CreatorID:     input.CreatorID,
		CreatedAt:     s.clock.Now(),
		AttachmentURL: input.AttachmentURL,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.enrich(ctx, ticket)

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    s.actor(ctx, ticket.CreatorID),
		Payload: events.TicketCreatedPayload{
			Department: ticket.Department,
			Subject:    ticket.Subject,
			CreatorID:  ticket.CreatorID,
		},
	})
	return ticket, nil
}

// UpdateStatus replaces the ticket status. Every move to Solved stamps
// SolvedAt; moving away from Solved keeps the last stamp.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	return s.updateStatus(ctx, id, status, events.Actor{})
}

// Stats aggregates the whole collection as of now.
func (s *TicketService) Stats(ctx context.Context) (domain.TicketStats, error) {
	tickets, err := s.tickets.All(ctx)
	if err != nil {
		return domain.TicketStats{}, err
	}
	return stats.Compute(tickets, s.clock.Now()), nil
}

// ListFor narrows filter to what the principal may see. Operation staff
// only see their own tickets and HQ only its department.
func (s *TicketService) ListFor(ctx context.Context, p *auth.Principal, filter domain.TicketFilter) ([]domain.Ticket, error) {
	switch p.User.Role {
	case domain.RoleOperationStaff:
		self := p.User.ID
		filter.UserID = &self
	case domain.RoleHQ:
		dept := p.User.Department
		filter.Department = &dept
	case domain.RoleAdmin:
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}
	return s.List(ctx, filter)
}

// GetFor fetches a ticket the principal is allowed to view.
func (s *TicketService) GetFor(ctx context.Context, p *auth.Principal, id string) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccessTicket(p, ticket) {
		return nil, apperrors.NewForbidden("ticket not accessible")
	}
	return ticket, nil
}

// CreateAs raises a ticket on behalf of the principal.
func (s *TicketService) CreateAs(ctx context.Context, p *auth.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	if !p.Is(domain.RoleOperationStaff) && !p.Is(domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("role cannot create tickets")
	}
	input.CreatorID = p.User.ID
	input.Subject = strings.TrimSpace(input.Subject)
	input.Details = strings.TrimSpace(input.Details)
	input.Department = strings.TrimSpace(input.Department)
	if input.AttachmentURL != nil {
		if url := strings.TrimSpace(*input.AttachmentURL); url != "" {
			input.AttachmentURL = &url
		} else {
			input.AttachmentURL = nil
		}
	}
	return s.Create(ctx, input)
}

// UpdateStatusAs changes status for HQ (own department) or Admin callers.
func (s *TicketService) UpdateStatusAs(ctx context.Context, p *auth.Principal, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !p.Is(domain.RoleHQ) && !p.Is(domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("role cannot change ticket status")
	}
	if !status.Valid() {
		return nil, invalidStatus(status)
	}
	if _, err := s.GetFor(ctx, p, id); err != nil {
		return nil, err
	}
	return s.updateStatus(ctx, id, status, events.Actor{UserID: p.User.ID, Role: p.User.Role})
}

// StatsFor restricts statistics to admins.
func (s *TicketService) StatsFor(ctx context.Context, p *auth.Principal) (domain.TicketStats, error) {
	if !p.Is(domain.RoleAdmin) {
		return domain.TicketStats{}, apperrors.NewForbidden("statistics require admin role")
	}
	return s.Stats(ctx)
}

// CanAccessTicket reports whether p may view and comment on ticket.
func CanAccessTicket(p *auth.Principal, ticket *domain.Ticket) bool {
	if p == nil || ticket == nil {
		return false
	}
	switch p.User.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleHQ:
		return p.User.Department != "" && ticket.Department == p.User.Department
	case domain.RoleOperationStaff:
		return ticket.CreatorID == p.User.ID
	}
	return false
}

func (s *TicketService) updateStatus(ctx context.Context, id string, status domain.TicketStatus, actor events.Actor) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}
	var oldStatus domain.TicketStatus
	ticket, err := s.tickets.Update(ctx, id, func(t *domain.Ticket) error {
		oldStatus = t.Status
		t.Status = status
		if status == domain.TicketStatusSolved {
			now := s.clock.Now()
			t.SolvedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, mapTicketErr(err, id)
	}
	s.enrich(ctx, ticket)

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			CreatorID: ticket.CreatorID,
		},
	})
	return ticket, nil
}

func (s *TicketService) enrich(ctx context.Context, ticket *domain.Ticket) {
	ticket.CreatorName = UnknownUser
	if user := s.users.GetByID(ctx, ticket.CreatorID); user != nil {
		ticket.CreatorName = user.Name
	}
}

func (s *TicketService) actor(ctx context.Context, userID string) events.Actor {
	actor := events.Actor{UserID: userID}
	if user := s.users.GetByID(ctx, userID); user != nil {
		actor.Role = user.Role
	}
	return actor
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.clock, s.logger, event)
}

func mapTicketErr(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return err
}

func invalidStatus(status domain.TicketStatus) error {
	allowed := make([]string, 0, len(domain.TicketStatuses))
	for _, st := range domain.TicketStatuses {
		allowed = append(allowed, string(st))
	}
	return apperrors.NewValidationError("invalid ticket status", map[string]any{
		"status":  string(status),
		"allowed": allowed,
	})
}
