package dto

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Form limits for new tickets.
const (
	MinSubjectLength = 5
	MinDetailsLength = 10
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject       string  `json:"subject"`
	Details       string  `json:"details"`
	Department    string  `json:"department"`
	AttachmentURL *string `json:"attachment_url"`
}

// Validate returns per-field problems, or nil when the request is usable.
func (r CreateTicketRequest) Validate() map[string]any {
	problems := map[string]any{}
	if utf8.RuneCountInString(strings.TrimSpace(r.Subject)) < MinSubjectLength {
		problems["subject"] = "must be at least 5 characters"
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.Details)) < MinDetailsLength {
		problems["details"] = "must be at least 10 characters"
	}
	if strings.TrimSpace(r.Department) == "" {
		problems["department"] = "is required"
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID            string              `json:"id"`
	Subject       string              `json:"subject"`
	Details       string              `json:"details"`
	Status        domain.TicketStatus `json:"status"`
	Department    string              `json:"department"`
	CreatorID     string              `json:"creator_id"`
	CreatorName   string              `json:"creator_name"`
	CreatedAt     time.Time           `json:"created_at"`
	SolvedAt      *time.Time          `json:"solved_at,omitempty"`
	AttachmentURL *string             `json:"attachment_url,omitempty"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:            t.ID,
		Subject:       t.Subject,
		Details:       t.Details,
		Status:        t.Status,
		Department:    t.Department,
		CreatorID:     t.CreatorID,
		CreatorName:   t.CreatorName,
		CreatedAt:     t.CreatedAt,
		SolvedAt:      t.SolvedAt,
		AttachmentURL: t.AttachmentURL,
	}
}

// NewTicketList maps tickets, never returning nil.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}
