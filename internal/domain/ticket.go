package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Any status may move
// to any other; SolvedAt is set on every move to Solved and never cleared.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusSolved     TicketStatus = "Solved"
)

// TicketStatuses lists statuses in lifecycle order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusSolved}

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusSolved:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. CreatorName is derived at
// read time and never persisted.
type Ticket struct {
	ID            string       `json:"id"`
	Subject       string       `json:"subject"`
	Details       string       `json:"details"`
	Status        TicketStatus `json:"status"`
	Department    string       `json:"department"`
	CreatorID     string       `json:"creatorId"`
	CreatedAt     time.Time    `json:"createdAt"`
	SolvedAt      *time.Time   `json:"solvedAt,omitempty"`
	AttachmentURL *string      `json:"attachmentUrl,omitempty"`
	CreatorName   string       `json:"-"`
}

// TicketFilter selects tickets by exact match. Nil fields are ignored.
type TicketFilter struct {
	UserID     *string
	Department *string
	Status     *TicketStatus
}

// Matches reports whether t satisfies every set field of f.
func (f TicketFilter) Matches(t *Ticket) bool {
	if f.UserID != nil && t.CreatorID != *f.UserID {
		return false
	}
	if f.Department != nil && t.Department != *f.Department {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	return true
}
