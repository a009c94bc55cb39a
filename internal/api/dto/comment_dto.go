package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Message string `json:"message"`
}

// CommentResponse is the wire form of a comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserRole  string    `json:"user_role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TicketID:  c.TicketID,
		UserID:    c.UserID,
		UserName:  c.UserName,
		UserRole:  c.UserRole,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	}
}

// NewCommentList maps comments, never returning nil.
func NewCommentList(comments []domain.Comment) []CommentResponse {
	items := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, NewCommentResponse(&comments[i]))
	}
	return items
}
