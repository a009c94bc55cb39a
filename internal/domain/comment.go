package domain

import "time"

// Comment captures a message in a ticket thread. UserName and UserRole are
// derived at read time.
type Comment struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	UserName  string    `json:"-"`
	UserRole  string    `json:"-"`
}
