// Package fixtures holds the demo data the portal ships with: the user
// directory seed and the initial ticket and comment collections.
package fixtures

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// SeedUser is a directory entry together with its plaintext credential.
type SeedUser struct {
	domain.User
	Password string
}

// Users returns the default directory seed.
func Users() []SeedUser {
	return []SeedUser{
		{User: domain.User{ID: "user1", Name: "John Operation", Role: domain.RoleOperationStaff, Username: "john"}, Password: "password123"},
		{User: domain.User{ID: "user2", Name: "Jane HQ", Role: domain.RoleHQ, Department: "Finance", Username: "jane"}, Password: "password123"},
		{User: domain.User{ID: "user3", Name: "Admin User", Role: domain.RoleAdmin, Username: "admin"}, Password: "password123"},
		{User: domain.User{ID: "user4", Name: "Sarah HQ", Role: domain.RoleHQ, Department: "HR", Username: "sarah"}, Password: "password123"},
		{User: domain.User{ID: "user5", Name: "Mike Operation", Role: domain.RoleOperationStaff, Username: "mike"}, Password: "password123"},
	}
}

// Tickets returns the initial ticket collection.
func Tickets() []domain.Ticket {
	solved := ts("2023-06-07T11:20:00Z")
	return []domain.Ticket{
		{
			ID:         "ticket1",
			Subject:    "Need help with payroll system",
			Details:    "I'm having trouble accessing the payroll system. It keeps showing an error when I try to log in.",
			Status:     domain.TicketStatusOpen,
			Department: "Finance",
			CreatorID:  "user1",
			CreatedAt:  ts("2023-06-10T10:30:00Z"),
		},
		{
			ID:         "ticket2",
			Subject:    "Request for new equipment",
			Details:    "My laptop is very slow and affecting my productivity. Can I get a new one?",
			Status:     domain.TicketStatusInProgress,
			Department: "IT",
			CreatorID:  "user1",
			CreatedAt:  ts("2023-06-08T14:15:00Z"),
		},
		{
			ID:         "ticket3",
			Subject:    "Question about vacation policy",
			Details:    "I'm planning to take a vacation next month. What's the process for requesting time off?",
			Status:     domain.TicketStatusSolved,
			Department: "HR",
			CreatorID:  "user5",
			CreatedAt:  ts("2023-06-05T09:45:00Z"),
			SolvedAt:   &solved,
		},
		{
			ID:         "ticket4",
			Subject:    "Issue with client database",
			Details:    "The client database is showing incorrect information for some clients. This is causing confusion when communicating with them.",
			Status:     domain.TicketStatusOpen,
			Department: "IT",
			CreatorID:  "user5",
			CreatedAt:  ts("2023-06-11T16:00:00Z"),
		},
		{
			ID:         "ticket5",
			Subject:    "Need clarification on expense policy",
			Details:    "I'm not sure which expenses are reimbursable under the new policy. Can someone clarify?",
			Status:     domain.TicketStatusInProgress,
			Department: "Finance",
			CreatorID:  "user1",
			CreatedAt:  ts("2023-06-09T11:30:00Z"),
		},
	}
}

// Comments returns the initial comment collection.
func Comments() []domain.Comment {
	return []domain.Comment{
		{ID: "comment1", TicketID: "ticket1", UserID: "user2", Message: "I'll look into this issue. Can you provide your employee ID so I can check your account?", CreatedAt: ts("2023-06-10T11:15:00Z")},
		{ID: "comment2", TicketID: "ticket1", UserID: "user1", Message: "My employee ID is EMP12345. Thank you for your help!", CreatedAt: ts("2023-06-10T11:30:00Z")},
		{ID: "comment3", TicketID: "ticket2", UserID: "user2", Message: "We're checking our inventory for available laptops. I'll update you soon.", CreatedAt: ts("2023-06-08T15:00:00Z")},
		{ID: "comment4", TicketID: "ticket3", UserID: "user4", Message: "You can request time off through the HR portal. Please submit your request at least 2 weeks in advance.", CreatedAt: ts("2023-06-05T10:30:00Z")},
		{ID: "comment5", TicketID: "ticket3", UserID: "user5", Message: "Thank you for the information. I've submitted my request through the portal.", CreatedAt: ts("2023-06-06T09:15:00Z")},
		{ID: "comment6", TicketID: "ticket3", UserID: "user4", Message: "Your request has been approved. Enjoy your vacation!", CreatedAt: ts("2023-06-07T11:00:00Z")},
	}
}

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}
