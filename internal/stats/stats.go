// Package stats computes the admin dashboard aggregates over a ticket
// collection.
package stats

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// AgeBucket identifies one of the four ticket age ranges.
type AgeBucket int

const (
	BucketUnder24h AgeBucket = iota
	BucketUnder48h
	BucketUnder7d
	BucketOver7d
)

// Bucket bounds in hours. Each bound belongs to the bucket above it.
const (
	dayHours      = 24
	twoDayHours   = 48
	sevenDayHours = 168
)

// ClassifyAge places an age into its bucket. Negative ages (a creation
// time ahead of now) count as under 24h.
func ClassifyAge(age time.Duration) AgeBucket {
	hours := age.Hours()
	switch {
	case hours < dayHours:
		return BucketUnder24h
	case hours < twoDayHours:
		return BucketUnder48h
	case hours < sevenDayHours:
		return BucketUnder7d
	default:
		return BucketOver7d
	}
}

// Compute aggregates status, department and age counts over tickets as of
// now. Solved tickets are excluded from the age buckets.
func Compute(tickets []domain.Ticket, now time.Time) domain.TicketStats {
	result := domain.TicketStats{
		TotalTickets:    len(tickets),
		DepartmentStats: []domain.DepartmentCount{},
	}
	deptIndex := make(map[string]int)

	for i := range tickets {
		t := &tickets[i]

		switch t.Status {
		case domain.TicketStatusOpen:
			result.OpenTickets++
		case domain.TicketStatusInProgress:
			result.InProgressTickets++
		case domain.TicketStatusSolved:
			result.SolvedTickets++
		}

		if idx, ok := deptIndex[t.Department]; ok {
			result.DepartmentStats[idx].Count++
		} else {
			deptIndex[t.Department] = len(result.DepartmentStats)
			result.DepartmentStats = append(result.DepartmentStats, domain.DepartmentCount{Department: t.Department, Count: 1})
		}

		if t.Status == domain.TicketStatusSolved {
			continue
		}
		switch ClassifyAge(now.Sub(t.CreatedAt)) {
		case BucketUnder24h:
			result.AgeStats.LessThan24h++
		case BucketUnder48h:
			result.AgeStats.LessThan48h++
		case BucketUnder7d:
			result.AgeStats.LessThan7d++
		case BucketOver7d:
			result.AgeStats.MoreThan7d++
		}
	}
	return result
}
