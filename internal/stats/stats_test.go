package stats

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/fixtures"
)

var now = time.Date(2023, 6, 12, 8, 0, 0, 0, time.UTC)

func ticketAged(id string, status domain.TicketStatus, dept string, age time.Duration) domain.Ticket {
	return domain.Ticket{
		ID:         id,
		Status:     status,
		Department: dept,
		CreatedAt:  now.Add(-age),
	}
}

func TestClassifyAgeBoundaries(t *testing.T) {
	cases := []struct {
		name string
		age  time.Duration
		want AgeBucket
	}{
		{"fresh", 0, BucketUnder24h},
		{"future", -2 * time.Hour, BucketUnder24h},
		{"just under a day", 24*time.Hour - time.Nanosecond, BucketUnder24h},
		{"exactly a day", 24 * time.Hour, BucketUnder48h},
		{"exactly two days", 48 * time.Hour, BucketUnder7d},
		{"just under a week", 168*time.Hour - time.Second, BucketUnder7d},
		{"exactly a week", 168 * time.Hour, BucketOver7d},
		{"a month", 30 * 24 * time.Hour, BucketOver7d},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyAge(tc.age); got != tc.want {
				t.Errorf("ClassifyAge(%v) = %d, want %d", tc.age, got, tc.want)
			}
		})
	}
}

func TestComputeFixture(t *testing.T) {
	got := Compute(fixtures.Tickets(), now)

	if got.TotalTickets != 5 || got.OpenTickets != 2 || got.InProgressTickets != 2 || got.SolvedTickets != 1 {
		t.Fatalf("status counts = %+v, want total=5 open=2 inProgress=2 solved=1", got)
	}

	want := []domain.DepartmentCount{
		{Department: "Finance", Count: 2},
		{Department: "IT", Count: 2},
		{Department: "HR", Count: 1},
	}
	if len(got.DepartmentStats) != len(want) {
		t.Fatalf("DepartmentStats = %+v, want %+v", got.DepartmentStats, want)
	}
	for i := range want {
		if got.DepartmentStats[i] != want[i] {
			t.Errorf("DepartmentStats[%d] = %+v, want %+v", i, got.DepartmentStats[i], want[i])
		}
	}

	// ticket4 is 16h old, ticket1 45.5h, ticket5 68.5h, ticket2 89.75h.
	// ticket3 is solved.
	wantAge := domain.AgeStats{LessThan24h: 1, LessThan48h: 1, LessThan7d: 2, MoreThan7d: 0}
	if got.AgeStats != wantAge {
		t.Errorf("AgeStats = %+v, want %+v", got.AgeStats, wantAge)
	}
}

func TestComputeInvariants(t *testing.T) {
	tickets := []domain.Ticket{
		ticketAged("a", domain.TicketStatusOpen, "IT", time.Hour),
		ticketAged("b", domain.TicketStatusOpen, "IT", 30*time.Hour),
		ticketAged("c", domain.TicketStatusInProgress, "HR", 100*time.Hour),
		ticketAged("d", domain.TicketStatusInProgress, "Finance", 400*time.Hour),
		ticketAged("e", domain.TicketStatusSolved, "HR", 2*time.Hour),
		ticketAged("f", domain.TicketStatusSolved, "Ops", 500*time.Hour),
	}
	got := Compute(tickets, now)

	if sum := got.OpenTickets + got.InProgressTickets + got.SolvedTickets; sum != got.TotalTickets {
		t.Errorf("status sum = %d, want %d", sum, got.TotalTickets)
	}

	deptSum := 0
	for _, d := range got.DepartmentStats {
		deptSum += d.Count
	}
	if deptSum != got.TotalTickets {
		t.Errorf("department sum = %d, want %d", deptSum, got.TotalTickets)
	}

	unsolved := got.TotalTickets - got.SolvedTickets
	if got.AgeStats.Total() != unsolved {
		t.Errorf("age bucket total = %d, want %d (solved tickets excluded)", got.AgeStats.Total(), unsolved)
	}
	want := domain.AgeStats{LessThan24h: 1, LessThan48h: 1, LessThan7d: 1, MoreThan7d: 1}
	if got.AgeStats != want {
		t.Errorf("AgeStats = %+v, want %+v", got.AgeStats, want)
	}
}

func TestComputeEmpty(t *testing.T) {
	got := Compute(nil, now)
	if got.TotalTickets != 0 || got.AgeStats.Total() != 0 {
		t.Fatalf("Compute(nil) = %+v, want zero counts", got)
	}
	if got.DepartmentStats == nil || len(got.DepartmentStats) != 0 {
		t.Fatalf("DepartmentStats = %#v, want empty non-nil slice", got.DepartmentStats)
	}
}
