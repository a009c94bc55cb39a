package dto

import "github.com/spec-kit/helpdesk/internal/domain"

// DepartmentCountResponse is one department bucket.
type DepartmentCountResponse struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// AgeStatsResponse buckets unsolved tickets by age.
type AgeStatsResponse struct {
	LessThan24h int `json:"less_than_24h"`
	LessThan48h int `json:"less_than_48h"`
	LessThan7d  int `json:"less_than_7d"`
	MoreThan7d  int `json:"more_than_7d"`
}

// StatsResponse is the dashboard summary.
type StatsResponse struct {
	TotalTickets      int                       `json:"total_tickets"`
	OpenTickets       int                       `json:"open_tickets"`
	InProgressTickets int                       `json:"in_progress_tickets"`
	SolvedTickets     int                       `json:"solved_tickets"`
	DepartmentStats   []DepartmentCountResponse `json:"department_stats"`
	AgeStats          AgeStatsResponse          `json:"age_stats"`
}

// NewStatsResponse maps aggregated statistics.
func NewStatsResponse(s domain.TicketStats) StatsResponse {
	depts := make([]DepartmentCountResponse, 0, len(s.DepartmentStats))
	for _, d := range s.DepartmentStats {
		depts = append(depts, DepartmentCountResponse{Department: d.Department, Count: d.Count})
	}
	return StatsResponse{
		TotalTickets:      s.TotalTickets,
		OpenTickets:       s.OpenTickets,
		InProgressTickets: s.InProgressTickets,
		SolvedTickets:     s.SolvedTickets,
		DepartmentStats:   depts,
		AgeStats: AgeStatsResponse{
			LessThan24h: s.AgeStats.LessThan24h,
			LessThan48h: s.AgeStats.LessThan48h,
			LessThan7d:  s.AgeStats.LessThan7d,
			MoreThan7d:  s.AgeStats.MoreThan7d,
		},
	}
}
