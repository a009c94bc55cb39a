package domain

// DepartmentCount is the number of tickets routed to one department.
type DepartmentCount struct {
	Department string
	Count      int
}

// AgeStats buckets unsolved tickets by hours since creation.
type AgeStats struct {
	LessThan24h int
	LessThan48h int
	LessThan7d  int
	MoreThan7d  int
}

// Total returns the number of tickets across all buckets.
func (a AgeStats) Total() int {
	return a.LessThan24h + a.LessThan48h + a.LessThan7d + a.MoreThan7d
}

// TicketStats aggregates the whole ticket collection.
type TicketStats struct {
	TotalTickets      int
	OpenTickets       int
	InProgressTickets int
	SolvedTickets     int
	DepartmentStats   []DepartmentCount
	AgeStats          AgeStats
}
