package domain

import "time"

// IdleDurationLimit configures, per problem type, how long a ticket may sit
// unassigned before it counts as an idle breach. At most one record exists
// per problem type.
type IdleDurationLimit struct {
	ID            string
	ProblemTypeID string
	TimeToAssign  time.Duration
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SolutionTime configures, per problem type, the target duration to solve a
// ticket. At most one record exists per problem type.
type SolutionTime struct {
	ID            string
	ProblemTypeID string
	TimeToSolve   time.Duration
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
