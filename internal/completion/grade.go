package completion

// Grades printed on certificates.
const (
	GradeDistinction = "Distinction"
	GradeMerit       = "Merit"
	GradePass        = "Pass"
	GradeIncomplete  = "Incomplete"
)

// Signals are the inputs available to a grade policy.
type Signals struct {
	Percentage            int
	TotalTimeSpentMinutes int
	// EstimatedMinutes comes from the catalog; zero means unknown.
	EstimatedMinutes int
}

// GradeFunc derives a grade from signals. Implementations must be deterministic.
type GradeFunc func(Signals) string

// Grade is the default policy. Time spent is compared against the catalog
// estimate: at or above it is a Distinction, at least 60% of it a Merit.
func Grade(s Signals) string {
	if s.Percentage < Complete {
		return GradeIncomplete
	}
	if s.EstimatedMinutes <= 0 {
		return GradePass
	}
	switch {
	case s.TotalTimeSpentMinutes >= s.EstimatedMinutes:
		return GradeDistinction
	case s.TotalTimeSpentMinutes >= meritThreshold(s.EstimatedMinutes):
		return GradeMerit
	default:
		return GradePass
	}
}

// meritThreshold is ceil(estimate * 0.6), computed without overflowing.
func meritThreshold(estimate int) int {
	q, r := estimate/10, estimate%10
	return q*6 + (r*6+9)/10
}
