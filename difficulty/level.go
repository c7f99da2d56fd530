package difficulty

// Level is a target arrangement difficulty for simplification.
type Level int

const (
	Beginner Level = iota + 1
	Intermediate
	Advanced
)

func (l Level) String() string {
	switch l {
	case Beginner:
		return "beginner"
	case Intermediate:
		return "intermediate"
	case Advanced:
		return "advanced"
	}
	return "unknown"
}

// Levels lists every target level in ascending order.
func Levels() []Level {
	return []Level{Beginner, Intermediate, Advanced}
}

// estimated 1-10 rating labels, based on graded piano repertoire
var levelLabels = map[int]string{
	1:  "beginner",
	2:  "beginner+",
	3:  "easy",
	4:  "easy+",
	5:  "intermediate",
	6:  "intermediate+",
	7:  "advanced",
	8:  "advanced+",
	9:  "expert",
	10: "concert",
}
