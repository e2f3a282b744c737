package domain

// CardState represents the scheduling state of a card for one user.
// A card with no persisted study state is implicitly NEW.
type CardState string

const (
	CardStateNew        CardState = "NEW"
	CardStateLearning   CardState = "LEARNING"
	CardStateReview     CardState = "REVIEW"
	CardStateRelearning CardState = "RELEARNING"
)

func (s CardState) String() string { return string(s) }

func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	}
	return false
}

// ReviewGrade is the user's self-assessed recall quality: 0=again, 1=hard,
// 2=good, 3=easy. Out-of-range values are clamped, never rejected.
type ReviewGrade int

const (
	GradeAgain ReviewGrade = 0
	GradeHard  ReviewGrade = 1
	GradeGood  ReviewGrade = 2
	GradeEasy  ReviewGrade = 3
)

// Clamp forces the grade into the declared [0, 3] range.
func (g ReviewGrade) Clamp() ReviewGrade {
	if g < GradeAgain {
		return GradeAgain
	}
	if g > GradeEasy {
		return GradeEasy
	}
	return g
}

func (g ReviewGrade) String() string {
	switch g {
	case GradeAgain:
		return "AGAIN"
	case GradeHard:
		return "HARD"
	case GradeGood:
		return "GOOD"
	case GradeEasy:
		return "EASY"
	}
	return "UNKNOWN"
}

// Confidence is the optional self-reported confidence (0–3) attached to a
// review event. Like grades, out-of-range values are clamped.
type Confidence int

// Clamp forces the confidence into the declared [0, 3] range.
func (c Confidence) Clamp() Confidence {
	if c < 0 {
		return 0
	}
	if c > 3 {
		return 3
	}
	return c
}
