// Package sm2 implements the modified SM-2 scheduling algorithm.
//
// Review is a pure function: no DB, no context, no logger, no randomness.
// Every (state, grade) pair maps deterministically to a next state.
package sm2

import (
	"math"
	"time"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/domain"
)

// Ease factor bounds, SM-2 style. The ease update is applied on every
// review, including failing ones, and is always clamped into this range.
const (
	MinEase = 1.3
	MaxEase = 3.0
)

// Interval constants for cards graduating out of the step ladders.
const (
	firstReviewIntervalDays  = 1
	secondReviewIntervalDays = 6
	hardIntervalMultiplier   = 1.2
	easyIntervalBonus        = 1.3
)

// MaxIntervalDays caps ease-driven interval growth at 100 years. Without the
// cap a long EASY streak overflows time.Duration (max ~292 years) and the
// computed due time wraps into the past.
const MaxIntervalDays = 36500

// fallbackStep is used when a deck's step ladder is unexpectedly empty.
const fallbackStep = 10 * time.Minute

// Review computes the next study state for a card given its previous state,
// a review grade, the deck's options, and the review time. The caller is
// responsible for rejecting suspended cards before invoking the algorithm.
func Review(prev domain.StudyState, grade domain.ReviewGrade, opts domain.DeckOptions, now time.Time) domain.StudyState {
	grade = grade.Clamp()

	next := prev
	next.Ease = nextEase(prev.Ease, quality(grade))
	reviewedAt := now
	next.LastReviewedAt = &reviewedAt

	switch {
	case grade == domain.GradeAgain:
		// A lapse resets progress regardless of prior state.
		next.Lapses++
		next.Reps = 0
		next.IntervalDays = 0
		next.State = domain.CardStateRelearning
		next.DueAt = now.Add(firstStep(opts.RelearnSteps))

	case prev.State == domain.CardStateNew:
		next.Reps++
		if len(opts.LearningSteps) > 1 && grade == domain.GradeHard {
			next.State = domain.CardStateLearning
			next.DueAt = now.Add(firstStep(opts.LearningSteps))
		} else {
			graduate(&next, now)
		}

	case prev.State == domain.CardStateLearning, prev.State == domain.CardStateRelearning:
		next.Reps++
		if grade >= domain.GradeGood {
			graduate(&next, now)
		} else {
			// HARD: remain in the current step ladder at its first step.
			if prev.State == domain.CardStateLearning {
				next.DueAt = now.Add(firstStep(opts.LearningSteps))
			} else {
				next.DueAt = now.Add(firstStep(opts.RelearnSteps))
			}
		}

	default: // REVIEW
		next.Reps++
		next.IntervalDays = nextInterval(prev.IntervalDays, next.Reps, grade, next.Ease)
		next.DueAt = now.Add(days(next.IntervalDays))
	}

	// Leech suspension is sticky: the algorithm never un-suspends.
	if next.Lapses >= opts.LeechThreshold {
		next.Suspended = true
	}

	return next
}

// graduate moves a card out of the step ladders into REVIEW at one day.
func graduate(s *domain.StudyState, now time.Time) {
	s.State = domain.CardStateReview
	s.IntervalDays = firstReviewIntervalDays
	s.DueAt = now.Add(days(firstReviewIntervalDays))
}

// nextInterval implements the interval-growth rule for cards already in
// REVIEW state. Freshly graduated cards pass through the 1-day/6-day
// onboarding before ease-driven growth takes over. The result is always
// within [1, MaxIntervalDays].
func nextInterval(prevIntervalDays float64, repsAfter int, grade domain.ReviewGrade, ease float64) float64 {
	prev := math.Max(1, prevIntervalDays)

	switch {
	case repsAfter <= 1:
		return firstReviewIntervalDays
	case repsAfter == 2:
		return secondReviewIntervalDays
	}

	var next float64
	switch grade {
	case domain.GradeHard:
		next = math.Round(prev * hardIntervalMultiplier)
	case domain.GradeEasy:
		next = math.Round(prev * ease * easyIntervalBonus)
	default: // GOOD
		next = math.Round(prev * ease)
	}

	return math.Min(MaxIntervalDays, math.Max(1, next))
}

// quality maps a review grade to its SM-2 quality value.
func quality(grade domain.ReviewGrade) int {
	switch grade {
	case domain.GradeAgain:
		return 0
	case domain.GradeHard:
		return 3
	case domain.GradeGood:
		return 4
	default: // EASY
		return 5
	}
}

// nextEase applies the standard SM-2 ease update for quality q, clamped to
// [MinEase, MaxEase].
func nextEase(prevEase float64, q int) float64 {
	e := prevEase + (0.1 - float64(5-q)*(0.08+float64(5-q)*0.02))
	if e < MinEase {
		return MinEase
	}
	if e > MaxEase {
		return MaxEase
	}
	return e
}

func firstStep(steps []time.Duration) time.Duration {
	if len(steps) == 0 {
		return fallbackStep
	}
	return steps[0]
}

func days(d float64) time.Duration {
	return time.Duration(d * float64(24*time.Hour))
}
