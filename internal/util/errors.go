package util

import "errors"

var (
	ErrLearnerNotFound        = errors.New("learner not found")
	ErrLessonNotFound         = errors.New("lesson not found")
	ErrLessonNotPublished     = errors.New("lesson not published")
	ErrQuizNotFound           = errors.New("quiz not found")
	ErrQuizNotPublished       = errors.New("quiz not published or not accessible")
	ErrQuizEmpty              = errors.New("quiz has no questions")
	ErrInvalidDifficulty      = errors.New("invalid difficulty")
	ErrInvalidPerformance     = errors.New("session performance counters must be non-negative and consistent")
	ErrGeneratorUnavailable   = errors.New("question generator unavailable, retry with the same session performance")
	ErrMasteryNotFound        = errors.New("mastery state does not exist yet")
	ErrAttemptLearnerMismatch = errors.New("attempt belongs to another learner")
)
