package service

import (
	"math"
	"time"

	"uas_practice_backend/internal/model"
	"uas_practice_backend/internal/util"
)

type SessionState string

const (
	SessionInProgress SessionState = "in_progress"
	SessionCompleted  SessionState = "completed"
)

// Answer records one submitted answer. Entries are append-only: once a
// question has an answer it is never overwritten.
type Answer struct {
	SelectedOption int  `json:"selectedOption"`
	IsCorrect      bool `json:"isCorrect"`
}

// QuizSession is one learner's attempt at a selected, ordered subset of
// questions. Course and Items are copies taken at session start, so catalog
// edits made while the session runs never reach it.
type QuizSession struct {
	ID        string
	Course    model.Course
	Items     []model.Question
	Answers   map[string]Answer
	Cursor    int
	Score     int
	State     SessionState
	CreatedAt time.Time
}

func (s *QuizSession) current() *model.Question {
	return &s.Items[s.Cursor]
}

// submitAnswer records the answer for the current question. The score is a
// pure monotonic counter: it is bumped here and never recomputed from the
// answers map.
func (s *QuizSession) submitAnswer(optionIndex int) (Answer, error) {
	if s.State == SessionCompleted {
		return Answer{}, util.ErrSessionCompleted
	}
	q := s.current()
	opts, err := q.DecodedOptions()
	if err != nil || !q.Scorable() {
		// should be impossible: unscorable questions are excluded at selection
		// time and the session is isolated from catalog changes
		return Answer{}, util.ErrUnscorableQuestion
	}
	if optionIndex < 0 || optionIndex >= len(opts) {
		return Answer{}, util.ErrOptionIndexRange
	}
	if _, answered := s.Answers[q.ID]; answered {
		return Answer{}, util.ErrAlreadyAnswered
	}

	ans := Answer{
		SelectedOption: optionIndex,
		IsCorrect:      optionIndex == q.CorrectIndex,
	}
	s.Answers[q.ID] = ans
	if ans.IsCorrect {
		s.Score++
	}
	return ans, nil
}

// advance moves to the next question, or freezes the session once the last
// item is passed. The current question must have an answer, except for an
// unscorable item, which is skipped without counting right or wrong.
func (s *QuizSession) advance() error {
	if s.State == SessionCompleted {
		return util.ErrSessionCompleted
	}
	q := s.current()
	if q.Scorable() {
		if _, answered := s.Answers[q.ID]; !answered {
			return util.ErrAnswerRequired
		}
	}
	if s.Cursor+1 < len(s.Items) {
		s.Cursor++
		return nil
	}
	s.State = SessionCompleted
	return nil
}

// scorableCount is the result denominator. It equals len(Items) unless the
// defensive unscorable-item path fired.
func (s *QuizSession) scorableCount() int {
	n := 0
	for i := range s.Items {
		if s.Items[i].Scorable() {
			n++
		}
	}
	return n
}

func (s *QuizSession) percentage() int {
	n := s.scorableCount()
	if n == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.Score) / float64(n)))
}
