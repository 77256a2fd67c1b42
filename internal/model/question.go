package model

import (
	"encoding/json"
	"errors"
)

const (
	VersionA = "A"
	VersionB = "B"
	VersionC = "C"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	// FilterAll disables version/difficulty filtering at session start.
	FilterAll = "all"

	// OptionCount is the fixed number of answer options per question.
	OptionCount = 4
)

var (
	ErrOptionsMalformed  = errors.New("question options are not a valid JSON string array")
	ErrOptionCount       = errors.New("question must have exactly 4 options")
	ErrCorrectIndexRange = errors.New("correctIndex out of range")
	ErrUnknownVersion    = errors.New("version must be A, B or C")
	ErrUnknownDifficulty = errors.New("difficulty must be easy, medium or hard")
)

// Question is a multiple-choice exam question. CourseID carries no foreign key
// constraint: a question may outlive its course (dangling reference) and the
// rest of the system has to tolerate that.
// swagger:model Question
type Question struct {
	UUIDBase
	CourseID     string          `gorm:"index;type:varchar(36)" json:"courseId"`
	Version      string          `gorm:"size:1;default:A" json:"version"`
	Difficulty   string          `gorm:"size:10;default:medium" json:"difficulty"`
	Text         string          `gorm:"type:text;not null" json:"text"` // may embed $...$ math spans, opaque here
	Options      json.RawMessage `gorm:"type:json" json:"options"`       // JSON: []string, exactly 4
	CorrectIndex int             `gorm:"default:0" json:"correctIndex"`
	Explanation  string          `gorm:"type:text" json:"explanation,omitempty"`
	Extra        json.RawMessage `gorm:"type:json" json:"extra,omitempty"` // unrecognized import fields, passed through opaquely
}

func (Question) TableName() string {
	return "questions"
}

// DecodedOptions parses the Options JSON column into a string slice.
func (q *Question) DecodedOptions() ([]string, error) {
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, ErrOptionsMalformed
	}
	return opts, nil
}

// CheckIntegrity verifies the options/correctIndex contract that admin-side
// validation is supposed to uphold. Violations mean malformed data reached
// storage (e.g. a hand-edited import) and the question must not be scored.
func (q *Question) CheckIntegrity() error {
	opts, err := q.DecodedOptions()
	if err != nil {
		return err
	}
	if len(opts) != OptionCount {
		return ErrOptionCount
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(opts) {
		return ErrCorrectIndexRange
	}
	return nil
}

// Scorable reports whether the question satisfies the integrity contract.
func (q *Question) Scorable() bool {
	return q.CheckIntegrity() == nil
}

func ValidVersion(v string) bool {
	return v == VersionA || v == VersionB || v == VersionC
}

func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}
