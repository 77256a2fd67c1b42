package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"uas_practice_backend/internal/model"
	"uas_practice_backend/internal/repository"
	"uas_practice_backend/internal/util"
)

// ChangePublisher signals catalog writes to the content repository's snapshot
// loop. Writes are fire-and-forget: their effect is only ever observed through
// the next snapshot.
type ChangePublisher interface {
	Publish(ctx context.Context)
}

// CatalogService is the admin side of the catalog: validated CRUD plus bulk
// import/export against the store that the content repository mirrors.
type CatalogService struct {
	Courses   *repository.CourseRepository
	Questions *repository.QuestionRepository
	Notifier  ChangePublisher
}

func NewCatalogService(courses *repository.CourseRepository, questions *repository.QuestionRepository, notifier ChangePublisher) *CatalogService {
	return &CatalogService{Courses: courses, Questions: questions, Notifier: notifier}
}

type CourseRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type QuestionRequest struct {
	CourseID     string   `json:"courseId" binding:"required"`
	Version      string   `json:"version"`
	Difficulty   string   `json:"difficulty"`
	Text         string   `json:"text" binding:"required"`
	Options      []string `json:"options" binding:"required"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

func (s *CatalogService) CreateCourse(ctx context.Context, req CourseRequest) (*model.Course, error) {
	course := &model.Course{Code: req.Code, Name: req.Name}
	if err := s.Courses.Create(course); err != nil {
		return nil, err
	}
	s.Notifier.Publish(ctx)
	return course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id string, req CourseRequest) (*model.Course, error) {
	course, err := s.Courses.FindByID(id)
	if err != nil {
		return nil, err
	}
	course.Code = req.Code
	course.Name = req.Name
	if err := s.Courses.Update(course); err != nil {
		return nil, err
	}
	s.Notifier.Publish(ctx)
	return course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.Courses.Delete(id); err != nil {
		return err
	}
	s.Notifier.Publish(ctx)
	return nil
}

func (s *CatalogService) ListCourses() ([]model.Course, error) {
	return s.Courses.ListAll()
}

func (s *CatalogService) CreateQuestion(ctx context.Context, req QuestionRequest) (*model.Question, error) {
	q, err := buildQuestion(req)
	if err != nil {
		return nil, err
	}
	if err := s.Questions.Create(q); err != nil {
		return nil, err
	}
	s.Notifier.Publish(ctx)
	return q, nil
}

func (s *CatalogService) UpdateQuestion(ctx context.Context, id string, req QuestionRequest) (*model.Question, error) {
	existing, err := s.Questions.FindByID(id)
	if err != nil {
		return nil, err
	}
	q, err := buildQuestion(req)
	if err != nil {
		return nil, err
	}
	q.UUIDBase = existing.UUIDBase
	q.Extra = existing.Extra
	if err := s.Questions.Update(q); err != nil {
		return nil, err
	}
	s.Notifier.Publish(ctx)
	return q, nil
}

func (s *CatalogService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.Questions.Delete(id); err != nil {
		return err
	}
	s.Notifier.Publish(ctx)
	return nil
}

func (s *CatalogService) ListQuestions(courseID string, page, limit int) ([]model.Question, int64, error) {
	return s.Questions.ListByCourse(courseID, page, limit)
}

// ExportQuestions returns the whole question bank as a self-describing record
// slice; the controller serializes it as a JSON array.
func (s *CatalogService) ExportQuestions() ([]model.Question, error) {
	return s.Questions.ListAll()
}

// ImportQuestions parses and validates a JSON array of question records and
// applies the whole batch in one transaction. Any malformed record fails the
// entire import; nothing is partially applied. Every imported question gets a
// freshly assigned id.
func (s *CatalogService) ImportQuestions(ctx context.Context, data []byte) (int, error) {
	records, err := ParseQuestionImport(data)
	if err != nil {
		if errors.Is(err, util.ErrImportNotArray) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", util.ErrImportInvalid, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	if err := s.Questions.CreateBatch(records); err != nil {
		return 0, err
	}
	s.Notifier.Publish(ctx)
	return len(records), nil
}

// knownQuestionKeys are the fields the import recognizes; everything else is
// carried opaquely in Extra so round-tripping a newer export loses nothing.
var knownQuestionKeys = map[string]bool{
	"id": true, "createdAt": true, "updatedAt": true,
	"courseId": true, "version": true, "difficulty": true,
	"text": true, "options": true, "correctIndex": true, "explanation": true,
}

// ParseQuestionImport decodes a bulk import payload. The top-level value must
// be a JSON array, otherwise the whole batch is rejected up front.
func ParseQuestionImport(data []byte) ([]model.Question, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, util.ErrImportNotArray
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid import payload: %w", err)
	}

	records := make([]model.Question, 0, len(raw))
	for i, fields := range raw {
		req := QuestionRequest{}
		if err := decodeField(fields, "courseId", &req.CourseID); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := decodeField(fields, "version", &req.Version); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := decodeField(fields, "difficulty", &req.Difficulty); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := decodeField(fields, "text", &req.Text); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := decodeField(fields, "options", &req.Options); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := decodeField(fields, "correctIndex", &req.CorrectIndex); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := decodeField(fields, "explanation", &req.Explanation); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if req.CourseID == "" {
			return nil, fmt.Errorf("record %d: courseId is required", i)
		}
		if req.Text == "" {
			return nil, fmt.Errorf("record %d: text is required", i)
		}

		q, err := buildQuestion(req)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		// id is never taken from the payload; imports always mint fresh ids
		extra := make(map[string]json.RawMessage)
		for k, v := range fields {
			if !knownQuestionKeys[k] {
				extra[k] = v
			}
		}
		if len(extra) > 0 {
			blob, err := json.Marshal(extra)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			q.Extra = blob
		}

		records = append(records, *q)
	}
	return records, nil
}

func decodeField(fields map[string]json.RawMessage, key string, dst interface{}) error {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

// buildQuestion applies defaults and enforces the options/correctIndex
// contract the read side relies on.
func buildQuestion(req QuestionRequest) (*model.Question, error) {
	if req.Version == "" {
		req.Version = model.VersionA
	}
	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyMedium
	}
	if !model.ValidVersion(req.Version) {
		return nil, model.ErrUnknownVersion
	}
	if !model.ValidDifficulty(req.Difficulty) {
		return nil, model.ErrUnknownDifficulty
	}
	if len(req.Options) != model.OptionCount {
		return nil, model.ErrOptionCount
	}
	if req.CorrectIndex < 0 || req.CorrectIndex >= model.OptionCount {
		return nil, model.ErrCorrectIndexRange
	}

	opts, err := json.Marshal(req.Options)
	if err != nil {
		return nil, err
	}
	return &model.Question{
		CourseID:     req.CourseID,
		Version:      req.Version,
		Difficulty:   req.Difficulty,
		Text:         req.Text,
		Options:      opts,
		CorrectIndex: req.CorrectIndex,
		Explanation:  req.Explanation,
	}, nil
}
