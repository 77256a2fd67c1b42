package service

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"uas_practice_backend/internal/model"
	"uas_practice_backend/internal/util"
	"uas_practice_backend/pkg/monitoring"
)

// QuizSessionService drives practice sessions. Sessions live in memory only
// and are discarded on abandon; there is no persisted session history.
//
// A session is built from an explicit catalog snapshot and never re-reads the
// live catalog afterwards, which is what keeps an in-progress session immune
// to concurrent admin edits.
type QuizSessionService struct {
	mu       sync.Mutex
	sessions map[string]*QuizSession
	rng      *rand.Rand
}

func NewQuizSessionService() *QuizSessionService {
	return NewQuizSessionServiceWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewQuizSessionServiceWithSource injects the shuffle's random source so tests
// can seed it deterministically.
func NewQuizSessionServiceWithSource(src rand.Source) *QuizSessionService {
	return &QuizSessionService{
		sessions: make(map[string]*QuizSession),
		rng:      rand.New(src),
	}
}

type StartSessionRequest struct {
	CourseID   string `json:"courseId" binding:"required"`
	Version    string `json:"version"`
	Difficulty string `json:"difficulty"`
}

// QuestionView is the learner-facing shape of the current question. It never
// carries the correct index or the explanation; those are revealed through
// AnswerFeedback after submitting.
type QuestionView struct {
	ID         string          `json:"id"`
	Version    string          `json:"version"`
	Difficulty string          `json:"difficulty"`
	Text       string          `json:"text"`
	Options    json.RawMessage `json:"options"`
}

type SessionView struct {
	ID       string        `json:"id"`
	Course   model.Course  `json:"course"`
	State    SessionState  `json:"state"`
	Cursor   int           `json:"cursor"`
	Total    int           `json:"total"`
	Score    int           `json:"score"`
	Answered bool          `json:"answered"`
	Current  *QuestionView `json:"current,omitempty"`
}

type AnswerFeedback struct {
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Explanation  string `json:"explanation,omitempty"`
	Score        int    `json:"score"`
}

type ReviewItem struct {
	Question model.Question `json:"question"`
	Answer   *Answer        `json:"answer,omitempty"` // nil only for unscorable skipped items
	Scorable bool           `json:"scorable"`
}

type SessionResult struct {
	Course     model.Course `json:"course"`
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
	Review     []ReviewItem `json:"review"`
}

// StartSession filters the snapshot's questions by course, then version and
// difficulty (unless "all"), drops questions violating the integrity contract,
// and builds a freshly shuffled session. An empty selection fails without
// touching any existing session.
func (s *QuizSessionService) StartSession(snap *model.ContentSnapshot, req StartSessionRequest) (*SessionView, error) {
	version := req.Version
	if version == "" {
		version = model.FilterAll
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.FilterAll
	}
	if version != model.FilterAll && !model.ValidVersion(version) {
		return nil, util.ErrInvalidFilter
	}
	if difficulty != model.FilterAll && !model.ValidDifficulty(difficulty) {
		return nil, util.ErrInvalidFilter
	}

	course := snap.CourseByID(req.CourseID)
	if course == nil {
		return nil, util.ErrCourseNotFound
	}

	var items []model.Question
	for _, q := range snap.Questions {
		if q.CourseID != course.ID {
			continue
		}
		if version != model.FilterAll && q.Version != version {
			continue
		}
		if difficulty != model.FilterAll && q.Difficulty != difficulty {
			continue
		}
		if !q.Scorable() {
			continue
		}
		items = append(items, q)
	}
	if len(items) == 0 {
		return nil, util.ErrSelectionEmpty
	}

	session := &QuizSession{
		ID:        model.GenerateUUID(),
		Course:    *course,
		Items:     items,
		Answers:   make(map[string]Answer),
		State:     SessionInProgress,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Fisher-Yates; a fresh shuffle on every start, no reuse across sessions
	s.rng.Shuffle(len(session.Items), func(i, j int) {
		session.Items[i], session.Items[j] = session.Items[j], session.Items[i]
	})
	s.sessions[session.ID] = session

	monitoring.QuizSessionsStarted.Inc()
	return viewOf(session), nil
}

func (s *QuizSessionService) Get(id string) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return viewOf(session), nil
}

func (s *QuizSessionService) SubmitAnswer(id string, optionIndex int) (*AnswerFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	ans, err := session.submitAnswer(optionIndex)
	if err != nil {
		return nil, err
	}
	q := session.current()
	return &AnswerFeedback{
		Correct:      ans.IsCorrect,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
		Score:        session.Score,
	}, nil
}

func (s *QuizSessionService) Advance(id string) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if err := session.advance(); err != nil {
		return nil, err
	}
	if session.State == SessionCompleted {
		monitoring.QuizSessionsCompleted.Inc()
	}
	return viewOf(session), nil
}

// Abandon discards the session unconditionally, from any state. Abandoning an
// unknown id is a no-op.
func (s *QuizSessionService) Abandon(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Result returns the frozen score and per-item review of a completed session.
func (s *QuizSessionService) Result(id string) (*SessionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if session.State != SessionCompleted {
		return nil, util.ErrSessionInProgress
	}

	review := make([]ReviewItem, 0, len(session.Items))
	for i := range session.Items {
		q := session.Items[i]
		item := ReviewItem{Question: q, Scorable: q.Scorable()}
		if ans, ok := session.Answers[q.ID]; ok {
			a := ans
			item.Answer = &a
		}
		review = append(review, item)
	}

	return &SessionResult{
		Course:     session.Course,
		Score:      session.Score,
		Total:      session.scorableCount(),
		Percentage: session.percentage(),
		Review:     review,
	}, nil
}

func viewOf(session *QuizSession) *SessionView {
	view := &SessionView{
		ID:     session.ID,
		Course: session.Course,
		State:  session.State,
		Cursor: session.Cursor,
		Total:  len(session.Items),
		Score:  session.Score,
	}
	if session.State == SessionCompleted {
		return view
	}
	q := session.current()
	_, view.Answered = session.Answers[q.ID]
	view.Current = &QuestionView{
		ID:         q.ID,
		Version:    q.Version,
		Difficulty: q.Difficulty,
		Text:       q.Text,
		Options:    q.Options,
	}
	return view
}
