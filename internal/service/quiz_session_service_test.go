package service

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"uas_practice_backend/internal/model"
	"uas_practice_backend/internal/util"
)

var fourOptions = json.RawMessage(`["alpha","bravo","charlie","delta"]`)

func newTestService() *QuizSessionService {
	return NewQuizSessionServiceWithSource(rand.NewSource(1))
}

func testQuestion(id, courseID, version, difficulty string, correct int) model.Question {
	return model.Question{
		UUIDBase:     model.UUIDBase{ID: id},
		CourseID:     courseID,
		Version:      version,
		Difficulty:   difficulty,
		Text:         "question " + id,
		Options:      fourOptions,
		CorrectIndex: correct,
		Explanation:  "explanation " + id,
	}
}

func testSnapshot() *model.ContentSnapshot {
	return &model.ContentSnapshot{
		Courses: []model.Course{
			{UUIDBase: model.UUIDBase{ID: "c1"}, Code: "UAS-101", Name: "Regulations"},
			{UUIDBase: model.UUIDBase{ID: "c2"}, Code: "UAS-201", Name: "Meteorology"},
		},
		Questions: []model.Question{
			testQuestion("q1", "c1", model.VersionA, model.DifficultyEasy, 0),
			testQuestion("q2", "c1", model.VersionA, model.DifficultyMedium, 1),
			testQuestion("q3", "c1", model.VersionB, model.DifficultyMedium, 2),
			testQuestion("q4", "c1", model.VersionB, model.DifficultyHard, 3),
			testQuestion("q5", "c2", model.VersionA, model.DifficultyEasy, 0),
		},
	}
}

func questionByID(snap *model.ContentSnapshot, id string) *model.Question {
	for i := range snap.Questions {
		if snap.Questions[i].ID == id {
			return &snap.Questions[i]
		}
	}
	return nil
}

func TestStartSessionErrors(t *testing.T) {
	snap := testSnapshot()
	tests := []struct {
		name string
		req  StartSessionRequest
		want error
	}{
		{"unknown course", StartSessionRequest{CourseID: "nope"}, util.ErrCourseNotFound},
		{"bad version filter", StartSessionRequest{CourseID: "c1", Version: "Z"}, util.ErrInvalidFilter},
		{"bad difficulty filter", StartSessionRequest{CourseID: "c1", Difficulty: "extreme"}, util.ErrInvalidFilter},
		{"empty selection", StartSessionRequest{CourseID: "c2", Difficulty: model.DifficultyHard}, util.ErrSelectionEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			_, err := svc.StartSession(snap, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("StartSession() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStartSessionFilters(t *testing.T) {
	snap := testSnapshot()
	tests := []struct {
		name      string
		req       StartSessionRequest
		wantTotal int
	}{
		{"all questions of course", StartSessionRequest{CourseID: "c1"}, 4},
		{"explicit all filters", StartSessionRequest{CourseID: "c1", Version: model.FilterAll, Difficulty: model.FilterAll}, 4},
		{"version only", StartSessionRequest{CourseID: "c1", Version: model.VersionA}, 2},
		{"difficulty only", StartSessionRequest{CourseID: "c1", Difficulty: model.DifficultyMedium}, 2},
		{"version and difficulty", StartSessionRequest{CourseID: "c1", Version: model.VersionB, Difficulty: model.DifficultyHard}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			view, err := svc.StartSession(snap, tt.req)
			if err != nil {
				t.Fatalf("StartSession() error = %v", err)
			}
			if view.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", view.Total, tt.wantTotal)
			}
			if view.State != SessionInProgress {
				t.Errorf("State = %q, want %q", view.State, SessionInProgress)
			}
			if view.Cursor != 0 || view.Score != 0 || view.Answered {
				t.Errorf("fresh session has cursor=%d score=%d answered=%v", view.Cursor, view.Score, view.Answered)
			}
			if view.Current == nil {
				t.Fatal("fresh session has no current question")
			}
		})
	}
}

func TestStartSessionExcludesUnscorableQuestions(t *testing.T) {
	snap := testSnapshot()
	broken := testQuestion("q-bad", "c1", model.VersionA, model.DifficultyEasy, 0)
	broken.Options = json.RawMessage(`["only","three","options"]`)
	outOfRange := testQuestion("q-bad2", "c1", model.VersionA, model.DifficultyEasy, 7)
	snap.Questions = append(snap.Questions, broken, outOfRange)

	svc := newTestService()
	view, err := svc.StartSession(snap, StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if view.Total != 4 {
		t.Errorf("Total = %d, want 4 (unscorable questions excluded)", view.Total)
	}
}

func TestQuestionViewHidesAnswerKey(t *testing.T) {
	svc := newTestService()
	view, err := svc.StartSession(testSnapshot(), StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	blob, err := json.Marshal(view.Current)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(blob, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["correctIndex"]; ok {
		t.Error("current question view leaks correctIndex")
	}
	if _, ok := decoded["explanation"]; ok {
		t.Error("current question view leaks explanation")
	}
}

func TestFullSessionAllCorrect(t *testing.T) {
	snap := testSnapshot()
	svc := newTestService()
	view, err := svc.StartSession(snap, StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	for i := 0; i < view.Total; i++ {
		q := questionByID(snap, view.Current.ID)
		if q == nil {
			t.Fatalf("session question %q not in snapshot", view.Current.ID)
		}
		fb, err := svc.SubmitAnswer(view.ID, q.CorrectIndex)
		if err != nil {
			t.Fatalf("SubmitAnswer() error = %v", err)
		}
		if !fb.Correct {
			t.Errorf("answer %d judged incorrect", i)
		}
		if fb.CorrectIndex != q.CorrectIndex {
			t.Errorf("feedback correctIndex = %d, want %d", fb.CorrectIndex, q.CorrectIndex)
		}
		if fb.Explanation != q.Explanation {
			t.Errorf("feedback explanation = %q, want %q", fb.Explanation, q.Explanation)
		}
		if fb.Score != i+1 {
			t.Errorf("score after answer %d = %d, want %d", i, fb.Score, i+1)
		}
		view, err = svc.Advance(view.ID)
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
	}

	if view.State != SessionCompleted {
		t.Fatalf("State after last advance = %q, want %q", view.State, SessionCompleted)
	}
	if view.Current != nil {
		t.Error("completed session still exposes a current question")
	}

	res, err := svc.Result(view.ID)
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if res.Score != 4 || res.Total != 4 || res.Percentage != 100 {
		t.Errorf("result = %d/%d (%d%%), want 4/4 (100%%)", res.Score, res.Total, res.Percentage)
	}
	if len(res.Review) != 4 {
		t.Fatalf("review has %d items, want 4", len(res.Review))
	}
	for i, item := range res.Review {
		if item.Answer == nil {
			t.Errorf("review item %d has no answer", i)
		} else if !item.Answer.IsCorrect {
			t.Errorf("review item %d recorded as incorrect", i)
		}
		if !item.Scorable {
			t.Errorf("review item %d not scorable", i)
		}
	}
}

func TestPercentageRounding(t *testing.T) {
	snap := testSnapshot()
	svc := newTestService()
	view, err := svc.StartSession(snap, StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	// answer the first three correctly, miss the last one
	for i := 0; i < 4; i++ {
		q := questionByID(snap, view.Current.ID)
		choice := q.CorrectIndex
		if i == 3 {
			choice = (q.CorrectIndex + 1) % model.OptionCount
		}
		if _, err := svc.SubmitAnswer(view.ID, choice); err != nil {
			t.Fatalf("SubmitAnswer() error = %v", err)
		}
		view, err = svc.Advance(view.ID)
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
	}

	res, err := svc.Result(view.ID)
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if res.Score != 3 || res.Percentage != 75 {
		t.Errorf("result = %d (%d%%), want 3 (75%%)", res.Score, res.Percentage)
	}
}

func TestSubmitAnswerErrors(t *testing.T) {
	snap := testSnapshot()
	svc := newTestService()
	view, err := svc.StartSession(snap, StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	if _, err := svc.SubmitAnswer("nope", 0); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("unknown session error = %v, want %v", err, util.ErrSessionNotFound)
	}
	if _, err := svc.SubmitAnswer(view.ID, -1); !errors.Is(err, util.ErrOptionIndexRange) {
		t.Errorf("negative option error = %v, want %v", err, util.ErrOptionIndexRange)
	}
	if _, err := svc.SubmitAnswer(view.ID, model.OptionCount); !errors.Is(err, util.ErrOptionIndexRange) {
		t.Errorf("out of range option error = %v, want %v", err, util.ErrOptionIndexRange)
	}

	q := questionByID(snap, view.Current.ID)
	fb, err := svc.SubmitAnswer(view.ID, q.CorrectIndex)
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}

	// double submit must not change the recorded answer or the score
	if _, err := svc.SubmitAnswer(view.ID, (q.CorrectIndex+1)%model.OptionCount); !errors.Is(err, util.ErrAlreadyAnswered) {
		t.Errorf("double submit error = %v, want %v", err, util.ErrAlreadyAnswered)
	}
	after, err := svc.Get(view.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if after.Score != fb.Score {
		t.Errorf("score changed by rejected submit: %d -> %d", fb.Score, after.Score)
	}
	if !after.Answered {
		t.Error("Answered = false after accepted submit")
	}
}

func TestAdvanceRequiresAnswer(t *testing.T) {
	svc := newTestService()
	view, err := svc.StartSession(testSnapshot(), StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := svc.Advance(view.ID); !errors.Is(err, util.ErrAnswerRequired) {
		t.Errorf("Advance() error = %v, want %v", err, util.ErrAnswerRequired)
	}
	if got, _ := svc.Get(view.ID); got.Cursor != 0 {
		t.Errorf("cursor moved to %d after rejected advance", got.Cursor)
	}
}

func TestCompletedSessionRejectsFurtherPlay(t *testing.T) {
	snap := &model.ContentSnapshot{
		Courses:   []model.Course{{UUIDBase: model.UUIDBase{ID: "c1"}, Code: "UAS-101", Name: "Regulations"}},
		Questions: []model.Question{testQuestion("q1", "c1", model.VersionA, model.DifficultyEasy, 0)},
	}
	svc := newTestService()
	view, err := svc.StartSession(snap, StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := svc.SubmitAnswer(view.ID, 0); err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if view, err = svc.Advance(view.ID); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if view.State != SessionCompleted {
		t.Fatalf("State = %q, want %q", view.State, SessionCompleted)
	}

	if _, err := svc.SubmitAnswer(view.ID, 0); !errors.Is(err, util.ErrSessionCompleted) {
		t.Errorf("submit after completion error = %v, want %v", err, util.ErrSessionCompleted)
	}
	if _, err := svc.Advance(view.ID); !errors.Is(err, util.ErrSessionCompleted) {
		t.Errorf("advance after completion error = %v, want %v", err, util.ErrSessionCompleted)
	}
}

func TestResultBeforeCompletion(t *testing.T) {
	svc := newTestService()
	view, err := svc.StartSession(testSnapshot(), StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := svc.Result(view.ID); !errors.Is(err, util.ErrSessionInProgress) {
		t.Errorf("Result() error = %v, want %v", err, util.ErrSessionInProgress)
	}
}

func TestAbandon(t *testing.T) {
	svc := newTestService()

	// unknown id is a no-op
	svc.Abandon("nope")

	view, err := svc.StartSession(testSnapshot(), StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	svc.Abandon(view.ID)
	if _, err := svc.Get(view.ID); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("Get() after abandon error = %v, want %v", err, util.ErrSessionNotFound)
	}
	// abandoning twice is fine too
	svc.Abandon(view.ID)
}

// collectOrder walks a whole session and records the question ids in the order
// they were presented.
func collectOrder(t *testing.T, svc *QuizSessionService, snap *model.ContentSnapshot) []string {
	t.Helper()
	view, err := svc.StartSession(snap, StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	var order []string
	for view.State == SessionInProgress {
		order = append(order, view.Current.ID)
		if _, err := svc.SubmitAnswer(view.ID, 0); err != nil {
			t.Fatalf("SubmitAnswer() error = %v", err)
		}
		view, err = svc.Advance(view.ID)
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
	}
	return order
}

func TestShuffleIsSeedDeterministic(t *testing.T) {
	snap := testSnapshot()
	a := collectOrder(t, NewQuizSessionServiceWithSource(rand.NewSource(42)), snap)
	b := collectOrder(t, NewQuizSessionServiceWithSource(rand.NewSource(42)), snap)
	if len(a) != 4 || len(b) != 4 {
		t.Fatalf("walked %d and %d questions, want 4", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different orders: %v vs %v", a, b)
		}
	}
}

func TestSessionIsolatedFromSnapshotMutation(t *testing.T) {
	snap := testSnapshot()
	svc := newTestService()
	view, err := svc.StartSession(snap, StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	firstID := view.Current.ID
	firstText := view.Current.Text

	// simulate admin edits landing in a newer snapshot
	snap.Courses[0].Name = "Renamed"
	for i := range snap.Questions {
		snap.Questions[i].Text = "rewritten"
	}
	snap.Questions = snap.Questions[:1]

	after, err := svc.Get(view.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if after.Course.Name != "Regulations" {
		t.Errorf("session course name = %q, want the start-time copy", after.Course.Name)
	}
	if after.Total != 4 {
		t.Errorf("session total = %d, want 4", after.Total)
	}
	if after.Current.ID != firstID || after.Current.Text != firstText {
		t.Errorf("session question changed: %q / %q", after.Current.ID, after.Current.Text)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	snap := testSnapshot()
	svc := newTestService()
	first, err := svc.StartSession(snap, StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	second, err := svc.StartSession(snap, StartSessionRequest{CourseID: "c1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("two sessions share an id")
	}

	q := questionByID(snap, first.Current.ID)
	if _, err := svc.SubmitAnswer(first.ID, q.CorrectIndex); err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	got, err := svc.Get(second.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Score != 0 || got.Answered {
		t.Errorf("second session affected by first: score=%d answered=%v", got.Score, got.Answered)
	}
}
