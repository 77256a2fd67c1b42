package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"uas_practice_backend/internal/model"
)

type fakeCourseLister struct {
	mu      sync.Mutex
	courses []model.Course
	err     error
}

func (f *fakeCourseLister) ListAll() ([]model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Course(nil), f.courses...), nil
}

func (f *fakeCourseLister) set(courses []model.Course, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.courses, f.err = courses, err
}

type fakeQuestionLister struct {
	mu        sync.Mutex
	questions []model.Question
	err       error
}

func (f *fakeQuestionLister) ListAll() ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Question(nil), f.questions...), nil
}

func (f *fakeQuestionLister) set(questions []model.Question, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions, f.err = questions, err
}

type fakeChangefeed struct {
	ch chan struct{}
}

func (f *fakeChangefeed) Subscribe(ctx context.Context) <-chan struct{} {
	return f.ch
}

func newTestMirror() (*ContentRepository, *fakeCourseLister, *fakeQuestionLister, *fakeChangefeed) {
	courses := &fakeCourseLister{courses: []model.Course{{UUIDBase: model.UUIDBase{ID: "c1"}, Code: "UAS-101", Name: "Regulations"}}}
	questions := &fakeQuestionLister{questions: []model.Question{testQuestion("q1", "c1", model.VersionA, model.DifficultyEasy, 0)}}
	feed := &fakeChangefeed{ch: make(chan struct{}, 1)}
	r := NewContentRepository(courses, questions, feed)
	r.retryInterval = 5 * time.Millisecond
	return r, courses, questions, feed
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLatestBeforeFirstLoad(t *testing.T) {
	r, _, _, _ := newTestMirror()
	if snap, ok := r.Latest(); ok || snap != nil {
		t.Fatalf("Latest() = %v, %v before any load", snap, ok)
	}
}

func TestReloadPublishesCompleteSnapshot(t *testing.T) {
	r, _, _, _ := newTestMirror()
	if err := r.reload(); err != nil {
		t.Fatalf("reload() error = %v", err)
	}
	snap, ok := r.Latest()
	if !ok {
		t.Fatal("Latest() not available after reload")
	}
	if len(snap.Courses) != 1 || len(snap.Questions) != 1 {
		t.Errorf("snapshot has %d courses, %d questions; want 1 and 1", len(snap.Courses), len(snap.Questions))
	}
}

func TestFirstSnapshotNeedsBothCollections(t *testing.T) {
	r, _, questions, _ := newTestMirror()
	questions.set(nil, errors.New("store down"))
	if err := r.reload(); err == nil {
		t.Fatal("reload() succeeded with the question store down")
	}
	if _, ok := r.Latest(); ok {
		t.Fatal("partial load published a snapshot")
	}
}

func TestReloadErrorKeepsLastSnapshot(t *testing.T) {
	r, courses, _, _ := newTestMirror()
	if err := r.reload(); err != nil {
		t.Fatalf("reload() error = %v", err)
	}
	before, _ := r.Latest()

	courses.set(nil, errors.New("store down"))
	if err := r.reload(); err == nil {
		t.Fatal("reload() succeeded with the course store down")
	}
	after, ok := r.Latest()
	if !ok || after != before {
		t.Error("failed reload disturbed the last-known snapshot")
	}
}

func TestSubscribeDeliversCurrentSnapshot(t *testing.T) {
	r, _, _, _ := newTestMirror()
	if err := r.reload(); err != nil {
		t.Fatalf("reload() error = %v", err)
	}
	ch := r.Subscribe()
	defer r.Unsubscribe(ch)

	select {
	case snap := <-ch:
		if latest, _ := r.Latest(); snap != latest {
			t.Error("delivered snapshot is not the current one")
		}
	default:
		t.Fatal("no immediate delivery of the current snapshot")
	}
}

func TestSubscriberOnlySeesNewestSnapshot(t *testing.T) {
	r, _, _, _ := newTestMirror()
	ch := r.Subscribe()
	defer r.Unsubscribe(ch)

	// two reloads without the subscriber draining in between
	if err := r.reload(); err != nil {
		t.Fatalf("reload() error = %v", err)
	}
	if err := r.reload(); err != nil {
		t.Fatalf("reload() error = %v", err)
	}

	latest, _ := r.Latest()
	select {
	case snap := <-ch:
		if snap != latest {
			t.Error("lagging subscriber received a stale snapshot")
		}
	default:
		t.Fatal("no snapshot pending after reloads")
	}
	select {
	case <-ch:
		t.Error("more than one snapshot pending; intermediate one was not dropped")
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	r, _, _, _ := newTestMirror()
	ch := r.Subscribe()
	r.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}
	// double unsubscribe must not panic
	r.Unsubscribe(ch)
}

func TestRunRetriesInitialLoad(t *testing.T) {
	r, courses, _, _ := newTestMirror()
	courses.set(nil, errors.New("store not up yet"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	time.Sleep(20 * time.Millisecond)
	if _, ok := r.Latest(); ok {
		t.Fatal("snapshot published while the store was down")
	}

	courses.set([]model.Course{{UUIDBase: model.UUIDBase{ID: "c1"}, Code: "UAS-101", Name: "Regulations"}}, nil)
	waitFor(t, "first snapshot after store recovery", func() bool {
		_, ok := r.Latest()
		return ok
	})
}

func TestRunReloadsOnChangeEvent(t *testing.T) {
	r, courses, _, feed := newTestMirror()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	waitFor(t, "initial snapshot", func() bool {
		_, ok := r.Latest()
		return ok
	})

	courses.set([]model.Course{
		{UUIDBase: model.UUIDBase{ID: "c1"}, Code: "UAS-101", Name: "Regulations"},
		{UUIDBase: model.UUIDBase{ID: "c2"}, Code: "UAS-201", Name: "Meteorology"},
	}, nil)
	feed.ch <- struct{}{}

	waitFor(t, "snapshot reflecting the change", func() bool {
		snap, ok := r.Latest()
		return ok && len(snap.Courses) == 2
	})
}

func TestClosedChangefeedFreezesSnapshot(t *testing.T) {
	r, _, _, feed := newTestMirror()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	waitFor(t, "initial snapshot", func() bool {
		_, ok := r.Latest()
		return ok
	})

	close(feed.ch)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the changefeed closed")
	}
	if _, ok := r.Latest(); !ok {
		t.Error("snapshot lost after the changefeed closed")
	}
}
