package service

import (
	"context"
	"sync"
	"time"

	"uas_practice_backend/internal/model"
	"uas_practice_backend/pkg/logger"
	"uas_practice_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type CourseLister interface {
	ListAll() ([]model.Course, error)
}

type QuestionLister interface {
	ListAll() ([]model.Question, error)
}

// Changefeed delivers catalog change events. The Redis notifier implements it
// in production; tests drive it with a plain channel.
type Changefeed interface {
	Subscribe(ctx context.Context) <-chan struct{}
}

// ContentRepository keeps an in-memory mirror of the catalog and republishes a
// complete snapshot on every change event. It is the single writer of the
// snapshot; everything else only reads.
//
// The first snapshot is published only once both collections have loaded
// successfully — subscribers never see courses without questions or the other
// way round. After that, any change to either collection produces a new,
// complete snapshot.
type ContentRepository struct {
	courses   CourseLister
	questions QuestionLister
	feed      Changefeed

	retryInterval time.Duration

	mu     sync.RWMutex
	latest *model.ContentSnapshot
	subs   map[chan *model.ContentSnapshot]struct{}
}

func NewContentRepository(courses CourseLister, questions QuestionLister, feed Changefeed) *ContentRepository {
	return &ContentRepository{
		courses:       courses,
		questions:     questions,
		feed:          feed,
		retryInterval: 5 * time.Second,
		subs:          make(map[chan *model.ContentSnapshot]struct{}),
	}
}

// Latest returns the most recent snapshot, or false while none has been
// published yet (store not reachable, or Run not started).
func (r *ContentRepository) Latest() (*model.ContentSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.latest != nil
}

// Subscribe registers a latest-wins snapshot channel. The current snapshot, if
// any, is delivered immediately; a subscriber that lags only ever misses
// intermediate snapshots, never the newest one.
func (r *ContentRepository) Subscribe() chan *model.ContentSnapshot {
	ch := make(chan *model.ContentSnapshot, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[ch] = struct{}{}
	if r.latest != nil {
		ch <- r.latest
	}
	return ch
}

func (r *ContentRepository) Unsubscribe(ch chan *model.ContentSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[ch]; ok {
		delete(r.subs, ch)
		close(ch)
	}
}

// Run loads the initial snapshot and then reloads on every changefeed event
// until ctx is cancelled. Load errors never clear the mirror: the last-known
// snapshot stays published and the loop keeps going.
func (r *ContentRepository) Run(ctx context.Context) {
	events := r.feed.Subscribe(ctx)

	// The catalog store may not be reachable yet at startup. Keep retrying
	// quietly; subscribers simply see nothing until the first complete load.
	for {
		if err := r.reload(); err == nil {
			break
		} else {
			logger.Log.Warn("initial catalog load failed, retrying", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retryInterval):
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				// transport gone; restarting it is the transport's problem,
				// the mirror keeps serving the last snapshot
				logger.Log.Warn("catalog changefeed closed, snapshot frozen")
				return
			}
			if err := r.reload(); err != nil {
				logger.Log.Error("catalog reload failed, keeping last snapshot", zap.Error(err))
			}
		}
	}
}

func (r *ContentRepository) reload() error {
	courses, err := r.courses.ListAll()
	if err != nil {
		return err
	}
	questions, err := r.questions.ListAll()
	if err != nil {
		return err
	}

	snap := &model.ContentSnapshot{Courses: courses, Questions: questions}

	r.mu.Lock()
	r.latest = snap
	for ch := range r.subs {
		// latest-wins: drop the stale pending snapshot if the subscriber lags
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
	r.mu.Unlock()

	monitoring.CatalogSnapshotsPublished.Inc()
	return nil
}
