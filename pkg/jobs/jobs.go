// Package jobs tracks analysis work through a small status machine and
// runs batches of clips with bounded parallelism.
//
// A job moves pending -> processing -> completed or failed; cancellation
// is allowed while the job is pending or processing. Transitions are
// validated against the current status, so a result arriving for a job
// cancelled mid-flight is discarded rather than resurrecting it.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/forensics"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/kv"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

var (
	// ErrNotFound is returned when a job id is unknown to the queue.
	ErrNotFound = errors.New("jobs: job not found")

	// ErrCancelled is returned by MarkProcessing for a job cancelled
	// before work started.
	ErrCancelled = errors.New("jobs: job cancelled")
)

// Job is one unit of analysis work.
type Job struct {
	ID          string              `json:"job_id" msgpack:"job_id"`
	AssetID     string              `json:"asset_id" msgpack:"asset_id"`
	AudioPath   string              `json:"audio_path" msgpack:"audio_path"`
	Status      Status              `json:"status" msgpack:"status"`
	Result      *forensics.Document `json:"result,omitempty" msgpack:"result,omitempty"`
	Error       string              `json:"error,omitempty" msgpack:"error,omitempty"`
	CreatedAt   time.Time           `json:"created_at" msgpack:"created_at"`
	CompletedAt time.Time           `json:"completed_at,omitzero" msgpack:"completed_at,omitempty"`

	seq uint64
}

// ListQuery filters and pages List results.
type ListQuery struct {
	// Status keeps only jobs in this state. Empty keeps all.
	Status Status

	// Limit caps the result count. Non-positive means 100.
	Limit int

	// Offset skips that many jobs after filtering and ordering.
	Offset int
}

// Queue is an in-memory job registry. It is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	nextSeq uint64
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{jobs: make(map[string]*Job)}
}

// Submit registers a new pending job and returns a snapshot of it.
func (q *Queue) Submit(assetID, audioPath string) Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextSeq++
	j := &Job{
		ID:        uuid.NewString(),
		AssetID:   assetID,
		AudioPath: audioPath,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
		seq:       q.nextSeq,
	}
	q.jobs[j.ID] = j
	return snapshot(j)
}

// Get returns a snapshot of a job by id.
func (q *Queue) Get(id string) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	return snapshot(j), true
}

// MarkProcessing moves a pending job to processing. It fails with
// ErrCancelled when the job was cancelled before work started, so a
// runner can skip it without analyzing.
func (q *Queue) MarkProcessing(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return ErrNotFound
	}
	switch j.Status {
	case StatusPending:
		j.Status = StatusProcessing
		return nil
	case StatusCancelled:
		return ErrCancelled
	default:
		return fmt.Errorf("jobs: cannot start job in status %q", j.Status)
	}
}

// Complete stores a result and marks the job completed. The bool reports
// whether the result was kept: a job already in a terminal state (for
// example cancelled while the analysis ran) discards the result.
func (q *Queue) Complete(id string, doc *forensics.Document) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return false, ErrNotFound
	}
	if j.Status.Terminal() {
		return false, nil
	}
	j.Status = StatusCompleted
	j.Result = doc
	j.CompletedAt = time.Now().UTC()
	return true, nil
}

// Fail records an error and marks the job failed. The bool reports
// whether the transition happened; terminal jobs are left untouched.
func (q *Queue) Fail(id, msg string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return false, ErrNotFound
	}
	if j.Status.Terminal() {
		return false, nil
	}
	j.Status = StatusFailed
	j.Error = msg
	j.CompletedAt = time.Now().UTC()
	return true, nil
}

// Cancel moves a pending or processing job to cancelled and reports
// whether it did. Unknown and already-terminal jobs return false.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok || j.Status.Terminal() {
		return false
	}
	j.Status = StatusCancelled
	j.CompletedAt = time.Now().UTC()
	return true
}

// List returns job snapshots, newest first, filtered and paged by the
// query.
func (q *Queue) List(lq ListQuery) []Job {
	limit := lq.Limit
	if limit <= 0 {
		limit = 100
	}

	q.mu.Lock()
	matched := make([]*Job, 0, len(q.jobs))
	for _, j := range q.jobs {
		if lq.Status != "" && j.Status != lq.Status {
			continue
		}
		matched = append(matched, j)
	}
	sort.Slice(matched, func(i, k int) bool {
		return matched[i].seq > matched[k].seq
	})

	if lq.Offset >= len(matched) {
		q.mu.Unlock()
		return nil
	}
	matched = matched[lq.Offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]Job, len(matched))
	for i, j := range matched {
		out[i] = snapshot(j)
	}
	q.mu.Unlock()
	return out
}

// ActiveCount counts pending and processing jobs.
func (q *Queue) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, j := range q.jobs {
		if j.Status == StatusPending || j.Status == StatusProcessing {
			n++
		}
	}
	return n
}

// Cleanup drops terminal jobs that finished more than maxAge ago and
// returns how many were removed.
func (q *Queue) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	q.mu.Lock()
	defer q.mu.Unlock()
	removed := 0
	for id, j := range q.jobs {
		if j.Status.Terminal() && !j.CompletedAt.IsZero() && j.CompletedAt.Before(cutoff) {
			delete(q.jobs, id)
			removed++
		}
	}
	return removed
}

// Archive writes every terminal job to the store as a msgpack record
// under "job:{id}", in one batch, and returns how many were written.
// The in-memory queue is left unchanged; pair with Cleanup to drain it.
func (q *Queue) Archive(ctx context.Context, store kv.Store) (int, error) {
	q.mu.Lock()
	var entries []kv.Entry
	for _, j := range q.jobs {
		if !j.Status.Terminal() {
			continue
		}
		data, err := msgpack.Marshal(snapshot(j))
		if err != nil {
			q.mu.Unlock()
			return 0, fmt.Errorf("jobs archive: %w", err)
		}
		entries = append(entries, kv.Entry{Key: kv.Key{"job", j.ID}, Value: data})
	}
	q.mu.Unlock()

	if len(entries) == 0 {
		return 0, nil
	}
	if err := store.BatchSet(ctx, entries); err != nil {
		return 0, fmt.Errorf("jobs archive: %w", err)
	}
	return len(entries), nil
}

// snapshot copies a job for handing outside the lock. The result
// document is copied by value so callers cannot mutate queue state.
func snapshot(j *Job) Job {
	cp := *j
	if j.Result != nil {
		doc := *j.Result
		cp.Result = &doc
	}
	return cp
}
