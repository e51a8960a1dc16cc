package recognizer

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
)

type Hypothesis struct {
	Text  string `json:"text"`
	Score int32  `json:"score"`
}

// Job is one asynchronous decode. Its samples are borrowed: the caller keeps
// them unchanged until Done is closed.
type Job struct {
	samples   []int16
	submitted chan struct{}
	done      chan struct{}

	hyp     Hypothesis
	err     error
	skipped bool
}

func newJob(samples []int16) *Job {
	return &Job{
		samples:   samples,
		submitted: make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (j *Job) finish(h Hypothesis, err error, skipped bool) {
	j.hyp = h
	j.err = err
	j.skipped = skipped
	j.samples = nil
	close(j.done)
}

func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result is valid once Done is closed.
func (j *Job) Result() (Hypothesis, error) {
	return j.hyp, j.err
}

// Skipped reports whether the job was dropped because the session was not
// processing. Valid once Done is closed.
func (j *Job) Skipped() bool {
	return j.skipped
}

func (j *Job) Wait(ctx context.Context) (Hypothesis, error) {
	select {
	case <-j.done:
		return j.hyp, j.err
	case <-ctx.Done():
		return Hypothesis{}, ctx.Err()
	}
}

// decodeQueue runs jobs one at a time in submission order. The worker
// goroutine exits when the queue drains and is restarted by the next submit.
type decodeQueue struct {
	run func(*Job)

	mu      sync.Mutex
	jobs    deque.Deque[*Job]
	tail    *Job
	running bool
	closed  bool
}

func newDecodeQueue(run func(*Job)) *decodeQueue {
	return &decodeQueue{run: run}
}

func (q *decodeQueue) submit(j *Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.jobs.PushBack(j)
	q.tail = j
	if !q.running {
		q.running = true
		go q.work()
	}
	return true
}

func (q *decodeQueue) work() {
	for {
		q.mu.Lock()
		if q.jobs.Len() == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		j := q.jobs.PopFront()
		q.mu.Unlock()

		q.run(j)
	}
}

// last returns the most recently submitted job.
func (q *decodeQueue) last() *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tail
}

// close rejects further submissions. Queued jobs still run and are expected
// to notice the session is gone.
func (q *decodeQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
