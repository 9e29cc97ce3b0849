package telemetry

import (
	"context"
	"time"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
)

// Recorder queue defaults
const (
	DefaultQueueSize    = 1024
	defaultWriteTimeout = 5 * time.Second
	drainDeadline       = 10 * time.Second
)

// SessionStore is the persistence interface consumed by the recorder.
type SessionStore interface {
	InsertSession(ctx context.Context, session *domain.CleaningSession) error
	InsertSegmentDetection(ctx context.Context, detection *domain.SegmentDetection) error
	InsertWireDetection(ctx context.Context, sessionID, dom string, detection *domain.WireDetection) error
}

// Logger defines the logging interface used by the recorder.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
}

type recordKind int

const (
	recordSession recordKind = iota
	recordSegment
	recordWire
)

type record struct {
	kind      recordKind
	session   *domain.CleaningSession
	segment   *domain.SegmentDetection
	wire      *domain.WireDetection
	sessionID string
	domain    string
}

// Recorder persists telemetry facts through a bounded in-process queue with
// a single consuming worker. Callers never wait on the underlying storage
// write: when the queue is full the oldest record is dropped to make room.
// Writes are best-effort; failures are logged and dropped, never surfaced.
type Recorder struct {
	queue    chan record
	stop     chan struct{}
	done     chan struct{}
	store    SessionStore
	logger   Logger
	provider *Provider
}

// NewRecorder creates and starts a recorder with the given queue size.
func NewRecorder(store SessionStore, provider *Provider, logger Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	r := &Recorder{
		queue:    make(chan record, queueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		store:    store,
		logger:   logger,
		provider: provider,
	}
	go r.run()
	return r
}

// RecordSession enqueues a cleaning session. Non-blocking.
func (r *Recorder) RecordSession(session *domain.CleaningSession) {
	r.enqueue(record{kind: recordSession, session: session})
}

// RecordSegmentDetection enqueues a removed-segment detection. Non-blocking.
func (r *Recorder) RecordSegmentDetection(detection *domain.SegmentDetection) {
	r.enqueue(record{kind: recordSegment, segment: detection})
}

// RecordWireDetection enqueues a wire service detection. Non-blocking.
func (r *Recorder) RecordWireDetection(sessionID, dom string, detection *domain.WireDetection) {
	r.enqueue(record{kind: recordWire, wire: detection, sessionID: sessionID, domain: dom})
}

// enqueue adds a record without ever blocking the caller. On a full queue
// the oldest record is evicted first (drop-oldest policy); if the queue is
// still full the new record is dropped.
func (r *Recorder) enqueue(rec record) {
	select {
	case r.queue <- rec:
	default:
		select {
		case <-r.queue:
			if r.provider != nil {
				r.provider.IncrementDropped()
			}
		default:
		}
		select {
		case r.queue <- rec:
		default:
			if r.provider != nil {
				r.provider.IncrementDropped()
			}
		}
	}
	if r.provider != nil {
		r.provider.SetQueueDepth(len(r.queue))
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for {
		select {
		case rec := <-r.queue:
			r.write(rec)
			if r.provider != nil {
				r.provider.SetQueueDepth(len(r.queue))
			}
		case <-r.stop:
			r.drain()
			return
		}
	}
}

// drain flushes whatever is queued at shutdown, bounded by a deadline so a
// dead database cannot hang process exit.
func (r *Recorder) drain() {
	deadline := time.Now().Add(drainDeadline)
	for {
		select {
		case rec := <-r.queue:
			if time.Now().After(deadline) {
				r.logger.Warn("telemetry drain deadline reached, dropping remaining records",
					"remaining", len(r.queue))
				return
			}
			r.write(rec)
		default:
			return
		}
	}
}

func (r *Recorder) write(rec record) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
	defer cancel()

	var err error
	switch rec.kind {
	case recordSession:
		err = r.store.InsertSession(ctx, rec.session)
	case recordSegment:
		err = r.store.InsertSegmentDetection(ctx, rec.segment)
	case recordWire:
		err = r.store.InsertWireDetection(ctx, rec.sessionID, rec.domain, rec.wire)
	}

	if err != nil {
		// Losing a telemetry row must never fail an article extraction.
		r.logger.Warn("telemetry write failed, record dropped", "error", err)
		if r.provider != nil {
			r.provider.IncrementWriteFailures()
		}
	}
}

// Close stops the worker and drains the queue with a deadline.
func (r *Recorder) Close() {
	close(r.stop)
	<-r.done
	r.logger.Info("telemetry recorder stopped")
}
