package journal

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/spyglass/pkg/events"
)

// RecorderConfig configures the async recorder.
type RecorderConfig struct {
	// Buffer is the size of the async write channel. Default: 1000.
	Buffer int

	// WriteTimeout bounds each storage write. Default: 5 seconds.
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Buffer:       1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder journals events asynchronously. Record never blocks: when
// the buffer is full the event is dropped and counted.
type Recorder struct {
	storage    Storage
	config     *RecorderConfig
	recordChan chan *Record
	done       chan struct{}
	wg         sync.WaitGroup
	logger     *slog.Logger

	dropped atomic.Int64
}

// NewRecorder creates a recorder draining into the given storage and
// starts its background worker.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *Record, config.Buffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "journal.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("journal recorder started",
		"buffer", config.Buffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues an event for journaling. It satisfies the pipeline's
// sink contract and must never block the emitting request.
func (r *Recorder) Record(ev *events.Event) {
	body, err := ev.Marshal()
	if err != nil {
		r.logger.Error("failed to serialize event for journaling", "error", err)
		return
	}

	eventTime, _ := time.Parse(time.RFC3339Nano, ev.Timestamp)

	rec := &Record{
		ID:         uuid.New().String(),
		Source:     string(ev.Source),
		Method:     ev.Method,
		URL:        ev.URL,
		Status:     ev.Status,
		Body:       body,
		EventTime:  eventTime,
		RecordedAt: time.Now(),
	}

	select {
	case r.recordChan <- rec:
	default:
		dropped := r.dropped.Add(1)
		r.logger.Warn("journal buffer full, dropping event",
			"source", rec.Source,
			"dropped_total", dropped,
		)
	}
}

// Dropped returns the number of events dropped because the buffer was
// full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops the recorder, draining buffered records before returning.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()

	r.logger.Info("journal recorder stopped", "dropped_total", r.dropped.Load())
	return nil
}

// worker drains the record channel into storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.recordChan:
			r.writeRecord(rec)

		case <-r.done:
			for {
				select {
				case rec := <-r.recordChan:
					r.writeRecord(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, rec); err != nil {
		r.logger.Error("failed to store journal record",
			"record_id", rec.ID,
			"source", rec.Source,
			"error", err,
		)
		return
	}

	r.logger.Debug("event journaled", "record_id", rec.ID, "source", rec.Source)
}
