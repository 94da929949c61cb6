package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coursework-api/pkg/events"
	"github.com/noah-isme/coursework-api/pkg/jobs"
)

const publishTimeout = 10 * time.Second

// EventService hands domain events to a background queue that publishes them.
// Publishing never blocks or fails the request that produced the event.
type EventService struct {
	publisher events.Publisher
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewEventService wires publisher behind a worker queue.
func NewEventService(publisher events.Publisher, metrics *MetricsService, logger *zap.Logger, cfg jobs.QueueConfig) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Logger = logger
	s := &EventService{publisher: publisher, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("events", s.handle, cfg)
	return s
}

// Start launches the publishing workers.
func (s *EventService) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains workers and closes the publisher.
func (s *EventService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn("close event publisher", zap.Error(err))
	}
}

// Emit queues ev for publishing.
func (s *EventService) Emit(ev events.Event) {
	if s == nil {
		return
	}
	if err := s.queue.Enqueue(jobs.Job{ID: ev.ID, Type: ev.Type, Payload: ev}); err != nil {
		s.metrics.RecordEvent(ev.Type, err)
		s.logger.Warn("dropping event", zap.String("type", ev.Type), zap.String("id", ev.ID), zap.Error(err))
	}
}

func (s *EventService) handle(ctx context.Context, job jobs.Job) error {
	ev, ok := job.Payload.(events.Event)
	if !ok {
		s.logger.Error("unexpected event payload", zap.String("job_id", job.ID), zap.String("payload", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := s.publisher.Publish(ctx, ev)
	s.metrics.RecordEvent(ev.Type, err)
	return err
}
