package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/projectmgmt/backend/internal/domain/task"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StatisticsProvider reports portfolio-wide task counts
type StatisticsProvider interface {
	Statistics(ctx context.Context, now time.Time) (task.Statistics, error)
}

// TaskMetrics periodically publishes task totals as gauges
type TaskMetrics struct {
	total     *Gauge
	completed *Gauge
	overdue   *Gauge
	logger    *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewTaskMetrics creates the task gauges on meter
func NewTaskMetrics(meter metric.Meter, logger *zap.Logger) (*TaskMetrics, error) {
	total, err := NewGauge(meter, "tasks.total", "Tasks across all projects", "{task}")
	if err != nil {
		return nil, err
	}
	completed, err := NewGauge(meter, "tasks.completed", "Completed tasks", "{task}")
	if err != nil {
		return nil, err
	}
	overdue, err := NewGauge(meter, "tasks.overdue", "Open tasks past their due date", "{task}")
	if err != nil {
		return nil, err
	}
	return &TaskMetrics{
		total:     total,
		completed: completed,
		overdue:   overdue,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}, nil
}

// Collect records one snapshot
func (m *TaskMetrics) Collect(ctx context.Context, provider StatisticsProvider) {
	stats, err := provider.Statistics(ctx, time.Now())
	if err != nil {
		m.logger.Warn("Failed to collect task statistics", zap.Error(err))
		return
	}
	m.total.Record(ctx, stats.TotalTasks)
	m.completed.Record(ctx, stats.CompletedTasks)
	m.overdue.Record(ctx, stats.OverdueTasks)
}

// StartPeriodicCollection collects every interval until ctx ends or Stop
func (m *TaskMetrics) StartPeriodicCollection(ctx context.Context, provider StatisticsProvider, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		m.Collect(ctx, provider)
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.Collect(ctx, provider)
			}
		}
	}()
}

// Stop ends periodic collection and waits for the collector to exit
func (m *TaskMetrics) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}
