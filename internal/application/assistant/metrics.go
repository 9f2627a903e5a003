package assistant

import (
	"context"
	"strconv"
	"time"

	"github.com/projectmgmt/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
)

// ToolOutcome labels how a single tool call ended
type ToolOutcome string

const (
	ToolOutcomeOK         ToolOutcome = "ok"
	ToolOutcomeUnresolved ToolOutcome = "unresolved"
	ToolOutcomeError      ToolOutcome = "error"
)

// Metrics records relay activity
type Metrics interface {
	// RecordConversation is called once per accepted message with its final state
	RecordConversation(ctx context.Context, state State)
	// RecordToolCall is called once per tool call requested by the model
	RecordToolCall(ctx context.Context, tool string, outcome ToolOutcome)
	// RecordModelCall is called after every completion request; round is 1 or 2
	RecordModelCall(ctx context.Context, round int, d time.Duration, err error)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) RecordConversation(context.Context, State)                  {}
func (NopMetrics) RecordToolCall(context.Context, string, ToolOutcome)        {}
func (NopMetrics) RecordModelCall(context.Context, int, time.Duration, error) {}

// MeterMetrics records relay activity as OpenTelemetry instruments
type MeterMetrics struct {
	conversations *telemetry.Counter
	toolCalls     *telemetry.Counter
	modelCalls    *telemetry.Counter
	modelLatency  *telemetry.Histogram
}

var _ Metrics = (*MeterMetrics)(nil)

// NewMeterMetrics creates the relay instruments on meter
func NewMeterMetrics(meter metric.Meter) (*MeterMetrics, error) {
	conversations, err := telemetry.NewCounter(meter, "assistant.conversations", "Chat messages handled, by final state", "{conversation}")
	if err != nil {
		return nil, err
	}
	toolCalls, err := telemetry.NewCounter(meter, "assistant.tool_calls", "Tool calls requested by the model, by tool and outcome", "{call}")
	if err != nil {
		return nil, err
	}
	modelCalls, err := telemetry.NewCounter(meter, "assistant.model_calls", "Completion requests, by round and status", "{call}")
	if err != nil {
		return nil, err
	}
	modelLatency, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "assistant.model_call.duration",
		Description: "Completion request latency",
		Unit:        "s",
		Boundaries:  telemetry.ModelDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &MeterMetrics{
		conversations: conversations,
		toolCalls:     toolCalls,
		modelCalls:    modelCalls,
		modelLatency:  modelLatency,
	}, nil
}

func (m *MeterMetrics) RecordConversation(ctx context.Context, state State) {
	m.conversations.Inc(ctx, telemetry.AttrState.String(string(state)))
}

func (m *MeterMetrics) RecordToolCall(ctx context.Context, tool string, outcome ToolOutcome) {
	m.toolCalls.Inc(ctx, telemetry.AttrTool.String(tool), telemetry.AttrOutcome.String(string(outcome)))
}

func (m *MeterMetrics) RecordModelCall(ctx context.Context, round int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r := telemetry.AttrRound.String(strconv.Itoa(round))
	m.modelCalls.Inc(ctx, r, telemetry.AttrStatus.String(status))
	m.modelLatency.RecordDuration(ctx, d, r)
}
