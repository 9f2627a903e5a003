package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/projectmgmt/backend/internal/domain/shared"
	"github.com/projectmgmt/backend/internal/infrastructure/logger"
	"github.com/projectmgmt/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// DefaultModel is the tool-use model the assistant was tuned against
const DefaultModel = "llama3-groq-70b-8192-tool-use-preview"

// DefaultMaxTokens caps the first completion
const DefaultMaxTokens = 1001

// Options configures a Relay
type Options struct {
	Model     string
	MaxTokens int
	// ModelTimeout bounds each completion request; zero means no extra deadline
	ModelTimeout time.Duration
	// ParallelTools runs the calls of one round concurrently
	ParallelTools bool
	Policy        Policy
}

// Option customises a Relay
type Option func(*Relay)

// WithMetrics sets the metrics recorder
func WithMetrics(m Metrics) Option {
	return func(r *Relay) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithTracer sets the tracer used for conversation and model-call spans
func WithTracer(t trace.Tracer) Option {
	return func(r *Relay) {
		if t != nil {
			r.tracer = t
		}
	}
}

// Relay answers a user question with at most two model calls and one round
// of tool execution in between
type Relay struct {
	model    ChatModel
	data     DataSource
	resolver Resolver
	opts     Options
	metrics  Metrics
	tracer   trace.Tracer
}

// NewRelay creates a new Relay. resolver may be nil, in which case names
// are never resolved.
func NewRelay(model ChatModel, data DataSource, resolver Resolver, opts Options, options ...Option) *Relay {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	r := &Relay{
		model:    model,
		data:     data,
		resolver: resolver,
		opts:     opts,
		metrics:  NopMetrics{},
		tracer:   noop.NewTracerProvider().Tracer("assistant"),
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Result is the outcome of one Chat call
type Result struct {
	Response  string
	State     State
	ToolCalls int
}

// Chat validates message and runs the conversation. Only validation errors
// are returned; every later failure is logged and turned into
// FallbackResponse.
func (r *Relay) Chat(ctx context.Context, message string) (*Result, error) {
	if strings.TrimSpace(message) == "" {
		return nil, shared.NewValidationError("message is required")
	}

	ctx, span := r.tracer.Start(ctx, "assistant.chat")
	defer span.End()

	c := &conversation{relay: r, state: StateAwaitingFirstResponse}
	answer, err := c.run(ctx, message)

	log := logger.L(ctx).With(
		zap.String("state", string(c.state)),
		zap.Int("tool_calls", c.toolCalls),
	)
	if err != nil {
		failedIn := c.state
		c.transition(ctx, StateError)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("Assistant conversation failed",
			zap.String("failed_in", string(failedIn)),
			zap.Error(err),
		)
		r.metrics.RecordConversation(ctx, StateError)
		return &Result{Response: FallbackResponse, State: StateError, ToolCalls: c.toolCalls}, nil
	}

	span.SetAttributes(
		attribute.String("assistant.state", string(c.state)),
		attribute.Int("assistant.tool_calls", c.toolCalls),
	)
	log.Info("Assistant conversation finished")
	r.metrics.RecordConversation(ctx, c.state)
	return &Result{Response: answer, State: c.state, ToolCalls: c.toolCalls}, nil
}

// conversation holds the per-request state
type conversation struct {
	relay     *Relay
	state     State
	messages  []Message
	toolCalls int
}

func (c *conversation) transition(ctx context.Context, to State) {
	if c.state.IsTerminal() {
		logger.L(ctx).Warn("Assistant state transition out of a terminal state ignored",
			zap.String("from", string(c.state)),
			zap.String("to", string(to)),
		)
		return
	}
	logger.L(ctx).Debug("Assistant state transition",
		zap.String("from", string(c.state)),
		zap.String("to", string(to)),
	)
	c.state = to
}

func (c *conversation) run(ctx context.Context, message string) (string, error) {
	r := c.relay
	c.messages = []Message{
		{Role: RoleSystem, Content: r.opts.Policy.SystemPrompt()},
		{Role: RoleUser, Content: message},
	}

	first, err := r.complete(ctx, 1, CompletionRequest{
		Model:     r.opts.Model,
		Messages:  c.messages,
		Tools:     ToolDefinitions(r.opts.Policy),
		MaxTokens: r.opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	calls := first.Message.ToolCalls
	if len(calls) == 0 {
		c.transition(ctx, StateDirectAnswer)
		return first.Message.Content, nil
	}

	c.transition(ctx, StateExecutingTools)
	reply := first.Message
	reply.Role = RoleAssistant
	c.messages = append(c.messages, reply)
	c.toolCalls = len(calls)

	results, err := r.executeTools(ctx, calls)
	if err != nil {
		return "", err
	}
	c.messages = append(c.messages, results...)

	c.transition(ctx, StateAwaitingSecondResponse)
	second, err := r.complete(ctx, 2, CompletionRequest{
		Model:    r.opts.Model,
		Messages: c.messages,
	})
	if err != nil {
		return "", err
	}

	c.transition(ctx, StateDone)
	return second.Message.Content, nil
}

// complete runs one model call under the configured deadline
func (r *Relay) complete(ctx context.Context, round int, req CompletionRequest) (*Completion, error) {
	if r.opts.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.ModelTimeout)
		defer cancel()
	}

	ctx, span := r.tracer.Start(ctx, "assistant.model_call", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.Int("assistant.round", round),
		attribute.String("assistant.model", req.Model),
		attribute.Int("assistant.tools", len(req.Tools)),
	)
	defer span.End()

	start := time.Now()
	resp, err := r.model.Complete(ctx, req)
	r.metrics.RecordModelCall(ctx, round, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("model call %d: %w", round, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("model call %d: empty completion", round)
	}
	return resp, nil
}

// executeTools returns one tool message per call, in call order
func (r *Relay) executeTools(ctx context.Context, calls []ToolCall) ([]Message, error) {
	results := make([]Message, len(calls))

	if !r.opts.ParallelTools || len(calls) == 1 {
		for i, call := range calls {
			msg, err := r.executeCall(ctx, call)
			if err != nil {
				return nil, err
			}
			results[i] = msg
		}
		return results, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		firstErr error
	)
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ToolCall) {
			defer wg.Done()
			msg, err := r.executeCall(ctx, call)
			if err != nil {
				failOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			results[i] = msg
		}(i, call)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

type searchResult struct {
	ID *int `json:"id"`
}

type unresolvedResult struct {
	Error string `json:"error"`
}

// executeCall runs a single tool call and wraps its result as a tool message
func (r *Relay) executeCall(ctx context.Context, call ToolCall) (Message, error) {
	name := call.Function.Name
	log := logger.L(ctx).With(zap.String("tool", name), zap.String("tool_call_id", call.ID))

	var (
		result  any
		outcome ToolOutcome
		err     error
	)
	telemetry.WithProfilingLabels(ctx, map[string]string{telemetry.ProfilingLabelTool: name}, func(ctx context.Context) {
		result, outcome, err = r.dispatch(ctx, call)
	})
	r.metrics.RecordToolCall(ctx, name, outcome)
	if err != nil {
		return Message{}, fmt.Errorf("tool %s: %w", name, err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return Message{}, fmt.Errorf("tool %s: encode result: %w", name, err)
	}
	log.Debug("Tool call executed", zap.String("outcome", string(outcome)))

	return Message{
		Role:       RoleTool,
		Content:    string(payload),
		ToolCallID: call.ID,
		Name:       name,
	}, nil
}

func (r *Relay) dispatch(ctx context.Context, call ToolCall) (any, ToolOutcome, error) {
	h, err := lookupTool(call.Function.Name, r.opts.Policy)
	if err != nil {
		return nil, ToolOutcomeError, err
	}
	args, err := parseToolArgs(h.name, call.Function.Arguments)
	if err != nil {
		return nil, ToolOutcomeError, err
	}

	if h.kind == ToolSearchEntity {
		return r.searchEntity(ctx, h, args)
	}

	var id int
	if h.idParam != "" {
		ident, err := parseIdentifier(h.name, h.idParam, args)
		if err != nil {
			return nil, ToolOutcomeError, err
		}
		id = ident.id
		if ident.needsResolution() {
			resolved, found, err := r.resolve(ctx, h.entity, ident.name)
			if err != nil {
				return nil, ToolOutcomeError, err
			}
			if !found {
				return unresolvedResult{
					Error: fmt.Sprintf("no %s found matching %q", h.entity, ident.name),
				}, ToolOutcomeUnresolved, nil
			}
			id = resolved
		}
	}

	result, err := h.execute(ctx, r.data, id)
	if err != nil {
		return nil, ToolOutcomeError, err
	}
	return result, ToolOutcomeOK, nil
}

func (r *Relay) searchEntity(ctx context.Context, h *toolHandler, args toolArgs) (any, ToolOutcome, error) {
	name := strings.TrimSpace(args.stringArg("name"))
	if name == "" {
		return nil, ToolOutcomeError, &InvalidArgumentsError{Tool: h.name, Reason: "missing name"}
	}
	entity, err := ParseEntityType(args.stringArg("entityType"))
	if err != nil {
		return searchResult{}, ToolOutcomeUnresolved, nil
	}

	id, found, err := r.resolve(ctx, entity, name)
	if err != nil {
		return nil, ToolOutcomeError, err
	}
	if !found {
		return searchResult{}, ToolOutcomeUnresolved, nil
	}
	return searchResult{ID: &id}, ToolOutcomeOK, nil
}

func (r *Relay) resolve(ctx context.Context, entity EntityType, name string) (int, bool, error) {
	if r.resolver == nil || !r.opts.Policy.ResolveEntityNames {
		return 0, false, nil
	}
	return r.resolver.Resolve(ctx, entity, name)
}
