package telemetry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// Labels attached by the HTTP profiling middleware
const (
	ProfilingLabelRoute  = "route"
	ProfilingLabelMethod = "method"
	ProfilingLabelTool   = "tool"
)

// MaxLabelValueLength bounds label cardinality
const MaxLabelValueLength = 128

// sampling rate for mutex and block profiles (1 in n events)
const contentionSampleRate = 5

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexDuration,
	pyroscope.ProfileBlockDuration,
}

// Profiler pushes continuous profiles to Pyroscope.
type Profiler struct {
	p    *pyroscope.Profiler
	log  *zap.Logger
	once sync.Once
	err  error
}

// NewProfiler starts profiling against endpoint. With no endpoint the
// returned profiler does nothing.
func NewProfiler(endpoint, application string, log *zap.Logger) (*Profiler, error) {
	prof := &Profiler{log: log}
	if endpoint == "" {
		log.Info("Continuous profiling disabled")
		return prof, nil
	}
	if application == "" {
		return nil, errors.New("profiler: application name is required")
	}

	runtime.SetMutexProfileFraction(contentionSampleRate)
	runtime.SetBlockProfileRate(contentionSampleRate)

	tags := make(map[string]string)
	if host, _ := os.Hostname(); host != "" {
		tags["hostname"] = host
	}

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: application,
		ServerAddress:   endpoint,
		Logger:          log.Named("pyroscope").Sugar(),
		Tags:            tags,
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	prof.p = p
	log.Info("Continuous profiling enabled", zap.String("server_address", endpoint))
	return prof, nil
}

func (p *Profiler) IsEnabled() bool { return p.p != nil }

// Stop flushes the last profiles. Later calls return the first result.
func (p *Profiler) Stop() error {
	p.once.Do(func() {
		if p.p == nil {
			return
		}
		if err := p.p.Stop(); err != nil {
			p.log.Error("Profiler stop failed", zap.Error(err))
			p.err = fmt.Errorf("stop pyroscope: %w", err)
		}
	})
	return p.err
}

// WithProfilingLabels runs fn under pprof labels. Blank keys and empty
// values are dropped and long values are truncated.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// sanitizeLabels returns key/value pairs ordered by key
func sanitizeLabels(labels map[string]string) []string {
	clean := make(map[string]string, len(labels))
	for k, v := range labels {
		k = labelKey(k)
		if k == "" || v == "" {
			continue
		}
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		clean[k] = v
	}

	pairs := make([]string, 0, 2*len(clean))
	for _, k := range slices.Sorted(maps.Keys(clean)) {
		pairs = append(pairs, k, clean[k])
	}
	return pairs
}

// labelKey lowercases key and maps anything outside [a-z0-9_] to '_'
func labelKey(key string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return '_'
	}, strings.ToLower(strings.TrimSpace(key)))
}
