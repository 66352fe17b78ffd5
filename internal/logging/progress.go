package logging

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutputFormat is the rendering of progress lines printed during a run.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// RunState is a snapshot of sampler progress, reported periodically from
// rank 0 while the other ranks keep stepping.
type RunState struct {
	Iteration      int64
	Niter          int64
	Elapsed        time.Duration
	AcceptRate     float64
	SwapAcceptRate float64
	EffectiveN     float64
	Temperature    float64
}

// ProgressReporter prints RunState snapshots in the configured format.
type ProgressReporter struct {
	format OutputFormat
	logger *Logger
}

// NewProgressReporter creates a ProgressReporter.
func NewProgressReporter(format OutputFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{format: format, logger: logger}
}

// ReportState prints one progress snapshot.
func (pr *ProgressReporter) ReportState(s RunState) {
	switch pr.format {
	case OutputJSON:
		data, err := json.Marshal(s)
		if err != nil {
			pr.logger.Error("failed to marshal run state", "error", err)
			return
		}
		fmt.Println(string(data))
	default:
		pct := 0.0
		if s.Niter > 0 {
			pct = 100 * float64(s.Iteration) / float64(s.Niter)
		}
		fmt.Printf("[%s] iter %d/%d (%.1f%%) | accept %.3f | swap %.3f | Neff %.0f | elapsed %s\n",
			time.Now().Format("15:04:05"), s.Iteration, s.Niter, pct,
			s.AcceptRate, s.SwapAcceptRate, s.EffectiveN, s.Elapsed.Round(time.Second))
	}
}

// ReportComplete prints the terminal summary line, mirroring the
// original PT-MCMC sampler's "Run Complete" banner.
func (pr *ProgressReporter) ReportComplete(s RunState, reason string) {
	switch pr.format {
	case OutputJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":       "run_complete",
			"reason":      reason,
			"iteration":   s.Iteration,
			"effective_n": s.EffectiveN,
		})
		fmt.Println(string(data))
	default:
		if s.EffectiveN > 0 {
			fmt.Printf("Run Complete with %.0f effective samples (%s)\n", s.EffectiveN, reason)
			return
		}
		fmt.Printf("Run Complete (%s)\n", reason)
	}
}
