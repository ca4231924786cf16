package clientcli

import (
	"context"
	"fmt"
)

// DefaultBenchTokens is the number of tokens used by Bench when none are given.
const DefaultBenchTokens = 30

// FakeTokens returns n tokens named fake-token-00000, fake-token-00001, ...
func FakeTokens(n int) []string {
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("fake-token-%05d", i)
	}
	return tokens
}

// BenchOptions configures a benchmark run.
type BenchOptions struct {
	Tokens []string
	// Progress, if set, is called after every request.
	Progress func(phase string, i, total int, m Measurement)
}

// BenchPhase summarizes one phase of a benchmark.
type BenchPhase struct {
	Name         string `json:"name"`
	Total        int    `json:"total"`
	CumulativeMs int64  `json:"cumulative_ms"`
	Failed       int    `json:"failed"`
	Token        string `json:"token,omitempty"`
}

// Average returns the mean latency of the successful requests.
func (p BenchPhase) Average() (float64, bool) {
	n := p.Total - p.Failed
	if n <= 0 {
		return 0, false
	}
	return float64(p.CumulativeMs) / float64(n), true
}

// BenchResult holds all phases of a benchmark run.
type BenchResult struct {
	Endpoint string       `json:"endpoint"`
	Tokens   int          `json:"tokens"`
	Phases   []BenchPhase `json:"phases"`
}

// Failed returns the number of failed requests across all phases.
func (r *BenchResult) Failed() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Failed
	}
	return total
}

// Bench measures server-side KV latency in three phases:
//  1. one MeasurePut per token
//  2. one MeasureGet per token (a different key each request)
//  3. len(tokens) MeasureGets of the last token (the same key every request)
//
// Failed requests are counted, not returned; the error is only set when ctx
// is canceled.
func (c *Client) Bench(ctx context.Context, opts BenchOptions) (*BenchResult, error) {
	tokens := opts.Tokens
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}

	same := tokens[len(tokens)-1]
	sameTokens := make([]string, len(tokens))
	for i := range sameTokens {
		sameTokens[i] = same
	}

	result := &BenchResult{Endpoint: c.config.Endpoint, Tokens: len(tokens)}

	phases := []struct {
		name   string
		run    func(context.Context, string) Measurement
		tokens []string
		label  string
	}{
		{name: "Phase 1: PUT (one per token)", run: c.MeasurePut, tokens: tokens},
		{name: "Phase 2: GET (different key each request)", run: c.MeasureGet, tokens: tokens},
		{name: "Phase 3: GET (same key every request)", run: c.MeasureGet, tokens: sameTokens, label: same},
	}

	for _, ph := range phases {
		phase := BenchPhase{Name: ph.name, Total: len(ph.tokens), Token: ph.label}
		for i, token := range ph.tokens {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			m := ph.run(ctx, token)
			if m.Err != nil {
				phase.Failed++
			} else {
				phase.CumulativeMs += m.Ms
			}

			if opts.Progress != nil {
				opts.Progress(ph.name, i, len(ph.tokens), m)
			}
		}
		result.Phases = append(result.Phases, phase)
	}

	return result, nil
}
