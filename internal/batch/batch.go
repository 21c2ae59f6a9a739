// Package batch runs a list of queries against the API one after another.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Adda-Baaj/docquery/internal/logger"
	"github.com/Adda-Baaj/docquery/pkg/apiclient"
)

// Querier is the part of the API client a batch needs.
type Querier interface {
	SendQuery(ctx context.Context, query string, opts ...apiclient.QueryOption) (apiclient.Envelope, error)
}

// Result is one answered (or failed) query.
type Result struct {
	Index  int
	Query  string
	Answer apiclient.Envelope
	Err    error
}

// HandleFunc receives each result in order. A returned error is recorded but
// does not stop the batch.
type HandleFunc func(ctx context.Context, res Result) error

// Options tunes a Runner.
type Options struct {
	// Delay is the pause between consecutive queries.
	Delay     time.Duration
	MaxTokens int
}

// Runner sends queries sequentially, pausing between them.
type Runner struct {
	client Querier
	opts   Options
	log    logger.Logger
}

// NewRunner wires a runner around client.
func NewRunner(client Querier, opts Options, log logger.Logger) *Runner {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Runner{client: client, opts: opts, log: log}
}

// Run sends every query and hands each result to handle. Failures are logged
// and joined into the returned error; cancellation stops the batch early.
func (r *Runner) Run(ctx context.Context, queries []string, handle HandleFunc) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("batch runner is not initialized")
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries to run")
	}

	var qopts []apiclient.QueryOption
	if r.opts.MaxTokens > 0 {
		qopts = append(qopts, apiclient.WithMaxTokens(r.opts.MaxTokens))
	}

	start := time.Now()
	errs := make([]error, 0, len(queries))
	sent, failed := 0, 0
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res := Result{Index: i, Query: q}
		res.Answer, res.Err = r.client.SendQuery(ctx, q, qopts...)
		sent++
		if res.Err != nil {
			failed++
			errs = append(errs, fmt.Errorf("query %d: %w", i+1, res.Err))
			r.log.ErrorObj("batch query failed", "batch_error", map[string]any{
				"index": i,
				"error": res.Err.Error(),
			})
		}
		if handle != nil {
			if err := handle(ctx, res); err != nil {
				errs = append(errs, fmt.Errorf("query %d: %w", i+1, err))
			}
		}

		if r.opts.Delay > 0 && i < len(queries)-1 {
			timer := time.NewTimer(r.opts.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				errs = append(errs, ctx.Err())
				r.logSummary(len(queries), sent, failed, start)
				return errors.Join(errs...)
			case <-timer.C:
			}
		}
	}

	r.logSummary(len(queries), sent, failed, start)
	return errors.Join(errs...)
}

// logSummary records query outcomes only; handler and cancellation errors
// are reported through the returned error.
func (r *Runner) logSummary(total, sent, failed int, start time.Time) {
	r.log.InfoObj("batch completed", "batch_meta", map[string]any{
		"queries":    total,
		"sent":       sent,
		"failed":     failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
}

// ReadQueries reads one query per line. Blank lines and lines starting with
// '#' are ignored.
func ReadQueries(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	return out, nil
}
