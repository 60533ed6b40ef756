// Package pipeline drives the record-by-record upload run.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/labbcb/brave-upload/internal/brave"
	"github.com/labbcb/brave-upload/internal/normalize"
	"github.com/labbcb/brave-upload/internal/vcf"
)

// FilterPass is the FILTER value of a record that cleared quality control.
const FilterPass = "PASS"

// Submitter sends one normalized variant to the catalog.
type Submitter interface {
	Submit(ctx context.Context, v *brave.Variant) error
}

// Recorder logs the outcome of one handled record, if auditing is enabled.
type Recorder interface {
	Record(v *brave.Variant, submitted bool) error
}

// Options is the run-scoped pipeline configuration.
type Options struct {
	// Filter drops records whose FILTER column is not PASS. When false
	// every record passes.
	Filter bool

	// DryRun normalizes records without submitting anything.
	DryRun bool
}

// Summary are the run counters. They only ever increase during a run.
type Summary struct {
	Total  int // records read
	Passed int // records that cleared the filter
}

// Pipeline processes records sequentially: count, filter, normalize,
// submit. Any failure aborts the run; records already submitted stay
// submitted.
type Pipeline struct {
	norm      *normalize.Normalizer
	submitter Submitter
	recorder  Recorder
	opts      Options
	logger    *zap.Logger
}

// New creates a pipeline. submitter may be nil only in dry-run mode.
func New(norm *normalize.Normalizer, submitter Submitter, opts Options) *Pipeline {
	return &Pipeline{
		norm:      norm,
		submitter: submitter,
		opts:      opts,
		logger:    zap.NewNop(),
	}
}

// SetLogger replaces the pipeline's no-op logger.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// SetRecorder enables submission audit logging.
func (p *Pipeline) SetRecorder(r Recorder) {
	p.recorder = r
}

// Run reads records until end of input, normalizing and submitting each
// passing record before the next is read. Output order equals input order.
// The returned summary is valid even when an error is returned.
func (p *Pipeline) Run(ctx context.Context, records vcf.RecordReader) (Summary, error) {
	var sum Summary

	for {
		rec, err := records.Next()
		if err != nil {
			return sum, fmt.Errorf("read record: %w", err)
		}
		if rec == nil {
			break
		}

		sum.Total++

		if p.opts.Filter && !rec.HasFilter(FilterPass) {
			continue
		}
		sum.Passed++

		v, err := p.norm.Normalize(rec)
		if err != nil {
			return sum, err
		}

		p.logger.Debug("normalized variant",
			zap.String("referenceName", v.ReferenceName),
			zap.Int64("start", v.Start),
			zap.Any("variant", v))

		submitted := false
		if !p.opts.DryRun {
			if err := p.submitter.Submit(ctx, v); err != nil {
				return sum, err
			}
			submitted = true
		}

		if p.recorder != nil {
			if err := p.recorder.Record(v, submitted); err != nil {
				return sum, fmt.Errorf("audit record %s:%d: %w", rec.Chrom(), v.Start, err)
			}
		}
	}

	p.logger.Info("run complete",
		zap.Int("total", sum.Total),
		zap.Int("passed", sum.Passed),
		zap.Bool("dryrun", p.opts.DryRun))

	return sum, nil
}
