package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labbcb/brave-upload/internal/brave"
	"github.com/labbcb/brave-upload/internal/normalize"
	"github.com/labbcb/brave-upload/internal/vcf"
)

var testHeader = strings.Join([]string{
	"##fileformat=VCFv4.2",
	"##contig=<ID=1>",
	`##INFO=<ID=NS,Number=1,Type=Integer,Description="Number of samples with data">`,
	`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
	`##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Read depth">`,
	`##FORMAT=<ID=GQ,Number=1,Type=Integer,Description="Genotype quality">`,
	strings.Join([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT", "S1"}, "\t"),
}, "\n")

// testInput builds a VCF with one record per filter status, positions
// 100, 200, 300, ...
func testInput(t *testing.T, filters ...string) string {
	t.Helper()
	lines := []string{testHeader}
	for i, f := range filters {
		lines = append(lines, strings.Join([]string{
			"1", fmt.Sprintf("%d", (i+1)*100), ".", "A", "T", "50", f,
			"NS=1", "GT:DP:GQ", "0/1:10:99",
		}, "\t"))
	}
	return strings.Join(lines, "\n") + "\n"
}

// countingReader counts Next calls that yielded a record.
type countingReader struct {
	inner vcf.RecordReader
	reads int
}

func (r *countingReader) Next() (*vcf.Record, error) {
	rec, err := r.inner.Next()
	if rec != nil {
		r.reads++
	}
	return rec, err
}

// fakeSubmitter records submissions in order and can fail from a given call.
type fakeSubmitter struct {
	starts  []int64
	failAt  int // 1-based call number that fails, 0 for never
	callErr error
}

func (s *fakeSubmitter) Submit(_ context.Context, v *brave.Variant) error {
	s.starts = append(s.starts, v.Start)
	if s.failAt > 0 && len(s.starts) >= s.failAt {
		return s.callErr
	}
	return nil
}

// fakeRecorder collects audit calls.
type fakeRecorder struct {
	submitted []bool
}

func (r *fakeRecorder) Record(_ *brave.Variant, submitted bool) error {
	r.submitted = append(r.submitted, submitted)
	return nil
}

func newTestPipeline(sub Submitter, opts Options) *Pipeline {
	norm := normalize.New(normalize.Config{
		DatasetID:    "1kg",
		AssemblyID:   "GRCh38",
		TotalSamples: 1,
	})
	return New(norm, sub, opts)
}

func reader(t *testing.T, input string) *countingReader {
	t.Helper()
	r, err := vcf.NewReaderFrom(strings.NewReader(input))
	require.NoError(t, err)
	return &countingReader{inner: r}
}

func TestRun_DryRunCounts(t *testing.T) {
	// 10 records, 7 PASS
	filters := []string{"PASS", "PASS", "q10", "PASS", "PASS", "lowDP", "PASS", "PASS", "q10", "PASS"}
	r := reader(t, testInput(t, filters...))

	sub := &fakeSubmitter{}
	p := newTestPipeline(sub, Options{Filter: true, DryRun: true})

	sum, err := p.Run(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, 10, sum.Total)
	assert.Equal(t, 7, sum.Passed)
	assert.Empty(t, sub.starts, "dry run must not submit")
}

func TestRun_FilterDisabled(t *testing.T) {
	r := reader(t, testInput(t, "PASS", "q10", "."))

	sub := &fakeSubmitter{}
	p := newTestPipeline(sub, Options{Filter: false})

	sum, err := p.Run(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 3, sum.Passed)
	assert.Len(t, sub.starts, 3)
}

func TestRun_FilterNotAppliedDoesNotPass(t *testing.T) {
	// "." means the filter was not applied, which is not a pass
	r := reader(t, testInput(t, "PASS", "."))

	p := newTestPipeline(&fakeSubmitter{}, Options{Filter: true, DryRun: true})
	sum, err := p.Run(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Passed)
}

func TestRun_SubmitsInInputOrder(t *testing.T) {
	r := reader(t, testInput(t, "PASS", "q10", "PASS", "PASS"))

	sub := &fakeSubmitter{}
	p := newTestPipeline(sub, Options{Filter: true})

	_, err := p.Run(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, []int64{100, 300, 400}, sub.starts)
}

func TestRun_AbortsOnSubmissionFailure(t *testing.T) {
	r := reader(t, testInput(t, "PASS", "PASS", "PASS"))

	failure := &brave.SubmissionError{Status: 500, Body: "boom"}
	sub := &fakeSubmitter{failAt: 1, callErr: failure}
	p := newTestPipeline(sub, Options{Filter: true})

	sum, err := p.Run(context.Background(), r)
	require.Error(t, err)

	var serr *brave.SubmissionError
	assert.True(t, errors.As(err, &serr))

	// the failing record is counted; the next record is never read
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Passed)
	assert.Equal(t, 1, r.reads)
	assert.Len(t, sub.starts, 1)
}

func TestRun_AbortsOnNormalizationFailure(t *testing.T) {
	// second record has no REF allele
	input := testHeader + "\n" +
		strings.Join([]string{"1", "100", ".", "A", "T", "50", "PASS", "NS=1", "GT:DP:GQ", "0/1:10:99"}, "\t") + "\n" +
		strings.Join([]string{"1", "200", ".", ".", ".", "50", "PASS", "NS=1", "GT:DP:GQ", "0/1:10:99"}, "\t") + "\n" +
		strings.Join([]string{"1", "300", ".", "C", "G", "50", "PASS", "NS=1", "GT:DP:GQ", "0/1:10:99"}, "\t") + "\n"
	r := reader(t, input)

	sub := &fakeSubmitter{}
	p := newTestPipeline(sub, Options{Filter: true})

	sum, err := p.Run(context.Background(), r)
	assert.ErrorIs(t, err, normalize.ErrMissingReference)

	assert.Equal(t, 2, sum.Total)
	assert.Len(t, sub.starts, 1, "record after the failing one is never submitted")
}

func TestRun_Recorder(t *testing.T) {
	r := reader(t, testInput(t, "PASS", "PASS"))

	rec := &fakeRecorder{}
	p := newTestPipeline(&fakeSubmitter{}, Options{Filter: true})
	p.SetRecorder(rec)

	_, err := p.Run(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, rec.submitted)
}

func TestRun_RecorderDryRun(t *testing.T) {
	r := reader(t, testInput(t, "PASS"))

	rec := &fakeRecorder{}
	p := newTestPipeline(nil, Options{Filter: true, DryRun: true})
	p.SetRecorder(rec)

	_, err := p.Run(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, rec.submitted)
}
