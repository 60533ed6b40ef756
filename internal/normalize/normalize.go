// Package normalize builds canonical catalog variants from VCF records.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labbcb/brave-upload/internal/annotation"
	"github.com/labbcb/brave-upload/internal/brave"
	"github.com/labbcb/brave-upload/internal/stats"
	"github.com/labbcb/brave-upload/internal/vcf"
)

// VCF tags the normalizer reads.
const (
	TagAF     = "AF"     // INFO: allele frequency, one value per ALT allele
	TagNS     = "NS"     // INFO: number of samples with data
	TagClnsig = "CLNSIG" // INFO: ClinVar clinical significance
	TagAnn    = "ANN"    // INFO: functional annotations, one block per transcript
	TagDP     = "DP"     // FORMAT: per-sample read depth
	TagGQ     = "GQ"     // FORMAT: per-sample genotype quality
)

var (
	// ErrMissingContig marks a record that carries no contig.
	ErrMissingContig = errors.New("missing CHROM")

	// ErrMissingReference marks a record with an empty allele list.
	ErrMissingReference = errors.New("missing REF")
)

// Config is the run-scoped normalization configuration. It is immutable for
// the whole run.
type Config struct {
	DatasetID    string
	AssemblyID   string
	TotalSamples int

	// HasSampleCount is whether the file header declares the NS INFO field.
	// Checked once per run, not per record.
	HasSampleCount bool

	// ClnsigFirstOnly keeps only the first clinical significance value
	// instead of comma-joining all of them.
	ClnsigFirstOnly bool

	// Annotation is the block layout for ANN sub-field extraction.
	// Defaults to the SnpEff layout.
	Annotation annotation.Schema
}

// Normalizer turns VCF records into catalog variants. It performs no I/O.
type Normalizer struct {
	cfg Config
	ext *annotation.Extractor
}

// New creates a normalizer for one run.
func New(cfg Config) *Normalizer {
	schema := cfg.Annotation
	if schema == nil {
		schema = annotation.SnpEffSchema()
	}
	return &Normalizer{cfg: cfg, ext: annotation.NewExtractor(schema)}
}

// Normalize builds the canonical variant for one record.
func (n *Normalizer) Normalize(rec *vcf.Record) (*brave.Variant, error) {
	start := rec.Pos + 1

	snpIDs := splitSnpIDs(rec.ID)

	alleleFrequency, err := rec.InfoFloats(TagAF)
	if err != nil {
		return nil, fmt.Errorf("record at position %d: %w", start, err)
	}
	if alleleFrequency == nil {
		alleleFrequency = []float64{}
	}

	coverage, err := stats.Summarize(rec.FormatValues(TagDP))
	if err != nil {
		return nil, fmt.Errorf("%s distribution at position %d: %w", TagDP, start, err)
	}
	genotypeQuality, err := stats.Summarize(rec.FormatValues(TagGQ))
	if err != nil {
		return nil, fmt.Errorf("%s distribution at position %d: %w", TagGQ, start, err)
	}

	referenceName, ok := rec.Header().Contig(rec.Rid)
	if !ok {
		return nil, fmt.Errorf("record at position %d: %w", start, ErrMissingContig)
	}

	if len(rec.Alleles) == 0 {
		return nil, fmt.Errorf("record at position %d: %w", start, ErrMissingReference)
	}
	referenceBases := rec.Alleles[0]
	alternateBases := append([]string{}, rec.Alleles[1:]...)

	clnsig := n.clnsig(rec)

	var sampleCount *int
	if n.cfg.HasSampleCount {
		ns, ok, err := rec.InfoInt(TagNS)
		if err != nil {
			return nil, fmt.Errorf("record at position %d: %w", start, err)
		}
		if ok {
			sampleCount = &ns
		}
	}

	geneSymbol, variantType, hgvs, err := n.annotations(rec)
	if err != nil {
		return nil, fmt.Errorf("record at position %d: %w", start, err)
	}

	return &brave.Variant{
		DatasetID:       n.cfg.DatasetID,
		TotalSamples:    n.cfg.TotalSamples,
		AssemblyID:      n.cfg.AssemblyID,
		SnpIDs:          snpIDs,
		ReferenceName:   referenceName,
		Start:           start,
		ReferenceBases:  referenceBases,
		AlternateBases:  alternateBases,
		GeneSymbol:      geneSymbol,
		AlleleFrequency: alleleFrequency,
		SampleCount:     sampleCount,
		Coverage:        coverage,
		GenotypeQuality: genotypeQuality,
		Clnsig:          clnsig,
		HGVS:            hgvs,
		VariantType:     variantType,
	}, nil
}

// splitSnpIDs splits the ID column into external identifiers. The "."
// placeholder means no identifiers, not an empty list.
func splitSnpIDs(id string) []string {
	if id == vcf.Missing || id == "" {
		return nil
	}
	return strings.Split(id, ";")
}

// clnsig resolves the optional clinical significance value.
func (n *Normalizer) clnsig(rec *vcf.Record) *string {
	values, ok := rec.InfoStrings(TagClnsig)
	if !ok || len(values) == 0 {
		return nil
	}
	var s string
	if n.cfg.ClnsigFirstOnly {
		s = values[0]
	} else {
		s = strings.Join(values, ",")
	}
	return &s
}

// annotations resolves the three ANN-derived lists. They are present
// together or absent together, depending only on whether the record carries
// the ANN field.
func (n *Normalizer) annotations(rec *vcf.Record) (geneSymbol, variantType, hgvs []string, err error) {
	raw, ok := rec.InfoStrings(TagAnn)
	if !ok {
		return nil, nil, nil, nil
	}

	blocks := n.ext.Split(raw)

	if geneSymbol, err = n.ext.Gather(blocks, annotation.FieldGeneSymbol); err != nil {
		return nil, nil, nil, err
	}
	if variantType, err = n.ext.Gather(blocks, annotation.FieldType); err != nil {
		return nil, nil, nil, err
	}
	if hgvs, err = n.ext.Gather(blocks, annotation.FieldHGVS); err != nil {
		return nil, nil, nil, err
	}
	return geneSymbol, variantType, hgvs, nil
}
