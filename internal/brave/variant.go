// Package brave holds the BraVE catalog wire format and submission client.
package brave

import "github.com/labbcb/brave-upload/internal/stats"

// Variant is one catalog entry in the shape the BraVE server accepts.
// Optional fields marshal as null when absent; alternateBases and
// alleleFrequency are always present, possibly empty. The variant-type list
// travels under the reserved key "type".
type Variant struct {
	ID              *string            `json:"id"`
	DatasetID       string             `json:"datasetId"`
	TotalSamples    int                `json:"totalSamples"`
	AssemblyID      string             `json:"assemblyId"`
	SnpIDs          []string           `json:"snpIds"`
	ReferenceName   string             `json:"referenceName"`
	Start           int64              `json:"start"`
	ReferenceBases  string             `json:"referenceBases"`
	AlternateBases  []string           `json:"alternateBases"`
	GeneSymbol      []string           `json:"geneSymbol"`
	AlleleFrequency []float64          `json:"alleleFrequency"`
	SampleCount     *int               `json:"sampleCount"`
	Coverage        stats.Distribution `json:"coverage"`
	GenotypeQuality stats.Distribution `json:"genotypeQuality"`
	Clnsig          *string            `json:"clnsig"`
	HGVS            []string           `json:"hgvs"`
	VariantType     []string           `json:"type"`
}
