// Package annotation extracts sub-fields from functional annotation blocks.
package annotation

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Field names a sub-field of a pipe-delimited annotation block.
type Field string

const (
	FieldGeneSymbol Field = "gene_symbol"
	FieldType       Field = "type"
	FieldHGVS       Field = "hgvs"
)

// Schema maps field names to their position inside an annotation block.
type Schema map[Field]int

// SnpEffSchema returns the positional layout of SnpEff ANN blocks
// (Allele|Annotation|Impact|Gene_Name|Gene_ID|Feature_Type|...|HGVS.c|...).
func SnpEffSchema() Schema {
	return Schema{
		FieldGeneSymbol: 3,
		FieldType:       5,
		FieldHGVS:       9,
	}
}

// OutOfRangeError reports an annotation block with fewer sub-fields than a
// schema position requires.
type OutOfRangeError struct {
	Field  Field
	Index  int
	Length int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("annotation block has %d sub-fields, %s requires index %d",
		e.Length, e.Field, e.Index)
}

// Extractor gathers named sub-fields across the annotation blocks of a
// record.
type Extractor struct {
	schema Schema
}

// NewExtractor creates an extractor over a block schema.
func NewExtractor(schema Schema) *Extractor {
	return &Extractor{schema: schema}
}

// Split splits raw annotation strings into their positional sub-fields,
// one slice per block, preserving block order.
func (e *Extractor) Split(blocks []string) [][]string {
	return lo.Map(blocks, func(block string, _ int) []string {
		return strings.Split(block, "|")
	})
}

// Gather returns the value of one named sub-field across all blocks, in
// block order. A block shorter than the field's position is an error.
func (e *Extractor) Gather(blocks [][]string, field Field) ([]string, error) {
	idx, ok := e.schema[field]
	if !ok {
		return nil, fmt.Errorf("annotation schema has no field %q", field)
	}

	values := make([]string, len(blocks))
	for i, block := range blocks {
		if idx >= len(block) {
			return nil, &OutOfRangeError{Field: field, Index: idx, Length: len(block)}
		}
		values[i] = block[idx]
	}
	return values, nil
}
