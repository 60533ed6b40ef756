// Package vcf reads variant records from VCF files.
package vcf

import (
	"regexp"
	"strings"
)

// FieldSchema describes one ##INFO or ##FORMAT declaration.
type FieldSchema struct {
	ID          string
	Number      string // an integer, "A", "G", "R" or "."
	Type        string // "Integer", "Float", "Flag", "String" or "Character"
	Description string
}

// Header holds the parsed meta-information of a VCF file: the INFO and
// FORMAT schemas, the contig index table, and the sample names from the
// #CHROM line.
type Header struct {
	lines   []string
	info    map[string]FieldSchema
	format  map[string]FieldSchema
	contigs []string
	rids    map[string]int
	samples []string
}

func newHeader() *Header {
	return &Header{
		info:   make(map[string]FieldSchema),
		format: make(map[string]FieldSchema),
		rids:   make(map[string]int),
	}
}

var metaLineRe = regexp.MustCompile(`^##([^=]+)=<(.*)>$`)

// addLine parses one ## meta line into the header tables.
func (h *Header) addLine(line string) {
	h.lines = append(h.lines, line)

	m := metaLineRe.FindStringSubmatch(line)
	if m == nil {
		return
	}

	fields := parseMetaFields(m[2])
	switch m[1] {
	case "INFO":
		h.info[fields["ID"]] = FieldSchema{
			ID:          fields["ID"],
			Number:      fields["Number"],
			Type:        fields["Type"],
			Description: fields["Description"],
		}
	case "FORMAT":
		h.format[fields["ID"]] = FieldSchema{
			ID:          fields["ID"],
			Number:      fields["Number"],
			Type:        fields["Type"],
			Description: fields["Description"],
		}
	case "contig":
		h.rid(fields["ID"])
	}
}

// parseMetaFields splits the key=value list inside a ##TYPE=<...> line,
// honoring quoted values (Description may contain commas and equals signs).
func parseMetaFields(s string) map[string]string {
	fields := make(map[string]string)
	var key strings.Builder
	var val strings.Builder
	inKey := true
	inQuotes := false

	flush := func() {
		if key.Len() > 0 {
			fields[key.String()] = val.String()
		}
		key.Reset()
		val.Reset()
		inKey = true
	}

	for _, r := range s {
		switch {
		case inQuotes:
			if r == '"' {
				inQuotes = false
			} else {
				val.WriteRune(r)
			}
		case r == '"':
			inQuotes = true
		case inKey && r == '=':
			inKey = false
		case r == ',':
			flush()
		case inKey:
			key.WriteRune(r)
		default:
			val.WriteRune(r)
		}
	}
	flush()

	return fields
}

// rid returns the contig index for a name, adding unseen names to the end
// of the table. The "." placeholder never gets an index.
func (h *Header) rid(name string) int {
	if name == "" || name == "." {
		return -1
	}
	if id, ok := h.rids[name]; ok {
		return id
	}
	id := len(h.contigs)
	h.contigs = append(h.contigs, name)
	h.rids[name] = id
	return id
}

// Contig resolves a contig index back to its name.
func (h *Header) Contig(rid int) (string, bool) {
	if rid < 0 || rid >= len(h.contigs) {
		return "", false
	}
	return h.contigs[rid], true
}

// HasInfo reports whether the header declares an INFO field with this ID.
func (h *Header) HasInfo(id string) bool {
	_, ok := h.info[id]
	return ok
}

// HasFormat reports whether the header declares a FORMAT field with this ID.
func (h *Header) HasFormat(id string) bool {
	_, ok := h.format[id]
	return ok
}

// Info returns the schema of a declared INFO field.
func (h *Header) Info(id string) (FieldSchema, bool) {
	s, ok := h.info[id]
	return s, ok
}

// Samples returns the sample names from the #CHROM line.
func (h *Header) Samples() []string {
	return h.samples
}

// SampleCount returns the number of samples declared in the header.
func (h *Header) SampleCount() int {
	return len(h.samples)
}

// Lines returns the raw ## header lines.
func (h *Header) Lines() []string {
	return h.lines
}
