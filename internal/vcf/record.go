package vcf

import (
	"strconv"
	"strings"
)

// Missing is the VCF placeholder for an absent value.
const Missing = "."

// Record is a single data line of a VCF file.
type Record struct {
	Rid     int      // index into the header contig table, -1 if CHROM is "."
	Pos     int64    // 0-based position
	ID      string   // raw ID column ("." when absent)
	Alleles []string // REF first, then ALT alleles in order
	Qual    string   // raw QUAL column
	Filter  string   // raw FILTER column

	info    map[string]string
	format  []string   // FORMAT field order
	samples [][]string // per-sample values aligned to format

	header *Header
}

// Header returns the header of the file this record came from.
func (r *Record) Header() *Header {
	return r.header
}

// HasFilter reports whether the FILTER column equals the given name.
func (r *Record) HasFilter(name string) bool {
	return r.Filter == name
}

// HasInfo reports whether the record carries a value (or flag) for an
// INFO key.
func (r *Record) HasInfo(key string) bool {
	_, ok := r.info[key]
	return ok
}

// InfoStrings returns the comma-separated values of an INFO key.
// The second return is false when the record does not carry the key.
func (r *Record) InfoStrings(key string) ([]string, bool) {
	raw, ok := r.info[key]
	if !ok || raw == "" {
		return nil, ok
	}
	return strings.Split(raw, ","), true
}

// InfoFloats returns the values of an INFO key parsed as floats.
func (r *Record) InfoFloats(key string) ([]float64, error) {
	values, ok := r.InfoStrings(key)
	if !ok {
		return nil, nil
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v == Missing {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &ParseError{Message: "INFO/" + key + ": invalid float " + strconv.Quote(v)}
		}
		out = append(out, f)
	}
	return out, nil
}

// InfoInt returns the first value of an INFO key parsed as an integer.
// The bool reports whether the key carried a usable value.
func (r *Record) InfoInt(key string) (int, bool, error) {
	values, ok := r.InfoStrings(key)
	if !ok || len(values) == 0 || values[0] == Missing {
		return 0, false, nil
	}
	n, err := strconv.Atoi(values[0])
	if err != nil {
		return 0, false, &ParseError{Message: "INFO/" + key + ": invalid integer " + strconv.Quote(values[0])}
	}
	return n, true, nil
}

// FormatValues returns one value per sample for a FORMAT tag: the first
// comma-separated sub-value of that tag in each sample column. Samples whose
// column is too short yield the missing placeholder. Returns nil when the
// record's FORMAT does not list the tag.
func (r *Record) FormatValues(tag string) []string {
	idx := -1
	for i, f := range r.format {
		if f == tag {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	values := make([]string, len(r.samples))
	for i, sample := range r.samples {
		if idx >= len(sample) {
			values[i] = Missing
			continue
		}
		v := sample[idx]
		if j := strings.IndexByte(v, ','); j >= 0 {
			v = v[:j]
		}
		if v == "" {
			v = Missing
		}
		values[i] = v
	}
	return values
}

// Chrom resolves the record's contig name, or "." when the record has no
// contig index.
func (r *Record) Chrom() string {
	name, ok := r.header.Contig(r.Rid)
	if !ok {
		return Missing
	}
	return name
}
