package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// Reader reads variant records from a VCF stream.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	decomp     io.Closer // bgzf or gzip reader, nil for plain input
	lineNumber int
	header     *Header
}

// RecordReader is the interface for sources of variant records.
type RecordReader interface {
	// Next reads the next record. Returns nil, nil at end of input.
	Next() (*Record, error)
}

// NewReader opens a VCF file. Plain, gzip and bgzf compressed files are
// supported; use "-" for stdin.
func NewReader(path string) (*Reader, error) {
	if path == "-" {
		return NewReaderFrom(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	r := &Reader{file: file, header: newHeader()}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	if _, err := io.ReadFull(file, buf); err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		// Prefer bgzf (the common case for .vcf.gz produced by bgzip);
		// fall back to plain gzip streams.
		bg, err := bgzf.NewReader(file, 1)
		if err == nil {
			r.decomp = bg
			r.reader = bufio.NewReader(bg)
		} else {
			if _, err := file.Seek(0, io.SeekStart); err != nil {
				file.Close()
				return nil, fmt.Errorf("seek vcf file: %w", err)
			}
			gz, err := gzip.NewReader(file)
			if err != nil {
				file.Close()
				return nil, fmt.Errorf("create gzip reader: %w", err)
			}
			r.decomp = gz
			r.reader = bufio.NewReader(gz)
		}
	} else {
		r.reader = bufio.NewReader(file)
	}

	if err := r.parseHeader(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// NewReaderFrom creates a reader over an uncompressed VCF stream.
func NewReaderFrom(src io.Reader) (*Reader, error) {
	r := &Reader{
		reader: bufio.NewReader(src),
		header: newHeader(),
	}
	if err := r.parseHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

// parseHeader consumes meta lines up to and including #CHROM.
func (r *Reader) parseHeader() error {
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			r.header.addLine(line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				r.header.samples = fields[9:]
			}
			return nil
		}

		return &ParseError{Line: r.lineNumber, Message: "expected #CHROM header line"}
	}

	return &ParseError{Line: r.lineNumber, Message: "no #CHROM header line found"}
}

// Header returns the parsed file header.
func (r *Reader) Header() *Header {
	return r.header
}

// Next reads the next record. Returns nil, nil at end of input.
func (r *Reader) Next() (*Record, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read record line: %w", err)
	}
	atEOF := err == io.EOF

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if atEOF {
			return nil, nil
		}
		r.lineNumber++
		return r.Next()
	}
	r.lineNumber++

	return r.parseLine(line)
}

// parseLine parses one VCF data line into a Record.
func (r *Reader) parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	rec := &Record{
		Rid:    r.header.rid(fields[0]),
		Pos:    pos - 1, // POS is 1-based on disk
		ID:     fields[2],
		Qual:   fields[5],
		Filter: fields[6],
		info:   parseInfo(fields[7]),
		header: r.header,
	}

	rec.Alleles = parseAlleles(fields[3], fields[4])

	// FORMAT and sample columns
	if len(fields) > 8 {
		rec.format = strings.Split(fields[8], ":")
		rec.samples = make([][]string, len(fields)-9)
		for i, col := range fields[9:] {
			rec.samples[i] = strings.Split(col, ":")
		}
	}

	return rec, nil
}

// parseAlleles builds the ordered allele list, REF first. Missing REF and
// ALT columns yield an empty list.
func parseAlleles(ref, alt string) []string {
	var alleles []string
	if ref != Missing && ref != "" {
		alleles = append(alleles, ref)
	} else {
		return nil
	}
	if alt != Missing && alt != "" {
		alleles = append(alleles, strings.Split(alt, ",")...)
	}
	return alleles
}

// parseInfo splits the INFO column into a key → raw value map. Flag-type
// keys map to the empty string.
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	if info == Missing {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		if kv == "" {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		} else {
			result[parts[0]] = ""
		}
	}
	return result
}

// LineNumber returns the number of the last line read.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.decomp != nil {
		r.decomp.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParseError is an error in the VCF input, with line context when known.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("vcf parse error: %s", e.Message)
	}
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
