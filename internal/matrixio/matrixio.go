// Package matrixio reads dense contact matrices and contig-range tables
// from disk. Matrix files are whitespace-separated rows of intensities,
// one matrix row per line; files ending in .zst are decompressed
// transparently. This plain format exists for the CLI; tiled binary
// contact formats are decoded elsewhere.
package matrixio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/strandline/hicqc/internal/contact"
)

// LoadMatrix reads a square matrix from path. Rows of unequal length or
// a non-square shape are errors; the values themselves are not
// validated (see Validate).
func LoadMatrix(path string) (contact.Matrix, error) {
	r, cleanup, err := openMaybeZstd(path)
	if err != nil {
		return contact.Matrix{}, err
	}
	defer cleanup()

	var data []float64
	size := -1
	row := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<26)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if size == -1 {
			size = len(fields)
		} else if len(fields) != size {
			return contact.Matrix{}, fmt.Errorf("row %d has %d columns, want %d", row, len(fields), size)
		}

		for col, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return contact.Matrix{}, fmt.Errorf("parse value at row %d col %d: %w", row, col, err)
			}
			data = append(data, v)
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return contact.Matrix{}, fmt.Errorf("read matrix: %w", err)
	}

	if size == -1 {
		return contact.Matrix{}, fmt.Errorf("empty matrix file %s", path)
	}
	if row != size {
		return contact.Matrix{}, fmt.Errorf("matrix is %dx%d, want square", row, size)
	}

	return contact.NewMatrix(data, size), nil
}

// SaveMatrix writes m in the plain text format, compressing when path
// ends in .zst. Mostly used by tests and fixture generation.
func SaveMatrix(m contact.Matrix, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create matrix file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if strings.HasSuffix(path, ".zst") {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		w = enc
	}

	bw := bufio.NewWriter(w)
	for i := 0; i < m.Size; i++ {
		for j := 0; j < m.Size; j++ {
			if j > 0 {
				if err := bw.WriteByte('\t'); err != nil {
					return fmt.Errorf("write matrix: %w", err)
				}
			}
			if _, err := bw.WriteString(strconv.FormatFloat(m.At(i, j), 'g', -1, 64)); err != nil {
				return fmt.Errorf("write matrix: %w", err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write matrix: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush matrix: %w", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("finalize compression: %w", err)
		}
	}
	return nil
}

// LoadRanges reads a contig-range table: one contig per line, columns
// start, end, and optional native pixel length, tab or space separated.
// Order index is the line position. Returns the ranges and the native
// lengths keyed by order index.
func LoadRanges(path string) ([]contact.ContigRange, map[int]int, error) {
	r, cleanup, err := openMaybeZstd(path)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()

	var ranges []contact.ContigRange
	lengths := make(map[int]int)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("contig line %q: want at least start and end", line)
		}

		start, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("parse contig start %q: %w", fields[0], err)
		}
		end, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, nil, fmt.Errorf("parse contig end %q: %w", fields[1], err)
		}
		if end <= start || start < 0 {
			return nil, nil, fmt.Errorf("contig range [%d,%d) is invalid", start, end)
		}

		idx := len(ranges)
		if len(fields) >= 3 {
			length, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, nil, fmt.Errorf("parse contig length %q: %w", fields[2], err)
			}
			lengths[idx] = length
		}
		ranges = append(ranges, contact.ContigRange{Start: start, End: end, OrderIndex: idx})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read contigs: %w", err)
	}

	return ranges, lengths, nil
}

// Finding is one problem reported by Validate.
type Finding struct {
	Message string
}

// Validate checks a loaded matrix for the contract the analyzers
// assume: finite, non-negative entries and symmetry within tolerance.
// Findings are reported, not fatal; the analyzers themselves never
// crash on bad values, but results on such input are meaningless.
func Validate(m contact.Matrix, symTolerance float64) []Finding {
	var findings []Finding

	negatives := 0
	nonFinite := 0
	asymmetric := 0
	for i := 0; i < m.Size; i++ {
		for j := i; j < m.Size; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				nonFinite++
			} else if v < 0 {
				negatives++
			}
			if j > i && math.Abs(v-m.At(j, i)) > symTolerance {
				asymmetric++
			}
		}
	}

	if nonFinite > 0 {
		findings = append(findings, Finding{Message: fmt.Sprintf("%d non-finite entries", nonFinite)})
	}
	if negatives > 0 {
		findings = append(findings, Finding{Message: fmt.Sprintf("%d negative entries", negatives)})
	}
	if asymmetric > 0 {
		findings = append(findings, Finding{Message: fmt.Sprintf("%d entry pairs differ across the diagonal by more than %g", asymmetric, symTolerance)})
	}
	return findings
}

// openMaybeZstd opens path for reading, wrapping .zst files in a
// decoder. The returned cleanup closes everything.
func openMaybeZstd(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	if !strings.HasSuffix(path, ".zst") {
		return f, func() { f.Close() }, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return dec, func() { dec.Close(); f.Close() }, nil
}
