// Package table reads and writes the comma-delimited files the datasets
// are shipped in.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotDecimal = errors.New("not a non-negative decimal")
	ErrOverflow   = errors.New("value out of integer range")
)

var maxWhole = decimal.NewFromInt(math.MaxInt)

// Field is a single cell. Numeric fields keep their parsed value.
type Field struct {
	Text    string
	Number  float64
	Numeric bool
}

func Text(s string) Field {
	return Field{Text: s}
}

func Number(f float64) Field {
	return Field{Text: strconv.FormatFloat(f, 'f', -1, 64), Number: f, Numeric: true}
}

func Int(n int) Field {
	return Field{Text: strconv.Itoa(n), Number: float64(n), Numeric: true}
}

func (f Field) String() string {
	if f.Numeric {
		return strconv.FormatFloat(f.Number, 'f', -1, 64)
	}
	return f.Text
}

type Row []Field

// Strings returns the textual form of every field.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.String()
	}
	return out
}

// Table is the content of one file. Lines holds the 1-based source line of
// each entry in Rows.
type Table struct {
	Name   string
	Header Row
	Rows   []Row
	Lines  []int
}

// Sniff returns a copy of t in which every cell that looks like a
// non-negative decimal is converted to a numeric field. Use it only for
// schema-less files; it cannot tell a numeric code in a text column apart
// from a measurement.
func (t *Table) Sniff() *Table {
	out := &Table{Name: t.Name, Header: t.Header, Lines: t.Lines, Rows: make([]Row, len(t.Rows))}
	for i, row := range t.Rows {
		conv := make(Row, len(row))
		for j, f := range row {
			conv[j] = ParseField(f.Text)
		}
		out.Rows[i] = conv
	}
	return out
}

// Read loads path. When skipHeader is set the first record is returned in
// Header instead of Rows.
func Read(path string, skipHeader bool) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Decode(f, skipHeader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t.Name = path
	return t, nil
}

// Decode parses comma-delimited records from r. Fields are trimmed and kept
// as text; conversion is left to the caller.
func Decode(r io.Reader, skipHeader bool) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	// Names such as Congo "Brazzaville" carry bare quotes.
	reader.LazyQuotes = true

	t := &Table{}
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		row := make(Row, len(record))
		for i, v := range record {
			row[i] = Text(strings.TrimSpace(v))
		}

		if first && skipHeader {
			t.Header = row
			first = false
			continue
		}
		first = false
		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, line)
	}
	return t, nil
}

// Write stores rows at path, truncating the file when overwrite is set and
// appending otherwise.
func Write(path string, rows []Row, overwrite bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}

	if err := Encode(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func Encode(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseField classifies a single cell: digits with at most one decimal
// point become numeric, anything else (signs, exponents, letters) stays text.
func ParseField(s string) Field {
	s = strings.TrimSpace(s)
	v, err := ParseDecimal(s)
	if err != nil {
		return Text(s)
	}
	return Field{Text: s, Number: v, Numeric: true}
}

// ParseDecimal parses s as a non-negative decimal without sign or exponent.
func ParseDecimal(s string) (float64, error) {
	d, err := parseUnsigned(s)
	if err != nil {
		return 0, err
	}
	v, _ := d.Float64()
	return v, nil
}

// ParseWhole parses s like ParseDecimal and truncates it to an integer.
// Values beyond the int range fail with ErrOverflow.
func ParseWhole(s string) (int, error) {
	d, err := parseUnsigned(s)
	if err != nil {
		return 0, err
	}
	d = d.Truncate(0)
	if d.GreaterThan(maxWhole) {
		return 0, ErrOverflow
	}
	return int(d.IntPart()), nil
}

func parseUnsigned(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !isUnsignedDecimal(s) {
		return decimal.Zero, ErrNotDecimal
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	return decimal.NewFromString(s)
}

func isUnsignedDecimal(s string) bool {
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}
