package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
)

const (
	colTitle            = "title"
	colShortDescription = "short_description"
	colLongDescription  = "long_description"
	colTechnology       = "technology"
	colPrice            = "price"
	colImage            = "image"
	colFile             = "file"
	colFeatured         = "featured"
	colDemoVideoURL     = "demo_video_url"
)

var requiredColumns = []string{colTitle, colShortDescription, colLongDescription, colTechnology, colPrice, colFile}

var ErrMissingColumns = errors.New("missing required columns")

// Row is one parsed catalog line. Line is 1-based and counts the header.
type Row struct {
	Line   int
	Params catalog.CreateParams
}

type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Parse reads a catalog CSV. Rows that cannot be converted are reported in the
// returned RowErrors and do not stop parsing; a malformed header does.
func Parse(r io.Reader) ([]Row, []RowError, error) {
	br, err := utf8Reader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("empty file")
		}

		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		rows    []Row
		rowErrs []RowError
	)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}

		if blank(record) {
			continue
		}

		params, err := cols.params(record)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}

		rows = append(rows, Row{Line: line, Params: params})
	}

	return rows, rowErrs, nil
}

// sniffDelimiter chooses ';' or ',' by counting them in the header line.
func sniffDelimiter(br *bufio.Reader) rune {
	sample, _ := br.Peek(sniffLen)

	first, _, _ := strings.Cut(string(sample), "\n")

	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}

	return ','
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

type columns map[string]int

func indexColumns(header []string) (columns, error) {
	cols := make(columns, len(header))

	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")

		if key != "" {
			cols[key] = i
		}
	}

	var missing []string

	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return cols, nil
}

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[i])
}

func (c columns) params(record []string) (catalog.CreateParams, error) {
	tech, err := parseTechnology(c.get(record, colTechnology))
	if err != nil {
		return catalog.CreateParams{}, err
	}

	price, err := parsePrice(c.get(record, colPrice))
	if err != nil {
		return catalog.CreateParams{}, fmt.Errorf("price: %w", err)
	}

	featured, err := parseBool(c.get(record, colFeatured))
	if err != nil {
		return catalog.CreateParams{}, fmt.Errorf("featured: %w", err)
	}

	p := catalog.CreateParams{
		Title:            c.get(record, colTitle),
		ShortDescription: c.get(record, colShortDescription),
		LongDescription:  c.get(record, colLongDescription),
		Technology:       tech,
		Price:            price,
		Image:            c.get(record, colImage),
		File:             c.get(record, colFile),
		Featured:         featured,
	}

	if demo := c.get(record, colDemoVideoURL); demo != "" {
		p.DemoVideoURL = &demo
	}

	return p, nil
}

func parseTechnology(s string) (catalog.Technology, error) {
	for _, t := range catalog.Technologies {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}

	return "", fmt.Errorf("unknown technology %q", s)
}

// parsePrice accepts "499", "499.00", "499,00", "1.499,00" and "1,499.00".
// Whichever of '.' or ',' appears last is the decimal separator.
func parsePrice(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("₹", "", "Rs.", "", "INR", "", " ", "", "\u00a0", "").Replace(s)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}

	dot := strings.LastIndex(clean, ".")
	comma := strings.LastIndex(clean, ",")

	switch {
	case comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case dot > comma && comma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	return d, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y", "x":
		return true, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
