// Package ingest is the input boundary: it turns uploaded delimited text
// into a raw table the normalizer can consume, auto-detecting encoding and
// field delimiter, and generates the built-in sample dataset.
package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
)

const (
	// minColumns is the acceptance bar for a detected encoding/delimiter
	// pair: the header must split into at least this many fields.
	minColumns = 10

	maxWorkers = 10
	batchSize  = 10000
)

// Table is a raw parsed table: header names and string cells, untouched by
// normalization.
type Table struct {
	Headers []string
	Rows    [][]string
}

var delimiters = []rune{',', ';', '\t'}

type encodingCandidate struct {
	name    string
	charmap *charmap.Charmap
}

// Candidate order mirrors the loader this replaces: UTF-8 with BOM, plain
// UTF-8, then the common Latin legacy encodings.
var encodings = []encodingCandidate{
	{name: "utf-8-sig"},
	{name: "utf-8"},
	{name: "latin1", charmap: charmap.ISO8859_1},
	{name: "windows-1252", charmap: charmap.Windows1252},
}

// Parse reads delimited text and auto-detects its encoding and delimiter by
// trying the fixed candidate lists until a header parse yields at least ten
// columns. When every candidate fails it falls back to a permissive lossy
// re-decode with a sniffed delimiter.
func Parse(ctx context.Context, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	for _, enc := range encodings {
		text, ok := decodeWith(data, enc)
		if !ok {
			continue
		}
		for _, delim := range delimiters {
			if table, err := parseText(ctx, text, delim, true); err == nil {
				return table, nil
			}
		}
	}

	// Permissive fallback: lossy UTF-8 and a delimiter sniffed from the
	// header line, with no minimum-column requirement.
	text := strings.ToValidUTF8(string(data), "")
	text = strings.TrimPrefix(text, "\ufeff")
	return parseText(ctx, text, sniffDelimiter(text), false)
}

func decodeWith(data []byte, enc encodingCandidate) (string, bool) {
	if enc.charmap != nil {
		decoded, err := enc.charmap.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		return string(decoded), true
	}
	text := string(data)
	if !strings.HasPrefix(text, "\ufeff") && enc.name == "utf-8-sig" {
		return "", false
	}
	text = strings.TrimPrefix(text, "\ufeff")
	if !utf8.ValidString(text) {
		return "", false
	}
	return text, true
}

// sniffDelimiter picks the candidate occurring most often in the first line.
func sniffDelimiter(text string) rune {
	header, _, _ := strings.Cut(text, "\n")
	best := delimiters[0]
	bestCount := -1
	for _, d := range delimiters {
		if n := strings.Count(header, string(d)); n > bestCount {
			best = d
			bestCount = n
		}
	}
	return best
}

// parseText splits the text into lines, accepts the header when it meets
// the column bar (unless strict is off) and materializes data rows in
// batches of concurrent workers. Lines that fail to parse as a delimited
// row are skipped, not surfaced.
func parseText(ctx context.Context, text string, delim rune, strict bool) (*Table, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty file")
	}
	headers, err := parseLine(scanner.Text(), delim)
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if strict && len(headers) < minColumns {
		return nil, fmt.Errorf("header has %d columns, need at least %d", len(headers), minColumns)
	}

	var lines []string
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}

	rows, err := materializeRows(ctx, lines, delim)
	if err != nil {
		return nil, err
	}
	return &Table{Headers: headers, Rows: rows}, nil
}

func materializeRows(ctx context.Context, lines []string, delim rune) ([][]string, error) {
	parsed := make([][]string, len(lines))

	for start := 0; start < len(lines); start += batchSize {
		end := min(start+batchSize, len(lines))

		var g errgroup.Group
		g.SetLimit(maxWorkers)
		for i := start; i < end; i++ {
			g.Go(func() error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				fields, err := parseLine(lines[i], delim)
				if err != nil {
					return nil // skip malformed line
				}
				parsed[i] = fields
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	rows := make([][]string, 0, len(parsed))
	for _, fields := range parsed {
		if fields != nil {
			rows = append(rows, fields)
		}
	}
	return rows, nil
}

func parseLine(line string, delim rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.Read()
}
