package parser

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/SscSPs/coop_backoffice/internal/middleware"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVRowParser parses UTF-8 CSV uploads. Lines starting with '#' are instructions and are skipped.
type CSVRowParser struct {
	maxRows int
}

// NewCSVRowParser creates a CSV parser. maxRows <= 0 means no limit.
func NewCSVRowParser(maxRows int) *CSVRowParser {
	return &CSVRowParser{maxRows: maxRows}
}

// Parse reads the whole file, returning data rows numbered from 1.
func (p *CSVRowParser) Parse(ctx context.Context, file domain.UploadedFile) ([]domain.ImportRow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	content := bytes.TrimPrefix(file.Content, utf8BOM)
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, &apperrors.ParseError{Reason: "file is empty"}
	}
	if !utf8.Valid(content) {
		return nil, &apperrors.ParseError{Reason: "file is not valid UTF-8"}
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.Comma = detectDelimiter(content)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &apperrors.ParseError{Reason: "file has no header row"}
		}
		return nil, &apperrors.ParseError{Reason: fmt.Sprintf("failed to read header: %v", err)}
	}
	columns := mapColumns(header)
	if err := validateColumns(columns); err != nil {
		return nil, err
	}

	rows := make([]domain.ImportRow, 0)
	rowNumber := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, &apperrors.ParseError{Row: rowNumber + 1, Reason: fmt.Sprintf("malformed CSV near line %d: %v", line, err)}
		}
		if isInstructionLine(record) {
			continue
		}
		row, ok := toRow(record, columns, rowNumber+1)
		if !ok {
			continue
		}
		rowNumber++
		rows = append(rows, row)
		if p.maxRows > 0 && len(rows) > p.maxRows {
			return nil, &apperrors.ParseError{Reason: fmt.Sprintf("file exceeds the maximum of %d rows", p.maxRows)}
		}
	}

	logger.Debug("Parsed CSV upload", "file", file.Name, "rows", len(rows))
	return rows, nil
}

// detectDelimiter picks ';' when the first line uses it, as spreadsheets in id-ID locales export that way.
func detectDelimiter(content []byte) rune {
	for _, line := range bytes.Split(content, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '#' {
			continue
		}
		if bytes.Count(trimmed, []byte(";")) > bytes.Count(trimmed, []byte(",")) {
			return ';'
		}
		return ','
	}
	return ','
}
