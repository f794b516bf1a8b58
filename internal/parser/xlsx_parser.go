package parser

import (
	"bytes"
	"context"
	"fmt"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/SscSPs/coop_backoffice/internal/middleware"
	"github.com/xuri/excelize/v2"
)

// DataSheetName is the sheet holding payment rows in generated templates.
const DataSheetName = "Pembayaran"

// XLSXRowParser parses .xlsx uploads. It reads the "Pembayaran" sheet when present, else the first sheet.
type XLSXRowParser struct {
	maxRows int
}

// NewXLSXRowParser creates an XLSX parser. maxRows <= 0 means no limit.
func NewXLSXRowParser(maxRows int) *XLSXRowParser {
	return &XLSXRowParser{maxRows: maxRows}
}

func (p *XLSXRowParser) Parse(ctx context.Context, file domain.UploadedFile) ([]domain.ImportRow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(file.Content) == 0 {
		return nil, &apperrors.ParseError{Reason: "file is empty"}
	}
	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	if err != nil {
		return nil, &apperrors.ParseError{Reason: fmt.Sprintf("failed to open workbook: %v", err)}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn("Failed to close workbook", "error", cerr)
		}
	}()

	sheet := DataSheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &apperrors.ParseError{Reason: "workbook has no sheets"}
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, &apperrors.ParseError{Reason: fmt.Sprintf("failed to read sheet %s: %v", sheet, err)}
	}

	headerIdx := -1
	for i, rec := range records {
		if len(rec) == 0 || isInstructionLine(rec) {
			continue
		}
		headerIdx = i
		break
	}
	if headerIdx < 0 {
		return nil, &apperrors.ParseError{Reason: "sheet has no header row"}
	}
	columns := mapColumns(records[headerIdx])
	if err := validateColumns(columns); err != nil {
		return nil, err
	}

	rows := make([]domain.ImportRow, 0, len(records)-headerIdx-1)
	for _, rec := range records[headerIdx+1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isInstructionLine(rec) {
			continue
		}
		row, ok := toRow(rec, columns, len(rows)+1)
		if !ok {
			continue
		}
		rows = append(rows, row)
		if p.maxRows > 0 && len(rows) > p.maxRows {
			return nil, &apperrors.ParseError{Reason: fmt.Sprintf("file exceeds the maximum of %d rows", p.maxRows)}
		}
	}

	logger.Debug("Parsed XLSX upload", "file", file.Name, "sheet", sheet, "rows", len(rows))
	return rows, nil
}
