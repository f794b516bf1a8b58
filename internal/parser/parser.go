package parser

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
)

// requiredColumns must be present in the header row of any import file.
var requiredColumns = []string{
	domain.ColNomorAnggota,
	domain.ColNamaAnggota,
	domain.ColJenisPembayaran,
	domain.ColJumlahPembayaran,
}

// FileParser dispatches to the CSV or XLSX parser by file extension.
type FileParser struct {
	csv  *CSVRowParser
	xlsx *XLSXRowParser
}

// NewFileParser creates a parser accepting .csv and .xlsx uploads.
func NewFileParser(maxRows int) *FileParser {
	return &FileParser{csv: NewCSVRowParser(maxRows), xlsx: NewXLSXRowParser(maxRows)}
}

var _ portssvc.RowParser = (*FileParser)(nil)

func (p *FileParser) Parse(ctx context.Context, file domain.UploadedFile) ([]domain.ImportRow, error) {
	switch strings.ToLower(filepath.Ext(file.Name)) {
	case ".csv", ".txt":
		return p.csv.Parse(ctx, file)
	case ".xlsx":
		return p.xlsx.Parse(ctx, file)
	default:
		return nil, &apperrors.ParseError{Reason: "unsupported file type " + filepath.Ext(file.Name) + ", expected .csv or .xlsx"}
	}
}

// normalizeHeader maps "Nomor Anggota" or " NOMOR_ANGGOTA" to "nomor_anggota".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

// mapColumns builds a column-name to index map from a header row.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if name == "" {
			continue
		}
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return columns
}

func validateColumns(columns map[string]int) error {
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &apperrors.ParseError{Reason: "missing required columns: " + strings.Join(missing, ", ")}
	}
	return nil
}

// toRow converts a record into an ImportRow. It returns false for blank records.
func toRow(record []string, columns map[string]int, rowNumber int) (domain.ImportRow, bool) {
	fields := make(map[string]string, len(domain.ImportColumns))
	blank := true
	for _, col := range domain.ImportColumns {
		idx, ok := columns[col]
		if !ok || idx >= len(record) {
			fields[col] = ""
			continue
		}
		v := strings.TrimSpace(record[idx])
		if v != "" {
			blank = false
		}
		fields[col] = v
	}
	if blank {
		return domain.ImportRow{}, false
	}
	return domain.ImportRow{RowNumber: rowNumber, Fields: fields}, true
}

func isInstructionLine(record []string) bool {
	return len(record) > 0 && strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(record[0], "\uFEFF")), "#")
}
