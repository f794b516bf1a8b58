package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sync/atomic"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/xuri/excelize/v2"
)

const (
	templateBaseName   = "template_import_pembayaran"
	templateDataSheet  = "Pembayaran"
	templateHelpSheet  = "Petunjuk"
	csvContentType     = "text/csv; charset=utf-8"
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	utf8BOM            = "\uFEFF"
	templateMaxColumns = "E"
)

var templateExampleRows = [][]string{
	{"A-001", "Budi Santoso", "hutang", "500000", "Angsuran pinjaman bulan Januari"},
	{"A-002", "Siti Aminah", "piutang", "250000", "Pelunasan piutang usaha toko"},
	{"A-003", "Ahmad Fauzi", "hutang", "1000000", "Pelunasan sebagian pinjaman"},
}

var templateInstructions = []string{
	"Petunjuk pengisian:",
	"1. Jangan mengubah baris judul kolom.",
	"2. nomor_anggota wajib diisi sesuai nomor anggota yang terdaftar.",
	"3. nama_anggota wajib diisi dan sebaiknya sama dengan data anggota.",
	"4. jenis_pembayaran diisi hutang atau piutang.",
	"5. jumlah_pembayaran diisi angka bulat lebih dari nol tanpa desimal (contoh 500000 atau 500.000).",
	"6. keterangan boleh dikosongkan.",
	"7. Hapus baris contoh sebelum mengunggah. Baris yang diawali tanda pagar diabaikan.",
}

type templateService struct {
	BaseService
	counter atomic.Uint64
}

// NewTemplateService creates the import template generator.
func NewTemplateService() portssvc.TemplateSvc {
	return &templateService{}
}

// filename is unique per call, even within the same millisecond.
func (s *templateService) filename(ext string) string {
	return fmt.Sprintf("%s_%d_%d.%s", templateBaseName, s.Now().UnixMilli(), s.counter.Add(1), ext)
}

func (s *templateService) GenerateTemplate() (domain.TemplateFile, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(domain.ImportColumns); err != nil {
		return domain.TemplateFile{}, fmt.Errorf("failed to write template header: %w", err)
	}
	if err := w.WriteAll(templateExampleRows); err != nil {
		return domain.TemplateFile{}, fmt.Errorf("failed to write template rows: %w", err)
	}
	// instruction lines are written raw so the csv writer never quotes away the leading '#'
	for _, line := range templateInstructions {
		buf.WriteString("# " + line + "\n")
	}

	return domain.TemplateFile{
		Filename:    s.filename("csv"),
		ContentType: csvContentType,
		Content:     buf.Bytes(),
	}, nil
}

func (s *templateService) GenerateXLSXTemplate() (domain.TemplateFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateDataSheet); err != nil {
		return domain.TemplateFile{}, fmt.Errorf("failed to name data sheet: %w", err)
	}
	header := make([]any, len(domain.ImportColumns))
	for i, c := range domain.ImportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(templateDataSheet, "A1", &header); err != nil {
		return domain.TemplateFile{}, fmt.Errorf("failed to write template header: %w", err)
	}
	for i, row := range templateExampleRows {
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return domain.TemplateFile{}, err
		}
		if err := f.SetSheetRow(templateDataSheet, cell, &values); err != nil {
			return domain.TemplateFile{}, fmt.Errorf("failed to write template row: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return domain.TemplateFile{}, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(templateDataSheet, "A1", templateMaxColumns+"1", bold); err != nil {
		return domain.TemplateFile{}, err
	}
	if err := f.SetColWidth(templateDataSheet, "A", templateMaxColumns, 24); err != nil {
		return domain.TemplateFile{}, err
	}

	if _, err := f.NewSheet(templateHelpSheet); err != nil {
		return domain.TemplateFile{}, fmt.Errorf("failed to create instructions sheet: %w", err)
	}
	for i, line := range templateInstructions {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return domain.TemplateFile{}, err
		}
		if err := f.SetCellValue(templateHelpSheet, cell, line); err != nil {
			return domain.TemplateFile{}, err
		}
	}
	if err := f.SetColWidth(templateHelpSheet, "A", "A", 100); err != nil {
		return domain.TemplateFile{}, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return domain.TemplateFile{}, fmt.Errorf("failed to write workbook: %w", err)
	}
	return domain.TemplateFile{
		Filename:    s.filename("xlsx"),
		ContentType: xlsxContentType,
		Content:     buf.Bytes(),
	}, nil
}
