package services

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/SscSPs/coop_backoffice/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var templateName = regexp.MustCompile(`^template_import_pembayaran_\d+_\d+\.(csv|xlsx)$`)

func TestTemplateService_CSVIsStableWithUniqueNames(t *testing.T) {
	svc := NewTemplateService()
	seen := map[string]bool{}
	var first []byte
	for i := 0; i < 50; i++ {
		file, err := svc.GenerateTemplate()
		require.NoError(t, err)
		assert.Regexp(t, templateName, file.Filename)
		assert.False(t, seen[file.Filename], "duplicate filename %s", file.Filename)
		seen[file.Filename] = true
		if first == nil {
			first = file.Content
		}
		assert.Equal(t, first, file.Content)
	}

	file, err := svc.GenerateTemplate()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("\uFEFF")), "starts with a UTF-8 BOM")
	assert.Contains(t, string(file.Content), "nomor_anggota,nama_anggota,jenis_pembayaran,jumlah_pembayaran,keterangan\n")
	assert.Contains(t, string(file.Content), "\n# Petunjuk pengisian:\n")
}

func TestTemplateService_CSVRoundTripsThroughParser(t *testing.T) {
	file, err := NewTemplateService().GenerateTemplate()
	require.NoError(t, err)

	rows, err := parser.NewFileParser(0).Parse(testCtx(), domain.UploadedFile{Name: file.Filename, Content: file.Content})
	require.NoError(t, err)
	require.Len(t, rows, len(templateExampleRows))
	for i, row := range rows {
		for j, col := range domain.ImportColumns {
			assert.Equal(t, templateExampleRows[i][j], row.Get(col))
		}
	}
}

func TestTemplateService_XLSXMatchesCSV(t *testing.T) {
	svc := NewTemplateService()
	file, err := svc.GenerateXLSXTemplate()
	require.NoError(t, err)
	assert.Regexp(t, templateName, file.Filename)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{templateDataSheet, templateHelpSheet}, wb.GetSheetList())

	rows, err := parser.NewFileParser(0).Parse(testCtx(), domain.UploadedFile{Name: file.Filename, Content: file.Content})
	require.NoError(t, err)
	require.Len(t, rows, len(templateExampleRows))
	assert.Equal(t, "A-002", rows[1].Get(domain.ColNomorAnggota))
	assert.Equal(t, "piutang", rows[1].Get(domain.ColJenisPembayaran))
}
