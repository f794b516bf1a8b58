package parser_test

import (
	"context"
	"testing"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/SscSPs/coop_backoffice/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMembers(t *testing.T) {
	content := "Nomor Anggota,Nama Anggota,NIK,Status,Saldo Hutang,Saldo Piutang\n" +
		"A-001,Budi Santoso,3201010101,aktif,500000,\n" +
		"# contoh anggota keluar\n" +
		"A-002,Siti Aminah,,KELUAR,,250000\n" +
		",,,,,\n"

	members, err := parser.ParseMembers(context.Background(), []byte(content))
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "A-001", members[0].Number)
	assert.Equal(t, int64(500000), members[0].OpeningHutang)
	assert.Equal(t, members[0].OpeningHutang, members[0].SaldoHutang)
	assert.Equal(t, domain.MemberAktif, members[0].Status)
	assert.Empty(t, members[0].ID)

	assert.Equal(t, domain.MemberKeluar, members[1].Status)
	assert.Equal(t, int64(250000), members[1].SaldoPiutang)
}

func TestParseMembers_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "missing name column", content: "nomor_anggota\nA-001\n"},
		{name: "negative balance", content: "nomor_anggota,nama_anggota,saldo_hutang\nA-001,Budi,-10\n"},
		{name: "fractional balance", content: "nomor_anggota,nama_anggota,saldo_hutang\nA-001,Budi,10.5\n"},
		{name: "unknown status", content: "nomor_anggota,nama_anggota,status\nA-001,Budi,pensiun\n"},
		{name: "duplicate number", content: "nomor_anggota,nama_anggota\nA-001,Budi\nA-001,Budi\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseMembers(context.Background(), []byte(tt.content))
			var parseErr *apperrors.ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}
