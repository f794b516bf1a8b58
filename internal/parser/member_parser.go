package parser

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Member register columns. nik, status and both balances are optional.
const (
	memberColNIK          = "nik"
	memberColStatus       = "status"
	memberColSaldoHutang  = "saldo_hutang"
	memberColSaldoPiutang = "saldo_piutang"
)

// ParseMembers reads a member register CSV into members with zero-value ids.
// Balances become both the opening and the current balance.
func ParseMembers(ctx context.Context, content []byte) ([]domain.Member, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.Comma = detectDelimiter(content)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &apperrors.ParseError{Reason: "member file has no header row"}
		}
		return nil, &apperrors.ParseError{Reason: fmt.Sprintf("failed to read header: %v", err)}
	}
	columns := mapColumns(header)
	for _, col := range []string{domain.ColNomorAnggota, domain.ColNamaAnggota} {
		if _, ok := columns[col]; !ok {
			return nil, &apperrors.ParseError{Reason: "missing required column: " + col}
		}
	}

	get := func(record []string, col string) string {
		idx, ok := columns[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	members := make([]domain.Member, 0)
	seen := make(map[string]int)
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &apperrors.ParseError{Row: row, Reason: err.Error()}
		}

		number := get(record, domain.ColNomorAnggota)
		if number == "" {
			continue
		}
		if first, dup := seen[number]; dup {
			return nil, &apperrors.ParseError{Row: row, Reason: fmt.Sprintf("nomor_anggota %s repeats row %d", number, first)}
		}
		seen[number] = row

		status := domain.MemberStatus(strings.ToLower(get(record, memberColStatus)))
		switch status {
		case "":
			status = domain.MemberAktif
		case domain.MemberAktif, domain.MemberNonaktif, domain.MemberKeluar:
		default:
			return nil, &apperrors.ParseError{Row: row, Reason: fmt.Sprintf("unknown status %q", status)}
		}

		hutang, err := parseBalance(get(record, memberColSaldoHutang))
		if err != nil {
			return nil, &apperrors.ParseError{Row: row, Reason: "saldo_hutang: " + err.Error()}
		}
		piutang, err := parseBalance(get(record, memberColSaldoPiutang))
		if err != nil {
			return nil, &apperrors.ParseError{Row: row, Reason: "saldo_piutang: " + err.Error()}
		}

		members = append(members, domain.Member{
			Number:         number,
			Name:           get(record, domain.ColNamaAnggota),
			NIK:            get(record, memberColNIK),
			Status:         status,
			OpeningHutang:  hutang,
			OpeningPiutang: piutang,
			SaldoHutang:    hutang,
			SaldoPiutang:   piutang,
		})
	}
	return members, nil
}

// parseBalance accepts whole, non-negative rupiah amounts. Empty means zero.
func parseBalance(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, "_", ""))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%q is negative", raw)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%q has a fractional part", raw)
	}
	return d.IntPart(), nil
}
