package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/utils"
	"github.com/shopspring/decimal"
)

// groupedThousands matches "1.500.000" or "1,500,000".
var groupedThousands = regexp.MustCompile(`^\d{1,3}([.,]\d{3})+$`)

// validationService checks import rows. It holds no per-call state.
type validationService struct {
	BaseService
	members            portsrepo.MemberRepository
	highValueThreshold int64
}

// NewValidationService creates a row validator. Rows above highValueThreshold get a warning.
func NewValidationService(members portsrepo.MemberRepository, highValueThreshold int64) portssvc.RowValidator {
	return &validationService{members: members, highValueThreshold: highValueThreshold}
}

func (s *validationService) Validate(ctx context.Context, row domain.ImportRow) (domain.ValidatedRow, error) {
	lookup, err := s.memberLookup(ctx)
	if err != nil {
		return domain.ValidatedRow{}, err
	}
	return s.validate(row, lookup), nil
}

func (s *validationService) ValidateAll(ctx context.Context, rows []domain.ImportRow) ([]domain.ValidatedRow, error) {
	lookup, err := s.memberLookup(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ValidatedRow, len(rows))
	for i, row := range rows {
		out[i] = s.validate(row, lookup)
	}
	return out, nil
}

func (s *validationService) memberLookup(ctx context.Context) (map[string]domain.Member, error) {
	if s.members == nil {
		return nil, nil
	}
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load members for validation")
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	lookup := make(map[string]domain.Member, len(members))
	for _, m := range members {
		lookup[strings.TrimSpace(m.Number)] = m
	}
	return lookup, nil
}

// validate applies every rule in order. Rules are independent, so several may fire on one row.
func (s *validationService) validate(row domain.ImportRow, members map[string]domain.Member) domain.ValidatedRow {
	result := domain.ValidationResult{
		RowNumber: row.RowNumber,
		Errors:    []domain.FieldIssue{},
		Warnings:  []domain.FieldIssue{},
	}
	addErr := func(field, code, msg string) {
		result.Errors = append(result.Errors, domain.FieldIssue{Field: field, Code: code, Message: msg})
	}
	addWarn := func(field, code, msg string) {
		result.Warnings = append(result.Warnings, domain.FieldIssue{Field: field, Code: code, Message: msg})
	}

	number := strings.TrimSpace(row.Get(domain.ColNomorAnggota))
	name := strings.TrimSpace(row.Get(domain.ColNamaAnggota))
	rawType := strings.TrimSpace(row.Get(domain.ColJenisPembayaran))
	rawAmount := strings.TrimSpace(row.Get(domain.ColJumlahPembayaran))

	// required
	for _, f := range []struct{ field, value string }{
		{domain.ColNomorAnggota, number},
		{domain.ColNamaAnggota, name},
		{domain.ColJenisPembayaran, rawType},
		{domain.ColJumlahPembayaran, rawAmount},
	} {
		if f.value == "" {
			addErr(f.field, domain.CodeRequiredFieldMissing, fmt.Sprintf("%s is required", f.field))
		}
	}

	// enumeration
	paymentType := domain.PaymentType(strings.ToLower(rawType))
	if rawType != "" && !paymentType.Valid() {
		addErr(domain.ColJenisPembayaran, domain.CodeInvalidPaymentType,
			fmt.Sprintf("payment type %q must be one of: hutang, piutang", rawType))
	}

	// numeric range
	var amount int64
	if rawAmount != "" {
		parsed, ok := parseAmount(rawAmount)
		switch {
		case !ok:
			addErr(domain.ColJumlahPembayaran, domain.CodeInvalidNumber, fmt.Sprintf("amount %q is not a number", rawAmount))
		case parsed.IsNegative():
			addErr(domain.ColJumlahPembayaran, domain.CodeNegativeValueNotAllowed, "amount cannot be negative")
		case !parsed.IsInteger():
			addErr(domain.ColJumlahPembayaran, domain.CodeInvalidNumber, "amount must be in whole rupiah")
		case parsed.IsZero():
			addErr(domain.ColJumlahPembayaran, domain.CodeZeroAmountNotAllowed, "amount must be greater than zero")
		case parsed.GreaterThan(decimal.NewFromInt(maxAmount)):
			addErr(domain.ColJumlahPembayaran, domain.CodeInvalidNumber, "amount is too large")
		default:
			amount = parsed.IntPart()
			if s.highValueThreshold > 0 && amount > s.highValueThreshold {
				addWarn(domain.ColJumlahPembayaran, domain.CodeHighValueAmount,
					fmt.Sprintf("amount %s exceeds the high-value threshold of %s", utils.FormatRupiah(amount), utils.FormatRupiah(s.highValueThreshold)))
			}
		}
	}

	// referential
	var member domain.Member
	var found bool
	if number != "" {
		member, found = members[number]
		switch {
		case !found:
			addErr(domain.ColNomorAnggota, domain.CodeMemberNotFound, fmt.Sprintf("member %s not found", number))
		case !member.CanTransact():
			addErr(domain.ColNomorAnggota, domain.CodeMemberNotEligible,
				fmt.Sprintf("member %s is %s and cannot receive payments", number, eligibilityLabel(member)))
		default:
			if name != "" && !sameName(name, member.Name) {
				addWarn(domain.ColNamaAnggota, domain.CodeMemberNameMismatch,
					fmt.Sprintf("name %q does not match member record %q", name, member.Name))
			}
			if amount > 0 && paymentType.Valid() && amount > member.Balance(paymentType) {
				addWarn(domain.ColJumlahPembayaran, domain.CodeAmountExceedsBalance,
					fmt.Sprintf("amount exceeds outstanding %s balance of %s", paymentType, utils.FormatRupiah(member.Balance(paymentType))))
			}
		}
	}

	result.IsValid = len(result.Errors) == 0
	validated := domain.ValidatedRow{Row: row, Result: result}
	if result.IsValid {
		validated.MemberID = member.ID
		validated.PaymentType = paymentType
		validated.Amount = amount
	}
	return validated
}

// maxAmount bounds amounts well inside int64 so balance arithmetic cannot overflow.
const maxAmount = int64(1) << 50

// parseAmount accepts plain numbers, "Rp" prefixes and Indonesian or English thousands grouping.
func parseAmount(raw string) (decimal.Decimal, bool) {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "Rp"), "rp")
	v = strings.ReplaceAll(strings.TrimSpace(v), " ", "")
	neg := strings.HasPrefix(v, "-")
	digits := strings.TrimPrefix(v, "-")
	if groupedThousands.MatchString(digits) {
		digits = strings.NewReplacer(".", "", ",", "").Replace(digits)
		v = digits
		if neg {
			v = "-" + digits
		}
	} else {
		v = strings.Replace(v, ",", ".", 1)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}

func eligibilityLabel(m domain.Member) string {
	if m.Ineligible {
		return "ineligible"
	}
	return string(m.Status)
}
