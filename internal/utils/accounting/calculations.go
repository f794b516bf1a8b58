package accounting

import (
	"fmt"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SumLines returns the debit and credit totals of journal lines.
func SumLines(lines []domain.JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(decimal.NewFromInt(l.Debit))
		credit = credit.Add(decimal.NewFromInt(l.Credit))
	}
	return debit, credit
}

// ValidateJournalBalance checks line shapes and that debits equal credits.
func ValidateJournalBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: journal must have at least two lines", apperrors.ErrJournalUnbalanced)
	}
	for i, l := range lines {
		if l.Account == "" {
			return fmt.Errorf("%w: line %d has no account", apperrors.ErrJournalUnbalanced, i)
		}
		if !l.HasSingleSide() {
			return fmt.Errorf("%w: line %d must have exactly one positive side", apperrors.ErrJournalUnbalanced, i)
		}
	}
	debit, credit := SumLines(lines)
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrJournalUnbalanced, debit.String(), credit.String())
	}
	return nil
}

// ReverseLines swaps the debit and credit side of every line.
func ReverseLines(lines []domain.JournalLine) []domain.JournalLine {
	out := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		out[i] = domain.JournalLine{Account: l.Account, AccountName: l.AccountName, Debit: l.Credit, Credit: l.Debit}
	}
	return out
}
