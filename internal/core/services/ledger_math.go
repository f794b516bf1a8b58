package services

import "github.com/SscSPs/coop_backoffice/internal/core/domain"

// computeBalance is the balance a member should have for payment type t given its opening
// balance and every posted transaction.
func computeBalance(member domain.Member, t domain.PaymentType, txns []domain.Transaction) int64 {
	balance := member.Opening(t)
	for _, txn := range txns {
		if txn.MemberID == member.ID && txn.PaymentType == t && txn.IsPosted() {
			balance += txn.BalanceDelta()
		}
	}
	return balance
}

// PostingError ties a posting failure to the transaction that was created for it, if any.
type PostingError struct {
	TransactionID string
	Err           error
}

func (e *PostingError) Error() string {
	if e.TransactionID == "" {
		return e.Err.Error()
	}
	return "transaction " + e.TransactionID + ": " + e.Err.Error()
}

func (e *PostingError) Unwrap() error {
	return e.Err
}
