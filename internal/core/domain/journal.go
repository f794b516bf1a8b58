package domain

import "time"

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "posted"
	Reversed JournalStatus = "reversed"
)

// JournalLine is one side of a double-entry posting. Exactly one of Debit or Credit is non-zero.
type JournalLine struct {
	Account     string `json:"account"`
	AccountName string `json:"accountName,omitempty"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
}

// HasSingleSide reports whether exactly one of Debit and Credit is set and positive.
func (l JournalLine) HasSingleSide() bool {
	return (l.Debit > 0 && l.Credit == 0) || (l.Credit > 0 && l.Debit == 0)
}

// JournalEntry is the balanced accounting record backing a posted transaction.
type JournalEntry struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Lines         []JournalLine   `json:"lines"`
	TransactionID string          `json:"transactionId,omitempty"`
	Mode          TransactionMode `json:"mode,omitempty"`
	Status        JournalStatus   `json:"status"`
	Reported      bool            `json:"reported"`             // included in an external report; reverse instead of delete
	ReversalOf    *string         `json:"reversalOf,omitempty"` // id of the entry this one reverses
	ReversedBy    *string         `json:"reversedBy,omitempty"`
	AuditTrail    AuditFields     `json:"auditTrail"`
}

// Totals returns the debit and credit sums of the entry.
func (j JournalEntry) Totals() (debit, credit int64) {
	for _, l := range j.Lines {
		debit += l.Debit
		credit += l.Credit
	}
	return debit, credit
}

// IsBalanced reports whether total debits equal total credits.
func (j JournalEntry) IsBalanced() bool {
	d, c := j.Totals()
	return d == c
}
