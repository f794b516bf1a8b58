package domain

// Consistency issue codes.
const (
	IssueSaldoMismatch     = "SALDO_MISMATCH"
	IssueJournalUnbalanced = "JOURNAL_UNBALANCED"
	IssueInvalidLine       = "INVALID_JOURNAL_LINE"
	IssueMissingJournal    = "MISSING_JOURNAL"
	IssueEmptyJournal      = "EMPTY_JOURNAL"
	IssueOrphanJournal     = "ORPHAN_JOURNAL"
	IssueAmountMismatch    = "JOURNAL_AMOUNT_MISMATCH"
)

// ConsistencyIssue describes one violated ledger invariant.
type ConsistencyIssue struct {
	Code          string      `json:"code"`
	Message       string      `json:"message"`
	MemberID      string      `json:"memberId,omitempty"`
	PaymentType   PaymentType `json:"paymentType,omitempty"`
	TransactionID string      `json:"transactionId,omitempty"`
	JournalID     string      `json:"journalId,omitempty"`
	Expected      int64       `json:"expected,omitempty"`
	Actual        int64       `json:"actual,omitempty"`
}

// ConsistencyResult is the outcome of one or more consistency checks.
type ConsistencyResult struct {
	Valid  bool               `json:"valid"`
	Errors []ConsistencyIssue `json:"errors"`
}

// NewConsistencyResult builds a result from the issues found.
func NewConsistencyResult(issues []ConsistencyIssue) ConsistencyResult {
	if issues == nil {
		issues = []ConsistencyIssue{}
	}
	return ConsistencyResult{Valid: len(issues) == 0, Errors: issues}
}

// Merge combines several results.
func Merge(results ...ConsistencyResult) ConsistencyResult {
	var all []ConsistencyIssue
	for _, r := range results {
		all = append(all, r.Errors...)
	}
	return NewConsistencyResult(all)
}

// RepairResult lists which issues were repaired and which need manual review.
type RepairResult struct {
	Repaired   []ConsistencyIssue `json:"repaired"`
	Unrepaired []ConsistencyIssue `json:"unrepaired"`
}
