package domain

// PaymentTypeSummary aggregates valid rows of one payment type.
type PaymentTypeSummary struct {
	Count          int    `json:"count"`
	Total          int64  `json:"total"`
	TotalFormatted string `json:"totalFormatted"`
}

// Preview summarizes validated rows before posting.
type Preview struct {
	TotalRows      int                                `json:"totalRows"`
	ValidRows      int                                `json:"validRows"`
	InvalidRows    int                                `json:"invalidRows"`
	WarningRows    int                                `json:"warningRows"`
	TotalAmount    int64                              `json:"totalAmount"`
	TotalFormatted string                             `json:"totalFormatted"`
	ByPaymentType  map[PaymentType]PaymentTypeSummary `json:"byPaymentType"`
	ErrorsByCode   map[string]int                     `json:"errorsByCode"`
	SampleErrors   []RowIssue                         `json:"sampleErrors"`
}

// RowIssue is an error or warning attributed to a source row.
type RowIssue struct {
	RowNumber int    `json:"rowNumber"`
	Field     string `json:"field,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// RowOutcome is the processing status of a single row.
type RowOutcome string

const (
	RowPosted       RowOutcome = "posted"
	RowFailed       RowOutcome = "failed"
	RowNotProcessed RowOutcome = "not_processed"
	RowRolledBack   RowOutcome = "rolled_back"
)

// RowResult is the outcome of applying one row inside a batch.
type RowResult struct {
	RowNumber     int        `json:"rowNumber"`
	Outcome       RowOutcome `json:"outcome"`
	TransactionID string     `json:"transactionId,omitempty"`
	JournalID     string     `json:"journalId,omitempty"`
	Error         string     `json:"error,omitempty"`
	ErrorClass    string     `json:"errorClass,omitempty"`
}

// ImportReport is the final summary of an import session.
type ImportReport struct {
	Success          bool                `json:"success"`
	BatchID          string              `json:"batchId,omitempty"`
	TotalRows        int                 `json:"totalRows"`
	ValidRows        int                 `json:"validRows"`
	PostedRows       int                 `json:"postedRows"`
	FailedRows       int                 `json:"failedRows"`
	NotProcessedRows int                 `json:"notProcessedRows"`
	Errors           []RowIssue          `json:"errors"`
	Warnings         []RowIssue          `json:"warnings"`
	Consistency      *ConsistencySummary `json:"consistency,omitempty"`
}

// ConsistencySummary is attached to a report after the post-batch consistency check.
type ConsistencySummary struct {
	Valid      bool `json:"valid"`
	IssueCount int  `json:"issueCount"`
}

// Report issue codes for rows that passed validation but were not posted.
const (
	IssuePostingFailed = "POSTING_FAILED"
	IssueRolledBack    = "ROLLED_BACK"
)
