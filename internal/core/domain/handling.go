package domain

// ErrorClass is the category the cross-mode error handler assigns to a failure.
type ErrorClass string

const (
	ErrorClassValidation ErrorClass = "validation"
	ErrorClassBalance    ErrorClass = "balance"
	ErrorClassJournal    ErrorClass = "journal"
	ErrorClassSystem     ErrorClass = "system"
)

// ErrorContext describes where an error happened.
type ErrorContext struct {
	Operation     string          `json:"operation"`
	TransactionID string          `json:"transactionId,omitempty"`
	Mode          TransactionMode `json:"mode,omitempty"`
	BatchID       string          `json:"batchId,omitempty"`
	RowNumber     int             `json:"rowNumber,omitempty"`
}

// HandledError is the user-facing result of handling a failure.
type HandledError struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	Classification ErrorClass      `json:"classification"`
	Rollback       *RollbackResult `json:"rollback,omitempty"`
}

// RollbackOptions controls how a transaction is undone.
type RollbackOptions struct {
	Reason string
	// FinalStatus defaults to StatusDibatalkan.
	FinalStatus TransactionStatus
	// Hard deletes the transaction instead of marking it.
	Hard   bool
	UserID string
}

// RollbackResult reports what PerformRollback undid.
type RollbackResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	TransactionID     string `json:"transactionId"`
	JournalDeleted    bool   `json:"journalDeleted"`
	JournalReversed   bool   `json:"journalReversed"`
	ReversalJournalID string `json:"reversalJournalId,omitempty"`
	BalanceReverted   bool   `json:"balanceReverted"`
}

// CancelResult is returned by CancelProcessing.
type CancelResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UploadedFile is a file handed to the import workflow.
type UploadedFile struct {
	Name    string
	Content []byte
}

// TemplateFile is a downloadable import template.
type TemplateFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// WorkflowSnapshot is the externally visible state of an import session.
type WorkflowSnapshot struct {
	SessionID    string        `json:"sessionId"`
	State        WorkflowState `json:"workflowState"`
	FileName     string        `json:"fileName,omitempty"`
	TotalRows    int           `json:"totalRows"`
	ValidRows    int           `json:"validRows"`
	InvalidRows  int           `json:"invalidRows"`
	IsProcessing bool          `json:"isProcessing"`
	IsCancelled  bool          `json:"isCancelled"`
	CurrentBatch *Batch        `json:"currentBatch,omitempty"`
	Progress     *Progress     `json:"progress,omitempty"`
	LastError    string        `json:"lastError,omitempty"`
	Report       *ImportReport `json:"report,omitempty"`
}
