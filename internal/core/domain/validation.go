package domain

// Validation error and warning codes.
const (
	CodeRequiredFieldMissing    = "REQUIRED_FIELD_MISSING"
	CodeInvalidPaymentType      = "INVALID_PAYMENT_TYPE"
	CodeInvalidNumber           = "INVALID_NUMBER"
	CodeNegativeValueNotAllowed = "NEGATIVE_VALUE_NOT_ALLOWED"
	CodeZeroAmountNotAllowed    = "ZERO_AMOUNT_NOT_ALLOWED"
	CodeHighValueAmount         = "HIGH_VALUE_AMOUNT"
	CodeMemberNotFound          = "MEMBER_NOT_FOUND"
	CodeMemberNotEligible       = "MEMBER_NOT_ELIGIBLE"
	CodeMemberNameMismatch      = "MEMBER_NAME_MISMATCH"
	CodeAmountExceedsBalance    = "AMOUNT_EXCEEDS_BALANCE"
)

// Import column names, in template order.
const (
	ColNomorAnggota     = "nomor_anggota"
	ColNamaAnggota      = "nama_anggota"
	ColJenisPembayaran  = "jenis_pembayaran"
	ColJumlahPembayaran = "jumlah_pembayaran"
	ColKeterangan       = "keterangan"
)

// ImportColumns lists the template header in order.
var ImportColumns = []string{ColNomorAnggota, ColNamaAnggota, ColJenisPembayaran, ColJumlahPembayaran, ColKeterangan}

// ImportRow is one parsed spreadsheet row keyed by column name. RowNumber is 1-based over data rows.
type ImportRow struct {
	RowNumber int               `json:"rowNumber"`
	Fields    map[string]string `json:"fields"`
}

// Get returns the raw value of a column.
func (r ImportRow) Get(col string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[col]
}

// FieldIssue is a single validation error or warning on a row.
type FieldIssue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult is the advisory outcome of validating one row.
type ValidationResult struct {
	RowNumber int          `json:"rowNumber"`
	IsValid   bool         `json:"isValid"`
	Errors    []FieldIssue `json:"errors"`
	Warnings  []FieldIssue `json:"warnings"`
}

// ValidatedRow pairs a row with its validation result and, when valid, the normalized payment values.
type ValidatedRow struct {
	Row         ImportRow        `json:"row"`
	Result      ValidationResult `json:"result"`
	MemberID    string           `json:"memberId,omitempty"`
	PaymentType PaymentType      `json:"paymentType,omitempty"`
	Amount      int64            `json:"amount,omitempty"`
}
