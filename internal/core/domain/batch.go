package domain

import "time"

// BatchStatus is the processing state of an import batch.
type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchRunning   BatchStatus = "running"
	BatchCompleted BatchStatus = "completed"
	BatchCancelled BatchStatus = "cancelled"
	BatchFailed    BatchStatus = "failed"
)

// ChunkStatus is the processing state of a single chunk of rows.
type ChunkStatus string

const (
	ChunkPending      ChunkStatus = "pending"
	ChunkCompleted    ChunkStatus = "completed"
	ChunkFailed       ChunkStatus = "failed"
	ChunkNotProcessed ChunkStatus = "not_processed"
)

// Chunk is a contiguous slice of batch rows processed as a unit.
type Chunk struct {
	Index    int         `json:"index"`
	Offset   int         `json:"offset"`
	Size     int         `json:"size"`
	Status   ChunkStatus `json:"status"`
	Attempts int         `json:"attempts"`
	Error    string      `json:"error,omitempty"`
}

// Batch is one processBatch invocation over the validated rows of an import.
type Batch struct {
	ID             string      `json:"id"`
	SessionID      string      `json:"sessionId,omitempty"`
	TotalRows      int         `json:"totalRows"`
	Chunks         []Chunk     `json:"chunks"`
	ProcessedCount int         `json:"processedCount"`
	Status         BatchStatus `json:"status"`
	StartedAt      time.Time   `json:"startedAt"`
	FinishedAt     *time.Time  `json:"finishedAt,omitempty"`
	AuditTrail     AuditFields `json:"auditTrail"`
}

// Terminal reports whether the batch has stopped processing.
func (b Batch) Terminal() bool {
	switch b.Status {
	case BatchCompleted, BatchCancelled, BatchFailed:
		return true
	}
	return false
}

// SplitChunks divides total rows into ordered chunks of at most size rows.
func SplitChunks(total, size int) []Chunk {
	if size <= 0 {
		size = total
	}
	var chunks []Chunk
	for offset, idx := 0, 0; offset < total; offset, idx = offset+size, idx+1 {
		n := size
		if offset+n > total {
			n = total - offset
		}
		chunks = append(chunks, Chunk{Index: idx, Offset: offset, Size: n, Status: ChunkPending})
	}
	return chunks
}

// Progress is reported after each chunk finishes.
type Progress struct {
	ProcessedCount int     `json:"processedCount"`
	TotalCount     int     `json:"totalCount"`
	Percent        float64 `json:"percent"`
	CurrentChunk   int     `json:"currentChunk"`
}

// NewProgress builds a progress snapshot.
func NewProgress(processed, total, chunk int) Progress {
	p := Progress{ProcessedCount: processed, TotalCount: total, CurrentChunk: chunk}
	if total > 0 {
		p.Percent = float64(processed) * 100 / float64(total)
	}
	return p
}
