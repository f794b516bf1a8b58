package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validatedRows(n int) []domain.ValidatedRow {
	rows := make([]domain.ValidatedRow, n)
	for i := range rows {
		rows[i] = domain.ValidatedRow{
			Row:         domain.ImportRow{RowNumber: i + 2},
			Result:      domain.ValidationResult{RowNumber: i + 2, IsValid: true},
			MemberID:    fmt.Sprintf("m%d", i),
			PaymentType: domain.Hutang,
			Amount:      1000,
		}
	}
	return rows
}

func postedApply(calls *atomic.Int32) portssvc.ApplyFunc {
	return func(ctx context.Context, row domain.ValidatedRow) (domain.RowResult, error) {
		calls.Add(1)
		return domain.RowResult{Outcome: domain.RowPosted, TransactionID: fmt.Sprintf("t%d", row.Row.RowNumber)}, nil
	}
}

func rowNumbers(results []domain.RowResult) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.RowNumber
	}
	return out
}

func TestBatchProcessor_PreservesRowOrderAndReportsProgress(t *testing.T) {
	var (
		calls    atomic.Int32
		mu       sync.Mutex
		progress []domain.Progress
	)
	p := NewBatchProcessor(new(mockRollbackSvc))
	rows := validatedRows(7)

	out, err := p.Process(testCtx(), domain.Batch{ID: "b1"}, rows, postedApply(&calls), portssvc.BatchOptions{
		ChunkSize:   2,
		Concurrency: 3,
		OnProgress: func(pr domain.Progress) {
			mu.Lock()
			progress = append(progress, pr)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BatchCompleted, out.Batch.Status)
	assert.Equal(t, 7, out.Batch.ProcessedCount)
	assert.Len(t, out.Batch.Chunks, 4)
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8}, rowNumbers(out.Results))
	assert.Equal(t, int32(7), calls.Load())
	require.Len(t, progress, 4)
	last := progress[len(progress)-1]
	assert.Equal(t, 7, last.ProcessedCount)
	assert.Equal(t, 7, last.TotalCount)
	assert.InDelta(t, 100.0, last.Percent, 0.001)
	for _, c := range out.Batch.Chunks {
		assert.Equal(t, domain.ChunkCompleted, c.Status)
		assert.Equal(t, 1, c.Attempts)
	}
}

func TestBatchProcessor_CancellationStopsBeforeNextChunk(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(testCtx())
	defer cancel()

	p := NewBatchProcessor(new(mockRollbackSvc))
	out, err := p.Process(ctx, domain.Batch{ID: "b1"}, validatedRows(6), postedApply(&calls), portssvc.BatchOptions{
		ChunkSize:   2,
		Concurrency: 1,
		OnProgress:  func(domain.Progress) { cancel() },
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BatchCancelled, out.Batch.Status)
	assert.Equal(t, int32(2), calls.Load(), "only the first chunk ran")
	assert.Equal(t, domain.ChunkCompleted, out.Batch.Chunks[0].Status)
	assert.Equal(t, domain.ChunkNotProcessed, out.Batch.Chunks[1].Status)
	assert.Equal(t, domain.ChunkNotProcessed, out.Batch.Chunks[2].Status)
	require.Len(t, out.Results, 6, "unstarted rows are reported, not dropped")
	for _, r := range out.Results[2:] {
		assert.Equal(t, domain.RowNotProcessed, r.Outcome)
	}
}

func TestBatchProcessor_RowFailuresAreIsolated(t *testing.T) {
	p := NewBatchProcessor(new(mockRollbackSvc))
	apply := func(ctx context.Context, row domain.ValidatedRow) (domain.RowResult, error) {
		if row.Row.RowNumber == 3 {
			return domain.RowResult{}, fmt.Errorf("%w: nope", apperrors.ErrInsufficientBalance)
		}
		return domain.RowResult{Outcome: domain.RowPosted}, nil
	}

	out, err := p.Process(testCtx(), domain.Batch{ID: "b1"}, validatedRows(3), apply, portssvc.BatchOptions{ChunkSize: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCompleted, out.Batch.Status)
	assert.Equal(t, domain.RowPosted, out.Results[0].Outcome)
	assert.Equal(t, domain.RowFailed, out.Results[1].Outcome)
	assert.Contains(t, out.Results[1].Error, "nope")
	assert.Equal(t, domain.RowPosted, out.Results[2].Outcome)
}

func TestBatchProcessor_RetriesChunkAfterRollingBackPostedRows(t *testing.T) {
	rb := new(mockRollbackSvc)
	rb.On("PerformRollback", mock.Anything, "t2", mock.MatchedBy(func(o domain.RollbackOptions) bool { return o.Hard })).
		Return(&domain.RollbackResult{Success: true, TransactionID: "t2"}, nil).Once()

	var attempts atomic.Int32
	apply := func(ctx context.Context, row domain.ValidatedRow) (domain.RowResult, error) {
		if row.Row.RowNumber == 3 && attempts.Add(1) == 1 {
			return domain.RowResult{}, apperrors.ErrStoreUnavailable
		}
		return domain.RowResult{Outcome: domain.RowPosted, TransactionID: fmt.Sprintf("t%d", row.Row.RowNumber)}, nil
	}

	out, err := NewBatchProcessor(rb).Process(testCtx(), domain.Batch{ID: "b1"}, validatedRows(2), apply, portssvc.BatchOptions{
		ChunkSize:   2,
		MaxAttempts: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCompleted, out.Batch.Status)
	assert.Equal(t, 2, out.Batch.Chunks[0].Attempts)
	assert.Equal(t, domain.RowPosted, out.Results[0].Outcome)
	assert.Equal(t, domain.RowPosted, out.Results[1].Outcome)
	rb.AssertExpectations(t)
}

func TestBatchProcessor_ExhaustedRetriesFailBatch(t *testing.T) {
	rb := new(mockRollbackSvc)
	// deleted before the retry, kept as dibatalkan after the last attempt
	rb.On("PerformRollback", mock.Anything, "t2", mock.MatchedBy(func(o domain.RollbackOptions) bool { return o.Hard })).
		Return(&domain.RollbackResult{Success: true, TransactionID: "t2"}, nil).Once()
	rb.On("PerformRollback", mock.Anything, "t2", mock.MatchedBy(func(o domain.RollbackOptions) bool {
		return !o.Hard && o.FinalStatus == domain.StatusDibatalkan
	})).Return(&domain.RollbackResult{Success: true, TransactionID: "t2"}, nil).Once()

	apply := func(ctx context.Context, row domain.ValidatedRow) (domain.RowResult, error) {
		if row.Row.RowNumber == 3 {
			return domain.RowResult{}, apperrors.ErrStoreUnavailable
		}
		return domain.RowResult{Outcome: domain.RowPosted, TransactionID: fmt.Sprintf("t%d", row.Row.RowNumber)}, nil
	}

	out, err := NewBatchProcessor(rb).Process(testCtx(), domain.Batch{ID: "b1"}, validatedRows(3), apply, portssvc.BatchOptions{
		ChunkSize:   3,
		MaxAttempts: 2,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	require.NotNil(t, out)
	assert.Equal(t, domain.BatchFailed, out.Batch.Status)
	assert.Equal(t, domain.ChunkFailed, out.Batch.Chunks[0].Status)
	assert.Equal(t, 2, out.Batch.Chunks[0].Attempts)
	assert.Equal(t, []domain.RowOutcome{domain.RowRolledBack, domain.RowFailed, domain.RowNotProcessed},
		[]domain.RowOutcome{out.Results[0].Outcome, out.Results[1].Outcome, out.Results[2].Outcome})
	rb.AssertExpectations(t)
}

func TestBatchProcessor_MissingApplyFunc(t *testing.T) {
	_, err := NewBatchProcessor(nil).Process(testCtx(), domain.Batch{}, nil, nil, portssvc.BatchOptions{})
	var cu *apperrors.ComponentUnavailableError
	require.ErrorAs(t, err, &cu)
	assert.Equal(t, []string{"apply function", "rollback service"}, cu.Components)
}

func TestBatchProcessor_CancelledRunStillStoresFinalRecord(t *testing.T) {
	f := newLedgerFixture(t)
	ctx, cancel := context.WithCancel(testCtx())
	p := NewBatchProcessor(new(mockRollbackSvc), WithBatchStore(f.repo))

	var calls atomic.Int32
	out, err := p.Process(ctx, domain.Batch{ID: "b-cancel"}, validatedRows(4), postedApply(&calls), portssvc.BatchOptions{
		ChunkSize:   1,
		Concurrency: 1,
		OnProgress: func(pr domain.Progress) {
			if pr.CurrentChunk == 0 {
				cancel()
			}
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCancelled, out.Batch.Status)

	stored, err := f.repo.FindBatchByID(testCtx(), "b-cancel")
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCancelled, stored.Status)
	assert.NotNil(t, stored.FinishedAt)
}
