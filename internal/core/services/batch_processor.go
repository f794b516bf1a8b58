package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"golang.org/x/sync/errgroup"
)

const (
	defaultChunkSize   = 50
	defaultConcurrency = 1
	defaultMaxAttempts = 3
)

type batchProcessor struct {
	BaseService
	rollback portssvc.RollbackSvc
	batches  portsrepo.BatchRepository
}

// BatchProcessorOption is a functional option for configuring the batch processor
type BatchProcessorOption func(*batchProcessor)

// WithBatchStore persists batch state at start and finish.
func WithBatchStore(batches portsrepo.BatchRepository) BatchProcessorOption {
	return func(p *batchProcessor) {
		p.batches = batches
	}
}

// NewBatchProcessor creates a batch processor that undoes failed chunk attempts through rollback.
func NewBatchProcessor(rollback portssvc.RollbackSvc, options ...BatchProcessorOption) portssvc.BatchProcessorSvc {
	p := &batchProcessor{rollback: rollback}
	for _, option := range options {
		option(p)
	}
	return p
}

func normalizeBatchOptions(opts portssvc.BatchOptions) portssvc.BatchOptions {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	return opts
}

// Process applies rows chunk by chunk. ctx is checked once before each chunk starts;
// chunks already running finish even after ctx is cancelled. A chunk that keeps failing with a
// systemic error fails the batch and the outcome is returned together with that error.
func (p *batchProcessor) Process(ctx context.Context, batch domain.Batch, rows []domain.ValidatedRow, apply portssvc.ApplyFunc, opts portssvc.BatchOptions) (*portssvc.BatchOutcome, error) {
	if apply == nil || p.rollback == nil {
		return nil, apperrors.NewComponentUnavailableError(missing(map[string]bool{
			"apply function":   apply == nil,
			"rollback service": p.rollback == nil,
		})...)
	}
	opts = normalizeBatchOptions(opts)
	logger := p.GetLogger(ctx).With(slog.String("batch_id", batch.ID))

	batch.TotalRows = len(rows)
	batch.Chunks = domain.SplitChunks(len(rows), opts.ChunkSize)
	batch.ProcessedCount = 0
	batch.Status = domain.BatchRunning
	if batch.StartedAt.IsZero() {
		batch.StartedAt = p.Now()
	}
	p.saveBatch(ctx, batch)
	logger.Info("Batch started",
		slog.Int("rows", len(rows)),
		slog.Int("chunks", len(batch.Chunks)),
		slog.Int("concurrency", opts.Concurrency))

	var (
		mu        sync.Mutex
		results   = make([][]domain.RowResult, len(batch.Chunks))
		cancelled atomic.Bool
	)
	// dispatched chunks run to completion regardless of the caller's cancellation
	work := context.WithoutCancel(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := range batch.Chunks {
		chunk := batch.Chunks[i]
		chunkRows := rows[chunk.Offset : chunk.Offset+chunk.Size]
		g.Go(func() error {
			// the only cancellation point: before the chunk starts
			if ctx.Err() != nil {
				cancelled.Store(true)
			}
			if cancelled.Load() || gctx.Err() != nil {
				p.markNotProcessed(&mu, &batch, results, chunkRows, chunk.Index)
				return nil
			}

			res, attempts, err := p.runChunk(work, chunk, chunkRows, apply, opts)

			mu.Lock()
			results[chunk.Index] = res
			c := &batch.Chunks[chunk.Index]
			c.Attempts = attempts
			if err != nil {
				c.Status = domain.ChunkFailed
				c.Error = err.Error()
			} else {
				c.Status = domain.ChunkCompleted
			}
			batch.ProcessedCount += chunk.Size
			if opts.OnProgress != nil {
				opts.OnProgress(domain.NewProgress(batch.ProcessedCount, batch.TotalRows, chunk.Index))
			}
			mu.Unlock()

			if err != nil {
				logger.Error("Chunk failed", slog.Int("chunk", chunk.Index), slog.Int("attempts", attempts), slog.String("error", err.Error()))
				return fmt.Errorf("chunk %d failed after %d attempts: %w", chunk.Index, attempts, err)
			}
			if opts.ChunkDelay > 0 {
				time.Sleep(opts.ChunkDelay)
			}
			return nil
		})
	}
	runErr := g.Wait()

	finished := p.Now()
	batch.FinishedAt = &finished
	switch {
	case runErr != nil:
		batch.Status = domain.BatchFailed
	case cancelled.Load():
		batch.Status = domain.BatchCancelled
	default:
		batch.Status = domain.BatchCompleted
	}
	p.saveBatch(ctx, batch)

	outcome := &portssvc.BatchOutcome{Batch: batch, Results: make([]domain.RowResult, 0, len(rows))}
	for _, res := range results {
		outcome.Results = append(outcome.Results, res...)
	}
	logger.Info("Batch finished", slog.String("status", string(batch.Status)), slog.Int("processed", batch.ProcessedCount))
	return outcome, runErr
}

func (p *batchProcessor) markNotProcessed(mu *sync.Mutex, batch *domain.Batch, results [][]domain.RowResult, rows []domain.ValidatedRow, i int) {
	mu.Lock()
	defer mu.Unlock()
	batch.Chunks[i].Status = domain.ChunkNotProcessed
	res := make([]domain.RowResult, 0, len(rows))
	for _, row := range rows {
		res = append(res, domain.RowResult{RowNumber: row.Row.RowNumber, Outcome: domain.RowNotProcessed})
	}
	results[i] = res
}

// runChunk applies the chunk's rows in order, retrying the whole chunk on systemic failure with
// linear backoff. Rows posted by a failed attempt are deleted before the next one, so the retry
// does not leave duplicates; after the last attempt they are kept as dibatalkan.
func (p *batchProcessor) runChunk(ctx context.Context, chunk domain.Chunk, rows []domain.ValidatedRow, apply portssvc.ApplyFunc, opts portssvc.BatchOptions) ([]domain.RowResult, int, error) {
	var (
		res []domain.RowResult
		err error
	)
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		res, err = p.attempt(ctx, rows, apply)
		if err == nil {
			return res, attempt, nil
		}
		p.rollbackAttempt(ctx, res, chunk.Index, attempt, err, attempt < opts.MaxAttempts)
		if attempt == opts.MaxAttempts {
			return res, attempt, err
		}
		p.LogInfo(ctx, "Retrying chunk", slog.Int("chunk", chunk.Index), slog.Int("attempt", attempt+1))
		time.Sleep(time.Duration(attempt) * opts.RetryDelay)
	}
	return res, opts.MaxAttempts, err
}

// attempt returns one result per row. On a systemic error the remaining rows are not_processed.
func (p *batchProcessor) attempt(ctx context.Context, rows []domain.ValidatedRow, apply portssvc.ApplyFunc) ([]domain.RowResult, error) {
	res := make([]domain.RowResult, 0, len(rows))
	for i, row := range rows {
		r, err := apply(ctx, row)
		r.RowNumber = row.Row.RowNumber
		if err != nil {
			r.Outcome = domain.RowFailed
			if r.Error == "" {
				r.Error = err.Error()
			}
			if apperrors.IsSystemic(err) {
				r.ErrorClass = string(domain.ErrorClassSystem)
				res = append(res, r)
				for _, rest := range rows[i+1:] {
					res = append(res, domain.RowResult{RowNumber: rest.Row.RowNumber, Outcome: domain.RowNotProcessed})
				}
				return res, err
			}
		}
		res = append(res, r)
	}
	return res, nil
}

func (p *batchProcessor) rollbackAttempt(ctx context.Context, res []domain.RowResult, chunkIndex, attempt int, cause error, retrying bool) {
	for i := len(res) - 1; i >= 0; i-- {
		r := &res[i]
		if r.TransactionID == "" {
			continue
		}
		rb, err := p.rollback.PerformRollback(ctx, r.TransactionID, domain.RollbackOptions{
			Reason:      fmt.Sprintf("chunk %d attempt %d failed: %v", chunkIndex, attempt, cause),
			FinalStatus: domain.StatusDibatalkan,
			Hard:        retrying,
		})
		if err != nil {
			p.LogError(ctx, err, "Failed to roll back row of failed chunk attempt", slog.String("transaction_id", r.TransactionID))
			continue
		}
		if r.Outcome == domain.RowPosted && rb.Success {
			r.Outcome = domain.RowRolledBack
		}
	}
}

func (p *batchProcessor) saveBatch(ctx context.Context, batch domain.Batch) {
	if p.batches == nil {
		return
	}
	// the record must reach the store even when the run was cancelled
	if err := p.batches.SaveBatch(context.WithoutCancel(ctx), batch); err != nil {
		p.LogError(ctx, err, "Failed to persist batch state", slog.String("batch_id", batch.ID))
	}
}
