package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// Execute runs one scanner invocation with the per-type timeout, stamps the
// outcome with the scanner's identity and latency, and converts a panic
// inside the scanner into an ERROR outcome.
//
// Design decision: Panic recovery lives here rather than in each scanner
// because the isolation guarantee must hold even for a scanner written
// without it: one source's programming error degrades that source's
// outcome, never the run.
func Execute(ctx context.Context, s Scanner, identity model.IdentityProfile, timeout time.Duration, logger *slog.Logger) (hits []model.RawHit, out model.ScannerOutcome) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scanner panicked",
				"scanner", s.Name(),
				"panic", r,
			)
			hits = nil
			out = model.ScannerOutcome{
				Status:      model.OutcomeError,
				ErrorDetail: "panic",
			}
		}
		out.ScannerName = s.Name()
		out.ScannerType = s.Type()
		out.ResponseTime = time.Since(start)
	}()

	hits, out = s.Search(ctx, identity)

	// A scanner that came back empty-handed because its deadline fired
	// reports a timeout, not a healthy empty result.
	if out.Status == model.OutcomeEmpty && ctx.Err() != nil {
		out.Status = model.OutcomeError
		out.ErrorDetail = errorDetail(ctx.Err())
	}
	return hits, out
}
