// Package worker runs the background side of the ledger: exporting closed
// months to the spreadsheet archive and keeping recurrence expansion current.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/export"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

// ReportWorker reacts to month-closed events and periodically expands
// recurring templates into the current open month.
type ReportWorker struct {
	repo     *storage.Repository
	reporter *services.Reporter
	expander *services.Expander
	exporter *export.SheetsExporter
}

func NewReportWorker(repo *storage.Repository, reporter *services.Reporter, expander *services.Expander, exporter *export.SheetsExporter) *ReportWorker {
	return &ReportWorker{
		repo:     repo,
		reporter: reporter,
		expander: expander,
		exporter: exporter,
	}
}

// HandleMonthClosed exports the freshly closed month to the spreadsheet
// archive.
func (w *ReportWorker) HandleMonthClosed(ctx context.Context, msg *amqp.MonthClosedMessage) error {
	slog.InfoContext(ctx, "Processing month-closed event",
		"month", msg.MonthID,
		"ending_cents", msg.EndingCents)

	monthID, err := core.ParseMonthID(msg.MonthID)
	if err != nil {
		return fmt.Errorf("parse month key %q: %w", msg.MonthID, err)
	}

	report, err := w.reporter.MonthReport(ctx, monthID)
	if err != nil {
		return fmt.Errorf("build month report: %w", err)
	}

	if w.exporter == nil {
		slog.WarnContext(ctx, "No exporter configured, skipping spreadsheet export", "month", msg.MonthID)
		return nil
	}

	ref, err := w.exporter.AppendMonthReport(ctx, report)
	if err != nil {
		return fmt.Errorf("export month report: %w", err)
	}

	slog.InfoContext(ctx, "Month report exported", "month", msg.MonthID, "sheets_ref", ref)
	return nil
}

// ExpandCurrentMonth runs recurrence expansion against the oldest open month.
// Safe to call repeatedly; expansion is idempotent.
func (w *ReportWorker) ExpandCurrentMonth(ctx context.Context) error {
	current, err := w.repo.OldestOpenMonth(ctx)
	if err != nil {
		return fmt.Errorf("find current month: %w", err)
	}

	report, err := w.expander.Expand(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("expand %s: %w", current.ID, err)
	}
	if len(report.Created) > 0 {
		slog.InfoContext(ctx, "Periodic expansion created transactions",
			"month", current.ID,
			"created", len(report.Created))
	}
	return nil
}

// RunPeriodicExpansion keeps expanding the current month on a ticker until
// the context ends.
func (w *ReportWorker) RunPeriodicExpansion(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := w.ExpandCurrentMonth(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup expansion failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping periodic expansion", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExpandCurrentMonth(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic expansion failed", "error", err)
			}
		}
	}
}
