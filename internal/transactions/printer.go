package transactions

import (
	"context"

	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
)

// PrintJob is a rendered receipt sent to a printer. Reprint is set when the receipt has been
// printed before.
type PrintJob struct {
	ReceiptNumber string
	Format        enums.ReceiptFormat
	Copies        int
	Reprint       bool
	Body          string
}

// Printer delivers a print job to the register hardware.
type Printer interface {
	Print(ctx context.Context, job PrintJob) error
}

// LogPrinter records print jobs in the structured log. Registers pull the rendered receipt
// through the receipt endpoint.
type LogPrinter struct {
	Logg *logger.Logger
}

func (p LogPrinter) Print(ctx context.Context, job PrintJob) error {
	if p.Logg == nil {
		return nil
	}
	logCtx := p.Logg.WithFields(ctx, map[string]any{
		"receipt_number": job.ReceiptNumber,
		"format":         job.Format.String(),
		"copies":         job.Copies,
		"reprint":        job.Reprint,
		"bytes":          len(job.Body),
	})
	p.Logg.Info(logCtx, "receipt.print_requested")
	return nil
}
