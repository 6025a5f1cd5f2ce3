package inspect

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/journal"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/logger"
)

// Options controls the journal inspection commands.
type Options struct {
	// JournalFile is the SQLite journal to read.
	JournalFile string
	// RunID selects the run for the ticks listing.
	RunID string
	// Limit caps how many rows are printed; non-positive prints everything.
	Limit int
	// Out receives the rendered tables. Defaults to standard output.
	Out io.Writer
}

func (o *Options) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}

	return os.Stdout
}

// Runs prints the recorded controller runs, newest first.
func Runs(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "traffic-journal")

	records, err := journal.Open(opts.JournalFile)
	if err != nil {
		return err
	}

	defer func() {
		if err := records.Close(); err != nil {
			logger.ErrorKV(ctx, "Closing journal failed", "error", err)
		}
	}()

	runs, err := records.Runs(opts.Limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(opts.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTARTED\tLINK\tTICKS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			run.ID, run.StartedAt.Format(time.RFC3339), run.LinkTarget, run.Ticks)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("render runs: %w", err)
	}

	return nil
}

// Ticks prints one run's recorded ticks in chronological order.
func Ticks(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "traffic-journal")

	records, err := journal.Open(opts.JournalFile)
	if err != nil {
		return err
	}

	defer func() {
		if err := records.Close(); err != nil {
			logger.ErrorKV(ctx, "Closing journal failed", "error", err)
		}
	}()

	ticks, err := records.Ticks(opts.RunID, opts.Limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(opts.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AT\tRAW\tSMOOTHED\tCONFIRMED\tLIGHTS\tMODE\tALERT\tSENT\tTOKEN")

	for _, tick := range ticks {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%v\t%v\t%s\n",
			tick.At.Format(time.RFC3339Nano), tick.Raw, tick.Smoothed, tick.Confirmed,
			tick.Lights, tick.Mode, tick.Alert, tick.Sent, tick.Token)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("render ticks: %w", err)
	}

	return nil
}
