package main

import (
	"context"
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-filter/internal/genome"
	"github.com/inodb/vibe-filter/internal/index"
	"github.com/inodb/vibe-filter/internal/task"
)

// progressScale is the bar total used for fractional progress.
const progressScale = 1000

func newIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index <file>",
		Short: "Build the index of a VCF file",
		Long: `Scan a VCF file once and save its field statistics and genotype matrix
next to it as <file>.vcf-index. BGZF-compressed files also get a .tbi
positional index. An up-to-date index is reused.`,
		Example: `  vibe-filter index input.vcf.gz`,
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := task.NewQueue()
			defer q.Close()
			q.SetLogger(a.logger)

			x, err := a.openIndex(cmd.Context(), q, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Indexed %s records: %d fields, %d samples, %d contigs, %d filter tags\n",
				humanize.Comma(x.Lines()), len(x.Fields()), len(x.Samples()), len(x.Contigs()), len(x.Filters()))
			return nil
		},
	}
}

// newBar starts a progress bar on stderr, or returns nil in quiet mode.
func (a *app) newBar(total int64) *pb.ProgressBar {
	if a.quiet {
		return nil
	}
	bar := pb.Full.New(0)
	bar.SetTotal(total)
	bar.SetWriter(a.stderr)
	return bar.Start()
}

// wait blocks until h finishes, cancelling it when ctx is done first.
func wait(ctx context.Context, h *task.Handle) error {
	select {
	case <-h.Done():
	case <-ctx.Done():
		h.Cancel()
		<-h.Done()
	}
	return h.Err()
}

// openIndex loads or builds the index of path on q, drawing a progress bar
// while the file is scanned.
func (a *app) openIndex(ctx context.Context, q *task.Queue, path string) (*index.VcfIndex, error) {
	ix := index.NewIndexer(genome.GRCh38())
	ix.SetLogger(a.logger)
	ix.SetOptionCap(viper.GetInt("index.option_cap"))
	ix.SetProgressEvery(viper.GetInt("index.progress_every"))
	ix.SetSnapshot(viper.GetBool("index.snapshot"))

	var bar *pb.ProgressBar
	ix.SetProgress(func(fraction float64, message string) {
		if bar == nil {
			if bar = a.newBar(progressScale); bar == nil {
				return
			}
		}
		bar.Set("prefix", message+" ")
		bar.SetCurrent(int64(fraction * progressScale))
	})

	var x *index.VcfIndex
	h, err := q.SubmitExclusive("index:"+path, "index "+path, func(ctx context.Context) error {
		var err error
		x, err = ix.Open(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = wait(ctx, h)
	if bar != nil {
		if err == nil {
			bar.SetCurrent(progressScale)
		}
		bar.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	return x, nil
}
