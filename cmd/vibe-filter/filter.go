package main

import (
	"context"
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-filter/internal/filter"
	"github.com/inodb/vibe-filter/internal/index"
	"github.com/inodb/vibe-filter/internal/pipe"
	"github.com/inodb/vibe-filter/internal/task"
)

type filterOptions struct {
	where      []string
	samples    []string
	regions    []string
	strict     bool
	maxResults int
	output     string
}

func newFilterCmd(a *app) *cobra.Command {
	var opts filterOptions

	cmd := &cobra.Command{
		Use:   "filter <file>",
		Short: "Filter the records of a VCF file",
		Long: `Print the first matching records of a VCF file and optionally save every
match. All filters must pass.

Field filters:   [ALL|ANY|NONE] <FIELD> <operator> [value[,value...]]
Sample filters:  <ALL|ANY[:n]|NONE> <sample[,sample...]|*> <TYPE[,TYPE...]>
Regions:         chr, chr:pos, chr:start- or chr:start-end

Genotype types are NO_CALL, HOM_REF, HET and HOM_VAR.`,
		Example: `  vibe-filter filter input.vcf.gz --where "DP >= 20" --where "FILTER equals PASS"
  vibe-filter filter input.vcf.gz --sample "ANY:2 * HET" --region 7:140,000,000-141,000,000
  vibe-filter filter input.vcf.gz --where "GENE equals BRCA1,BRCA2" -o brca.vcf.gz`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-results") {
				opts.maxResults = viper.GetInt("pipe.max_results")
			}
			return a.runFilter(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.where, "where", "w", nil, "Field filter (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.samples, "sample", "s", nil, "Sample genotype filter (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.regions, "region", "r", nil, "Genomic region (repeatable)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Records missing a filtered field fail the filter")
	cmd.Flags().IntVarP(&opts.maxResults, "max-results", "n", pipe.DefaultMaxResults, "Number of matching records to print")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save every matching record to this file (.gz for BGZF)")

	return cmd
}

// buildFilters parses the filter flags against the index of the source.
func buildFilters(x *index.VcfIndex, opts filterOptions) (filter.Set, error) {
	p := x.FilterParser()
	var set filter.Set
	for _, expr := range opts.where {
		f, err := p.ParseAttribute(expr, opts.strict)
		if err != nil {
			return nil, fmt.Errorf("--where %q: %w", expr, err)
		}
		set = append(set, f)
	}
	for _, expr := range opts.samples {
		f, err := p.ParseSample(expr)
		if err != nil {
			return nil, fmt.Errorf("--sample %q: %w", expr, err)
		}
		set = append(set, f)
	}
	if len(opts.regions) > 0 {
		f, err := p.ParseRegions(opts.regions...)
		if err != nil {
			return nil, fmt.Errorf("--region: %w", err)
		}
		set = append(set, f)
	}
	return set, nil
}

func (a *app) runFilter(ctx context.Context, path string, opts filterOptions) error {
	q := task.NewQueue()
	defer q.Close()
	q.SetLogger(a.logger)

	x, err := a.openIndex(ctx, q, path)
	if err != nil {
		return err
	}
	set, err := buildFilters(x, opts)
	if err != nil {
		return err
	}
	if len(set) > 0 {
		a.logger.Info("filtering", zap.String("path", path), zap.String("filters", set.Display()))
	}

	p := pipe.New(path, set)
	p.SetLogger(a.logger)
	p.SetIndex(x)
	p.SetTotal(x.Lines())
	p.SetMaxResults(opts.maxResults)
	p.SetProgressEvery(viper.GetInt("pipe.progress_every"))
	if opts.output != "" {
		p.SetDestination(opts.output)
	}

	var bar *pb.ProgressBar
	p.SetProgress(func(lines, total int64, message string) {
		if bar == nil {
			if bar = a.newBar(total); bar == nil {
				return
			}
		}
		bar.Set("prefix", message+" ")
		bar.SetCurrent(lines)
	})

	var res *pipe.Results
	h, err := q.SubmitExclusive("filter:"+path, "filter "+path, func(ctx context.Context) error {
		var err error
		res, err = p.Run(ctx)
		return err
	})
	if err != nil {
		return err
	}
	err = wait(ctx, h)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("filter %s: %w", path, err)
	}

	for _, rec := range res.Snapshot() {
		fmt.Fprintln(a.stdout, rec.String())
	}

	summary := fmt.Sprintf("%s of %s records matched", humanize.Comma(res.Filtered()), humanize.Comma(res.Lines()))
	if int64(res.Len()) < res.Filtered() {
		summary += fmt.Sprintf(", showing the first %s", humanize.Comma(int64(res.Len())))
	}
	if res.Cancelled() {
		summary = "Cancelled: " + summary
	}
	if opts.output != "" {
		summary += fmt.Sprintf(", saved to %s", opts.output)
	}
	fmt.Fprintln(a.stderr, summary)
	return nil
}
