package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-filter/internal/task"
)

func newFieldsCmd(a *app) *cobra.Command {
	var showOptions bool

	cmd := &cobra.Command{
		Use:   "fields <file>",
		Short: "List the filterable fields of a VCF file",
		Long: `List the standard columns and INFO fields of a VCF file with their
types, operators and, for text fields with few distinct values, the values
seen in the file. The file is indexed first when needed.`,
		Example: `  vibe-filter fields input.vcf.gz
  vibe-filter fields --options input.vcf.gz`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := task.NewQueue()
			defer q.Close()
			q.SetLogger(a.logger)

			x, err := a.openIndex(cmd.Context(), q, args[0])
			if err != nil {
				return err
			}

			for _, f := range x.Fields() {
				fmt.Fprintln(a.stdout, f.Display())
				ops := make([]string, 0, len(f.Operators()))
				for _, op := range f.Operators() {
					ops = append(ops, op.String())
				}
				fmt.Fprintf(a.stdout, "    operators: %s\n", strings.Join(ops, " "))
				if showOptions && len(f.Options()) > 0 {
					fmt.Fprintf(a.stdout, "    values: %s\n", strings.Join(f.Options(), ", "))
				}
			}
			if len(x.Samples()) > 0 {
				fmt.Fprintf(a.stdout, "Samples (%d): %s\n", len(x.Samples()), strings.Join(x.Samples(), ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showOptions, "options", false, "Show the known values of text fields")
	return cmd
}
