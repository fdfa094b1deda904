package cmd

import (
	"fmt"

	"csv-stream-printer/common"
	"csv-stream-printer/printer"

	"github.com/spf13/cobra"
)

func newPrintCmd(loadConfig func() (*common.Config, error)) *cobra.Command {
	var (
		delimiter string
		workers   int
		unordered bool
	)

	cmd := &cobra.Command{
		Use:   "print [path]",
		Short: "Print every record of a delimited file",
		Long: `Print reads the file at path and writes one {name=value, ...} line per record.
Records keep input order unless --unordered is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("delimiter") {
				if _, verr := common.ValidateDelimiter(delimiter); verr != nil {
					return fmt.Errorf("--delimiter: %s", verr.Message)
				}
				cfg.Delimiter = delimiter
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("unordered") {
				cfg.Unordered = unordered
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			p := printer.New(path,
				printer.WithDelimiter(cfg.DelimiterByte()),
				printer.WithWorkers(cfg.Workers),
				printer.WithOrdered(!cfg.Unordered),
			)
			if err := p.Print(cmd.Context(), cmd.OutOrStdout()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", ",", "Single-character field delimiter")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parsing goroutines (0 = one per CPU)")
	cmd.Flags().BoolVar(&unordered, "unordered", false, "Emit records as soon as they are parsed, in no particular order")
	return cmd
}
