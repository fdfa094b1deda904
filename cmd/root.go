package cmd

import (
	"context"
	"errors"
	"fmt"

	"csv-stream-printer/common"

	"github.com/spf13/cobra"
)

// errReported is returned once the message has already been written to stderr
var errReported = errors.New("error already reported")

// NewRootCmd builds the csvstream command tree
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "csvstream",
		Short: "Parse delimited files into typed records",
		Long: `csvstream reads a delimited text file, takes the first line as field names
and prints every following line as a record of typed values.

Commands:
  print    - print the records of one file
  serve    - run the parse-jobs HTTP API
  token    - issue a bearer token for the API
  version  - print the build version`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "TOML config file (optional)")

	loadConfig := func() (*common.Config, error) {
		return common.LoadConfig(cfgFile)
	}

	root.AddCommand(
		newPrintCmd(loadConfig),
		newServeCmd(loadConfig),
		newTokenCmd(loadConfig),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command with os.Args
func Execute() error {
	root := NewRootCmd()
	err := root.ExecuteContext(context.Background())
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}
