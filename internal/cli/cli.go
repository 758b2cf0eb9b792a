// Package cli wires the command line interface of verimod.
package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/verimod/verimod/internal/log"
	"github.com/verimod/verimod/pkg/analysis"
	"github.com/verimod/verimod/pkg/control"
)

// NewRootCommand builds the verimod command tree.
func NewRootCommand() *cobra.Command {
	var logLevel string
	var quiet bool

	root := &cobra.Command{
		Use:           "verimod",
		Short:         "Pair model output with observations, then plot and score the result",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := logLevel
			if quiet {
				level = "error"
			}
			log.Configure(log.Config{Level: level})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&quiet, "quiet", false, "only log errors")

	root.AddCommand(newRunCommand(), newValidateCommand())

	return root
}

func newRunCommand() *cobra.Command {
	var controlPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the analysis described by a control file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return analysis.New(controlPath).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&controlPath, "control", "c", "", "control file (required)")
	_ = cmd.MarkFlagRequired("control")

	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <control.yaml>...",
		Short: "Parse and validate control files without running anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, path := range args {
				_, err := control.Load(path)
				if err != nil {
					failed = true
					cmd.PrintErrf("%s: %v\n", path, err)

					continue
				}
				cmd.Printf("%s: ok\n", path)
			}
			if failed {
				return errors.New("validation failed")
			}

			return nil
		},
	}
}
