package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:           "inkwell",
		Short:         "Inkwell blogging platform backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configDir)
		},
	}
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding config.yaml (default ./configs or .)")

	cmd.AddCommand(
		newServeCommand(&configDir),
		newReindexCommand(&configDir),
		newPromoteCommand(&configDir),
	)
	return cmd
}
