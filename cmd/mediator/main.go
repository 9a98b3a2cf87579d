package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:           "nhwr-mediator",
		Short:         "OpenHIM mediator for the National Health Workforce Registry",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configDir, "config", "c", "config", "directory holding one config folder per environment")
	cmd.Flags().StringVarP(&flags.environment, "env", "e", "", "environment to load (defaults to MEDIATOR_ENV or NODE_ENV)")
	cmd.Flags().StringVarP(&flags.mediatorFile, "mediator", "m", "", "mediator definition file, overrides mediatorFile")

	return cmd
}
