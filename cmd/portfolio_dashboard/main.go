package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "portfolio-dashboard",
		Short:         "Multichain (Solana + Ethereum) wallet portfolio dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yml (default $CONFIG_PATH or config/config.yml)")

	root.AddCommand(newServeCommand(), newWatchCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "portfolio-dashboard: %v\n", err)
		os.Exit(1)
	}
}
