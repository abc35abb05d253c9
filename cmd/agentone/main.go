// Command agentone runs the multi-agent dashboard: four local-model agents
// backed by a priority-ordered registry of external context domains.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.3.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "agentone",
		Short:        "Multi-agent dashboard backed by a local model",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (YAML)")
	rootCmd.PersistentFlags().Bool("debug", false, "Debug logging")

	viper.SetEnvPrefix("AGENTONE")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("agentone %s\n", version)
		},
	}
}
