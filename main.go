package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BatmanBruc/feedback-bot/internal/config"
)

type rootFlags struct {
	envFile    string
	configFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "feedbackbot",
		Short:         "Telegram bot that collects customer feedback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "optional YAML config file")

	root.AddCommand(newServeCmd(flags), newCheckCmd(flags))
	return root
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	if err := config.LoadEnvFile(flags.envFile); err != nil {
		return nil, err
	}
	return config.Load(config.Options{ConfigFile: flags.configFile})
}
