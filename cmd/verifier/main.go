package main

import (
	"fmt"
	"os"

	"news_verifier/internal/config"
	"news_verifier/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "verifier",
	Short: "Fake-news verification service",
	Long:  "Scrapes news articles, runs the classifier on them and serves predictions with similar headlines.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = c

		logger.Init(cfg.LogLevel)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "path to JSON config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Error(err)
		os.Exit(1)
	}
}
