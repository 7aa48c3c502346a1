package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Run one headline batch and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		report, err := a.pipeline.RunHeadlines(ctx)
		if report != nil {
			if encErr := json.NewEncoder(os.Stdout).Encode(report); encErr != nil {
				return encErr
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(headlinesCmd)
}
