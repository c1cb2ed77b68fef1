package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appraise",
		Short: "Appraise medical research papers with GRADE, Cochrane RoB 2.0 and ROBINS-I",
		Long: `Appraise rates the quality and risk of bias of a research paper.

Per-domain judgments come from a language model; the overall verdict of the
risk-of-bias tools is always recomputed locally from those judgments.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newAssessCommand())
	cmd.AddCommand(newRecommendCommand())
	cmd.AddCommand(newWorkerCommand())
	cmd.AddCommand(newSubmitCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}
