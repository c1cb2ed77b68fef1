package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-appraise/internal/assessment"
	"github.com/ahrav/go-appraise/internal/cochrane"
	"github.com/ahrav/go-appraise/internal/domain"
	"github.com/ahrav/go-appraise/internal/grade"
	"github.com/ahrav/go-appraise/internal/llm"
	"github.com/ahrav/go-appraise/internal/robinsi"
)

type assessOptions struct {
	methodology string
	input       string
	config      string
	format      string
}

func newAssessCommand() *cobra.Command {
	var opts assessOptions
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run one methodology against a paper",
		Long: `Run one assessment against the configured language model and print it.

The input file holds the paper and its extracted characteristics:

  paper:
    paper_id: trial-1
    title: Exercise and blood pressure
    sections:
      Methods: ...
      Results: ...
  characteristics:
    study_design: randomized_controlled_trial
    population: Adults 40-65

Exits with code 2 when the methodology does not apply to the study design.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssess(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.methodology, "methodology", "m", "", "grade | cochrane | robins-i")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Paper input file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "LLM configuration file (defaults apply when empty)")
	cmd.Flags().StringVar(&opts.format, "format", formatJSON, "Output format: json | yaml")
	_ = cmd.MarkFlagRequired("methodology")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runAssess(cmd *cobra.Command, opts assessOptions) error {
	m, err := domain.ParseMethodology(opts.methodology)
	if err != nil {
		return err
	}
	req, err := readRequest(opts.input)
	if err != nil {
		return err
	}
	// Applicability is settled before any credentials or network are needed.
	if err := domain.CheckApplicable(m, req.Characteristics.StudyDesign); err != nil {
		return err
	}

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Observability, cmd.ErrOrStderr())
	client, err := llm.NewClient(cfg, logger)
	if err != nil {
		return err
	}

	result, err := assess(cmd.Context(), m, client, req, assessment.WithLogger(logger))
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), opts.format, result)
}

// assess dispatches to the assessor for m.
func assess(
	ctx context.Context,
	m domain.Methodology,
	provider llm.Provider,
	req *domain.AppraisalRequest,
	opts ...assessment.Option,
) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch m {
	case domain.MethodologyGRADE:
		a, err := grade.NewAssessor(provider, opts...)
		if err != nil {
			return nil, err
		}
		return a.Assess(ctx, &req.Paper, &req.Characteristics)
	case domain.MethodologyCochraneRoB:
		a, err := cochrane.NewAssessor(provider, opts...)
		if err != nil {
			return nil, err
		}
		return a.Assess(ctx, &req.Paper, &req.Characteristics)
	case domain.MethodologyROBINSI:
		a, err := robinsi.NewAssessor(provider, opts...)
		if err != nil {
			return nil, err
		}
		return a.Assess(ctx, &req.Paper, &req.Characteristics)
	default:
		slog.Default().Error("unhandled methodology", "methodology", m)
		return nil, fmt.Errorf("%w: methodology %q", domain.ErrInvalidInput, m)
	}
}
