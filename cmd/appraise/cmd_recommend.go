package main

import (
	"github.com/spf13/cobra"

	"github.com/ahrav/go-appraise/internal/domain"
)

type recommendation struct {
	PaperID        string               `json:"paper_id" yaml:"paper_id"`
	StudyDesign    domain.StudyDesign   `json:"study_design" yaml:"study_design"`
	Methodologies  []domain.Methodology `json:"methodologies" yaml:"methodologies"`
	RiskOfBiasTool domain.Methodology   `json:"risk_of_bias_tool,omitempty" yaml:"risk_of_bias_tool,omitempty"`
}

func newRecommendCommand() *cobra.Command {
	var input, format string
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "List the methodologies applicable to a paper's study design",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readRequest(input)
			if err != nil {
				return err
			}
			design := req.Characteristics.StudyDesign
			rec := recommendation{
				PaperID:       req.Paper.ID,
				StudyDesign:   design,
				Methodologies: domain.RecommendedMethodologies(design),
			}
			if tool, ok := domain.RecommendedRiskOfBiasTool(design); ok {
				rec.RiskOfBiasTool = tool
			}
			return writeOutput(cmd.OutOrStdout(), format, rec)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Paper input file (YAML or JSON)")
	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json | yaml")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
