package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-appraise/internal/assessment"
	"github.com/ahrav/go-appraise/internal/domain"
	"github.com/ahrav/go-appraise/internal/worker"
	"github.com/ahrav/go-appraise/pkg/events"
)

const defaultTaskQueue = "appraisal"

type temporalOptions struct {
	address   string
	namespace string
	taskQueue string
}

func (o *temporalOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.address, "address", client.DefaultHostPort, "Temporal frontend address")
	cmd.Flags().StringVar(&o.namespace, "namespace", client.DefaultNamespace, "Temporal namespace")
	cmd.Flags().StringVar(&o.taskQueue, "task-queue", defaultTaskQueue, "Temporal task queue")
}

func newWorkerCommand() *cobra.Command {
	var (
		tOpts      temporalOptions
		configPath string
	)
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run a Temporal worker serving appraisal workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Observability, cmd.ErrOrStderr())

			llmClient, err := worker.InitializeLLMClient(cfg, logger)
			if err != nil {
				return err
			}

			c, err := client.Dial(client.Options{
				HostPort:  tOpts.address,
				Namespace: tOpts.namespace,
				Logger:    temporallog.NewStructuredLogger(logger),
			})
			if err != nil {
				return fmt.Errorf("connecting to Temporal: %w", err)
			}
			defer c.Close()

			w := sdkworker.New(c, tOpts.taskQueue, sdkworker.Options{})
			if err := worker.RegisterAll(w, llmClient, events.NewLogEventSink(logger),
				assessment.WithLogger(logger)); err != nil {
				return err
			}

			logger.Info("worker started", "task_queue", tOpts.taskQueue, "namespace", tOpts.namespace)
			return w.Run(sdkworker.InterruptCh())
		},
	}
	tOpts.bind(cmd)
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "LLM configuration file")
	return cmd
}

func newSubmitCommand() *cobra.Command {
	var (
		tOpts  temporalOptions
		input  string
		format string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Start an appraisal workflow for a paper and wait for its report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readRequest(input)
			if err != nil {
				return err
			}

			c, err := client.Dial(client.Options{HostPort: tOpts.address, Namespace: tOpts.namespace})
			if err != nil {
				return fmt.Errorf("connecting to Temporal: %w", err)
			}
			defer c.Close()

			run, err := c.ExecuteWorkflow(cmd.Context(), client.StartWorkflowOptions{
				ID:        "appraisal-" + req.Paper.ID,
				TaskQueue: tOpts.taskQueue,
			}, worker.WorkflowName, *req)
			if err != nil {
				return fmt.Errorf("starting workflow: %w", err)
			}

			var report domain.AppraisalReport
			if err := run.Get(cmd.Context(), &report); err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, report)
		},
	}
	tOpts.bind(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "Paper input file (YAML or JSON)")
	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json | yaml")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
