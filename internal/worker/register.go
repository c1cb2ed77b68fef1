// Package worker exposes helpers to register workflows/activities with a Temporal worker.
package worker

import (
	"go.temporal.io/sdk/activity"
	sdkworker "go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-appraise/internal/appraisal"
	"github.com/ahrav/go-appraise/internal/assessment"
	"github.com/ahrav/go-appraise/internal/llm"
	wf "github.com/ahrav/go-appraise/internal/workflow"
	pkgactivity "github.com/ahrav/go-appraise/pkg/activity"
	"github.com/ahrav/go-appraise/pkg/events"
)

// WorkflowName is the registered name of the appraisal workflow.
const WorkflowName = "AppraisalWorkflow"

// Registry is the subset of a Temporal worker used for registration.
// Both sdkworker.Worker and the test environments satisfy it.
type Registry interface {
	RegisterWorkflowWithOptions(w any, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a any, options activity.RegisterOptions)
}

var _ Registry = sdkworker.Worker(nil)

// RegisterAll registers the appraisal workflow and its three activities.
// It must be called once during worker initialization, before the worker
// starts. A nil sink disables event emission.
func RegisterAll(r Registry, provider llm.Provider, sink events.EventSink, opts ...assessment.Option) error {
	acts, err := appraisal.NewActivities(pkgactivity.NewBaseActivities(sink), provider, opts...)
	if err != nil {
		return err
	}

	r.RegisterWorkflowWithOptions(wf.AppraisalWorkflow, workflow.RegisterOptions{Name: WorkflowName})
	r.RegisterActivityWithOptions(acts.AssessGRADE, activity.RegisterOptions{Name: appraisal.ActivityAssessGRADE})
	r.RegisterActivityWithOptions(acts.AssessCochraneRoB, activity.RegisterOptions{Name: appraisal.ActivityAssessCochraneRoB})
	r.RegisterActivityWithOptions(acts.AssessROBINSI, activity.RegisterOptions{Name: appraisal.ActivityAssessROBINSI})
	return nil
}
