// Package workflow implements the Temporal workflow that appraises one paper.
//
// Workflows define the high-level process flow only. Model calls, clocks and
// ID generation live in the activities of internal/appraisal so that replay
// stays deterministic.
package workflow
