package gcp

import (
	"context"
	"encoding/json"
	"fmt"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"github.com/Lllllllleong/storyflow/internal/models"
)

// WorkflowLauncher starts executions of a single Cloud Workflow.
type WorkflowLauncher struct {
	client *executions.Client
	parent string
}

// NewWorkflowLauncher creates a launcher for projects/<projectID>/locations/<location>/workflows/<workflowID>.
func NewWorkflowLauncher(ctx context.Context, projectID, location, workflowID string) (*WorkflowLauncher, error) {
	if projectID == "" || location == "" || workflowID == "" {
		return nil, fmt.Errorf("NewWorkflowLauncher: projectID, location and workflowID cannot be empty")
	}
	client, err := executions.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
	}
	return &WorkflowLauncher{
		client: client,
		parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s", projectID, location, workflowID),
	}, nil
}

// Trigger starts an execution with the hand-off as its JSON argument and returns the execution name.
func (w *WorkflowLauncher) Trigger(ctx context.Context, handoff models.ExtractionHandoff) (string, error) {
	payloadBytes, err := json.Marshal(handoff)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	execution, err := w.client.CreateExecution(ctx, &executionspb.CreateExecutionRequest{
		Parent: w.parent,
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	return execution.GetName(), nil
}

func (w *WorkflowLauncher) Close() error {
	return w.client.Close()
}
