package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// ReobfuscationWorkflowName is the registered workflow type.
	ReobfuscationWorkflowName = "ReobfuscationWorkflow"

	defaultPageSize = 100
	defaultMaxPages = 50
)

// ReobfuscationInput is the input for the re-obfuscation workflow. The
// counters carry over when the workflow continues as new.
type ReobfuscationInput struct {
	AfterID  string
	PageSize int
	MaxPages int

	Processed int
	Skipped   int
}

// ReobfuscationResult summarises a completed run.
type ReobfuscationResult struct {
	Processed int
	Skipped   int
}

// ReobfuscationWorkflow walks every stored site in ID order and gives each a
// freshly drawn published location. Run it after lowering the configured
// radius so no site keeps an offset larger than the new bound. After MaxPages
// pages it continues as new to keep the event history small.
func ReobfuscationWorkflow(ctx workflow.Context, input ReobfuscationInput) (ReobfuscationResult, error) {
	logger := workflow.GetLogger(ctx)
	if input.PageSize <= 0 {
		input.PageSize = defaultPageSize
	}
	if input.MaxPages <= 0 {
		input.MaxPages = defaultMaxPages
	}
	logger.Info("Starting re-obfuscation", "after", input.AfterID, "processed", input.Processed)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var a *ReobfuscationActivities
	for page := 0; page < input.MaxPages; page++ {
		var ids []string
		if err := workflow.ExecuteActivity(ctx, a.ListSiteIDs, input.AfterID, input.PageSize).Get(ctx, &ids); err != nil {
			return ReobfuscationResult{}, err
		}
		if len(ids) == 0 {
			logger.Info("Re-obfuscation finished", "processed", input.Processed, "skipped", input.Skipped)
			return ReobfuscationResult{Processed: input.Processed, Skipped: input.Skipped}, nil
		}

		futures := make([]workflow.Future, len(ids))
		for i, id := range ids {
			futures[i] = workflow.ExecuteActivity(ctx, a.ReobfuscateSite, id)
		}
		for i, f := range futures {
			var updated bool
			if err := f.Get(ctx, &updated); err != nil {
				logger.Error("re-obfuscation failed", "site_id", ids[i], "error", err)
				return ReobfuscationResult{}, err
			}
			if updated {
				input.Processed++
			} else {
				input.Skipped++
			}
		}

		input.AfterID = ids[len(ids)-1]
		if len(ids) < input.PageSize {
			logger.Info("Re-obfuscation finished", "processed", input.Processed, "skipped", input.Skipped)
			return ReobfuscationResult{Processed: input.Processed, Skipped: input.Skipped}, nil
		}
	}

	return ReobfuscationResult{}, workflow.NewContinueAsNewError(ctx, ReobfuscationWorkflow, input)
}
