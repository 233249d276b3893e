package workflows_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/chargemap/internal/adapters/memory"
	"github.com/samirrijal/chargemap/internal/core/domain"
	"github.com/samirrijal/chargemap/internal/core/usecases"
	"github.com/samirrijal/chargemap/internal/workflows"
)

func seededService(t *testing.T, n int) (*usecases.ChargeSiteService, *memory.ChargeSiteStore, []*domain.ChargeSite) {
	t.Helper()
	store := memory.NewChargeSiteStore()
	svc, err := usecases.NewChargeSiteService(store, nil, nil, usecases.ChargeSiteConfig{
		MaxObfuscatedRadius: 0.01,
		RedrawOnUpdate:      true,
		Rand:                rand.New(rand.NewPCG(5, 6)),
	})
	require.NoError(t, err)

	sites := make([]*domain.ChargeSite, 0, n)
	for i := 0; i < n; i++ {
		s, err := svc.Create(context.Background(), domain.ChargeSiteInput{
			UserID: i, Latitude: 10 + float64(i)*0.1, Longitude: 20,
		})
		require.NoError(t, err)
		sites = append(sites, s)
	}
	return svc, store, sites
}

func TestReobfuscationWorkflow_VisitsEverySite(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	svc, store, before := seededService(t, 7)
	env.RegisterActivity(&workflows.ReobfuscationActivities{Sites: svc})

	env.ExecuteWorkflow(workflows.ReobfuscationWorkflow, workflows.ReobfuscationInput{PageSize: 3})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result workflows.ReobfuscationResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, 7, result.Processed)
	assert.Equal(t, 0, result.Skipped)

	moved := 0
	for _, b := range before {
		after, err := store.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.TrueLocation, after.TrueLocation)
		if after.Location != b.Location {
			moved++
		}
	}
	assert.Equal(t, 7, moved)
}

func TestReobfuscationWorkflow_EmptyStore(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	svc, _, _ := seededService(t, 0)
	env.RegisterActivity(&workflows.ReobfuscationActivities{Sites: svc})

	env.ExecuteWorkflow(workflows.ReobfuscationWorkflow, workflows.ReobfuscationInput{})

	require.NoError(t, env.GetWorkflowError())
	var result workflows.ReobfuscationResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Zero(t, result.Processed)
}

func TestReobfuscationWorkflow_ContinuesAsNew(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	svc, _, _ := seededService(t, 5)
	env.RegisterActivity(&workflows.ReobfuscationActivities{Sites: svc})

	env.ExecuteWorkflow(workflows.ReobfuscationWorkflow, workflows.ReobfuscationInput{PageSize: 2, MaxPages: 1})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.True(t, workflow.IsContinueAsNewError(err))
}

type vanishingSites struct {
	ids []string
}

func (v *vanishingSites) ListIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	if afterID != "" {
		return nil, nil
	}
	return v.ids, nil
}

func (v *vanishingSites) Reobfuscate(ctx context.Context, id string) (*domain.ChargeSite, error) {
	if id == "gone" {
		return nil, domain.ErrNotFound
	}
	return &domain.ChargeSite{ID: id}, nil
}

func TestReobfuscationWorkflow_SkipsDeletedSites(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	env.RegisterActivity(&workflows.ReobfuscationActivities{Sites: &vanishingSites{ids: []string{"a", "gone", "c"}}})
	env.ExecuteWorkflow(workflows.ReobfuscationWorkflow, workflows.ReobfuscationInput{PageSize: 10})

	require.NoError(t, env.GetWorkflowError())
	var result workflows.ReobfuscationResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Skipped)
}

type brokenSites struct{ vanishingSites }

func (b *brokenSites) Reobfuscate(ctx context.Context, id string) (*domain.ChargeSite, error) {
	return nil, errors.New("connection refused")
}

func TestReobfuscationWorkflow_StoreErrorFails(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	env.RegisterActivity(&workflows.ReobfuscationActivities{Sites: &brokenSites{vanishingSites{ids: []string{"a"}}}})
	env.ExecuteWorkflow(workflows.ReobfuscationWorkflow, workflows.ReobfuscationInput{})

	require.True(t, env.IsWorkflowCompleted())
	assert.Error(t, env.GetWorkflowError())
}
