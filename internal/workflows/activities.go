package workflows

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samirrijal/chargemap/internal/core/domain"
)

// SiteReobfuscator is the part of the charge-site service the batch job needs.
type SiteReobfuscator interface {
	ListIDs(ctx context.Context, afterID string, limit int) ([]string, error)
	Reobfuscate(ctx context.Context, id string) (*domain.ChargeSite, error)
}

// ReobfuscationActivities holds the activity implementations for ReobfuscationWorkflow.
type ReobfuscationActivities struct {
	Sites SiteReobfuscator
}

// ListSiteIDs returns the next page of site IDs after afterID.
func (a *ReobfuscationActivities) ListSiteIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	return a.Sites.ListIDs(ctx, afterID, limit)
}

// ReobfuscateSite draws a fresh offset for one site. It reports false when
// the site was deleted after it was listed.
func (a *ReobfuscationActivities) ReobfuscateSite(ctx context.Context, id string) (bool, error) {
	if _, err := a.Sites.Reobfuscate(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.InfoContext(ctx, "site vanished before re-obfuscation", "site_id", id)
			return false, nil
		}
		return false, err
	}
	return true, nil
}
