package sheets

import (
	"context"

	"dataentry/internal/core"
)

// Ports for outbound adapters.
type (
	// TaxonomyReader lists the options offered by the category selects.
	TaxonomyReader interface {
		List(ctx context.Context) (categories []string, subcategories []string, err error)
	}

	// SubmissionNotifier is told about every submission that passes validation.
	SubmissionNotifier interface {
		NotifySubmitted(ctx context.Context, sessionID string, e core.FormEntry) error
	}
)
