package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataentry/internal/amqp"
	"dataentry/internal/sheets/memory"
)

type brokenTaxonomy struct{}

func (brokenTaxonomy) List(context.Context) ([]string, []string, error) {
	return nil, nil, errors.New("sheets down")
}

func TestAuditWorker_FlagsUnknownOptions(t *testing.T) {
	w := NewAuditWorker(memory.New(memory.DefaultOptions, memory.DefaultOptions), nil)
	ctx := context.Background()

	require.NoError(t, w.HandleEntrySubmitted(ctx, &amqp.EntrySubmittedMessage{Category: "Option 1", SubCategory: "Option 2"}))
	require.NoError(t, w.HandleEntrySubmitted(ctx, &amqp.EntrySubmittedMessage{Category: "Option 9", SubCategory: "Option 2"}))
	require.NoError(t, w.HandleEntrySubmitted(ctx, &amqp.EntrySubmittedMessage{Category: "Option 1", SubCategory: "Other"}))

	assert.Equal(t, int64(3), w.Handled())
	assert.Equal(t, int64(2), w.Flagged())
}

func TestAuditWorker_TaxonomyFailureDoesNotRequeue(t *testing.T) {
	w := NewAuditWorker(brokenTaxonomy{}, nil)

	err := w.HandleEntrySubmitted(context.Background(), &amqp.EntrySubmittedMessage{Category: "x"})
	require.NoError(t, err)
	assert.Zero(t, w.Flagged())
}

func TestAuditWorker_WithoutTaxonomy(t *testing.T) {
	w := NewAuditWorker(nil, nil)
	require.NoError(t, w.HandleEntrySubmitted(context.Background(), &amqp.EntrySubmittedMessage{}))
	assert.Equal(t, int64(1), w.Handled())
}
