package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/campus-market/internal/listing"
	"github.com/sakif/campus-market/internal/model"
	"github.com/sakif/campus-market/internal/notify"
	"github.com/sakif/campus-market/internal/repository"
	"github.com/sakif/campus-market/internal/repository/sqlite"
)

// A form submitting straight into the SQLite catalog, with no fakes in
// between: the row must land and the success path must run.
func TestCatalog_FormSubmitStoresListing(t *testing.T) {
	db, err := sqlite.New(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewListingService(db, nil, discardLogger())
	queue := notify.NewQueue(4)
	var closed, created int

	f := listing.NewForm(listing.Deps{
		Submitter: svc,
		Notifier:  queue,
		Logger:    discardLogger(),
	}, listing.Callbacks{
		OnClose:          func() { closed++ },
		OnListingCreated: func() { created++ },
	})

	require.NoError(t, f.SetKind(model.KindMarketplace))
	require.NoError(t, f.Edit(func(fl *listing.Fields) {
		fl.Title = "Desk lamp"
		fl.Description = "Works fine"
		fl.Price = "15.50"
		fl.Category = string(model.CategoryFurniture)
		fl.Condition = string(model.ConditionGood)
	}))

	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, 1, closed)
	assert.Equal(t, 1, created)
	assert.Equal(t, listing.DefaultFields(), f.Fields())

	notes := queue.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.Success, notes[0].Severity)

	stored, err := svc.List(context.Background(), repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Desk lamp", stored[0].Title)
	assert.Equal(t, "15.5", stored[0].Price.String())
	assert.NotEmpty(t, stored[0].ID)
}
