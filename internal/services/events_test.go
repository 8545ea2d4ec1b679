package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubdir/internal/models"
	"clubdir/internal/testutil"
)

func TestCreateEvent_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()

	tests := []struct {
		name string
		in   models.EventInput
		msg  string
	}{
		{"no club", models.EventInput{EventTitle: "Mixer", EventDate: "2025-03-01"}, "Club is required."},
		{"no title", models.EventInput{ClubID: "c", EventDate: "2025-03-01"}, "Event title is required."},
		{"no date", models.EventInput{ClubID: "c", EventTitle: "Mixer"}, "Event date is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.events.Create(ctx, leader, tt.in)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
	assert.Zero(t, f.stats.Snapshot().Calls)
}

func TestEventLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()
	stranger := testutil.Leader()

	club, err := f.clubs.CreateClub(ctx, leader, models.ClubInput{Name: "Chess"})
	require.NoError(t, err)

	in := models.EventInput{
		ClubID:         club.ClubID,
		EventTitle:     "Blitz night",
		EventDate:      "2025-04-01",
		EventTime:      "18:30",
		IceBreakersAlt: "favorite opening",
	}

	_, err = f.events.Create(ctx, stranger, in)
	assert.ErrorIs(t, err, ErrForbidden)

	event, err := f.events.Create(ctx, leader, in)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01T18:30:00.000Z", event.EventDate)
	assert.Equal(t, "Blitz night", event.Name)
	assert.Equal(t, "favorite opening", event.IceBreakers)
	assert.Equal(t, leader.UserID, event.OwnerUserID)

	got, err := f.events.Get(ctx, leader, event.RecordID)
	require.NoError(t, err)
	assert.Equal(t, event.RecordID, got.RecordID)

	_, err = f.events.Get(ctx, stranger, event.RecordID)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.events.Update(ctx, leader, event.RecordID, models.EventInput{EventTitle: "Rapid night", EventDate: "2025-04-02"})
	require.NoError(t, err)
	assert.Equal(t, "Rapid night", updated.EventTitle)
	assert.Equal(t, "2025-04-02", updated.EventDate)
	assert.Equal(t, club.ClubID, updated.ClubID)

	list, err := f.events.List(ctx, leader)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Rapid night", list[0].EventTitle)
}
