package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubdir/internal/models"
	"clubdir/internal/store"
	"clubdir/internal/testutil"
)

func TestSubmitAccessRequest_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.access.Submit(ctx, nil, "chess", "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.access.Submit(ctx, testutil.Leader(), "  ", "hi")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.stats.Snapshot().Calls)
}

func TestSubmitAccessRequest_ApprovedIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()
	admin := testutil.Admin()

	req, err := f.access.Submit(ctx, leader, "chess", "please")
	require.NoError(t, err)
	_, err = f.access.Decide(ctx, admin, req.RecordID, "approve", "ok")
	require.NoError(t, err)

	writesBefore := f.writes()
	again, err := f.access.Submit(ctx, leader, "chess", "again")
	require.NoError(t, err)

	assert.Equal(t, req.RecordID, again.RecordID)
	assert.Equal(t, models.StatusApproved, again.Status)
	assert.Equal(t, "please", again.Message)
	assert.Equal(t, writesBefore, f.writes(), "approved request must not be rewritten")
	assert.Len(t, f.mem.Rows("AccessRequests"), 1)
}

func TestSubmitAccessRequest_RejectedResetsInPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()
	admin := testutil.Admin()

	req, err := f.access.Submit(ctx, leader, "chess", "first")
	require.NoError(t, err)
	_, err = f.access.Decide(ctx, admin, req.RecordID, "reject", "need proof")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	again, err := f.access.Submit(ctx, leader, "chess", "second")
	require.NoError(t, err)

	assert.Equal(t, req.RecordID, again.RecordID)
	assert.Equal(t, models.StatusPending, again.Status)
	assert.Equal(t, "second", again.Message)
	assert.Empty(t, again.ReviewNotes)
	assert.Nil(t, again.ReviewedAt)
	require.NotNil(t, again.CreatedAt)
	assert.True(t, again.CreatedAt.Equal(epoch.Add(time.Hour)))
	assert.Len(t, f.mem.Rows("AccessRequests"), 1)
	assert.Equal(t, 2, f.notes.accessRequested)
}

func TestDecideAccessRequest_IdempotentApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()
	admin := testutil.Admin()

	req, err := f.access.Submit(ctx, leader, "chess", "")
	require.NoError(t, err)

	for range 2 {
		approved, err := f.access.Decide(ctx, admin, req.RecordID, "approve", "")
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, approved.Status)
	}

	members := f.mem.Rows("ClubMembers")
	require.Len(t, members, 1)
	assert.Equal(t, "chess", members[0].Fields.String("clubId"))
	assert.Equal(t, leader.UserID, members[0].Fields.String("userId"))
	assert.Equal(t, "leader", members[0].Fields.String("memberRole"))
}

func TestDecideAccessRequest_RejectCreatesNoMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.access.Submit(ctx, testutil.Leader(), "chess", "")
	require.NoError(t, err)

	rejected, err := f.access.Decide(ctx, testutil.Admin(), req.RecordID, "reject", "no")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Equal(t, "no", rejected.ReviewNotes)
	assert.Empty(t, f.mem.Rows("ClubMembers"))
}

func TestDecideAccessRequest_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.Admin()

	malformed := f.mem.Seed("AccessRequests", store.Fields{"clubId": "chess", "status": "pending"})

	tests := []struct {
		name   string
		p      *models.Principal
		id     string
		action string
		want   error
	}{
		{"leader cannot decide", testutil.Leader(), malformed.ID, "approve", ErrForbidden},
		{"bad action", admin, malformed.ID, "escalate", ErrValidation},
		{"missing record", admin, "recMissing", "approve", ErrNotFound},
		{"malformed record", admin, malformed.ID, "approve", ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.access.Decide(ctx, tt.p, tt.id, tt.action, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.mem.Rows("ClubMembers"))
}

func TestLatestForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()

	f.mem.Seed("AccessRequests", store.Fields{"clubId": "a", "requesterUserId": leader.UserID, "status": "rejected", "createdAt": "2025-01-01T00:00:00.000Z"})
	f.mem.Seed("AccessRequests", store.Fields{"clubId": "a", "requesterUserId": leader.UserID, "status": "pending", "createdAt": "2025-02-01T00:00:00.000Z"})
	f.mem.Seed("AccessRequests", store.Fields{"clubId": "b", "requesterUserId": leader.UserID, "status": "approved", "createdAt": "2025-01-15T00:00:00.000Z"})
	f.mem.Seed("AccessRequests", store.Fields{"clubId": "c", "requesterUserId": "someone-else", "status": "pending"})

	byClub, latest, err := f.access.LatestForUser(ctx, leader)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "a", latest[0].ClubID)
	assert.Equal(t, models.StatusPending, byClub["a"].Status)
	assert.Equal(t, models.StatusApproved, byClub["b"].Status)

	none, err := f.access.LatestForClub(ctx, leader, "zzz")
	require.NoError(t, err)
	assert.Nil(t, none)
}
