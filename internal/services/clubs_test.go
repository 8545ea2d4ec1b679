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

func chessInput() models.ClubInput {
	return models.ClubInput{
		Name:        "Chess Club",
		Description: "Weekly blitz",
		WebsiteURL:  "https://chess.example.org",
	}
}

func TestSubmitOwnClub_ValidationTouchesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()

	tests := []struct {
		name string
		in   models.ClubInput
		msg  string
	}{
		{"empty name", models.ClubInput{}, "Club name is required."},
		{"blank name", models.ClubInput{Name: "   "}, "Club name is required."},
		{"bad url", models.ClubInput{Name: "x", DiscordURL: "javascript:alert(1)"}, "discordUrl must use http:// or https://."},
		{"bad email", models.ClubInput{Name: "x", ContactEmail: "nope"}, "contactEmail must be a valid email address."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.clubs.SubmitOwnClub(ctx, leader, tt.in, true)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.msg, err.Error())
		})
	}

	assert.Zero(t, f.stats.Snapshot().Calls, "validation failures must not reach the store")
	assert.Zero(t, f.writes())
}

func TestSubmitOwnClub_RequiresRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.clubs.SubmitOwnClub(ctx, nil, chessInput(), true)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.clubs.SubmitOwnClub(ctx, &models.Principal{UserID: "u", Role: "member"}, chessInput(), true)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, f.stats.Snapshot().Calls)
}

func TestSubmitOwnClub_CreatesClubAndMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()

	club, err := f.clubs.SubmitOwnClub(ctx, leader, chessInput(), true)
	require.NoError(t, err)

	assert.NotEmpty(t, club.ClubID)
	assert.Equal(t, models.StatusPending, club.Status)
	assert.Equal(t, leader.UserID, club.OwnerUserID)
	require.NotNil(t, club.SubmittedAt)
	assert.True(t, club.SubmittedAt.Equal(epoch))
	assert.Nil(t, club.ReviewedAt)

	members := f.mem.Rows("ClubMembers")
	require.Len(t, members, 1)
	assert.Equal(t, club.ClubID, members[0].Fields.String("clubId"))
	assert.Equal(t, leader.UserID, members[0].Fields.String("userId"))
	assert.Equal(t, "leader", members[0].Fields.String("memberRole"))

	assert.Equal(t, 1, f.notes.clubSubmitted)

	// second submission edits the same club
	again, err := f.clubs.SubmitOwnClub(ctx, leader, models.ClubInput{Name: "Chess Society"}, true)
	require.NoError(t, err)
	assert.Equal(t, club.RecordID, again.RecordID)
	assert.Equal(t, "Chess Society", again.Name)
	assert.Len(t, f.mem.Rows("Clubs"), 1)
	assert.Equal(t, 1, f.notes.clubSubmitted)
}

func TestLeaderEditResetsReview(t *testing.T) {
	for _, action := range []string{"approve", "reject"} {
		t.Run(action, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			leader := testutil.Leader()
			admin := testutil.Admin()

			club, err := f.clubs.SubmitOwnClub(ctx, leader, chessInput(), true)
			require.NoError(t, err)

			decided, err := f.clubs.Decide(ctx, admin, club.RecordID, action, "looked at it")
			require.NoError(t, err)
			require.NotNil(t, decided.ReviewedAt)
			assert.Equal(t, "looked at it", decided.ReviewNotes)

			f.clock.Advance(time.Hour)
			edited, err := f.clubs.SubmitOwnClub(ctx, leader, models.ClubInput{Name: "Chess Club", Description: "new"}, true)
			require.NoError(t, err)

			assert.Equal(t, models.StatusPending, edited.Status)
			assert.Nil(t, edited.ReviewedAt)
			assert.Empty(t, edited.ReviewNotes)
			require.NotNil(t, edited.SubmittedAt)
			assert.True(t, edited.SubmittedAt.Equal(epoch.Add(time.Hour)))

			row := f.mem.Rows("Clubs")[0]
			_, hasReviewed := row.Fields["reviewedAt"]
			assert.False(t, hasReviewed, "reviewedAt must be cleared, not blanked")
		})
	}
}

func TestAdminEditPreservesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()
	admin := testutil.Admin()

	club, err := f.clubs.SubmitOwnClub(ctx, leader, chessInput(), true)
	require.NoError(t, err)
	_, err = f.clubs.Decide(ctx, admin, club.RecordID, "approve", "")
	require.NoError(t, err)

	// admin who is also a member of the club
	_, err = f.db.CreateMembership(ctx, club.ClubID, admin.UserID, models.RoleAdmin)
	require.NoError(t, err)

	edited, err := f.clubs.UpdateLeaderClub(ctx, admin, club.ClubID, models.ClubInput{Name: "Chess Club", Description: "typo fix"}, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, edited.Status)
	assert.NotNil(t, edited.ReviewedAt)

	resubmitted, err := f.clubs.UpdateLeaderClub(ctx, admin, club.ClubID, models.ClubInput{Name: "Chess Club"}, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, resubmitted.Status)
}

func TestUpdateLeaderClub_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.Leader()
	stranger := testutil.Leader()

	club, err := f.clubs.SubmitOwnClub(ctx, owner, chessInput(), true)
	require.NoError(t, err)

	_, err = f.clubs.UpdateLeaderClub(ctx, stranger, club.ClubID, chessInput(), true)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.clubs.GetLeaderClub(ctx, stranger, club.ClubID)
	assert.ErrorIs(t, err, ErrForbidden)

	// membership without a club row
	_, err = f.db.CreateMembership(ctx, "ghost", owner.UserID, models.RoleLeader)
	require.NoError(t, err)
	_, err = f.clubs.GetLeaderClub(ctx, owner, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecideClub(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()
	admin := testutil.Admin()

	club, err := f.clubs.SubmitOwnClub(ctx, leader, chessInput(), true)
	require.NoError(t, err)

	_, err = f.clubs.Decide(ctx, leader, club.RecordID, "approve", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.clubs.Decide(ctx, admin, club.RecordID, "maybe", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.clubs.Decide(ctx, admin, "recDoesNotExist", "approve", "")
	assert.ErrorIs(t, err, ErrNotFound)

	nameless := f.mem.Seed("Clubs", store.Fields{"clubId": "ghost", "status": "pending"})
	_, err = f.clubs.Decide(ctx, admin, nameless.ID, "approve", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, reviewed := f.mem.Rows("Clubs")[1].Fields["reviewedAt"]
	assert.False(t, reviewed, "malformed club must not be updated")

	approved, err := f.clubs.Decide(ctx, admin, club.RecordID, "approve", "welcome")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.True(t, approved.ReviewedAt.Equal(epoch))
	assert.Equal(t, 1, f.notes.clubDecided)
}

func TestPublicVisibilityFollowsDecisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()
	admin := testutil.Admin()

	club, err := f.clubs.SubmitOwnClub(ctx, leader, chessInput(), true)
	require.NoError(t, err)

	public, err := f.clubs.ListPublic(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)
	_, err = f.clubs.GetPublic(ctx, club.ClubID)
	assert.ErrorIs(t, err, ErrNotFound)

	pending, err := f.clubs.ListPendingForAdmin(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	count, err := f.clubs.CountPendingForAdmin(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = f.clubs.Decide(ctx, admin, club.RecordID, "approve", "")
	require.NoError(t, err)

	public, err = f.clubs.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	got, err := f.clubs.GetPublic(ctx, club.RecordID)
	require.NoError(t, err)
	assert.Equal(t, club.ClubID, got.ClubID)

	count, err = f.clubs.CountPendingForAdmin(ctx, admin)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListForLeader(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := testutil.Leader()

	clubs, err := f.clubs.ListForLeader(ctx, leader)
	require.NoError(t, err)
	assert.Empty(t, clubs)

	_, err = f.clubs.CreateClub(ctx, leader, models.ClubInput{Name: "One"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.clubs.CreateClub(ctx, leader, models.ClubInput{Name: "Two"})
	require.NoError(t, err)

	clubs, err = f.clubs.ListForLeader(ctx, leader)
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	assert.Equal(t, "Two", clubs[0].Name)

	own, err := f.clubs.OwnClub(ctx, leader)
	require.NoError(t, err)
	assert.Equal(t, "One", own.Name)
}
