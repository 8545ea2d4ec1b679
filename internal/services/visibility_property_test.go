package services

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"clubdir/internal/models"
	"clubdir/internal/testutil"
)

const (
	stepApprove = iota
	stepReject
	stepLeaderEdit
	stepAdminEdit
)

func TestProperty_PublicIffApproved(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a club is listed publicly exactly when it is approved", prop.ForAll(
		func(steps []int) bool {
			f := newFixture(t)
			ctx := context.Background()
			leader := testutil.Leader()
			admin := testutil.Admin()

			club, err := f.clubs.SubmitOwnClub(ctx, leader, chessInput(), true)
			if err != nil {
				return false
			}
			if _, err := f.db.CreateMembership(ctx, club.ClubID, admin.UserID, models.RoleAdmin); err != nil {
				return false
			}

			for _, step := range steps {
				var cur *models.Club
				switch step {
				case stepApprove:
					cur, err = f.clubs.Decide(ctx, admin, club.RecordID, "approve", "")
				case stepReject:
					cur, err = f.clubs.Decide(ctx, admin, club.RecordID, "reject", "")
				case stepLeaderEdit:
					cur, err = f.clubs.SubmitOwnClub(ctx, leader, chessInput(), true)
				case stepAdminEdit:
					cur, err = f.clubs.UpdateLeaderClub(ctx, admin, club.ClubID, chessInput(), true)
				}
				if err != nil {
					return false
				}

				public, err := f.clubs.ListPublic(ctx)
				if err != nil {
					return false
				}
				listed := len(public) == 1 && public[0].RecordID == club.RecordID
				if listed != (cur.Status == models.StatusApproved) {
					return false
				}
				if cur.ReviewedAt == nil && cur.Status != models.StatusPending {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(stepApprove, stepAdminEdit)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
