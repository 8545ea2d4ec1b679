package services

import "clubdir/internal/models"

// Notifier sends best-effort lifecycle emails. Implementations must not
// block the caller and never report failures back.
type Notifier interface {
	ClubSubmitted(club *models.Club, submitter *models.Principal)
	ClubDecided(club *models.Club)
	AccessRequested(req *models.AccessRequest, requester *models.Principal)
	AccessDecided(req *models.AccessRequest)
}

type nopNotifier struct{}

func (nopNotifier) ClubSubmitted(*models.Club, *models.Principal)          {}
func (nopNotifier) ClubDecided(*models.Club)                               {}
func (nopNotifier) AccessRequested(*models.AccessRequest, *models.Principal) {}
func (nopNotifier) AccessDecided(*models.AccessRequest)                    {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
