package email

import (
	"context"

	"go.uber.org/zap"

	"clubdir/internal/config"
	"clubdir/internal/models"
)

// AdminLister looks up admin accounts for review notifications.
type AdminLister interface {
	ListAdminUsers(ctx context.Context) ([]*models.User, error)
}

// Notifier sends lifecycle emails for clubs and access requests. Every
// method returns immediately; delivery happens in the background.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
	admins    AdminLister
	logger    *zap.Logger
}

// NewNotifier creates a notifier. admins may be nil, in which case only
// ADMIN_NOTIFY receives club submissions.
func NewNotifier(cfg *config.Config, service *Service, admins AdminLister, logger *zap.Logger) *Notifier {
	return &Notifier{
		service:   service,
		templates: NewTemplates(cfg.SiteTitle, cfg.BaseURL),
		cfg:       cfg,
		admins:    admins,
		logger:    logger.Named("notifier"),
	}
}

// ClubSubmitted notifies admins that a club needs review.
func (n *Notifier) ClubSubmitted(club *models.Club, submitter *models.Principal) {
	if !n.service.IsEnabled() || !n.cfg.EmailNotifyOnClubSubmit {
		return
	}
	n.service.sendLater(n.adminRecipients, n.templates.ClubSubmitted(club, submitter))
}

// ClubDecided notifies the club contact of an approval or rejection.
func (n *Notifier) ClubDecided(club *models.Club) {
	if !n.service.IsEnabled() || !n.cfg.EmailNotifyOnDecision || club.ContactEmail == "" {
		return
	}
	msg := n.templates.ClubDecided(club)
	msg.To = []string{club.ContactEmail}
	n.service.SendAsync(msg)
}

// AccessRequested notifies the access-request reviewers.
func (n *Notifier) AccessRequested(req *models.AccessRequest, requester *models.Principal) {
	if !n.service.IsEnabled() || !n.cfg.EmailNotifyOnAccessRequest {
		return
	}
	if len(n.cfg.AccessRequestNotify) == 0 {
		n.logger.Debug("no access request recipients configured")
		return
	}
	msg := n.templates.AccessRequested(req, requester)
	msg.To = n.cfg.AccessRequestNotify
	n.service.SendAsync(msg)
}

// AccessDecided notifies the requester of the decision.
func (n *Notifier) AccessDecided(req *models.AccessRequest) {
	if !n.service.IsEnabled() || !n.cfg.EmailNotifyOnDecision || req.RequesterEmail == "" {
		return
	}
	msg := n.templates.AccessDecided(req)
	msg.To = []string{req.RequesterEmail}
	n.service.SendAsync(msg)
}

// adminRecipients merges ADMIN_NOTIFY with every admin account's email.
func (n *Notifier) adminRecipients(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(addr string) {
		addr = models.NormalizeEmail(addr)
		if addr != "" && !seen[addr] {
			seen[addr] = true
			out = append(out, addr)
		}
	}

	for _, addr := range n.cfg.AdminNotify {
		add(addr)
	}
	if n.admins == nil {
		return out, nil
	}

	users, err := n.admins.ListAdminUsers(ctx)
	if err != nil {
		if len(out) > 0 {
			n.logger.Warn("failed to list admin users, using ADMIN_NOTIFY only", zap.Error(err))
			return out, nil
		}
		return nil, err
	}
	for _, u := range users {
		add(u.Email)
	}
	return out, nil
}

// AdminEmails returns the current admin recipient list.
func (n *Notifier) AdminEmails(ctx context.Context) ([]string, error) {
	return n.adminRecipients(ctx)
}
