package email

import (
	"fmt"
	"html"
	"strings"

	"clubdir/internal/models"
)

// Templates renders notification messages.
type Templates struct {
	siteTitle string
	baseURL   string
}

// NewTemplates creates templates that link back to baseURL.
func NewTemplates(siteTitle, baseURL string) *Templates {
	return &Templates{siteTitle: siteTitle, baseURL: strings.TrimRight(baseURL, "/")}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #003c6c; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { padding: 15px; text-align: center; font-size: 12px; color: #6b7280; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
    </style>
</head>
<body>
    <div class="header"><h1>%s</h1></div>
    <div class="content">%s</div>
    <div class="footer"><p>Sent by %s &middot; <a href="%s">%s</a></p></div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.siteTitle), content,
		html.EscapeString(t.siteTitle), t.baseURL, t.baseURL)
}

func (t *Templates) footer() string {
	return fmt.Sprintf("\n\n--\n%s\n%s", t.siteTitle, t.baseURL)
}

// ClubSubmitted is sent to admins when a club enters the review queue.
func (t *Templates) ClubSubmitted(club *models.Club, submitter *models.Principal) Message {
	by := requesterLabel(submitter)
	subject := fmt.Sprintf("[%s] Club pending review: %s", t.siteTitle, club.Name)

	content := fmt.Sprintf(`
        <p>A club profile was submitted and needs review.</p>
        <div class="info-box">
            <p><span class="label">Club:</span> %s</p>
            <p><span class="label">Category:</span> %s</p>
            <p><span class="label">Contact:</span> %s</p>
            <p><span class="label">Submitted by:</span> %s</p>
        </div>
        <p><a href="%s/admin">Review in the admin panel</a></p>`,
		html.EscapeString(club.Name),
		html.EscapeString(club.Category),
		html.EscapeString(club.ContactEmail),
		html.EscapeString(by),
		t.baseURL,
	)

	text := fmt.Sprintf("Club pending review\n\nClub: %s\nCategory: %s\nContact: %s\nSubmitted by: %s\n\nReview at: %s/admin",
		club.Name, club.Category, club.ContactEmail, by, t.baseURL) + t.footer()

	return Message{Subject: subject, HTML: t.baseHTML(subject, content), Text: text}
}

// ClubDecided tells the club contact the outcome of a review.
func (t *Templates) ClubDecided(club *models.Club) Message {
	subject := fmt.Sprintf("[%s] %s was %s", t.siteTitle, club.Name, club.Status)

	notes := ""
	if club.ReviewNotes != "" {
		notes = fmt.Sprintf(`<p><span class="label">Notes:</span> %s</p>`, html.EscapeString(club.ReviewNotes))
	}
	content := fmt.Sprintf(`
        <p>Your club profile <strong>%s</strong> was <strong>%s</strong>.</p>
        %s`,
		html.EscapeString(club.Name), html.EscapeString(string(club.Status)), notes)

	text := fmt.Sprintf("Your club profile %s was %s.", club.Name, club.Status)
	if club.ReviewNotes != "" {
		text += "\n\nNotes: " + club.ReviewNotes
	}
	text += t.footer()

	return Message{Subject: subject, HTML: t.baseHTML(subject, content), Text: text}
}

// AccessRequested is sent to reviewers when a user asks to manage a club.
// Plain text only.
func (t *Templates) AccessRequested(req *models.AccessRequest, requester *models.Principal) Message {
	who := requesterLabel(requester)
	message := req.Message
	if message == "" {
		message = "(none)"
	}
	return Message{
		Subject: fmt.Sprintf("Access request: %s by %s", req.ClubID, who),
		Text: fmt.Sprintf("User %s requested access to club %s.\n\nMessage: %s\n\nView access requests in the admin panel.",
			who, req.ClubID, message),
	}
}

// AccessDecided tells the requester the outcome of their access request.
func (t *Templates) AccessDecided(req *models.AccessRequest) Message {
	subject := fmt.Sprintf("[%s] Access request for %s was %s", t.siteTitle, req.ClubID, req.Status)
	text := fmt.Sprintf("Your request to manage club %s was %s.", req.ClubID, req.Status)
	if req.Status == models.StatusApproved {
		text += fmt.Sprintf("\n\nYou can now edit the club at %s/leader.", t.baseURL)
	}
	if req.ReviewNotes != "" {
		text += "\n\nNotes: " + req.ReviewNotes
	}
	return Message{Subject: subject, Text: text + t.footer()}
}

// requesterLabel prefers the caller's email and falls back to the user id.
func requesterLabel(p *models.Principal) string {
	switch {
	case p == nil:
		return "unknown"
	case p.Email != "":
		return p.Email
	default:
		return p.UserID
	}
}
