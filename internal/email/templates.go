package email

import (
	"fmt"

	"github.com/summitprep/satprep-backend/internal/outbox"
)

// Rendered is a ready-to-send message.
type Rendered struct {
	Subject string
	Plain   string
	HTML    string
}

// Render builds the message for an outbox event. Unknown event types return
// an error so the worker can drop them instead of sending something empty.
func Render(ev outbox.Event, publicBaseURL string) (*Rendered, error) {
	switch ev.Type {
	case outbox.EventWelcome:
		return &Rendered{
			Subject: "Welcome to Summit Prep",
			Plain: fmt.Sprintf(
				"Hi %s,\n\nYour Summit Prep account is ready. We've asked your parent or guardian to confirm your enrollment — once they do, you'll have full access to your class schedule and diagnostic test.\n\nSee you in class!\nThe Summit Prep Team",
				ev.Name),
			HTML: fmt.Sprintf(
				"<p>Hi %s,</p><p>Your Summit Prep account is ready. We've asked your parent or guardian to confirm your enrollment &mdash; once they do, you'll have full access to your class schedule and diagnostic test.</p><p>See you in class!<br>The Summit Prep Team</p>",
				ev.Name),
		}, nil

	case outbox.EventParentalApproval:
		token := ev.Data["token"]
		student := ev.Data["student_name"]
		approveURL := fmt.Sprintf("%s/approval/%s/approve", publicBaseURL, token)
		declineURL := fmt.Sprintf("%s/approval/%s/decline", publicBaseURL, token)
		return &Rendered{
			Subject: fmt.Sprintf("Please confirm %s's Summit Prep enrollment", student),
			Plain: fmt.Sprintf(
				"Hi %s,\n\n%s has registered for SAT preparation with Summit Prep and listed you as their parent or guardian.\n\nApprove: %s\nDecline: %s\n\nThis link can be used once.\n\nThe Summit Prep Team",
				ev.Name, student, approveURL, declineURL),
			HTML: fmt.Sprintf(
				"<p>Hi %s,</p><p>%s has registered for SAT preparation with Summit Prep and listed you as their parent or guardian.</p><p><a href=%q>Approve enrollment</a> &middot; <a href=%q>Decline</a></p><p>This link can be used once.</p><p>The Summit Prep Team</p>",
				ev.Name, student, approveURL, declineURL),
		}, nil

	case outbox.EventApprovalResult:
		decision := ev.Data["decision"]
		return &Rendered{
			Subject: fmt.Sprintf("Your enrollment was %s", decision),
			Plain: fmt.Sprintf(
				"Hi %s,\n\nYour parent or guardian has %s your Summit Prep enrollment.\n\nThe Summit Prep Team",
				ev.Name, decision),
			HTML: fmt.Sprintf(
				"<p>Hi %s,</p><p>Your parent or guardian has %s your Summit Prep enrollment.</p><p>The Summit Prep Team</p>",
				ev.Name, decision),
		}, nil

	case outbox.EventPasswordReset:
		resetURL := fmt.Sprintf("%s/reset-password?token=%s", publicBaseURL, ev.Data["token"])
		return &Rendered{
			Subject: "Reset your Summit Prep password",
			Plain: fmt.Sprintf(
				"Hi %s,\n\nSomeone requested a password reset for your account. If this was you, open the link below. Otherwise you can ignore this email.\n\n%s\n\nThe link expires in one hour.\n\nThe Summit Prep Team",
				ev.Name, resetURL),
			HTML: fmt.Sprintf(
				"<p>Hi %s,</p><p>Someone requested a password reset for your account. If this was you, <a href=%q>reset your password</a>. Otherwise you can ignore this email.</p><p>The link expires in one hour.</p><p>The Summit Prep Team</p>",
				ev.Name, resetURL),
		}, nil

	case outbox.EventPaymentReceipt:
		return &Rendered{
			Subject: "Payment received — Summit Prep",
			Plain: fmt.Sprintf(
				"Hi %s,\n\nWe received your payment of $%s for the %s plan. You're all set.\n\nThe Summit Prep Team",
				ev.Name, ev.Data["amount"], ev.Data["plan"]),
			HTML: fmt.Sprintf(
				"<p>Hi %s,</p><p>We received your payment of <strong>$%s</strong> for the %s plan. You're all set.</p><p>The Summit Prep Team</p>",
				ev.Name, ev.Data["amount"], ev.Data["plan"]),
		}, nil
	}

	return nil, fmt.Errorf("unknown event type %q", ev.Type)
}
