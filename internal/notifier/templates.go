package notifier

import (
	"fmt"
	"html/template"
	"strings"
)

// eventTemplate pairs a subject line with an HTML body template. Subjects are
// plain text/template-style strings rendered with the same payload.
type eventTemplate struct {
	subject string
	body    string
}

var eventTemplates = map[EventKind]eventTemplate{
	KindReservationApproved: {
		subject: "Your reservation for {{.BookTitle}} was approved",
		body: `<p>Dear {{.Name}},</p>
<p>Your reservation for <strong>{{.BookTitle}}</strong> has been approved.
Please collect the book at the front desk.</p>
<p>Reference: {{.Reference}}</p>`,
	},
	KindReservationRejected: {
		subject: "Your reservation for {{.BookTitle}} was rejected",
		body: `<p>Dear {{.Name}},</p>
<p>Unfortunately your reservation for <strong>{{.BookTitle}}</strong> could not
be approved. Please contact the library for details.</p>
<p>Reference: {{.Reference}}</p>`,
	},
	KindReservationCheckedOut: {
		subject: "{{.BookTitle}} is checked out until {{.DueDate}}",
		body: `<p>Dear {{.Name}},</p>
<p><strong>{{.BookTitle}}</strong> is now checked out to you.
It is due back on <strong>{{.DueDate}}</strong>.</p>
<p>Reference: {{.Reference}}</p>`,
	},
	KindReservationReturned: {
		subject: "Thanks for returning {{.BookTitle}}",
		body: `<p>Dear {{.Name}},</p>
<p>We have recorded the return of <strong>{{.BookTitle}}</strong>. Thank you!</p>
<p>Reference: {{.Reference}}</p>`,
	},
	KindReservationOverdue: {
		subject: "{{.BookTitle}} is overdue",
		body: `<p>Dear {{.Name}},</p>
<p><strong>{{.BookTitle}}</strong> was due on <strong>{{.DueDate}}</strong> and
is now overdue. Please return it as soon as possible to avoid late fees.</p>
<p>Reference: {{.Reference}}</p>`,
	},
	KindFeeAssessed: {
		subject: "A {{.FeeType}} fee of {{.Amount}} has been assessed",
		body: `<p>Dear {{.Name}},</p>
<p>A fee of <strong>{{.Amount}}</strong> ({{.FeeType}}) has been added to your
account: {{.Reason}}</p>
<p>Please settle it by <strong>{{.DueDate}}</strong>.</p>`,
	},
	KindFeePaid: {
		subject: "Payment received for your {{.FeeType}} fee",
		body: `<p>Dear {{.Name}},</p>
<p>Your payment of <strong>{{.Amount}}</strong> has been recorded. Thank you!</p>`,
	},
	KindFeeWaived: {
		subject: "Your {{.FeeType}} fee has been waived",
		body: `<p>Dear {{.Name}},</p>
<p>Your fee of <strong>{{.Amount}}</strong> ({{.FeeType}}) has been waived.
No payment is required.</p>`,
	},
	KindFeeOverdue: {
		subject: "Your {{.FeeType}} fee is overdue",
		body: `<p>Dear {{.Name}},</p>
<p>Your fee of <strong>{{.Amount}}</strong> ({{.FeeType}}) was due on
<strong>{{.DueDate}}</strong> and is still unpaid. Please settle it at the
front desk or online.</p>`,
	},
	KindApplicationApproved: {
		subject: "Welcome to the library!",
		body: `<p>Dear {{.Name}},</p>
<p>Your membership application has been approved. You can now sign in with
your email address and the temporary password provided separately.</p>`,
	},
	KindApplicationRejected: {
		subject: "About your membership application",
		body: `<p>Dear {{.Name}},</p>
<p>We are sorry, your membership application could not be approved at this
time.{{if .Notes}} Reviewer notes: {{.Notes}}{{end}}</p>`,
	},
	KindBookingConfirmed: {
		subject: "Your {{.Facility}} booking is confirmed",
		body: `<p>Dear {{.Name}},</p>
<p>Your booking of <strong>{{.Room}}</strong> from {{.Start}} to {{.End}} is
confirmed.</p>`,
	},
}

// Render produces the subject and HTML body for an event. Unknown event
// kinds are an error so they surface in logs instead of sending empty mail.
func Render(event Event) (subject string, body string, err error) {
	tpl, ok := eventTemplates[event.Kind]
	if !ok {
		return "", "", fmt.Errorf("no template for event kind %q", event.Kind)
	}

	subject, err = renderOne("subject", tpl.subject, event.Payload)
	if err != nil {
		return "", "", err
	}
	body, err = renderOne("body", tpl.body, event.Payload)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func renderOne(name, text string, payload map[string]string) (string, error) {
	t, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", name, err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, payload); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return sb.String(), nil
}
