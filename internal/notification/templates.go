package notification

import (
	"bytes"
	"fmt"
	"text/template"

	"worksync/internal/events"
)

var leaveStatusBody = template.Must(template.New("leave_status").Parse(
	`Hello {{.Name}},

Your {{.Event.LeaveType}} leave request from {{.Event.StartDate}} to {{.Event.EndDate}} ({{.Event.TotalDays}} day{{if ne .Event.TotalDays 1}}s{{end}}) has been {{.Event.Status}}.
{{- if .Event.RejectionReason}}

Reason: {{.Event.RejectionReason}}
{{- end}}

WorkSync
`))

// LeaveStatusMessage renders the mail sent to the owner of a reviewed leave.
func LeaveStatusMessage(to, name string, e events.LeaveStatusChangedEvent) (Message, error) {
	var body bytes.Buffer
	data := struct {
		Name  string
		Event events.LeaveStatusChangedEvent
	}{Name: name, Event: e}

	if err := leaveStatusBody.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render leave status mail: %w", err)
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your leave request has been %s", e.Status),
		Body:    body.String(),
	}, nil
}
