// internal/app/composer.go
package app

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"hr_contract_notifier/internal/domain/contract"
	"hr_contract_notifier/internal/domain/notification"
	"hr_contract_notifier/internal/domain/recipient"
)

const (
	dateLayout          = "02/01/2006"
	placeholderNA       = "N/A"
	placeholderNoInfo   = "no information"
	placeholderOpenEnd  = "Indefinite"
	placeholderEmployee = "Unknown employee"
)

// messageFields is the flattened, placeholder-filled view of an event.
type messageFields struct {
	Kind           notification.EventKind
	Action         string
	Icon           string
	ContractNumber string
	EmployeeName   string
	EmployeeCode   string
	Department     string
	JobTitle       string
	StartDate      string
	EndDate        string
	Status         string
	DaysRemaining  int
	TerminatedDate string
	Reason         string
}

func (f messageFields) Terminated() bool { return f.Kind == notification.EventTerminated }

var emailTemplate = template.Must(template.New("email").Parse(`
{{- if eq .Kind "expiring" -}}
<h2>Contract expiry notice</h2>
<p>Dear management,</p>
<p>A contract will expire in <strong>{{.DaysRemaining}}</strong> days.</p>
{{- else -}}
<h2>Contract notice</h2>
<p>Dear management,</p>
<p>The following contract has been {{.Action}}:</p>
{{- end}}
<h3>Contract details:</h3>
<ul>
    <li><strong>Contract number:</strong> {{.ContractNumber}}</li>
    <li><strong>Employee:</strong> {{.EmployeeName}} (Code: {{.EmployeeCode}})</li>
    <li><strong>Department:</strong> {{.Department}}</li>
    <li><strong>Job title:</strong> {{.JobTitle}}</li>
    <li><strong>Start date:</strong> {{.StartDate}}</li>
    <li><strong>End date:</strong> {{.EndDate}}</li>
{{- if ne .Kind "expiring"}}
    <li><strong>Status:</strong> {{.Status}}</li>
{{- end}}
{{- if .Terminated}}
    <li><strong>Termination date:</strong> {{.TerminatedDate}}</li>
    <li><strong>Termination reason:</strong> {{.Reason}}</li>
{{- end}}
</ul>
{{- if eq .Kind "expiring"}}
<p>Please review whether to renew or end the contract before it expires.</p>
{{- end}}
<p>Regards,<br>HR Management System</p>
`))

// Compose builds the channel payloads for an event. It performs no I/O and
// never fails: missing optional data is rendered as placeholder text.
func Compose(ev notification.Event) notification.Message {
	f := fieldsFor(ev)

	var subject string
	switch ev.Kind {
	case notification.EventExpiring:
		subject = fmt.Sprintf("WARNING: Contract of %s is expiring soon", f.EmployeeName)
	default:
		subject = fmt.Sprintf("Contract %s: %s", f.Action, f.ContractNumber)
	}

	plain := composePlain(f)
	var htmlBody bytes.Buffer
	if err := emailTemplate.Execute(&htmlBody, f); err != nil {
		// Only reachable on a template bug; fall back to the plain body.
		htmlBody.Reset()
	}

	return notification.Message{
		Category:  recipient.TypeContracts,
		Subject:   subject,
		HTMLBody:  htmlBody.String(),
		PlainBody: plain,
		ChatText:  composeChat(f),
	}
}

func fieldsFor(ev notification.Event) messageFields {
	f := messageFields{
		Kind:           ev.Kind,
		EmployeeName:   placeholderEmployee,
		EmployeeCode:   placeholderNA,
		Department:     placeholderNA,
		ContractNumber: placeholderNA,
		JobTitle:       placeholderNA,
		StartDate:      placeholderNA,
		EndDate:        placeholderOpenEnd,
		Status:         placeholderNA,
		TerminatedDate: placeholderNA,
		Reason:         placeholderNoInfo,
		DaysRemaining:  ev.DaysRemaining,
	}
	f.Action, f.Icon = actionFor(ev.Kind)

	if c := ev.Contract; c != nil {
		f.ContractNumber = orPlaceholder(c.Number, placeholderNA)
		f.JobTitle = orPlaceholder(c.JobTitle, placeholderNA)
		f.Status = orPlaceholder(string(c.Status), placeholderNA)
		if !c.StartDate.IsZero() {
			f.StartDate = formatDate(c.StartDate)
		}
		if c.EndDate.Valid {
			f.EndDate = formatDate(c.EndDate.Time)
		}
		if c.TerminatedDate.Valid {
			f.TerminatedDate = formatDate(c.TerminatedDate.Time)
		}
		if c.TerminationReason.Valid {
			f.Reason = orPlaceholder(c.TerminationReason.String, placeholderNoInfo)
		}
	}
	if e := ev.Employee; e != nil {
		f.EmployeeName = orPlaceholder(e.FullName, placeholderEmployee)
		f.EmployeeCode = orPlaceholder(e.Code, placeholderNA)
		f.Department = departmentName(e)
	}
	return f
}

func actionFor(kind notification.EventKind) (action, icon string) {
	switch kind {
	case notification.EventNew:
		return "created", "🆕"
	case notification.EventUpdated:
		return "updated", "🔄"
	case notification.EventTerminated:
		return "terminated", "❌"
	case notification.EventExpiring:
		return "expiring", "⚠️"
	default:
		return string(kind), "ℹ️"
	}
}

func departmentName(e *contract.Employee) string {
	if e.DepartmentName.Valid && strings.TrimSpace(e.DepartmentName.String) != "" {
		return e.DepartmentName.String
	}
	return placeholderNA
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// formatDate renders the calendar date as stored, without zone conversion.
func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func composePlain(f messageFields) string {
	var b strings.Builder
	if f.Kind == notification.EventExpiring {
		fmt.Fprintf(&b, "A contract will expire in %d days.\n\n", f.DaysRemaining)
	} else {
		fmt.Fprintf(&b, "The following contract has been %s.\n\n", f.Action)
	}
	fmt.Fprintf(&b, "Contract number: %s\n", f.ContractNumber)
	fmt.Fprintf(&b, "Employee: %s (Code: %s)\n", f.EmployeeName, f.EmployeeCode)
	fmt.Fprintf(&b, "Department: %s\n", f.Department)
	fmt.Fprintf(&b, "Job title: %s\n", f.JobTitle)
	fmt.Fprintf(&b, "Start date: %s\n", f.StartDate)
	fmt.Fprintf(&b, "End date: %s\n", f.EndDate)
	if f.Kind != notification.EventExpiring {
		fmt.Fprintf(&b, "Status: %s\n", f.Status)
	}
	if f.Terminated() {
		fmt.Fprintf(&b, "Termination date: %s\n", f.TerminatedDate)
		fmt.Fprintf(&b, "Termination reason: %s\n", f.Reason)
	}
	return b.String()
}

// composeChat renders Telegram HTML markup. User-supplied values are escaped.
func composeChat(f messageFields) string {
	esc := html.EscapeString
	var b strings.Builder
	if f.Kind == notification.EventExpiring {
		fmt.Fprintf(&b, "<b>%s WARNING: Contract expiring soon</b>\n\n", f.Icon)
		fmt.Fprintf(&b, "The contract of <b>%s</b> expires in <b>%d</b> days.\n\n", esc(f.EmployeeName), f.DaysRemaining)
	} else {
		fmt.Fprintf(&b, "<b>%s Notice: Contract %s</b>\n\n", f.Icon, esc(f.Action))
	}
	b.WriteString("<b>Details:</b>\n")
	fmt.Fprintf(&b, "• Contract number: %s\n", esc(f.ContractNumber))
	fmt.Fprintf(&b, "• Employee: %s (Code: %s)\n", esc(f.EmployeeName), esc(f.EmployeeCode))
	fmt.Fprintf(&b, "• Department: %s\n", esc(f.Department))
	fmt.Fprintf(&b, "• Job title: %s\n", esc(f.JobTitle))
	fmt.Fprintf(&b, "• Start date: %s\n", f.StartDate)
	fmt.Fprintf(&b, "• End date: %s\n", f.EndDate)
	if f.Kind != notification.EventExpiring {
		fmt.Fprintf(&b, "• Status: %s\n", esc(f.Status))
	}
	if f.Terminated() {
		fmt.Fprintf(&b, "• Termination date: %s\n", f.TerminatedDate)
		fmt.Fprintf(&b, "• Termination reason: %s\n", esc(f.Reason))
	}
	if f.Kind == notification.EventExpiring {
		b.WriteString("\nPlease review whether to renew or end the contract.")
	}
	return b.String()
}
