package notify

import (
	"fmt"
	"strings"
)

// FormatDigest renders the plain-text subject and body for a digest.
func FormatDigest(d Digest) (subject, body string) {
	subject = fmt.Sprintf("%d new job match(es) for %q", len(d.Matches), d.AlertName)

	var sb strings.Builder

	name := d.Name
	if name == "" {
		name = "there"
	}
	sb.WriteString(fmt.Sprintf("Hi %s,\n\n", name))
	sb.WriteString(fmt.Sprintf("Your alert %q found %d new match(es):\n\n", d.AlertName, len(d.Matches)))

	for i, m := range d.Matches {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, m.Job.Title))
		if m.Job.Company != "" {
			sb.WriteString(fmt.Sprintf(" at %s", m.Job.Company))
		}
		sb.WriteString("\n")

		if m.Job.Location != "" {
			sb.WriteString(fmt.Sprintf("   Location: %s\n", m.Job.Location))
		}
		if m.Job.JobType != "" {
			sb.WriteString(fmt.Sprintf("   Type: %s\n", m.Job.JobType))
		}
		sb.WriteString(fmt.Sprintf("   Match score: %d%%\n", m.Score))

		if len(m.Reasons) > 0 {
			sb.WriteString(fmt.Sprintf("   Why: %s\n", strings.Join(m.Reasons, "; ")))
		}

		sb.WriteString("\n")
	}

	sb.WriteString("Log in to view and apply.\n")

	return subject, sb.String()
}
