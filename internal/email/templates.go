package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <h2>Leads needing attention</h2>
  <p>{{len .Items}} lead(s) were flagged by the latest pipeline sweep.</p>
  <table border="0" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
    <tr style="background: #f0f4f8; text-align: left;">
      <th>Company</th><th>Status</th><th>Risk</th><th>Priority</th><th>Suggested next step</th>
    </tr>
    {{range .Items}}
    <tr style="border-bottom: 1px solid #e4e7eb;">
      <td>{{.CompanyName}}</td>
      <td>{{.Status}}</td>
      <td>{{.Risk}}</td>
      <td>{{.Priority}}</td>
      <td>{{if .Suggestions}}{{index .Suggestions 0}}{{end}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>`))

var leadWonTemplate = template.Must(template.New("leadWon").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <h2>Deal closed</h2>
  <p>Lead <strong>{{.LeadID}}</strong> moved from {{.PreviousStatus}} to closed_won.</p>
</body>
</html>`))

type leadWonData struct {
	LeadID         string
	PreviousStatus string
}

func renderLeadWon(leadID, previousStatus string) (string, error) {
	var buf bytes.Buffer
	if err := leadWonTemplate.Execute(&buf, leadWonData{LeadID: leadID, PreviousStatus: previousStatus}); err != nil {
		return "", fmt.Errorf("render lead won: %w", err)
	}
	return buf.String(), nil
}

type digestData struct {
	Items []DigestItem
}

func renderDigest(items []DigestItem) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, digestData{Items: items}); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}
