package notify

import (
	"bytes"
	"html/template"
	"strings"
)

// emailTmpl is the HTML wrapper applied to every outgoing email.
// {{.Subject}} and the body lines are auto-escaped by html/template.
var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f6f7f9;
     font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" role="presentation"
         style="background-color:#f6f7f9;padding:40px 16px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" role="presentation"
               style="max-width:600px;width:100%;">
          <tr>
            <td style="background-color:#111827;padding:24px 40px;border-radius:12px 12px 0 0;">
              <span style="font-size:20px;font-weight:700;color:#ffffff;letter-spacing:-0.3px;">Eventra</span>
              <span style="display:block;font-size:11px;color:#9ca3af;margin-top:2px;letter-spacing:0.3px;">
                Events &amp; Marketplace
              </span>
            </td>
          </tr>
          <tr>
            <td style="background-color:#ffffff;padding:32px 40px;">
              <h1 style="margin:0 0 16px;font-size:20px;font-weight:700;color:#111827;">{{.Subject}}</h1>
              {{range .Lines}}<p style="margin:0 0 12px;font-size:14px;line-height:22px;color:#374151;">{{.}}</p>
              {{end}}
            </td>
          </tr>
          <tr>
            <td style="background-color:#ffffff;padding:0 40px 32px;border-radius:0 0 12px 12px;">
              <p style="margin:0;font-size:12px;color:#9ca3af;">
                You are receiving this email because notifications are enabled for your Eventra account.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

// buildEmailHTML renders the branded HTML body for an email. The plain-text
// body is split on newlines so each line becomes its own paragraph.
func buildEmailHTML(subject, body string) (string, error) {
	lines := make([]string, 0, 8)
	for _, l := range strings.Split(body, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct {
		Subject string
		Lines   []string
	}{Subject: subject, Lines: lines})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
