package mailer

import (
	"bytes"
	"html/template"
)

const verificationTemplate = `
    <h2>{{if .Resend}}New Verification Link{{else}}Welcome to register FinTrackEasy{{end}}</h2>
    <p>Please click the link below to complete the email verification</p>
    <p>Your verification link expires in <strong>{{.TTLMinutes}} minutes</strong>:</p>
    <a href="{{.VerifyURL}}" style="padding: 10px; background: #007bff; color: white; text-decoration: none;">Verify now</a>
    <p>Can't click? Copy this URL:<br/>{{.VerifyURL}}</p>
`

var verificationTmpl = template.Must(template.New("verification").Parse(verificationTemplate))

type VerificationData struct {
	VerifyURL  string
	TTLMinutes int
	Resend     bool
}

// VerificationEmail renders the HTML body for a verification mail.
func VerificationEmail(data VerificationData) (string, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
