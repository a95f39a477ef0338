package otp

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

var otpHtml = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1f2933;">
    <h2>{{.Clinic}} verification code</h2>
    <p>Use the code below to sign in to your patient account.</p>
    <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">{{.SpacedCode}}</p>
    <p>This code is valid for {{.Validity}}.</p>
    <p style="color: #7b8794;">If you did not request this code, you can ignore this email.</p>
  </body>
</html>`))

// BuildMessage renders the code email sent to address.
func BuildMessage(clinic, address, code string, ttl time.Duration) (*EmailMessage, error) {
	data := struct {
		Clinic     string
		SpacedCode string
		Validity   string
	}{
		Clinic:     clinic,
		SpacedCode: strings.Join(strings.Split(code, ""), " "),
		Validity:   validity(ttl),
	}

	var html strings.Builder
	if err := otpHtml.Execute(&html, data); err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Your %s verification code is %s.\nThis code is valid for %s.\nIf you did not request this code, you can ignore this email.",
		clinic, code, data.Validity)

	return &EmailMessage{
		To:      address,
		Subject: fmt.Sprintf("Your %s verification code", clinic),
		Html:    html.String(),
		Text:    text,
	}, nil
}

func validity(ttl time.Duration) string {
	if ttl%time.Minute == 0 {
		minutes := int(ttl / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return fmt.Sprintf("%d seconds", int(ttl/time.Second))
}
