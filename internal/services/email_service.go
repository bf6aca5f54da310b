package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/c4gt/bounce/internal/models"
)

// EmailService defines the interface for delivering one-time codes
type EmailService interface {
	SendOTPEmail(ctx context.Context, email, code string, purpose models.OTPPurpose, validFor time.Duration) error
}

// otpEmail is a rendered one-time code message.
type otpEmail struct {
	Subject string
	HTML    string
	Text    string
}

func minutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}

// renderOTPEmail builds the subject and bodies for a code email.
func renderOTPEmail(code string, purpose models.OTPPurpose, validFor time.Duration) otpEmail {
	mins := minutes(validFor)

	var subject, heading, intro, ignore string
	switch purpose {
	case models.OTPPurposePasswordReset:
		subject = "Reset your Bounce password"
		heading = "Password Reset Request"
		intro = "We received a request to reset your password. Use the code below to choose a new one:"
		ignore = "If you didn't request a password reset, you can ignore this email. Your password will not change."
	default:
		subject = "Your Bounce verification code"
		heading = "Verify Your Email Address"
		intro = "Thank you for signing up. Use the code below to complete your registration:"
		ignore = "If you didn't create an account, you can ignore this email."
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .code { font-size: 32px; font-weight: bold; letter-spacing: 8px; text-align: center; padding: 20px; background-color: #f1f3f5; border-radius: 4px; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s</h1>
        </div>
        <p>%s</p>
        <div class="code">%s</div>
        <p>This code is valid for %d minutes.</p>
        <p>%s</p>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, heading, intro, code, mins, ignore)

	text := fmt.Sprintf(`%s

%s

%s

This code is valid for %d minutes.

%s
`, heading, intro, code, mins, ignore)

	return otpEmail{Subject: subject, HTML: html, Text: text}
}
