package utils

import (
	"fmt"
	"net/smtp"
	"sort"
	"strings"
)

const companyName = "HomeFix Limited"

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #4CAF50; margin: 0;">HomeFix</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2026 HomeFix Limited. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends HTML emails over SMTP.
type Mailer struct {
	From     string
	Password string
	Host     string
	Port     string
	BaseURL  string

	send SendMailFunc
}

func NewMailer(from, password, host, port, baseURL string) *Mailer {
	return &Mailer{From: from, Password: password, Host: host, Port: port, BaseURL: baseURL, send: smtp.SendMail}
}

// WithSendFunc replaces the SMTP transport.
func (m *Mailer) WithSendFunc(fn SendMailFunc) *Mailer {
	m.send = fn
	return m
}

func (m *Mailer) Configured() bool {
	return m.From != "" && m.Password != "" && m.Host != "" && m.Port != ""
}

func (m *Mailer) buildMessage(to []string, subject, body string) []byte {
	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", companyName, m.From),
		"To":           strings.Join(to, ","),
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
		"X-Mailer":     "HomeFix-Mailer",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func (m *Mailer) sendEmail(to []string, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("email configuration not set")
	}
	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	if err := m.send(m.Host+":"+m.Port, auth, m.From, to, m.buildMessage(to, subject, body)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// SendBookingEmail sends a booking update with a link back to the booking.
func (m *Mailer) SendBookingEmail(to, name, title, message, bookingID string) error {
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">%s</h1>
					<p>Hello %s,</p>
					<p>%s</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/bookings/%s" style="background-color: #4CAF50; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View Booking</a>
					</div>
					<p>Best regards,<br>The HomeFix Team</p>
				</div>`+emailFooter,
		title, name, message, m.BaseURL, bookingID)

	return m.sendEmail([]string{to}, title+" - HomeFix", body)
}
