package utils

import (
	"fmt"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"
)

// SendEmail sends an HTML email through the configured SMTP server
func SendEmail(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = username
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, port, username, password)
	if err := d.DialAndSend(m); err != nil {
		LogError("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %v", err)
	}
	LogInfo("Email sent to %s: %s", to, subject)
	return nil
}

// SendOTP sends a one-time verification code
func SendOTP(to string, otp string) error {
	subject := "Moria Peças & Serviços - Verification Code"
	body := fmt.Sprintf(`
		<h2>Email Verification</h2>
		<p>Your verification code is:</p>
		<h1 style="letter-spacing: 4px;">%s</h1>
		<p>This code expires in 10 minutes. If you did not request it, ignore this email.</p>
	`, otp)
	return SendEmail(to, subject, body)
}

// SendRevisionReminder notifies a customer about an upcoming vehicle revision
func SendRevisionReminder(to, vehicle string, dueDate string) error {
	subject := "Moria Peças & Serviços - Revision Reminder"
	body := fmt.Sprintf(`
		<h2>Revision Reminder</h2>
		<p>Your vehicle <strong>%s</strong> has a revision due on <strong>%s</strong>.</p>
		<p>Schedule your appointment to keep earning loyalty points on every service.</p>
	`, vehicle, dueDate)
	return SendEmail(to, subject, body)
}
