package email

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Links are the frontend URLs embedded in token emails.
type Links struct {
	ActivationURL string
	RecoveryURL   string
}

// Mail sends transactional email through sendgrid. It covers both the
// purchase notifications and the account token flows.
type Mail struct {
	client *sendgrid.Client
	from   *sgmail.Email
	links  Links
}

func New(apiKey string, fromName string, fromAddress string, links Links) *Mail {
	return &Mail{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromAddress),
		links:  links,
	}
}

func (m *Mail) send(to string, subject string, plain string, html string) error {
	msg := sgmail.NewSingleEmail(m.from, subject, sgmail.NewEmail("", to), plain, html)

	rsp, err := m.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sending %q to %s: %w", subject, to, err)
	}
	if rsp.StatusCode >= 400 {
		return fmt.Errorf("sending %q to %s: sendgrid status %d", subject, to, rsp.StatusCode)
	}

	return nil
}

func (m *Mail) SendCourseEnrollment(to string, name string, courseName string) error {
	subject := fmt.Sprintf("Successfully enrolled in %s", courseName)
	plain := fmt.Sprintf(
		"Hi %s,\n\nYou are now enrolled in %s. Head over to your dashboard to start learning.\n",
		name, courseName,
	)
	return m.send(to, subject, plain, wrap(subject, plain))
}

func (m *Mail) SendPaymentSuccess(to string, name string, amount int, orderID string, paymentID string) error {
	subject := "Payment received"
	plain := fmt.Sprintf(
		"Hi %s,\n\nWe received your payment of INR %d.\nOrder: %s\nPayment: %s\n",
		name, amount, orderID, paymentID,
	)
	return m.send(to, subject, plain, wrap(subject, plain))
}

func (m *Mail) SendActivationToken(to string, token string) error {
	subject := "Activate your account"
	plain := fmt.Sprintf(
		"Welcome!\n\nActivate your account at %s using the code below.\n\n%s\n",
		m.links.ActivationURL, token,
	)
	return m.send(to, subject, plain, wrap(subject, plain))
}

func (m *Mail) SendRecoveryToken(to string, token string) error {
	subject := "Reset your password"
	plain := fmt.Sprintf(
		"Reset your password at %s using the code below. The code expires shortly.\n\n%s\n",
		m.links.RecoveryURL, token,
	)
	return m.send(to, subject, plain, wrap(subject, plain))
}

func wrap(title string, body string) string {
	return fmt.Sprintf(
		`<html><body style="font-family: sans-serif"><h2>%s</h2><pre style="font-family: inherit">%s</pre></body></html>`,
		title, body,
	)
}
