package utils

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sharath018/campus-event-backend/config"
)

// ======================
// SMTP Configuration
// ======================
var (
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	smtpUsername  = os.Getenv("SMTP_USERNAME")
	smtpPassword  = os.Getenv("SMTP_PASSWORD")
	smtpFromName  = os.Getenv("SMTP_FROM_NAME")
	smtpFromEmail = os.Getenv("SMTP_FROM_EMAIL")
	smtpTimeout   = 10 * time.Second
)

// sendRaw delivers a fully composed MIME message. When SMTP is not
// configured the mail is skipped silently so state changes never depend
// on mailer availability.
func sendRaw(to string, msg []byte) error {
	if smtpHost == "" || smtpUsername == "" || smtpPassword == "" {
		fmt.Println("⚠️ SMTP not configured. Email not sent.")
		return nil
	}

	if smtpFromEmail == "" {
		smtpFromEmail = smtpUsername
	}

	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         smtpHost,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", smtpUsername, smtpPassword, smtpHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := client.Mail(smtpFromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func fromHeader() string {
	if smtpFromName == "" {
		return smtpFromEmail
	}
	return fmt.Sprintf("%s <%s>", smtpFromName, smtpFromEmail)
}

// SendTicketEmail mails the ticket QR as an inline content-id attachment.
// qrPNG is the raw PNG; the body references it via cid.
func SendTicketEmail(to, eventTitle, ticketID string, qrPNG []byte) error {
	subject := fmt.Sprintf("Your Ticket: %s", eventTitle)
	boundary := "ticket-" + uuid.NewString()
	cid := "qr-" + uuid.NewString()

	htmlBody := fmt.Sprintf(
		"<p>You're registered for <b>%s</b>.</p>"+
			"<p>Ticket ID: <b>%s</b></p>"+
			"<p><img src=\"cid:%s\" alt=\"ticket QR\"/></p>"+
			"<p>Show this QR code at check-in. Event details: %s</p>",
		eventTitle, ticketID, cid, config.BaseURL,
	)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader()))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: multipart/related; boundary=\"%s\"\r\n", boundary))
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: image/png\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString(fmt.Sprintf("Content-ID: <%s>\r\n", cid))
	b.WriteString("Content-Disposition: inline; filename=\"ticket.png\"\r\n\r\n")

	encoded := base64.StdEncoding.EncodeToString(qrPNG)
	// RFC 2045 line length limit.
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return sendRaw(to, []byte(b.String()))
}

// SendOrganizerProvisionEmail mails a newly provisioned organizer their
// generated password.
func SendOrganizerProvisionEmail(to, name, password string) error {
	subject := "Your Organizer Account"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"An organizer account has been created for you.\r\n\r\n"+
			"Email: %s\r\nPassword: %s\r\n\r\n"+
			"Log in at %s and change your password.\r\n",
		name, to, password, config.BaseURL,
	)

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		fromHeader(), to, subject, body,
	)
	return sendRaw(to, []byte(msg))
}
