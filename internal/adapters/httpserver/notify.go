package httpserver

import (
	"bytes"
	"fmt"
	"net/smtp"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/marchal/traiteur/internal/domain"
)

func sendQuoteNotify(q *domain.Quote) {
	if err := sendQuoteEmail(q); err != nil {
		log.Warn().Err(err).Str("quote", q.Number).Msg("quote mail failed")
	}
}

func sendQuoteEmail(q *domain.Quote) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	to := os.Getenv("QUOTE_NOTIFY_EMAIL")
	if to == "" {
		to = q.CustomerEmail
	}
	if host == "" || port == "" || user == "" || pass == "" || to == "" {
		log.Warn().Msg("SMTP not configured, skipping quote mail")
		return nil
	}
	addr := host + ":" + port

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Subject: Quote %s\r\n", q.Number)
	_, _ = fmt.Fprintf(&buf, "From: %s\r\n", user)
	_, _ = fmt.Fprintf(&buf, "To: %s\r\n", to)
	buf.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	_, _ = fmt.Fprintf(&buf, "Quote: %s (%s)\n", q.Number, q.Mode)
	_, _ = fmt.Fprintf(&buf, "Event: %s, %d guests, %.1f h\n", q.EventDate.Format("2006-01-02"), q.GuestCount, q.DurationHours)
	if q.DeliveryLocation != "" {
		_, _ = fmt.Fprintf(&buf, "Delivery: %s\n", q.DeliveryLocation)
	}
	_, _ = fmt.Fprintf(&buf, "Customer: %s <%s> %s\n", q.CustomerName, q.CustomerEmail, q.CustomerPhone)
	buf.WriteString("Lines:\n")
	for _, l := range q.Lines {
		if l.Detail != "" {
			_, _ = fmt.Fprintf(&buf, "- %s: %s (%s)\n", l.Label, l.Amount.StringFixed(2), l.Detail)
		} else {
			_, _ = fmt.Fprintf(&buf, "- %s: %s\n", l.Label, l.Amount.StringFixed(2))
		}
	}
	_, _ = fmt.Fprintf(&buf, "Total: %s\n", q.Total.StringFixed(2))

	auth := smtp.PlainAuth("", user, pass, host)
	if err := smtp.SendMail(addr, auth, user, []string{to}, buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("email send")
		return err
	}
	return nil
}
