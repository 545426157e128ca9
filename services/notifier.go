// services/notifier.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"salonbook-backend/models"
)

// Notifier delivers a text message to a phone number.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

// NopNotifier drops every message. It is used when Twilio is not configured.
type NopNotifier struct{}

func (NopNotifier) Send(context.Context, string, string) error { return nil }

// TwilioNotifier sends SMS, or WhatsApp when the recipient carries a
// "whatsapp:" prefix.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioNotifier(accountSID, authToken, from string) *TwilioNotifier {
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (n *TwilioNotifier) Send(ctx context.Context, to, body string) error {
	from := n.from
	if strings.HasPrefix(to, "whatsapp:") && !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	if resp.Sid != nil {
		slog.DebugContext(ctx, "message sent", "to", to, "sid", *resp.Sid)
	}
	return nil
}

type NotificationLogWriter interface {
	Create(ctx context.Context, entry *models.NotificationLog) error
}

type ClientReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// NotificationService sends visit receipts and daily summaries and records
// every attempt, successful or not.
type NotificationService struct {
	notifier Notifier
	logs     NotificationLogWriter
	clients  ClientReader
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

func NewNotificationService(notifier Notifier, logs NotificationLogWriter, clients ClientReader, loc *time.Location, logger *slog.Logger) *NotificationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &NotificationService{
		notifier: notifier,
		logs:     logs,
		clients:  clients,
		loc:      loc,
		logger:   logger.With("component", "notifications"),
		now:      time.Now,
	}
}

// SendVisitReceipt texts the client a breakdown of the visit. Failures are
// logged and recorded, never returned, so billing is unaffected.
func (s *NotificationService) SendVisitReceipt(ctx context.Context, visit *models.Visit) {
	client, err := s.clients.Get(ctx, visit.ClientID)
	if err != nil {
		s.logger.WarnContext(ctx, "receipt skipped: client lookup failed", "visit_id", visit.ID, "error", err)
		return
	}
	if client.Phone == "" {
		return
	}

	clientID := client.ID
	s.deliver(ctx, models.NotificationVisitReceipt, &clientID, client.Phone, VisitReceipt(client.Name, visit, s.loc))
}

// SendDailySummary texts the owner the totals of one day.
func (s *NotificationService) SendDailySummary(ctx context.Context, to string, day string, summary *Summary) error {
	body := fmt.Sprintf("Summary for %s: %d visits, earnings %s, expenses %s, net %s",
		day,
		summary.TotalVisits,
		money(summary.TotalEarnings),
		money(summary.TotalExpenses),
		money(summary.NetProfit),
	)
	return s.deliver(ctx, models.NotificationDailySummary, nil, to, body)
}

func (s *NotificationService) deliver(ctx context.Context, kind string, clientID *uuid.UUID, to, body string) error {
	entry := models.NotificationLog{
		Kind:      kind,
		ClientID:  clientID,
		Recipient: to,
		Message:   body,
		Status:    models.NotificationSent,
		SentAt:    s.now().UTC(),
	}

	sendErr := s.notifier.Send(ctx, to, body)
	if sendErr != nil {
		s.logger.ErrorContext(ctx, "notification failed", "kind", kind, "to", to, "error", sendErr)
		entry.Status = models.NotificationFailed
		entry.ErrorMessage = sendErr.Error()
	}

	if err := s.logs.Create(ctx, &entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to record notification", "kind", kind, "error", err)
	}
	return sendErr
}

// VisitReceipt renders the text sent to a client after a visit.
func VisitReceipt(clientName string, visit *models.Visit, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, thanks for visiting on %s.\n", clientName, visit.VisitDate.In(loc).Format("02 Jan 2006"))
	for _, line := range visit.Services {
		fmt.Fprintf(&b, "- %s: %s\n", line.Name, money(line.ChargedPrice))
	}
	fmt.Fprintf(&b, "Total: %s", money(visit.TotalAmount))
	return b.String()
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
