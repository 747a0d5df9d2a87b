// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gympro-backend/metrics"
	"gympro-backend/models"
	"gympro-backend/repository"
	"gympro-backend/utils"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MessageSender delivers a text to a member's phone and reports the channel
// it went out on.
type MessageSender interface {
	Send(ctx context.Context, phone, body string) (channel string, err error)
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

// TwilioSender sends WhatsApp messages to E.164 numbers when a WhatsApp
// sender is configured and plain SMS otherwise.
type TwilioSender struct {
	client *twilio.RestClient
	cfg    TwilioConfig
}

func NewTwilioSender(cfg TwilioConfig) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		cfg: cfg,
	}
}

func (t *TwilioSender) Send(_ context.Context, phone, body string) (string, error) {
	channel := models.ChannelSMS
	to, from := phone, t.cfg.PhoneNumber
	if strings.HasPrefix(phone, "+") && t.cfg.WhatsAppNumber != "" {
		channel = models.ChannelWhatsApp
		to = "whatsapp:" + phone
		from = "whatsapp:" + t.cfg.WhatsAppNumber
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return channel, err
	}
	return channel, nil
}

// ReminderService texts members whose membership is about to run out.
type ReminderService struct {
	dashboard *DashboardService
	reminders repository.ReminderLogRepository
	sender    MessageSender
	days      int
	logger    *logrus.Logger
	cron      *cron.Cron
	Clock     Clock
}

func NewReminderService(dashboard *DashboardService, reminders repository.ReminderLogRepository, sender MessageSender, days int, logger *logrus.Logger) *ReminderService {
	if days <= 0 {
		days = models.ExpiringSoonDays
	}
	return &ReminderService{
		dashboard: dashboard,
		reminders: reminders,
		sender:    sender,
		days:      days,
		logger:    logger,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		Clock:     SystemClock,
	}
}

// Start schedules SendExpiryReminders on the cron spec, evaluated in UTC.
func (s *ReminderService) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.SendExpiryReminders(ctx); err != nil {
			s.logger.WithError(err).Error("Expiry reminder run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.WithField("schedule", spec).Info("Reminder scheduler started")
	return nil
}

// Stop waits for a running job to finish.
func (s *ReminderService) Stop() {
	<-s.cron.Stop().Done()
}

// SendExpiryReminders messages every member in the expiring projection who
// has not been reminded about that membership today. It returns how many
// messages were sent.
func (s *ReminderService) SendExpiryReminders(ctx context.Context) (int, error) {
	rows, err := s.dashboard.GetExpiringMemberships(ctx, s.days)
	if err != nil {
		return 0, err
	}

	now := s.Clock().UTC()
	today := utils.BeginningOfDay(now)
	sent := 0
	for _, row := range rows {
		if row.Phone == "" {
			continue
		}
		done, err := s.reminders.ExistsSince(ctx, row.MembershipID, today)
		if err != nil {
			return sent, err
		}
		if done {
			continue
		}

		message := expiryMessage(row)
		channel, sendErr := s.sender.Send(ctx, row.Phone, message)

		entry := &models.ReminderLog{
			MemberID:     row.MemberID,
			MembershipID: row.MembershipID,
			Message:      message,
			Status:       models.ReminderSent,
			Channel:      channel,
			SentAt:       now,
			CreatedAt:    now,
		}
		fields := logrus.Fields{"member_id": row.MemberID, "membership_id": row.MembershipID, "channel": channel}
		if sendErr != nil {
			entry.Status = models.ReminderFailed
			entry.ErrorMessage = sendErr.Error()
			s.logger.WithFields(fields).WithError(sendErr).Warn("Failed to send expiry reminder")
		} else {
			sent++
			s.logger.WithFields(fields).Info("Expiry reminder sent")
		}
		metrics.RemindersSent.WithLabelValues(entry.Status).Inc()

		if err := s.reminders.Create(ctx, entry); err != nil {
			s.logger.WithFields(fields).WithError(err).Error("Failed to log reminder")
		}
	}
	return sent, nil
}

func expiryMessage(row ExpiringMembership) string {
	return fmt.Sprintf("Hi %s, your %s membership expires %s (%s). Renew at the front desk to keep training!",
		row.MemberName, row.MembershipType, utils.RelativeDay(row.DaysRemaining), row.ExpiryDate.Format("02 Jan 2006"))
}
