// Package mailer renders and delivers user notification emails. Rendering
// selects a language bundle from the user's stored preference; delivery goes
// through the Resend REST API or plain SMTP depending on configuration.
package mailer

import (
	"context"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/bitminded/backoffice/config"
	"github.com/bitminded/backoffice/internal/domain"
	"github.com/bitminded/backoffice/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotificationDisabled is returned when the user has opted out of the
// notification type; callers treat it as a clean no-op.
var ErrNotificationDisabled = errors.New("mailer: notification type disabled by user preference")

type sendFunc func(ctx context.Context, to, subject, html string) error

type Mailer struct {
	db   *gorm.DB
	cfg  config.MailConfig
	send sendFunc
}

func New(db *gorm.DB, cfg config.MailConfig) *Mailer {
	m := &Mailer{db: db, cfg: cfg}
	switch cfg.Transport {
	case "smtp":
		m.send = m.sendSMTP
	default:
		m.send = m.sendResend
	}
	return m
}

// Notify renders the notification for userID and delivers it. The user's
// stored language picks the bundle (default en); a disabled preference flag
// for the type returns ErrNotificationDisabled without sending.
func (m *Mailer) Notify(ctx context.Context, userID int64, notificationType string, data map[string]string) error {
	var user domain.UserProfile
	if err := m.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return errors.Wrap(err, "mailer: load user")
	}
	if user.Email == "" {
		return errors.Errorf("mailer: user %d has no email address", userID)
	}

	lang := user.Language
	var pref domain.UserPreference
	if err := m.db.Where("user_id = ?", userID).First(&pref).Error; err == nil {
		if pref.Language != "" {
			lang = pref.Language
		}
		if !pref.EmailEnabled || !typeEnabled(pref.NotificationFlags, notificationType) {
			return ErrNotificationDisabled
		}
	}

	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["username"]; !ok {
		data["username"] = user.Username
	}

	subject, html, err := Render(notificationType, lang, data)
	if err != nil {
		return err
	}
	if err := m.send(ctx, user.Email, subject, html); err != nil {
		metrics.Inc(metrics.MetricVendorErrors)
		return err
	}
	metrics.Inc(metrics.MetricEmailsSent)
	zap.L().Info("notification email sent",
		zap.Int64("user_id", userID),
		zap.String("type", notificationType),
		zap.String("lang", ResolveLanguage(lang)))
	return nil
}

// typeEnabled reads the per-type flag from the preference JSON; a missing
// key means enabled.
func typeEnabled(flags, notificationType string) bool {
	if flags == "" {
		return true
	}
	var m map[string]bool
	if err := json.UnmarshalFromString(flags, &m); err != nil {
		return true
	}
	if enabled, ok := m[notificationType]; ok {
		return enabled
	}
	return true
}

type resendError struct {
	Message string `json:"message"`
}

func (m *Mailer) sendResend(ctx context.Context, to, subject, html string) error {
	var (
		body []byte
		code int
	)
	err := gout.POST(m.cfg.ResendApiUrl+"/emails").
		WithContext(ctx).
		SetTimeout(15*time.Second).
		SetHeader(gout.H{"Authorization": "Bearer " + m.cfg.ResendApiKey}).
		SetJSON(gout.H{
			"from":    m.cfg.From,
			"to":      to,
			"subject": subject,
			"html":    html,
		}).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "resend: send email")
	}
	if code < 200 || code >= 300 {
		var e resendError
		if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
			return errors.Errorf("resend: send email: status %d: %s", code, e.Message)
		}
		return errors.Errorf("resend: send email: status %d", code)
	}
	return nil
}

func (m *Mailer) sendSMTP(_ context.Context, to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	d := gomail.NewDialer(m.cfg.SmtpHost, m.cfg.SmtpPort, m.cfg.SmtpUser, m.cfg.SmtpPasswd)
	if err := d.DialAndSend(msg); err != nil {
		return errors.Wrap(err, "smtp: send email")
	}
	return nil
}
