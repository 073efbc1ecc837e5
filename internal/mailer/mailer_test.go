package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bitminded/backoffice/config"
	"github.com/bitminded/backoffice/internal/domain"
)

type sentMail struct {
	to      string
	subject string
	html    string
}

func mailerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(&domain.UserProfile{}, &domain.UserPreference{}))
	require.NoError(t, db.AutoMigrate(&domain.UserProfile{}, &domain.UserPreference{}))
	return db
}

func newCaptureMailer(db *gorm.DB, sink *[]sentMail) *Mailer {
	m := New(db, config.MailConfig{From: "noreply@bitminded.ch"})
	m.send = func(_ context.Context, to, subject, html string) error {
		*sink = append(*sink, sentMail{to: to, subject: subject, html: html})
		return nil
	}
	return m
}

func seedUser(t *testing.T, db *gorm.DB, u domain.UserProfile) {
	t.Helper()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	require.NoError(t, db.Create(&u).Error)
}

func TestNotifyUsesProfileLanguage(t *testing.T) {
	db := mailerTestDB(t)
	seedUser(t, db, domain.UserProfile{ID: 1, Username: "claire", Email: "claire@example.com", Language: "fr"})

	var sent []sentMail
	m := newCaptureMailer(db, &sent)

	err := m.Notify(context.Background(), 1, NotifyPasswordChanged, map[string]string{"timestamp": "now"})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "claire@example.com", sent[0].to)
	assert.Equal(t, "Votre mot de passe a été modifié", sent[0].subject)
	assert.Contains(t, sent[0].html, "Bonjour claire,")
}

func TestNotifyPreferenceLanguageOverridesProfile(t *testing.T) {
	db := mailerTestDB(t)
	seedUser(t, db, domain.UserProfile{ID: 2, Username: "erik", Email: "erik@example.com", Language: "fr"})
	require.NoError(t, db.Create(&domain.UserPreference{ID: 20, UserId: 2, Language: "de", EmailEnabled: true}).Error)

	var sent []sentMail
	m := newCaptureMailer(db, &sent)

	err := m.Notify(context.Background(), 2, NotifyPasswordChanged, map[string]string{"timestamp": "now"})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "Ihr Passwort wurde geändert", sent[0].subject)
}

func TestNotifyRespectsEmailDisabled(t *testing.T) {
	db := mailerTestDB(t)
	seedUser(t, db, domain.UserProfile{ID: 3, Username: "mia", Email: "mia@example.com"})
	require.NoError(t, db.Create(&domain.UserPreference{ID: 30, UserId: 3, Language: "en", EmailEnabled: false}).Error)

	var sent []sentMail
	m := newCaptureMailer(db, &sent)

	err := m.Notify(context.Background(), 3, NotifyPasswordChanged, nil)
	assert.ErrorIs(t, err, ErrNotificationDisabled)
	assert.Empty(t, sent)
}

func TestNotifyRespectsPerTypeFlag(t *testing.T) {
	db := mailerTestDB(t)
	seedUser(t, db, domain.UserProfile{ID: 4, Username: "noa", Email: "noa@example.com"})
	require.NoError(t, db.Create(&domain.UserPreference{
		ID: 40, UserId: 4, Language: "en", EmailEnabled: true,
		NotificationFlags: `{"new_login":false}`,
	}).Error)

	var sent []sentMail
	m := newCaptureMailer(db, &sent)

	err := m.Notify(context.Background(), 4, NotifyNewLogin, map[string]string{
		"timestamp": "now", "device": "mobile", "browser": "Safari", "location": "Bern",
	})
	assert.ErrorIs(t, err, ErrNotificationDisabled)

	// other types remain enabled: a missing key means enabled
	err = m.Notify(context.Background(), 4, NotifyPasswordChanged, map[string]string{"timestamp": "now"})
	require.NoError(t, err)
	require.Len(t, sent, 1)
}

func TestNotifyRequiresEmailAddress(t *testing.T) {
	db := mailerTestDB(t)
	seedUser(t, db, domain.UserProfile{ID: 5, Username: "ghost"})

	var sent []sentMail
	m := newCaptureMailer(db, &sent)

	err := m.Notify(context.Background(), 5, NotifyPasswordChanged, nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotificationDisabled)
	assert.Empty(t, sent)
}

func TestNotifyUnknownUser(t *testing.T) {
	db := mailerTestDB(t)
	var sent []sentMail
	m := newCaptureMailer(db, &sent)

	err := m.Notify(context.Background(), 999, NotifyPasswordChanged, nil)
	assert.Error(t, err)
}

func TestTypeEnabled(t *testing.T) {
	assert.True(t, typeEnabled("", NotifyNewLogin))
	assert.True(t, typeEnabled("not json", NotifyNewLogin))
	assert.True(t, typeEnabled(`{"password_changed":false}`, NotifyNewLogin))
	assert.False(t, typeEnabled(`{"new_login":false}`, NotifyNewLogin))
	assert.True(t, typeEnabled(`{"new_login":true}`, NotifyNewLogin))
}

func TestSendResend(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, jsoniter.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	db := mailerTestDB(t)
	seedUser(t, db, domain.UserProfile{ID: 6, Username: "rae", Email: "rae@example.com", Language: "en"})

	m := New(db, config.MailConfig{
		Transport:    "resend",
		From:         "noreply@bitminded.ch",
		ResendApiUrl: srv.URL,
		ResendApiKey: "re_test",
	})
	err := m.Notify(context.Background(), 6, NotifyPasswordChanged, map[string]string{"timestamp": "now"})
	require.NoError(t, err)
	assert.Equal(t, "noreply@bitminded.ch", captured["from"])
	assert.Equal(t, "rae@example.com", captured["to"])
	assert.Equal(t, "Your password was changed", captured["subject"])
}

func TestSendResendErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	db := mailerTestDB(t)
	seedUser(t, db, domain.UserProfile{ID: 7, Username: "zed", Email: "zed@example.com"})

	m := New(db, config.MailConfig{ResendApiUrl: srv.URL, ResendApiKey: "re_test", From: "bad"})
	err := m.Notify(context.Background(), 7, NotifyPasswordChanged, map[string]string{"timestamp": "now"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from address")
}
