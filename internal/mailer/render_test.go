package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLanguage(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"en", "en"},
		{"es", "es"},
		{"fr", "fr"},
		{"de", "de"},
		{"fr-CH", "fr"},
		{"de-AT", "de"},
		{"ja", "en"},
		{"zh", "en"},
		{"", "en"},
		{"not-a-code", "en"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveLanguage(tc.code), "code=%q", tc.code)
	}
}

func TestDeviceLabel(t *testing.T) {
	assert.Equal(t, "ordinateur", DeviceLabel("fr", "desktop"))
	assert.Equal(t, "móvil", DeviceLabel("es", "mobile"))
	assert.Equal(t, "Tablet", DeviceLabel("de", "tablet"))
	assert.Equal(t, "desktop", DeviceLabel("en", "DESKTOP"))
	// anything unrecognized maps to the bundle's unknown label
	assert.Equal(t, "inconnu", DeviceLabel("fr", "smartwatch"))
	assert.Equal(t, "unknown", DeviceLabel("en", ""))
}

func TestRenderFrenchSubject(t *testing.T) {
	subject, html, err := Render(NotifyPasswordChanged, "fr", map[string]string{
		"username":  "claire",
		"timestamp": "2026-03-01 10:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "Votre mot de passe a été modifié", subject)
	assert.Contains(t, html, "Bonjour claire,")
	assert.Contains(t, html, "2026-03-01 10:30")
	assert.NotContains(t, html, "{username}")
	assert.NotContains(t, html, "{timestamp}")
}

func TestRenderFallsBackToEnglish(t *testing.T) {
	subject, html, err := Render(NotifyAccountSuspended, "ja", map[string]string{
		"username":  "joao",
		"timestamp": "now",
		"reason":    "chargeback",
	})
	require.NoError(t, err)
	assert.Equal(t, "Your account has been suspended", subject)
	assert.Contains(t, html, "chargeback")
}

func TestRenderTranslatesDevice(t *testing.T) {
	_, html, err := Render(NotifyNewLogin, "fr", map[string]string{
		"username":  "claire",
		"timestamp": "now",
		"device":    "desktop",
		"browser":   "Firefox",
		"location":  "Lausanne",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "ordinateur")
	assert.NotContains(t, html, ">desktop<")
	assert.Contains(t, html, "Firefox")
	assert.Contains(t, html, "Lausanne")
}

func TestRenderUsernameChange(t *testing.T) {
	_, html, err := Render(NotifyUsernameChanged, "en", map[string]string{
		"username":     "newname",
		"old_username": "oldname",
		"new_username": "newname",
		"timestamp":    "now",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "oldname")
	assert.Contains(t, html, "newname")
}

func TestRenderRejectsUnknownType(t *testing.T) {
	_, _, err := Render("password_reset", "en", nil)
	assert.Error(t, err)
}

func TestEveryBundleCoversEveryType(t *testing.T) {
	for lang, b := range bundles {
		for _, typ := range NotificationTypes {
			assert.NotEmpty(t, b.Subjects[typ], "%s subject %s", lang, typ)
			assert.NotEmpty(t, b.Bodies[typ], "%s body %s", lang, typ)
		}
		for _, device := range []string{"mobile", "desktop", "tablet", "unknown"} {
			assert.NotEmpty(t, b.Devices[device], "%s device %s", lang, device)
		}
	}
}
