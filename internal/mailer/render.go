package mailer

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

var supportedLanguages = []language.Tag{
	language.English, // first entry is the fallback
	language.Spanish,
	language.French,
	language.German,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// ResolveLanguage maps a stored language code to a supported bundle key.
// Unsupported or empty codes fall back to "en".
func ResolveLanguage(code string) string {
	if code == "" {
		return "en"
	}
	_, index, conf := languageMatcher.Match(language.Make(code))
	if conf == language.No {
		return "en"
	}
	base, _ := supportedLanguages[index].Base()
	key := base.String()
	if _, ok := bundles[key]; !ok {
		return "en"
	}
	return key
}

// DeviceLabel translates a raw device type ("mobile", "desktop", "tablet")
// into the bundle's language; anything else maps to the unknown label.
func DeviceLabel(lang, deviceType string) string {
	b := bundles[ResolveLanguage(lang)]
	if label, ok := b.Devices[strings.ToLower(deviceType)]; ok {
		return label
	}
	return b.Devices["unknown"]
}

const htmlLayout = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2 style="color: #1a73e8;">{subject}</h2>
  <p>{greeting}</p>
  <p>{body}</p>
  <hr style="border: none; border-top: 1px solid #ddd; margin: 24px 0;">
  <p style="font-size: 12px; color: #888;">{footer}</p>
</body>
</html>`

// Render produces the subject and HTML for a notification in the given
// language, substituting the caller-supplied data fields. The device field,
// when present, is translated through the bundle's device labels.
func Render(notificationType, lang string, data map[string]string) (subject, html string, err error) {
	if !ValidNotificationType(notificationType) {
		return "", "", errors.Errorf("mailer: unknown notification type %q", notificationType)
	}
	key := ResolveLanguage(lang)
	b := bundles[key]

	subject = b.Subjects[notificationType]
	body := b.Bodies[notificationType]
	greeting := b.Greeting

	fields := make(map[string]string, len(data)+1)
	for k, v := range data {
		fields[k] = v
	}
	if raw, ok := fields["device"]; ok {
		fields["device"] = DeviceLabel(key, raw)
	}
	for k, v := range fields {
		token := "{" + k + "}"
		body = strings.ReplaceAll(body, token, v)
		greeting = strings.ReplaceAll(greeting, token, v)
	}

	html = strings.NewReplacer(
		"{subject}", subject,
		"{greeting}", greeting,
		"{body}", body,
		"{footer}", b.Footer,
	).Replace(htmlLayout)
	return subject, html, nil
}
