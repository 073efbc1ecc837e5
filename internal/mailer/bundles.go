package mailer

// Notification types. Each has a subject and body entry in every bundle.
const (
	NotifyPasswordChanged     = "password_changed"
	NotifyTwoFaEnabled        = "two_fa_enabled"
	NotifyTwoFaDisabled       = "two_fa_disabled"
	NotifyNewLogin            = "new_login"
	NotifyUsernameChanged     = "username_changed"
	NotifyFamilyInvite        = "family_invite_received"
	NotifyFamilyMemberJoined  = "family_member_joined"
	NotifyFamilyMemberLeft    = "family_member_left"
	NotifyFamilyMemberRemoved = "family_member_removed"
	NotifyAccountSuspended    = "account_suspended"
)

// NotificationTypes lists every supported type.
var NotificationTypes = []string{
	NotifyPasswordChanged,
	NotifyTwoFaEnabled,
	NotifyTwoFaDisabled,
	NotifyNewLogin,
	NotifyUsernameChanged,
	NotifyFamilyInvite,
	NotifyFamilyMemberJoined,
	NotifyFamilyMemberLeft,
	NotifyFamilyMemberRemoved,
	NotifyAccountSuspended,
}

type bundle struct {
	Greeting string
	Footer   string
	Subjects map[string]string
	Bodies   map[string]string
	Devices  map[string]string
}

// All four languages are baked in; there is no partial fallback chain —
// an unsupported stored language selects the whole en bundle.
var bundles = map[string]*bundle{
	"en": {
		Greeting: "Hello {username},",
		Footer:   "This is an automated message from BitMinded. Please do not reply.",
		Subjects: map[string]string{
			NotifyPasswordChanged:     "Your password was changed",
			NotifyTwoFaEnabled:        "Two-factor authentication enabled",
			NotifyTwoFaDisabled:       "Two-factor authentication disabled",
			NotifyNewLogin:            "New sign-in to your account",
			NotifyUsernameChanged:     "Your username was changed",
			NotifyFamilyInvite:        "You have been invited to a family group",
			NotifyFamilyMemberJoined:  "A new member joined your family group",
			NotifyFamilyMemberLeft:    "A member left your family group",
			NotifyFamilyMemberRemoved: "A member was removed from your family group",
			NotifyAccountSuspended:    "Your account has been suspended",
		},
		Bodies: map[string]string{
			NotifyPasswordChanged:     "Your password was changed on {timestamp}. If this was not you, reset your password immediately.",
			NotifyTwoFaEnabled:        "Two-factor authentication was enabled on your account on {timestamp}.",
			NotifyTwoFaDisabled:       "Two-factor authentication was disabled on your account on {timestamp}. If this was not you, contact support.",
			NotifyNewLogin:            "A new sign-in was detected on {timestamp} from a {device} device ({browser}) in {location}.",
			NotifyUsernameChanged:     "Your username was changed from {old_username} to {new_username} on {timestamp}.",
			NotifyFamilyInvite:        "{member_name} invited you to join the family group “{family_name}”.",
			NotifyFamilyMemberJoined:  "{member_name} joined your family group “{family_name}”.",
			NotifyFamilyMemberLeft:    "{member_name} left your family group “{family_name}”.",
			NotifyFamilyMemberRemoved: "{member_name} was removed from your family group “{family_name}”.",
			NotifyAccountSuspended:    "Your account was suspended on {timestamp}. Reason: {reason}. Contact support if you believe this is a mistake.",
		},
		Devices: map[string]string{"mobile": "mobile", "desktop": "desktop", "tablet": "tablet", "unknown": "unknown"},
	},
	"es": {
		Greeting: "Hola {username},",
		Footer:   "Este es un mensaje automático de BitMinded. Por favor, no responda.",
		Subjects: map[string]string{
			NotifyPasswordChanged:     "Tu contraseña ha sido cambiada",
			NotifyTwoFaEnabled:        "Autenticación de dos factores activada",
			NotifyTwoFaDisabled:       "Autenticación de dos factores desactivada",
			NotifyNewLogin:            "Nuevo inicio de sesión en tu cuenta",
			NotifyUsernameChanged:     "Tu nombre de usuario ha sido cambiado",
			NotifyFamilyInvite:        "Has sido invitado a un grupo familiar",
			NotifyFamilyMemberJoined:  "Un nuevo miembro se unió a tu grupo familiar",
			NotifyFamilyMemberLeft:    "Un miembro dejó tu grupo familiar",
			NotifyFamilyMemberRemoved: "Un miembro fue eliminado de tu grupo familiar",
			NotifyAccountSuspended:    "Tu cuenta ha sido suspendida",
		},
		Bodies: map[string]string{
			NotifyPasswordChanged:     "Tu contraseña fue cambiada el {timestamp}. Si no fuiste tú, restablécela inmediatamente.",
			NotifyTwoFaEnabled:        "La autenticación de dos factores fue activada en tu cuenta el {timestamp}.",
			NotifyTwoFaDisabled:       "La autenticación de dos factores fue desactivada en tu cuenta el {timestamp}. Si no fuiste tú, contacta con soporte.",
			NotifyNewLogin:            "Se detectó un nuevo inicio de sesión el {timestamp} desde un dispositivo {device} ({browser}) en {location}.",
			NotifyUsernameChanged:     "Tu nombre de usuario cambió de {old_username} a {new_username} el {timestamp}.",
			NotifyFamilyInvite:        "{member_name} te invitó a unirte al grupo familiar «{family_name}».",
			NotifyFamilyMemberJoined:  "{member_name} se unió a tu grupo familiar «{family_name}».",
			NotifyFamilyMemberLeft:    "{member_name} dejó tu grupo familiar «{family_name}».",
			NotifyFamilyMemberRemoved: "{member_name} fue eliminado de tu grupo familiar «{family_name}».",
			NotifyAccountSuspended:    "Tu cuenta fue suspendida el {timestamp}. Motivo: {reason}. Contacta con soporte si crees que es un error.",
		},
		Devices: map[string]string{"mobile": "móvil", "desktop": "ordenador", "tablet": "tableta", "unknown": "desconocido"},
	},
	"fr": {
		Greeting: "Bonjour {username},",
		Footer:   "Ceci est un message automatique de BitMinded. Merci de ne pas répondre.",
		Subjects: map[string]string{
			NotifyPasswordChanged:     "Votre mot de passe a été modifié",
			NotifyTwoFaEnabled:        "Authentification à deux facteurs activée",
			NotifyTwoFaDisabled:       "Authentification à deux facteurs désactivée",
			NotifyNewLogin:            "Nouvelle connexion à votre compte",
			NotifyUsernameChanged:     "Votre nom d'utilisateur a été modifié",
			NotifyFamilyInvite:        "Vous avez été invité à rejoindre un groupe familial",
			NotifyFamilyMemberJoined:  "Un nouveau membre a rejoint votre groupe familial",
			NotifyFamilyMemberLeft:    "Un membre a quitté votre groupe familial",
			NotifyFamilyMemberRemoved: "Un membre a été retiré de votre groupe familial",
			NotifyAccountSuspended:    "Votre compte a été suspendu",
		},
		Bodies: map[string]string{
			NotifyPasswordChanged:     "Votre mot de passe a été modifié le {timestamp}. Si ce n'était pas vous, réinitialisez-le immédiatement.",
			NotifyTwoFaEnabled:        "L'authentification à deux facteurs a été activée sur votre compte le {timestamp}.",
			NotifyTwoFaDisabled:       "L'authentification à deux facteurs a été désactivée sur votre compte le {timestamp}. Si ce n'était pas vous, contactez l'assistance.",
			NotifyNewLogin:            "Une nouvelle connexion a été détectée le {timestamp} depuis un appareil {device} ({browser}) à {location}.",
			NotifyUsernameChanged:     "Votre nom d'utilisateur a été changé de {old_username} en {new_username} le {timestamp}.",
			NotifyFamilyInvite:        "{member_name} vous a invité à rejoindre le groupe familial « {family_name} ».",
			NotifyFamilyMemberJoined:  "{member_name} a rejoint votre groupe familial « {family_name} ».",
			NotifyFamilyMemberLeft:    "{member_name} a quitté votre groupe familial « {family_name} ».",
			NotifyFamilyMemberRemoved: "{member_name} a été retiré de votre groupe familial « {family_name} ».",
			NotifyAccountSuspended:    "Votre compte a été suspendu le {timestamp}. Motif : {reason}. Contactez l'assistance si vous pensez qu'il s'agit d'une erreur.",
		},
		Devices: map[string]string{"mobile": "mobile", "desktop": "ordinateur", "tablet": "tablette", "unknown": "inconnu"},
	},
	"de": {
		Greeting: "Hallo {username},",
		Footer:   "Dies ist eine automatische Nachricht von BitMinded. Bitte nicht antworten.",
		Subjects: map[string]string{
			NotifyPasswordChanged:     "Ihr Passwort wurde geändert",
			NotifyTwoFaEnabled:        "Zwei-Faktor-Authentifizierung aktiviert",
			NotifyTwoFaDisabled:       "Zwei-Faktor-Authentifizierung deaktiviert",
			NotifyNewLogin:            "Neue Anmeldung bei Ihrem Konto",
			NotifyUsernameChanged:     "Ihr Benutzername wurde geändert",
			NotifyFamilyInvite:        "Sie wurden in eine Familiengruppe eingeladen",
			NotifyFamilyMemberJoined:  "Ein neues Mitglied ist Ihrer Familiengruppe beigetreten",
			NotifyFamilyMemberLeft:    "Ein Mitglied hat Ihre Familiengruppe verlassen",
			NotifyFamilyMemberRemoved: "Ein Mitglied wurde aus Ihrer Familiengruppe entfernt",
			NotifyAccountSuspended:    "Ihr Konto wurde gesperrt",
		},
		Bodies: map[string]string{
			NotifyPasswordChanged:     "Ihr Passwort wurde am {timestamp} geändert. Falls Sie das nicht waren, setzen Sie es sofort zurück.",
			NotifyTwoFaEnabled:        "Die Zwei-Faktor-Authentifizierung wurde am {timestamp} für Ihr Konto aktiviert.",
			NotifyTwoFaDisabled:       "Die Zwei-Faktor-Authentifizierung wurde am {timestamp} für Ihr Konto deaktiviert. Falls Sie das nicht waren, wenden Sie sich an den Support.",
			NotifyNewLogin:            "Am {timestamp} wurde eine neue Anmeldung von einem {device}-Gerät ({browser}) in {location} erkannt.",
			NotifyUsernameChanged:     "Ihr Benutzername wurde am {timestamp} von {old_username} zu {new_username} geändert.",
			NotifyFamilyInvite:        "{member_name} hat Sie eingeladen, der Familiengruppe „{family_name}“ beizutreten.",
			NotifyFamilyMemberJoined:  "{member_name} ist Ihrer Familiengruppe „{family_name}“ beigetreten.",
			NotifyFamilyMemberLeft:    "{member_name} hat Ihre Familiengruppe „{family_name}“ verlassen.",
			NotifyFamilyMemberRemoved: "{member_name} wurde aus Ihrer Familiengruppe „{family_name}“ entfernt.",
			NotifyAccountSuspended:    "Ihr Konto wurde am {timestamp} gesperrt. Grund: {reason}. Wenden Sie sich an den Support, wenn Sie dies für einen Fehler halten.",
		},
		Devices: map[string]string{"mobile": "Mobil", "desktop": "Desktop", "tablet": "Tablet", "unknown": "unbekannt"},
	},
}

// ValidNotificationType reports whether t is a known type.
func ValidNotificationType(t string) bool {
	_, ok := bundles["en"].Subjects[t]
	return ok
}
