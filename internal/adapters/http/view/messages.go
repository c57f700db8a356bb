package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys
const (
	MsgFeedbackCorrect     = "quiz.feedback.correct"
	MsgFeedbackIncorrect   = "quiz.feedback.incorrect"
	MsgFeedbackUnanswered  = "quiz.feedback.unanswered"
	MsgQuizScore           = "quiz.score"
	MsgUnknownStation      = "quiz.unknown_station"
	MsgSessionCurrent      = "session.current"
	MsgSessionNone         = "session.none"
	MsgSessionSet          = "session.set"
	MsgMissingUsername     = "session.missing_username"
	MsgRegisterSuccess     = "register.success"
	MsgRegisterDuplicate   = "register.duplicate"
	MsgMissingCredentials  = "register.missing_credentials"
	MsgInvalidRole         = "register.invalid_role"
	MsgInputTooLong        = "register.input_too_long"
	MsgLoginSuccess        = "login.success"
	MsgLoginFailed         = "login.failed"
	MsgTrackingStarted     = "tracking.started"
	MsgTrackingStopped     = "tracking.stopped"
	MsgTrackingSaved       = "tracking.saved"
	MsgAlreadyRunning      = "tracking.already_running"
	MsgNotRunning          = "tracking.not_running"
	MsgInvalidMode         = "tracking.invalid_mode"
	MsgModeMismatch        = "tracking.mode_mismatch"
	MsgLocationUnavailable = "tracking.location_unavailable"
	MsgDeviceCleared       = "device.cleared"
	MsgBadRequest          = "error.bad_request"
	MsgInternal            = "error.internal"
	MsgRateLimited         = "error.rate_limited"
)

var catalog = map[language.Tag]map[string]string{
	language.German: {
		MsgFeedbackCorrect:     "Richtig ✓",
		MsgFeedbackIncorrect:   "Falsch ✗",
		MsgFeedbackUnanswered:  "Keine Antwort gewählt.",
		MsgQuizScore:           "Du hast %d von %d Punkten erreicht.",
		MsgUnknownStation:      "Diese Station gibt es nicht.",
		MsgSessionCurrent:      "Sie sind als %s (%s) angemeldet",
		MsgSessionNone:         "Du bist derzeit nicht eingeloggt.",
		MsgSessionSet:          "Angemeldet als %s.",
		MsgMissingUsername:     "Bitte Benutzername eingeben",
		MsgRegisterSuccess:     "Registrierung erfolgreich! Du kannst dich jetzt einloggen.",
		MsgRegisterDuplicate:   "Benutzername ist bereits vergeben.",
		MsgMissingCredentials:  "Bitte Benutzername und Passwort eingeben.",
		MsgInvalidRole:         "Bitte wähle eine gültige Rolle (Schüler:in oder Lehrer:in).",
		MsgInputTooLong:        "Die Eingabe ist zu lang.",
		MsgLoginSuccess:        "Login erfolgreich!",
		MsgLoginFailed:         "Benutzername oder Passwort ist falsch.",
		MsgTrackingStarted:     "Reise gestartet.",
		MsgTrackingStopped:     "Reise gestoppt.",
		MsgTrackingSaved:       "Reise gespeichert! Gesamt-Kilometer: %s km",
		MsgAlreadyRunning:      "Die Reise läuft bereits.",
		MsgNotRunning:          "Die Reise läuft gerade nicht.",
		MsgInvalidMode:         "Unbekannter Modus.",
		MsgModeMismatch:        "Standorte werden nur im GPS-Modus angenommen.",
		MsgLocationUnavailable: "Standort konnte nicht abgerufen werden.",
		MsgDeviceCleared:       "Alle Daten dieses Geräts wurden gelöscht.",
		MsgBadRequest:          "Ungültige Anfrage.",
		MsgInternal:            "Ein interner Fehler ist aufgetreten.",
		MsgRateLimited:         "Zu viele Anfragen. Bitte warte kurz.",
	},
	language.English: {
		MsgFeedbackCorrect:     "Correct ✓",
		MsgFeedbackIncorrect:   "Wrong ✗",
		MsgFeedbackUnanswered:  "No answer selected.",
		MsgQuizScore:           "You scored %d of %d points.",
		MsgUnknownStation:      "This station does not exist.",
		MsgSessionCurrent:      "You are signed in as %s (%s)",
		MsgSessionNone:         "You are currently not signed in.",
		MsgSessionSet:          "Signed in as %s.",
		MsgMissingUsername:     "Please enter a username",
		MsgRegisterSuccess:     "Registration successful! You can sign in now.",
		MsgRegisterDuplicate:   "This username is already taken.",
		MsgMissingCredentials:  "Please enter username and password.",
		MsgInvalidRole:         "Please choose a valid role (student or teacher).",
		MsgInputTooLong:        "The input is too long.",
		MsgLoginSuccess:        "Login successful!",
		MsgLoginFailed:         "Username or password is wrong.",
		MsgTrackingStarted:     "Trip started.",
		MsgTrackingStopped:     "Trip stopped.",
		MsgTrackingSaved:       "Trip saved! Total kilometres: %s km",
		MsgAlreadyRunning:      "The trip is already running.",
		MsgNotRunning:          "The trip is not running.",
		MsgInvalidMode:         "Unknown mode.",
		MsgModeMismatch:        "Positions are only accepted in GPS mode.",
		MsgLocationUnavailable: "Location could not be determined.",
		MsgDeviceCleared:       "All data of this device has been deleted.",
		MsgBadRequest:          "Invalid request.",
		MsgInternal:            "An internal error occurred.",
		MsgRateLimited:         "Too many requests. Please wait a moment.",
	},
}

func init() {
	for tag, messages := range catalog {
		for key, text := range messages {
			if err := message.SetString(tag, key, text); err != nil {
				panic("register message " + key + ": " + err.Error())
			}
		}
	}
}
