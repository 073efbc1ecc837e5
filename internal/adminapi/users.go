package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/bitminded/backoffice/internal/app"
	"github.com/bitminded/backoffice/internal/domain"
	"github.com/bitminded/backoffice/internal/mailer"
	"github.com/bitminded/backoffice/internal/webserver"
	"github.com/bitminded/backoffice/pkg/common"
)

func registerUserRoutes() {
	webserver.ApiGET("/crm/users", listUsers)
	webserver.ApiGET("/crm/users/:id", getUser)
	webserver.ApiPUT("/crm/users/:id", updateUser)
	webserver.ApiPUT("/crm/users/:id/suspend", suspendUser)
	webserver.ApiPUT("/crm/users/:id/activate", activateUser)
	webserver.ApiGET("/crm/users/:id/notes", listUserNotes)
	webserver.ApiPOST("/crm/users/:id/notes", createUserNote)
	webserver.ApiDELETE("/crm/users/:id/notes/:noteId", deleteUserNote)
	webserver.ApiGET("/crm/users/:id/activity", listUserActivity)
	webserver.ApiGET("/crm/users/:id/sessions", listUserSessions)
	webserver.ApiDELETE("/crm/users/:id/sessions/:sessionId", revokeUserSession)
	webserver.ApiGET("/crm/users/:id/preferences", getUserPreferences)
	webserver.ApiPUT("/crm/users/:id/preferences", updateUserPreferences)
	webserver.ApiPOST("/crm/users/:id/notify", notifyUser)
}

func listUsers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.TrimSpace(c.QueryParam("q"))
	role := strings.TrimSpace(c.QueryParam("role"))
	status := strings.TrimSpace(c.QueryParam("status"))

	db := GetDB(c).Model(&domain.UserProfile{})
	if q != "" {
		kw := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", kw, kw)
	}
	if role != "" {
		db = db.Where("role = ?", role)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}

	var rows []domain.UserProfile
	if err := db.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var u domain.UserProfile
	if err := GetDB(c).Where("id = ?", id).First(&u).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}
	return ok(c, u)
}

type userPayload struct {
	Username    string `json:"username" form:"username"`
	Email       string `json:"email" form:"email"`
	Role        string `json:"role" form:"role"`
	DateOfBirth string `json:"date_of_birth" form:"date_of_birth"`
	Country     string `json:"country" form:"country"`
	Gender      string `json:"gender" form:"gender"`
	Language    string `json:"language" form:"language"`
}

// updateUser edits the profile fields. A username change sends the
// username-changed notification with the old and new names.
func updateUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var u domain.UserProfile
	if err := GetDB(c).Where("id = ?", id).First(&u).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}

	var payload userPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user", err.Error())
	}

	oldUsername := u.Username
	if payload.Username != "" {
		u.Username = strings.TrimSpace(payload.Username)
	}
	if payload.Email != "" {
		u.Email = strings.TrimSpace(payload.Email)
	}
	if payload.Role == domain.UserRoleUser || payload.Role == domain.UserRoleAdmin {
		u.Role = payload.Role
	}
	if payload.DateOfBirth != "" {
		t, err := dateparse.ParseAny(payload.DateOfBirth)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse date of birth", payload.DateOfBirth)
		}
		u.DateOfBirth = &t
	}
	u.Country = payload.Country
	u.Gender = payload.Gender
	if payload.Language != "" {
		u.Language = mailer.ResolveLanguage(payload.Language)
	}
	u.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&u).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user", err.Error())
	}
	writeOprLog(c, "user_update", u.Username)

	var warnings []string
	if oldUsername != u.Username {
		err := mail.Notify(c.Request().Context(), u.ID, mailer.NotifyUsernameChanged, map[string]string{
			"old_username": oldUsername,
			"new_username": u.Username,
			"timestamp":    time.Now().Format(time.RFC1123),
		})
		if err != nil && err != mailer.ErrNotificationDisabled {
			warnings = append(warnings, "username change email: "+err.Error())
		}
	}
	return okWarn(c, u, warnings)
}

type suspendPayload struct {
	Reason string `json:"reason" form:"reason"`
}

// suspendUser flips the account to suspended and publishes the suspension
// event; the notification email is sent by the bus subscriber.
func suspendUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var u domain.UserProfile
	if err := GetDB(c).Where("id = ?", id).First(&u).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}
	if u.Status == domain.UserStatusSuspended {
		return fail(c, http.StatusBadRequest, "ALREADY_SUSPENDED", "User is already suspended", nil)
	}

	var payload suspendPayload
	_ = c.Bind(&payload)

	if err := GetDB(c).Model(&domain.UserProfile{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     domain.UserStatusSuspended,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to suspend user", err.Error())
	}
	// suspended accounts lose their active sessions immediately
	_ = GetDB(c).Where("user_id = ?", id).Delete(&domain.UserSession{}).Error

	writeOprLog(c, "user_suspend", u.Username)
	GetApp(c).Bus().Publish(app.EventUserSuspended, u.ID, payload.Reason)

	u.Status = domain.UserStatusSuspended
	return ok(c, u)
}

func activateUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var u domain.UserProfile
	if err := GetDB(c).Where("id = ?", id).First(&u).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}
	if err := GetDB(c).Model(&domain.UserProfile{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     domain.UserStatusActive,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to activate user", err.Error())
	}
	writeOprLog(c, "user_activate", u.Username)
	u.Status = domain.UserStatusActive
	return ok(c, u)
}

func listUserNotes(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var notes []domain.AdminNote
	if err := GetDB(c).Where("user_id = ?", id).Order("created_at DESC").Find(&notes).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query notes", err.Error())
	}
	return ok(c, notes)
}

type notePayload struct {
	Note string `json:"note" form:"note"`
}

func createUserNote(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var payload notePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse note", err.Error())
	}
	payload.Note = strings.TrimSpace(payload.Note)
	if payload.Note == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Note is empty", nil)
	}

	now := time.Now()
	note := domain.AdminNote{
		ID:        common.UUIDint64(),
		UserId:    id,
		Author:    currentOperator(c),
		Note:      payload.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := GetDB(c).Create(&note).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create note", err.Error())
	}
	return ok(c, note)
}

func deleteUserNote(c echo.Context) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	noteID, err := parseIDParam(c, "noteId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid note ID", nil)
	}
	if err := GetDB(c).Where("id = ? AND user_id = ?", noteID, userID).Delete(&domain.AdminNote{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete note", err.Error())
	}
	return ok(c, map[string]interface{}{"id": noteID})
}

func listUserActivity(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.LoginActivity{}).Where("user_id = ?", id)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query activity", err.Error())
	}
	var rows []domain.LoginActivity
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query activity", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func listUserSessions(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var sessions []domain.UserSession
	if err := GetDB(c).Where("user_id = ? AND expires_at > ?", id, time.Now()).
		Order("last_seen_at DESC").Find(&sessions).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sessions", err.Error())
	}
	return ok(c, sessions)
}

// revokeUserSession deletes the session row; the user's next request with
// that token fails auth.
func revokeUserSession(c echo.Context) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	sessionID, err := parseIDParam(c, "sessionId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid session ID", nil)
	}
	res := GetDB(c).Where("id = ? AND user_id = ?", sessionID, userID).Delete(&domain.UserSession{})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to revoke session", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Session not found", nil)
	}
	writeOprLog(c, "user_session_revoke", c.Param("sessionId"))
	return ok(c, map[string]interface{}{"id": sessionID})
}

func getUserPreferences(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var pref domain.UserPreference
	if err := GetDB(c).Where("user_id = ?", id).First(&pref).Error; err != nil {
		// defaults when the user never saved preferences
		pref = domain.UserPreference{UserId: id, Language: "en", EmailEnabled: true}
	}
	return ok(c, pref)
}

type preferencePayload struct {
	Language          string `json:"language" form:"language"`
	EmailEnabled      *bool  `json:"email_enabled" form:"email_enabled"`
	NotificationFlags string `json:"notification_flags" form:"notification_flags"`
}

func updateUserPreferences(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var payload preferencePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse preferences", err.Error())
	}

	now := time.Now()
	var pref domain.UserPreference
	if err := GetDB(c).Where("user_id = ?", id).First(&pref).Error; err != nil {
		pref = domain.UserPreference{
			ID:           common.UUIDint64(),
			UserId:       id,
			Language:     "en",
			EmailEnabled: true,
			CreatedAt:    now,
		}
	}
	if payload.Language != "" {
		pref.Language = mailer.ResolveLanguage(payload.Language)
	}
	if payload.EmailEnabled != nil {
		pref.EmailEnabled = *payload.EmailEnabled
	}
	if payload.NotificationFlags != "" {
		pref.NotificationFlags = payload.NotificationFlags
	}
	pref.UpdatedAt = now

	if err := GetDB(c).Save(&pref).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save preferences", err.Error())
	}
	return ok(c, pref)
}

type notifyPayload struct {
	Type string            `json:"type" form:"type"`
	Data map[string]string `json:"data"`
}

// notifyUser sends one of the predefined notification emails to the user.
// The call is rate-limited per operator.
func notifyUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var payload notifyPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse notification", err.Error())
	}
	if !mailer.ValidNotificationType(payload.Type) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown notification type", payload.Type)
	}
	if !GetApp(c).GetSettingsBoolValue("mail", "enabled") {
		return fail(c, http.StatusConflict, "MAIL_DISABLED", "Notification email delivery is switched off", nil)
	}

	if allowed, rsp := checkRateLimit(c, "send-notification", "notify"); !allowed {
		return rsp
	}

	data := payload.Data
	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["timestamp"]; !ok {
		data["timestamp"] = time.Now().Format(time.RFC1123)
	}

	if err := mail.Notify(c.Request().Context(), id, payload.Type, data); err != nil {
		if err == mailer.ErrNotificationDisabled {
			return fail(c, http.StatusConflict, "NOTIFICATION_DISABLED",
				"The user has disabled this notification", payload.Type)
		}
		return fail(c, http.StatusInternalServerError, "MAIL_ERROR", "Failed to send notification", err.Error())
	}
	writeOprLog(c, "user_notify", payload.Type)
	return ok(c, map[string]interface{}{"user_id": id, "type": payload.Type})
}
