package domain

import "time"

const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"

	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// UserProfile is the account record managed from the user detail panel.
type UserProfile struct {
	ID           int64      `gorm:"primaryKey" json:"id,string" form:"id"`
	Username     string     `gorm:"uniqueIndex;size:100" json:"username" form:"username"`
	Email        string     `gorm:"index;size:200" json:"email" form:"email"`
	Role         string     `gorm:"size:32;default:'user'" json:"role" form:"role"`
	Status       string     `gorm:"size:32;index;default:'active'" json:"status" form:"status"`
	TwoFaEnabled bool       `gorm:"default:false" json:"two_fa_enabled" form:"two_fa_enabled"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Country      string     `gorm:"size:100" json:"country" form:"country"`
	Gender       string     `gorm:"size:32" json:"gender" form:"gender"`
	Language     string     `gorm:"size:8;default:'en'" json:"language" form:"language"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// AdminNote is a free-form note an operator attaches to a user.
type AdminNote struct {
	ID        int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	UserId    int64     `gorm:"index" json:"user_id,string" form:"user_id"`
	Author    string    `gorm:"size:100" json:"author" form:"author"`
	Note      string    `gorm:"type:text" json:"note" form:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AdminNote) TableName() string {
	return "admin_notes"
}

// LoginActivity records a sign-in event shown on the user detail activity tab.
type LoginActivity struct {
	ID         int64     `gorm:"primaryKey" json:"id,string"`
	UserId     int64     `gorm:"index" json:"user_id,string"`
	Ipaddr     string    `gorm:"size:64" json:"ipaddr"`
	DeviceType string    `gorm:"size:32" json:"device_type"`
	Browser    string    `gorm:"size:100" json:"browser"`
	Location   string    `gorm:"size:200" json:"location"`
	CreatedAt  time.Time `json:"created_at"`
}

func (LoginActivity) TableName() string {
	return "login_activity"
}

// UserSession is an active auth session shown on the user detail sessions
// tab. Revoking deletes the row; the next token check then fails.
type UserSession struct {
	ID         int64     `gorm:"primaryKey" json:"id,string"`
	UserId     int64     `gorm:"index" json:"user_id,string"`
	Token      string    `gorm:"uniqueIndex;size:200" json:"-"`
	Ipaddr     string    `gorm:"size:64" json:"ipaddr"`
	UserAgent  string    `gorm:"size:300" json:"user_agent"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}

// UserPreference stores the notification language and per-type email flags.
// NotificationFlags is a JSON object keyed by notification type; a missing
// key means enabled.
type UserPreference struct {
	ID                int64     `gorm:"primaryKey" json:"id,string"`
	UserId            int64     `gorm:"uniqueIndex" json:"user_id,string"`
	Language          string    `gorm:"size:8;default:'en'" json:"language" form:"language"`
	EmailEnabled      bool      `gorm:"default:true" json:"email_enabled" form:"email_enabled"`
	NotificationFlags string    `gorm:"type:text" json:"notification_flags" form:"notification_flags"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
