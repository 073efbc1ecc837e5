package domain

import "time"

const (
	RateWindowMinute = "minute"
	RateWindowHour   = "hour"
)

// RateLimitTracking is one fixed-window counter row. A caller owns two rows
// per function at any time, one per window kind.
type RateLimitTracking struct {
	ID             int64     `gorm:"primaryKey" json:"id,string"`
	Identifier     string    `gorm:"size:200;index:idx_rate_window" json:"identifier"`
	IdentifierType string    `gorm:"size:32;index:idx_rate_window" json:"identifier_type"` // user|ip
	FunctionName   string    `gorm:"size:100;index:idx_rate_window" json:"function_name"`
	WindowKind     string    `gorm:"size:16;index:idx_rate_window" json:"window_kind"`
	WindowStart    time.Time `gorm:"index:idx_rate_window" json:"window_start"`
	Count          int       `gorm:"default:0" json:"count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (RateLimitTracking) TableName() string {
	return "rate_limit_tracking"
}
