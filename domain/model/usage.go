package model

// DateKeyLayout is the calendar-date key format for daily usage records (UTC).
const DateKeyLayout = "2006-01-02"

// DailyUsage holds the per-day counters for one user.
type DailyUsage struct {
	PublishCount  int64 `json:"publish_count" bson:"publish_count"`
	AnalysisCount int64 `json:"analysis_count" bson:"analysis_count"`
}

// UsageStats is the per-user usage document. Daily is keyed by YYYY-MM-DD (UTC).
type UsageStats struct {
	UserID string                `json:"user_id" bson:"_id"`
	Daily  map[string]DailyUsage `json:"daily" bson:"daily"`
}
