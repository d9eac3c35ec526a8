package models

// UsageRecord is one completed transcription charged against the free quota.
// Records are append-only while the user exists.
type UsageRecord struct {
	Id              int64
	TelegramId      int64
	DurationSeconds int64
	CreatedAt       int64
}

// DeletedUser preserves the cumulative usage total of a removed account so a
// re-onboarded identity cannot start with a fresh quota.
type DeletedUser struct {
	TelegramId        int64
	TotalUsageSeconds int64
	DeletedAt         int64
}
