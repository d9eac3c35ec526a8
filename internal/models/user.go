package models

// User is the durable record for one Telegram identity. API keys are
// optional: a user without a Typefully key has not finished onboarding, a
// user without an OpenAI key transcribes against the shared free quota.
type User struct {
	TelegramId      int64
	Username        string
	TypefullyApiKey string
	OpenaiApiKey    string
	RewriteEnabled  bool
	CreatedAt       int64
}

func (u *User) HasOwnOpenaiKey() bool {
	return u.OpenaiApiKey != ""
}

func (u *User) Onboarded() bool {
	return u.TypefullyApiKey != ""
}
