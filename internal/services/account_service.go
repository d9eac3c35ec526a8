package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pascalporedda/telegram-typefully-bot/internal/models"
	"github.com/pascalporedda/telegram-typefully-bot/internal/repositories"
	"github.com/pascalporedda/telegram-typefully-bot/internal/session"
)

// UserStore is the account service's view of the user repository.
type UserStore interface {
	GetUser(telegramId int64) (*models.User, error)
	CreateUser(telegramId int64, username string) (*models.User, error)
	SetTypefullyKey(telegramId int64, apiKey string) error
	SetOpenaiKey(telegramId int64, apiKey string) error
	ToggleRewrite(telegramId int64) (bool, error)
	DeleteUser(telegramId int64) error
}

const deleteConfirmationToken = "DELETE"

const (
	MsgAlreadySetup = "You are already setup. Type /help to see the usage."
	MsgOnboarding   = "Hey there! To start please provide me your TypeFully API key so we can create drafts for you. Simply go to https://typefully.com, go to settings -> API & Integrations, and create & copy your API key. Then simply send it here in the chat."
	MsgKeyAccepted  = "Alright, that looks good. Now you can start using the bot. Type /help to see the usage."
	MsgKeyInvalid   = "API key is invalid. Please provide a valid API key."
	MsgNotOnboarded = "Something went wrong. Please try again with /start."
	MsgUnroutable   = "Unable to handle the message. Type /help to see the usage."

	MsgOpenaiKeyPrompt = "Please provide your OpenAI API key. You can get it from https://platform.openai.com/api-keys"
	MsgOpenaiKeySaved  = "Your OpenAI API key has been saved. You can now use the voice transcription feature."

	MsgTypefullyKeyPrompt = "Please provide your new Typefully API key. You can get it from https://typefully.com, go to settings -> API & Integrations."

	MsgDeleteWarning   = "⚠️ Are you sure you want to delete your account? This action cannot be undone.\n\nType 'DELETE' to confirm or any other message to cancel."
	MsgDeleted         = "Your account has been deleted. All your data has been removed, but your usage statistics are retained to prevent abuse. If you want to use the bot again, you'll need to start fresh with /start."
	MsgDeleteCancelled = "Account deletion cancelled. Your account remains active."
)

// AccountService owns the per-identity conversation state machine: every
// command and plain-text message maps to exactly one transition, and each
// handler returns the reply to send back.
type AccountService struct {
	users    UserStore
	ledger   UsageLedger
	drafter  Drafter
	sessions session.Store
}

func NewAccountService(users UserStore, ledger UsageLedger, drafter Drafter, sessions session.Store) *AccountService {
	return &AccountService{users: users, ledger: ledger, drafter: drafter, sessions: sessions}
}

func (s *AccountService) State(telegramId int64) session.State {
	return s.sessions.Get(telegramId)
}

// StartOnboarding creates the user record eagerly with empty keys and moves
// the session to the drafting-key prompt. An existing user stays idle.
func (s *AccountService) StartOnboarding(ctx context.Context, telegramId int64, username string) (string, error) {
	user, err := s.users.GetUser(telegramId)
	if err != nil {
		return "", err
	}
	if user != nil {
		return MsgAlreadySetup, nil
	}

	created, err := s.users.CreateUser(telegramId, username)
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Created user", "user_id", created.TelegramId, "username", created.Username)

	s.sessions.Set(telegramId, session.StateAwaitingTypefullyKey)
	return MsgOnboarding, nil
}

func (s *AccountService) RequestTypefullyKey(telegramId int64) string {
	s.sessions.Set(telegramId, session.StateAwaitingTypefullyKey)
	return MsgTypefullyKeyPrompt
}

func (s *AccountService) RequestOpenaiKey(telegramId int64) string {
	s.sessions.Set(telegramId, session.StateAwaitingOpenaiKey)
	return MsgOpenaiKeyPrompt
}

func (s *AccountService) RequestDeleteConfirmation(telegramId int64) string {
	s.sessions.Set(telegramId, session.StateAwaitingDeleteConfirmation)
	return MsgDeleteWarning
}

// HandleText routes a plain text message by the current session state.
func (s *AccountService) HandleText(ctx context.Context, telegramId int64, text string) (string, error) {
	switch s.sessions.Get(telegramId) {
	case session.StateAwaitingTypefullyKey:
		return s.receiveTypefullyKey(ctx, telegramId, text)
	case session.StateAwaitingOpenaiKey:
		return s.receiveOpenaiKey(ctx, telegramId, text)
	case session.StateAwaitingDeleteConfirmation:
		return s.handleDeleteConfirmation(ctx, telegramId, text)
	default:
		return MsgUnroutable, nil
	}
}

func (s *AccountService) receiveTypefullyKey(ctx context.Context, telegramId int64, apiKey string) (string, error) {
	user, err := s.users.GetUser(telegramId)
	if err != nil {
		return "", err
	}
	if user == nil {
		s.sessions.Set(telegramId, session.StateIdle)
		return MsgNotOnboarded, nil
	}

	valid, err := s.drafter.ValidateKey(ctx, apiKey)
	if err != nil {
		return "", err
	}
	if !valid {
		// Stay in the awaiting state and let the user retry.
		return MsgKeyInvalid, nil
	}

	if err := s.users.SetTypefullyKey(telegramId, apiKey); err != nil {
		return "", err
	}
	s.sessions.Set(telegramId, session.StateIdle)
	return MsgKeyAccepted, nil
}

func (s *AccountService) receiveOpenaiKey(ctx context.Context, telegramId int64, apiKey string) (string, error) {
	user, err := s.users.GetUser(telegramId)
	if err != nil {
		return "", err
	}
	if user == nil {
		s.sessions.Set(telegramId, session.StateIdle)
		return MsgNotOnboarded, nil
	}

	if err := s.users.SetOpenaiKey(telegramId, apiKey); err != nil {
		return "", err
	}
	s.sessions.Set(telegramId, session.StateIdle)
	return MsgOpenaiKeySaved, nil
}

// handleDeleteConfirmation requires the exact literal DELETE; anything else,
// including lowercase, cancels. Either way the session returns to idle.
func (s *AccountService) handleDeleteConfirmation(ctx context.Context, telegramId int64, text string) (string, error) {
	s.sessions.Set(telegramId, session.StateIdle)

	if text != deleteConfirmationToken {
		return MsgDeleteCancelled, nil
	}

	user, err := s.users.GetUser(telegramId)
	if err != nil {
		return "", err
	}
	if user == nil {
		return MsgNotOnboarded, nil
	}

	total, err := s.ledger.Archive(telegramId)
	if err != nil {
		return "", err
	}
	if err := s.users.DeleteUser(telegramId); err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Deleted user account", "user_id", telegramId, "archived_usage_seconds", total)

	return MsgDeleted, nil
}

// UsageReport renders the remaining free quota, or notes that the user's own
// key makes usage unlimited.
func (s *AccountService) UsageReport(telegramId int64) (string, error) {
	user, err := s.users.GetUser(telegramId)
	if err != nil {
		return "", err
	}
	if user == nil {
		return MsgNotOnboarded, nil
	}

	if user.HasOwnOpenaiKey() {
		return "You are using your own OpenAI API key, so you have unlimited usage.", nil
	}

	total, err := s.ledger.TotalUsage(telegramId)
	if err != nil {
		return "", err
	}
	remaining := repositories.FreeUsageLimitSeconds - total
	if remaining <= 0 {
		return "You have used up all your free minutes. Please use /setapikey to set your own OpenAI API key to continue using the bot.", nil
	}
	return fmt.Sprintf("You have %d minutes and %d seconds of free transcription remaining.", remaining/60, remaining%60), nil
}

func (s *AccountService) ToggleRewrite(telegramId int64) (string, error) {
	user, err := s.users.GetUser(telegramId)
	if err != nil {
		return "", err
	}
	if user == nil {
		return MsgNotOnboarded, nil
	}

	enabled, err := s.users.ToggleRewrite(telegramId)
	if err != nil {
		return "", err
	}

	status := "disabled"
	behaviour := "only format your voice notes without changing the content"
	if enabled {
		status = "enabled"
		behaviour = "enhance and rewrite your voice notes for better social media impact"
	}
	return fmt.Sprintf("AI rewriting is now %s. When %s, the bot will %s.", status, status, behaviour), nil
}
