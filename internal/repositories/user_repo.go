package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pascalporedda/telegram-typefully-bot/internal/database"
	"github.com/pascalporedda/telegram-typefully-bot/internal/models"
)

var ErrUserAlreadyExists = errors.New("user already exists")

type UserRepo struct {
	db *database.DB
}

func NewUserRepo(db *database.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser returns the user record, or (nil, nil) if the identity is unknown.
func (repo *UserRepo) GetUser(telegramId int64) (*models.User, error) {
	query := `
		SELECT telegram_id, username, COALESCE(typefully_api_key, ''), COALESCE(openai_api_key, ''), rewrite_enabled, created_at
		FROM users
		WHERE telegram_id = ?
	`

	var user models.User
	err := repo.db.QueryRow(query, telegramId).Scan(
		&user.TelegramId, &user.Username, &user.TypefullyApiKey,
		&user.OpenaiApiKey, &user.RewriteEnabled, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (repo *UserRepo) CreateUser(telegramId int64, username string) (*models.User, error) {
	now := time.Now().Unix()

	query := `
		INSERT INTO users (telegram_id, username, typefully_api_key, openai_api_key, rewrite_enabled, created_at)
		VALUES (?, ?, NULL, NULL, false, ?)
	`

	_, err := repo.db.Exec(query, telegramId, username, now)
	if err != nil {
		existing, getErr := repo.GetUser(telegramId)
		if getErr == nil && existing != nil {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{TelegramId: telegramId, Username: username, CreatedAt: now}, nil
}

func (repo *UserRepo) SetTypefullyKey(telegramId int64, apiKey string) error {
	query := `UPDATE users SET typefully_api_key = ? WHERE telegram_id = ?`
	if _, err := repo.db.Exec(query, apiKey, telegramId); err != nil {
		return fmt.Errorf("failed to set typefully key: %w", err)
	}
	return nil
}

func (repo *UserRepo) SetOpenaiKey(telegramId int64, apiKey string) error {
	query := `UPDATE users SET openai_api_key = ? WHERE telegram_id = ?`
	if _, err := repo.db.Exec(query, apiKey, telegramId); err != nil {
		return fmt.Errorf("failed to set openai key: %w", err)
	}
	return nil
}

// ToggleRewrite flips the rewrite preference and returns the new value.
func (repo *UserRepo) ToggleRewrite(telegramId int64) (bool, error) {
	query := `
		UPDATE users SET rewrite_enabled = NOT rewrite_enabled
		WHERE telegram_id = ?
		RETURNING rewrite_enabled
	`

	var enabled bool
	if err := repo.db.QueryRow(query, telegramId).Scan(&enabled); err != nil {
		return false, fmt.Errorf("failed to toggle rewrite preference: %w", err)
	}
	return enabled, nil
}

func (repo *UserRepo) DeleteUser(telegramId int64) error {
	query := `DELETE FROM users WHERE telegram_id = ?`
	if _, err := repo.db.Exec(query, telegramId); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
