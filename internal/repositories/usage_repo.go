package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pascalporedda/telegram-typefully-bot/internal/database"
	"github.com/pascalporedda/telegram-typefully-bot/internal/models"
)

// FreeUsageLimitSeconds is the free-tier transcription ceiling per identity,
// cumulative across account deletions.
const FreeUsageLimitSeconds int64 = 300

// UsageRepo is the append-only ledger of consumed transcription seconds.
// Totals include the archived consumption of previously deleted accounts
// under the same identity.
type UsageRepo struct {
	db *database.DB
}

func NewUsageRepo(db *database.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

func (repo *UsageRepo) RecordUsage(telegramId int64, durationSeconds int64) error {
	now := time.Now().Unix()

	query := `
		INSERT INTO voice_note_usage (telegram_id, duration_seconds, created_at)
		VALUES (?, ?, ?)
	`

	if _, err := repo.db.Exec(query, telegramId, durationSeconds, now); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// Records returns the live ledger entries for an identity, oldest first.
func (repo *UsageRepo) Records(telegramId int64) ([]models.UsageRecord, error) {
	query := `
		SELECT id, telegram_id, duration_seconds, created_at
		FROM voice_note_usage
		WHERE telegram_id = ?
		ORDER BY id
	`

	rows, err := repo.db.Query(query, telegramId)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	var records []models.UsageRecord
	for rows.Next() {
		var record models.UsageRecord
		err := rows.Scan(&record.Id, &record.TelegramId, &record.DurationSeconds, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Archived returns the archival record for an identity, or (nil, nil) if the
// account was never deleted.
func (repo *UsageRepo) Archived(telegramId int64) (*models.DeletedUser, error) {
	query := `
		SELECT telegram_id, total_usage_seconds, deleted_at
		FROM deleted_users
		WHERE telegram_id = ?
	`

	var archived models.DeletedUser
	err := repo.db.QueryRow(query, telegramId).Scan(
		&archived.TelegramId, &archived.TotalUsageSeconds, &archived.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get archived usage: %w", err)
	}
	return &archived, nil
}

// TotalUsage returns all seconds ever consumed by the identity: the archived
// total captured at the last account deletion plus every live record since.
func (repo *UsageRepo) TotalUsage(telegramId int64) (int64, error) {
	query := `
		SELECT COALESCE((SELECT total_usage_seconds FROM deleted_users WHERE telegram_id = ?), 0)
			+ COALESCE((SELECT SUM(duration_seconds) FROM voice_note_usage WHERE telegram_id = ?), 0)
	`

	var total int64
	if err := repo.db.QueryRow(query, telegramId, telegramId).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum usage: %w", err)
	}
	return total, nil
}

func (repo *UsageRepo) HasRemainingFreeQuota(telegramId int64) (bool, error) {
	total, err := repo.TotalUsage(telegramId)
	if err != nil {
		return false, err
	}
	return total < FreeUsageLimitSeconds, nil
}

// Archive captures the identity's running total into deleted_users and drops
// the live records. The total fed into the upsert already includes any prior
// archive, so repeated delete/re-onboard cycles keep accumulating.
func (repo *UsageRepo) Archive(telegramId int64) (int64, error) {
	total, err := repo.TotalUsage(telegramId)
	if err != nil {
		return 0, err
	}

	now := time.Now().Unix()
	query := `
		INSERT INTO deleted_users (telegram_id, total_usage_seconds, deleted_at)
		VALUES (?, ?, ?)
		ON CONFLICT(telegram_id) DO UPDATE SET
			total_usage_seconds = excluded.total_usage_seconds,
			deleted_at = excluded.deleted_at
	`
	if _, err := repo.db.Exec(query, telegramId, total, now); err != nil {
		return 0, fmt.Errorf("failed to archive usage: %w", err)
	}

	if _, err := repo.db.Exec(`DELETE FROM voice_note_usage WHERE telegram_id = ?`, telegramId); err != nil {
		return 0, fmt.Errorf("failed to clear live usage records: %w", err)
	}

	return total, nil
}
