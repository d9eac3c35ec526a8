package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/pascalporedda/telegram-typefully-bot/internal/models"
)

// ErrMissingFallbackKey is a configuration fault: a quota-funded invocation
// was admitted but the operator key is not provisioned.
var ErrMissingFallbackKey = errors.New("fallback openai api key is not configured")

// UsageLedger is the pipeline's view of the usage repository.
type UsageLedger interface {
	RecordUsage(telegramId int64, durationSeconds int64) error
	TotalUsage(telegramId int64) (int64, error)
	HasRemainingFreeQuota(telegramId int64) (bool, error)
	Archive(telegramId int64) (int64, error)
}

// Drafter publishes finished text to the drafting service.
type Drafter interface {
	ValidateKey(ctx context.Context, apiKey string) (bool, error)
	CreateDraft(ctx context.Context, apiKey string, content string) error
}

// MediaFetcher resolves a chat attachment into a readable byte stream.
type MediaFetcher interface {
	Fetch(ctx context.Context, fileId string) (io.ReadCloser, error)
}

type VoiceNote struct {
	FileId          string
	DurationSeconds int64
}

// VoicePipeline turns one inbound voice note into a published draft:
// credential selection and quota gate, staging to a local file, Whisper
// transcription, usage accounting, rewrite/format, publish. The staged file
// is removed on every exit path.
type VoicePipeline struct {
	transcriber       Transcriber
	composer          Composer
	drafter           Drafter
	fetcher           MediaFetcher
	ledger            UsageLedger
	fallbackOpenaiKey string
	downloadDir       string
}

func NewVoicePipeline(
	transcriber Transcriber,
	composer Composer,
	drafter Drafter,
	fetcher MediaFetcher,
	ledger UsageLedger,
	fallbackOpenaiKey string,
	downloadDir string,
) *VoicePipeline {
	return &VoicePipeline{
		transcriber:       transcriber,
		composer:          composer,
		drafter:           drafter,
		fetcher:           fetcher,
		ledger:            ledger,
		fallbackOpenaiKey: fallbackOpenaiKey,
		downloadDir:       downloadDir,
	}
}

// ProcessVoiceNote runs the pipeline for one voice note. notify delivers
// progress messages to the user mid-flight; the final draft text is returned
// on success. Errors carry the failed stage via PipelineError or one of the
// sentinel errors.
func (p *VoicePipeline) ProcessVoiceNote(ctx context.Context, user *models.User, note VoiceNote, notify func(text string)) (string, error) {
	if user == nil {
		return "", ErrUserNotFound
	}

	openaiKey := user.OpenaiApiKey
	quotaFunded := !user.HasOwnOpenaiKey()
	if quotaFunded {
		hasQuota, err := p.ledger.HasRemainingFreeQuota(user.TelegramId)
		if err != nil {
			return "", err
		}
		if !hasQuota {
			return "", ErrQuotaExceeded
		}
		if p.fallbackOpenaiKey == "" {
			return "", ErrMissingFallbackKey
		}
		openaiKey = p.fallbackOpenaiKey
	}

	stagedPath, err := p.stage(ctx, note.FileId)
	if err != nil {
		return "", stageError(StageStaging, err)
	}
	defer func() {
		if err := os.Remove(stagedPath); err != nil {
			slog.ErrorContext(ctx, "Failed to clean up staged voice note", "path", stagedPath, "error", err)
		}
	}()

	notify("Processing voice note..")

	transcript, err := p.transcriber.Transcribe(ctx, stagedPath, openaiKey)
	if err != nil {
		return "", stageError(StageTranscription, err)
	}

	// Only quota-funded invocations consume free seconds, charged with the
	// reported voice duration. Recorded now so later stage failures cannot
	// roll it back.
	if quotaFunded {
		if err := p.ledger.RecordUsage(user.TelegramId, note.DurationSeconds); err != nil {
			return "", err
		}
	}

	notify("Transcription done.")

	draft, err := p.composer.Compose(ctx, transcript, user.Username, openaiKey, user.RewriteEnabled)
	if err != nil {
		return "", stageError(StageTransformation, err)
	}

	notify(fmt.Sprintf("This is what we got for you: \n\n%s\n\n", draft))

	if !user.Onboarded() {
		return "", ErrMissingTypefullyKey
	}
	if err := p.drafter.CreateDraft(ctx, user.TypefullyApiKey, draft); err != nil {
		return "", stageError(StagePublish, err)
	}

	return draft, nil
}

// stage fetches the attachment into a uniquely named file under the download
// directory. A partially written file is removed before the error surfaces.
func (p *VoicePipeline) stage(ctx context.Context, fileId string) (string, error) {
	reader, err := p.fetcher.Fetch(ctx, fileId)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	stagedPath := filepath.Join(p.downloadDir, fmt.Sprintf("%s.ogg", uuid.New().String()))
	file, err := os.Create(stagedPath)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		if removeErr := os.Remove(stagedPath); removeErr != nil {
			slog.ErrorContext(ctx, "Failed to remove partially staged file", "path", stagedPath, "error", removeErr)
		}
		return "", err
	}
	if err := file.Close(); err != nil {
		if removeErr := os.Remove(stagedPath); removeErr != nil {
			slog.ErrorContext(ctx, "Failed to remove partially staged file", "path", stagedPath, "error", removeErr)
		}
		return "", err
	}

	return stagedPath, nil
}
