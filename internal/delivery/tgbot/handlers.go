package tgbot

import (
	"context"
	"errors"
	"io"
	"log/slog"

	tele "gopkg.in/telebot.v3"

	"github.com/pascalporedda/telegram-typefully-bot/internal/middleware"
	"github.com/pascalporedda/telegram-typefully-bot/internal/services"
	"github.com/pascalporedda/telegram-typefully-bot/internal/session"
)

const helpText = `These commands are supported:
/start - Start using the bot
/help - Display this text
/setapikey - Set your OpenAI API key (optional, first 5 minutes are free)
/settypefullykey - Set or update your Typefully API key
/usage - Check your remaining free usage
/togglerewrite - Toggle between AI rewriting and simple formatting
/deleteaccount - Delete your account and all data

How to use:
1. Use /start to set up your Typefully API key
2. Send a voice note to the bot
3. The bot will transcribe it and create a draft in Typefully

Note: You have 5 minutes of free transcription. After that, you'll need to set your own OpenAI API key using /setapikey.`

const (
	msgQuotaExceeded      = "You have exceeded your free usage limit of 5 minutes. Please set your own OpenAI API key using /setapikey to continue using the voice transcription feature."
	msgStagingFailed      = "Could not download the voice note. Please try again."
	msgTranscriptionError = "An error occurred while transcribing the voice note."
	msgTransformError     = "An error occurred while transforming the post."
	msgPublishError       = "Failed to create draft in TypeFully. Please check your API key and try again."
	msgInternalError      = "Something went wrong. Please try again."
)

func RegisterHandlers(
	bot *tele.Bot,
	rateLimiter *middleware.RateLimiter,
	accountService *services.AccountService,
	pipeline *services.VoicePipeline,
	userStore services.UserStore,
) {
	handler := &BotHandler{
		accountService: accountService,
		pipeline:       pipeline,
		userStore:      userStore,
	}

	protected := bot.Group()
	protected.Use(rateLimiter.Middleware())
	protected.Handle("/start", handler.Start)
	protected.Handle("/help", handler.Help)
	protected.Handle("/setapikey", handler.SetOpenaiKey)
	protected.Handle("/settypefullykey", handler.SetTypefullyKey)
	protected.Handle("/usage", handler.Usage)
	protected.Handle("/togglerewrite", handler.ToggleRewrite)
	protected.Handle("/deleteaccount", handler.DeleteAccount)
	protected.Handle(tele.OnVoice, handler.HandleVoice)
	protected.Handle(tele.OnText, handler.HandleText)
}

// Commands lists the bot commands registered with Telegram for
// autocompletion.
func Commands() []tele.Command {
	return []tele.Command{
		{Text: "/start", Description: "Start using the bot"},
		{Text: "/help", Description: "Display this text"},
		{Text: "/setapikey", Description: "Set your OpenAI API key (optional, first 5 minutes are free)"},
		{Text: "/settypefullykey", Description: "Set or update your Typefully API key"},
		{Text: "/usage", Description: "Check your remaining free usage"},
		{Text: "/togglerewrite", Description: "Toggle between AI rewriting and simple formatting"},
		{Text: "/deleteaccount", Description: "Delete your account and all data"},
	}
}

// BotHandler adapts telebot updates onto the account service and the voice
// pipeline.
type BotHandler struct {
	accountService *services.AccountService
	pipeline       *services.VoicePipeline
	userStore      services.UserStore
}

func (h *BotHandler) Start(c tele.Context) error {
	ctx := requestContext(c)
	reply, err := h.accountService.StartOnboarding(ctx, c.Sender().ID, c.Sender().FirstName)
	if err != nil {
		slog.ErrorContext(ctx, "Onboarding failed", "user_id", c.Sender().ID, "error", err)
		return c.Send(msgInternalError)
	}
	return c.Send(reply)
}

func (h *BotHandler) Help(c tele.Context) error {
	return c.Send(helpText)
}

func (h *BotHandler) SetOpenaiKey(c tele.Context) error {
	return c.Send(h.accountService.RequestOpenaiKey(c.Sender().ID))
}

func (h *BotHandler) SetTypefullyKey(c tele.Context) error {
	return c.Send(h.accountService.RequestTypefullyKey(c.Sender().ID))
}

func (h *BotHandler) Usage(c tele.Context) error {
	ctx := requestContext(c)
	reply, err := h.accountService.UsageReport(c.Sender().ID)
	if err != nil {
		slog.ErrorContext(ctx, "Usage report failed", "user_id", c.Sender().ID, "error", err)
		return c.Send(msgInternalError)
	}
	return c.Send(reply)
}

func (h *BotHandler) ToggleRewrite(c tele.Context) error {
	ctx := requestContext(c)
	reply, err := h.accountService.ToggleRewrite(c.Sender().ID)
	if err != nil {
		slog.ErrorContext(ctx, "Toggling rewrite preference failed", "user_id", c.Sender().ID, "error", err)
		return c.Send(msgInternalError)
	}
	return c.Send(reply)
}

func (h *BotHandler) DeleteAccount(c tele.Context) error {
	return c.Send(h.accountService.RequestDeleteConfirmation(c.Sender().ID))
}

func (h *BotHandler) HandleText(c tele.Context) error {
	ctx := requestContext(c)
	reply, err := h.accountService.HandleText(ctx, c.Sender().ID, c.Text())
	if err != nil {
		slog.ErrorContext(ctx, "Text handler failed", "user_id", c.Sender().ID, "error", err)
		return c.Send(msgInternalError)
	}
	return c.Send(reply)
}

func (h *BotHandler) HandleVoice(c tele.Context) error {
	ctx := requestContext(c)
	slog.DebugContext(ctx, "Got voice message", "user_id", c.Sender().ID)

	// Voice notes are only routable from the idle state; mid-dialogue they
	// fall through to the generic response.
	if h.accountService.State(c.Sender().ID) != session.StateIdle {
		return c.Send(services.MsgUnroutable)
	}

	user, err := h.userStore.GetUser(c.Sender().ID)
	if err != nil {
		slog.ErrorContext(ctx, "Loading user failed", "user_id", c.Sender().ID, "error", err)
		return c.Send(msgInternalError)
	}

	voice := c.Message().Voice
	note := services.VoiceNote{
		FileId:          voice.FileID,
		DurationSeconds: int64(voice.Duration),
	}

	notify := func(text string) {
		if sendErr := c.Send(text); sendErr != nil {
			slog.ErrorContext(ctx, "Failed to send progress message", "user_id", c.Sender().ID, "error", sendErr)
		}
	}

	if _, err := h.pipeline.ProcessVoiceNote(ctx, user, note, notify); err != nil {
		slog.ErrorContext(ctx, "Voice pipeline failed", "user_id", c.Sender().ID, "error", err)
		return c.Send(voiceErrorMessage(err))
	}
	return nil
}

func voiceErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrMissingTypefullyKey):
		return services.MsgNotOnboarded
	case errors.Is(err, services.ErrQuotaExceeded):
		return msgQuotaExceeded
	}

	var stageErr *services.PipelineError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case services.StageStaging:
			return msgStagingFailed
		case services.StageTranscription:
			return msgTranscriptionError
		case services.StageTransformation:
			return msgTransformError
		case services.StagePublish:
			return msgPublishError
		}
	}
	return msgInternalError
}

// TelegramMediaFetcher resolves Telegram file ids into download streams.
type TelegramMediaFetcher struct {
	Bot *tele.Bot
}

func (f *TelegramMediaFetcher) Fetch(ctx context.Context, fileId string) (io.ReadCloser, error) {
	return f.Bot.File(&tele.File{FileID: fileId})
}

func requestContext(c tele.Context) context.Context {
	if ctx, ok := c.Get("requestContext").(context.Context); ok {
		return ctx
	}
	return context.Background()
}
