package services

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pascalporedda/telegram-typefully-bot/internal/config"
)

// Composer transforms a raw transcript into a social-media draft, either
// rewriting it for impact or only formatting it, depending on the user's
// preference.
type Composer interface {
	Compose(ctx context.Context, transcript string, username string, apiKey string, rewriteEnabled bool) (string, error)
}

type ChatComposer struct {
	profiles *config.Profiles
}

func NewChatComposer(profiles *config.Profiles) *ChatComposer {
	return &ChatComposer{profiles: profiles}
}

func (c *ChatComposer) Compose(ctx context.Context, transcript string, username string, apiKey string, rewriteEnabled bool) (string, error) {
	client := openai.NewClient(apiKey)

	response, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.profiles.CompletionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.profiles.Instruction(rewriteEnabled),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: transcript,
				Name:    username,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return response.Choices[len(response.Choices)-1].Message.Content, nil
}
