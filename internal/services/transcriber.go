package services

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber turns a staged audio file into text using the given key.
type Transcriber interface {
	Transcribe(ctx context.Context, filePath string, apiKey string) (string, error)
}

// WhisperTranscriber transcribes with the OpenAI Whisper API. A client is
// built per call because the key differs between self-funded and
// quota-funded invocations.
type WhisperTranscriber struct{}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, filePath string, apiKey string) (string, error) {
	client := openai.NewClient(apiKey)
	response, err := client.CreateTranscription(ctx, openai.AudioRequest{
		FilePath: filePath,
		Model:    openai.Whisper1,
	})
	if err != nil {
		return "", err
	}
	return response.Text, nil
}
