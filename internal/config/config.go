package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/caarlos0/env/v10"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
)

// Config holds all process configuration, populated from environment
// variables.
type Config struct {
	Token             string        `env:"TOKEN,required"`
	FallbackOpenAIKey string        `env:"OPENAI_API_KEY"`
	DatabasePath      string        `env:"DATABASE_PATH" envDefault:"data/bot.db"`
	DownloadDir       string        `env:"DOWNLOAD_DIR" envDefault:"voice-notes"`
	TypefullyBaseURL  string        `env:"TYPEFULLY_API_URL" envDefault:"https://api.typefully.com/v1/"`
	ProfilesPath      string        `env:"PROFILES_PATH" envDefault:"config/application.yaml"`
	PollTimeout       time.Duration `env:"POLL_TIMEOUT" envDefault:"10s"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	return cfg, nil
}

const (
	ProfileRewrite = "rewrite"
	ProfileFormat  = "format"
)

// Profiles selects the completion model and the instruction text sent to the
// text-generation provider for each rewrite preference.
type Profiles struct {
	CompletionModel string            `yaml:"completion_model"`
	Instructions    map[string]string `yaml:"instructions"`
}

func (p *Profiles) Instruction(rewriteEnabled bool) string {
	if rewriteEnabled {
		return p.Instructions[ProfileRewrite]
	}
	return p.Instructions[ProfileFormat]
}

// LoadProfiles reads the optional YAML profile file. A missing file yields
// the compiled-in defaults; a present file must define both profiles.
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultProfiles(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var profiles Profiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles YAML: %w", err)
	}
	if profiles.CompletionModel == "" {
		profiles.CompletionModel = defaultCompletionModel
	}
	for _, name := range []string{ProfileRewrite, ProfileFormat} {
		if profiles.Instructions[name] == "" {
			defined := maps.Keys(profiles.Instructions)
			sort.Strings(defined)
			return nil, fmt.Errorf("profiles file is missing the %q instruction (defined: %v)", name, defined)
		}
	}
	return &profiles, nil
}

func defaultProfiles() *Profiles {
	return &Profiles{
		CompletionModel: defaultCompletionModel,
		Instructions: map[string]string{
			ProfileRewrite: rewriteInstructions,
			ProfileFormat:  formatOnlyInstructions,
		},
	}
}

const defaultCompletionModel = "gpt-4o-mini"

const rewriteInstructions = `You are an expert for social media posts & working with texts in any language. Sometimes you get a text in German, English, Spanish or other languages.

You get a text from a user and you should make a social media draft out of it.
Your responses should ALWAYS be IN the language of the USERS TEXT.

Whenever you get a text you should do the following:

1. Properly format the given text, making it readable, by adding appropriate commas, breaks etc.
2. Make sure the post has a punchline.
3. Don't use hashtags.
4. Don't overdo it with emojis.
5. Make sure the post is not too long.
6. Make sure the post is not too short.
7. Make sure the post is not too boring.
8. Make sure you don't use typical AI words like: driven, motivated, inspired, delve, into the future
`

const formatOnlyInstructions = `You are an expert for formatting text in any language. Sometimes you get a text in German, English, Spanish or other languages.

You get a text from a user and you should format it for social media.
Your responses should ALWAYS be IN the language of the USERS TEXT.

Whenever you get a text you should do the following:

1. Properly format the given text, making it readable, by adding appropriate commas, breaks etc.
2. Don't change the content or meaning of the text.
3. Don't add or remove any information.
4. Don't use hashtags.
5. Don't add emojis.
6. Keep the original tone and style of the text.
`
