package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"
	"github.com/spf13/viper"
)

const DefaultAssistantPrompt = "You are a helpful assistant that provides information about Indiana bills. " +
	"You can call the following functions to retrieve real data about bills, or search for them. " +
	"If the user asks about a specific bill, call get_bill_details. " +
	"If they want to find bills by a keyword, call search_bills. " +
	"Only use the function results to answer. "

type Config struct {
	OpenAIKey           string `validate:"required"`
	OpenAIBaseURL       string `validate:"omitempty,url"`
	Model               string `validate:"required"`
	MaxCompletionTokens int    `validate:"gte=0"`
	RequestsPerMinute   int    `validate:"gte=0"`
	AssistantPrompt     string `validate:"required"`
	TelegramToken       string
	AdminUserIDs        []int64
	AllowedUserIDs      []int64
	HTTPAddr            string `validate:"required"`
	LogLevel            string `validate:"oneof=debug info warn error"`
}

const logLevelRule = "oneof=debug info warn error"

// Load reads the dotenv file at path, lets the process environment override
// it and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("OPENAI_MODEL", "gpt-4.1")
	v.SetDefault("ASSISTANT_PROMPT", DefaultAssistantPrompt)
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("could not read env file")
		}
	}

	cfg := Config{
		OpenAIKey:           strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIBaseURL:       strings.TrimSpace(v.GetString("OPENAI_BASE_URL")),
		Model:               strings.TrimSpace(v.GetString("OPENAI_MODEL")),
		MaxCompletionTokens: intValue(v, "MAX_TOKENS", 1024),
		RequestsPerMinute:   intValue(v, "OPENAI_REQUESTS_PER_MINUTE", 0),
		AssistantPrompt:     v.GetString("ASSISTANT_PROMPT"),
		TelegramToken:       strings.TrimSpace(v.GetString("TELEGRAM_BOT_TOKEN")),
		AdminUserIDs:        parseIDs(v.GetString("ADMIN_USER_IDS")),
		AllowedUserIDs:      parseIDs(v.GetString("ALLOWED_TELEGRAM_USER_IDS")),
		HTTPAddr:            strings.TrimSpace(v.GetString("HTTP_ADDR")),
		LogLevel:            strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// ValidateLogLevel applies the LOG_LEVEL rule to a value given outside the
// environment, such as a command-line override.
func ValidateLogLevel(level string) error {
	validate := validator.New()
	if err := validate.Var(level, logLevelRule); err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
	return nil
}

func intValue(v *viper.Viper, key string, def int) int {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Int("default", def).Msg("invalid int, using default")
		return def
	}
	return n
}

func parseIDs(raw string) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Warn().Str("id", p).Err(err).Msg("skipping user id")
			continue
		}
		ids = append(ids, v)
	}
	return ids
}
