package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/phuslu/log"

	"legislation-chat-bot/internal/config"
	"legislation-chat-bot/internal/usecase/chat"
)

const (
	chunkSize = 2048

	greeting = "Ask me about Indiana bills, e.g. \"What is HB 1221 about?\" " +
		"Send /reset to start a new conversation."
	resetText    = "Started a new conversation."
	textOnlyText = "I can only answer text questions about bills."
)

type Bot struct {
	api  *tgbotapi.BotAPI
	cfg  config.Config
	chat *chat.Service

	mu       sync.Mutex
	sessions map[int64]string
}

func NewBot(cfg config.Config, chatSvc *chat.Service) (*Bot, error) {
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, errors.New("telegram token is required")
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	return newBot(api, cfg, chatSvc), nil
}

func newBot(api *tgbotapi.BotAPI, cfg config.Config, chatSvc *chat.Service) *Bot {
	return &Bot{
		api:      api,
		cfg:      cfg,
		chat:     chatSvc,
		sessions: make(map[int64]string),
	}
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Info().Str("bot", b.api.Self.UserName).Msg("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			msg := update.Message
			if msg.From == nil {
				continue
			}
			go b.handleMessage(ctx, msg)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !isAllowedUser(msg.From.ID, b.cfg) {
		deny := tgbotapi.NewMessage(msg.Chat.ID, "access denied")
		deny.ReplyToMessageID = msg.MessageID
		if _, err := b.api.Send(deny); err != nil {
			log.Error().Err(err).Int64("chat", msg.Chat.ID).Msg("failed to send deny message")
		}
		return
	}

	switch msg.Command() {
	case "start", "help":
		b.sendPlain(msg.Chat.ID, msg.MessageID, greeting)
		return
	case "reset":
		b.resetSession(msg.Chat.ID)
		b.sendPlain(msg.Chat.ID, msg.MessageID, resetText)
		return
	}

	if msg.Text == "" {
		b.sendPlain(msg.Chat.ID, msg.MessageID, textOnlyText)
		return
	}
	text, respondAsFile := parseInput(msg.Text)
	b.sendChatAction(msg.Chat.ID, respondAsFile)

	answer, err := b.chat.HandleMessage(ctx, b.sessionFor(msg.Chat.ID), text)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			b.sendPlain(msg.Chat.ID, msg.MessageID, "i need a question to work with")
			return
		}
		log.Error().Err(err).Int64("chat", msg.Chat.ID).Msg("model request failed")
		b.sendPlain(msg.Chat.ID, msg.MessageID, "failed to reach the model, try again later")
		return
	}

	resp := answer.Markdown()
	if respondAsFile || shouldSendAsFile(resp) {
		if err := b.sendAsFile(msg.Chat.ID, msg.MessageID, resp); err != nil {
			log.Error().Err(err).Int64("chat", msg.Chat.ID).Msg("failed to send file")
			b.sendPlain(msg.Chat.ID, msg.MessageID, "could not send file, here is the text")
			b.sendText(msg.Chat.ID, msg.MessageID, resp)
		}
		return
	}

	b.sendText(msg.Chat.ID, msg.MessageID, resp)
}

// sessionFor maps a Telegram chat to its current conversation, starting one
// on first contact.
func (b *Bot) sessionFor(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id, ok := b.sessions[chatID]; ok {
		return id
	}
	id := b.chat.NewSession()
	b.sessions[chatID] = id
	return id
}

// resetSession points the chat at a fresh conversation. The previous
// transcript is left as it was.
func (b *Bot) resetSession(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.chat.NewSession()
	b.sessions[chatID] = id
	return id
}

func (b *Bot) sendText(chatID int64, replyTo int, text string) {
	chunks := splitText(text, chunkSize)
	for idx, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if idx == 0 {
			msg.ReplyToMessageID = replyTo
		}
		if _, err := b.api.Send(msg); err != nil {
			// Unbalanced markdown in model text makes Telegram reject the chunk.
			log.Warn().Err(err).Int64("chat", chatID).Msg("markdown reply rejected, resending as plain text")
			msg.ParseMode = ""
			if _, err := b.api.Send(msg); err != nil {
				log.Error().Err(err).Int64("chat", chatID).Msg("failed to send reply")
			}
		}
	}
}

func (b *Bot) sendPlain(chatID int64, replyTo int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("failed to send reply")
	}
}

func (b *Bot) sendChatAction(chatID int64, asFile bool) {
	action := tgbotapi.ChatTyping
	if asFile {
		action = tgbotapi.ChatUploadDocument
	}
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		log.Warn().Err(err).Int64("chat", chatID).Msg("failed to send chat action")
	}
}

func (b *Bot) sendAsFile(chatID int64, replyTo int, content string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "response.md",
		Bytes: []byte(content),
	})
	doc.ReplyToMessageID = replyTo

	_, err := b.api.Send(doc)
	return err
}

// parseInput strips the /file prefix, which asks for the answer as a document.
func parseInput(text string) (string, bool) {
	if strings.HasPrefix(strings.ToLower(text), "/file") {
		return strings.TrimSpace(text[len("/file"):]), true
	}
	return text, false
}

func shouldSendAsFile(text string) bool {
	return len([]rune(text)) > chunkSize
}

func isAllowedUser(userID int64, cfg config.Config) bool {
	for _, id := range cfg.AdminUserIDs {
		if id == userID {
			return true
		}
	}

	if len(cfg.AllowedUserIDs) == 0 {
		return true
	}

	for _, id := range cfg.AllowedUserIDs {
		if id == userID {
			return true
		}
	}

	return false
}

func splitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/chunkSize+1)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
