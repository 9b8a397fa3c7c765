package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaiapi "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"legislation-chat-bot/internal/config"
	"legislation-chat-bot/internal/domain"
	"legislation-chat-bot/internal/usecase/catalog"
	"legislation-chat-bot/internal/usecase/chat"
)

type Client struct {
	api     *openaiapi.Client
	limiter *rate.Limiter
}

func NewClient(cfg config.Config) *Client {
	apiCfg := openaiapi.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		apiCfg.BaseURL = cfg.OpenAIBaseURL
	}

	c := &Client{
		api: openaiapi.NewClientWithConfig(apiCfg),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c
}

// Complete sends one chat completion. Functions are offered with automatic
// function-call mode only when the request carries any.
func (c *Client) Complete(ctx context.Context, req chat.CompletionRequest) (chat.Reply, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return chat.Reply{}, err
		}
	}

	apiReq := openaiapi.ChatCompletionRequest{
		Model:               req.Model,
		MaxCompletionTokens: req.MaxCompletionTokens,
		Stream:              false,
		Messages:            toAPIMessages(req.Messages),
	}
	if len(req.Functions) > 0 {
		apiReq.Functions = toAPIFunctions(req.Functions)
		apiReq.FunctionCall = "auto"
	}

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return chat.Reply{}, err
	}

	if len(resp.Choices) == 0 {
		return chat.Reply{}, errors.New("openai returned empty response")
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return chat.Reply{}, fmt.Errorf("openai refused: %s", msg.Refusal)
	}

	reply := chat.Reply{Content: msg.Content}
	if msg.FunctionCall != nil && msg.FunctionCall.Name != "" {
		reply.FunctionCall = &domain.FunctionCall{
			Name:      msg.FunctionCall.Name,
			Arguments: msg.FunctionCall.Arguments,
		}
	}
	if reply.FunctionCall == nil && strings.TrimSpace(reply.Content) == "" {
		return chat.Reply{}, fmt.Errorf("finish reason %q: %w", resp.Choices[0].FinishReason, chat.ErrEmptyReply)
	}
	return reply, nil
}

func toAPIMessages(msgs []domain.Message) []openaiapi.ChatCompletionMessage {
	res := make([]openaiapi.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		apiMsg := openaiapi.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
			Name:    m.Name,
		}
		if m.FunctionCall != nil {
			apiMsg.FunctionCall = &openaiapi.FunctionCall{
				Name:      m.FunctionCall.Name,
				Arguments: m.FunctionCall.Arguments,
			}
		}
		res = append(res, apiMsg)
	}
	return res
}

func toAPIFunctions(defs []catalog.Definition) []openaiapi.FunctionDefinition {
	res := make([]openaiapi.FunctionDefinition, 0, len(defs))
	for _, d := range defs {
		params := d.Parameters
		res = append(res, openaiapi.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  &params,
		})
	}
	return res
}
