package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/neurovision/emotion-pipeline/pipeerr"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int64         `json:"max_tokens"`
}

// Chat is a chat-completion client over the OpenAI API.
type Chat struct {
	client  openai.Client
	timeout time.Duration
}

func NewChat(apiKey, baseURL string, timeout time.Duration) *Chat {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Chat{client: openai.NewClient(opts...), timeout: timeout}
}

// Complete sends a single non-streaming completion and returns the text of
// the first choice.
func (c *Chat) Complete(ctx context.Context, in ChatRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(in.Messages))
	for _, m := range in.Messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			return "", fmt.Errorf("chat: unexpected message role %q", m.Role)
		}
	}
	params := openai.ChatCompletionNewParams{
		Model:    in.Model,
		Messages: msgs,
	}
	if in.Temperature > 0 {
		params.Temperature = param.NewOpt(in.Temperature)
	}
	if in.MaxTokens > 0 {
		params.MaxTokens = param.NewOpt(in.MaxTokens)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", pipeerr.Transport(pipeerr.StageDiagnosis, err)
	}
	if len(resp.Choices) == 0 {
		return "", pipeerr.Transport(pipeerr.StageDiagnosis, errors.New("chat: no choices"))
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", pipeerr.Transport(pipeerr.StageDiagnosis, fmt.Errorf("chat: blocked: %s", choice.Message.Refusal))
	}
	if choice.Message.Content == "" {
		return "", pipeerr.Transport(pipeerr.StageDiagnosis, errors.New("chat: no content"))
	}
	return choice.Message.Content, nil
}
