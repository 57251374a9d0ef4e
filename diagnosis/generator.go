// Package diagnosis turns a dominant facial emotion and a transcript into a
// written emotional diagnosis in Arabic or English.
package diagnosis

import (
	"context"
	"errors"

	"github.com/neurovision/emotion-pipeline/clients"
	"github.com/neurovision/emotion-pipeline/pipeerr"
)

type Result struct {
	Text     string   `json:"text"`
	Language Language `json:"detected_language"`
}

// Completer is the chat-completion call the generator depends on.
type Completer interface {
	Complete(ctx context.Context, in clients.ChatRequest) (string, error)
}

type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
}

type Generator struct {
	chat     Completer
	detector Detector
	opt      Options
}

func NewGenerator(chat Completer, detector Detector, opt Options) *Generator {
	return &Generator{chat: chat, detector: detector, opt: opt}
}

func (g *Generator) Generate(ctx context.Context, emotion, transcript string) (*Result, error) {
	lang := ResolveLanguage(g.detector, transcript)
	system, user := Prompt(lang, emotion, transcript)

	text, err := g.chat.Complete(ctx, clients.ChatRequest{
		Model: g.opt.Model,
		Messages: []clients.ChatMessage{
			{Role: clients.RoleSystem, Content: system},
			{Role: clients.RoleUser, Content: user},
		},
		Temperature: g.opt.Temperature,
		MaxTokens:   g.opt.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, pipeerr.ErrTransport) {
			return nil, err
		}
		return nil, pipeerr.Transport(pipeerr.StageDiagnosis, err)
	}
	return &Result{Text: text, Language: lang}, nil
}
