package diagnosis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurovision/emotion-pipeline/clients"
	"github.com/neurovision/emotion-pipeline/pipeerr"
)

type fakeChat struct {
	reply string
	err   error
	got   []clients.ChatRequest
}

func (f *fakeChat) Complete(_ context.Context, in clients.ChatRequest) (string, error) {
	f.got = append(f.got, in)
	return f.reply, f.err
}

var testOptions = Options{Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: 800}

func TestGenerateEnglish(t *testing.T) {
	chat := &fakeChat{reply: "You appear happy. Keep up your routines."}
	g := NewGenerator(chat, &stubDetector{code: "en"}, testOptions)

	res, err := g.Generate(context.Background(), "happy", "I feel great today")
	require.NoError(t, err)

	assert.Equal(t, "You appear happy. Keep up your routines.", res.Text)
	assert.Equal(t, English, res.Language)

	require.Len(t, chat.got, 1)
	req := chat.got[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 0.7, req.Temperature)
	assert.EqualValues(t, 800, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, clients.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "You are a professional emotional and psychological AI analyst.", req.Messages[0].Content)
	assert.Equal(t, clients.RoleUser, req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, "Face emotion analysis: happy")
	assert.Contains(t, req.Messages[1].Content, "Speech content: I feel great today")
	assert.Contains(t, req.Messages[1].Content, "maintain and strengthen well-being")
}

func TestGenerateDefaultsToArabic(t *testing.T) {
	chat := &fakeChat{reply: "تشخيص"}
	g := NewGenerator(chat, &stubDetector{err: errors.New("boom")}, testOptions)

	res, err := g.Generate(context.Background(), "sad", "...")
	require.NoError(t, err)

	assert.Equal(t, Arabic, res.Language)
	require.Len(t, chat.got[0].Messages, 2)
	assert.Equal(t, "أنت خبير تحليل نفسي وعاطفي احترافي.", chat.got[0].Messages[0].Content)
	assert.Contains(t, chat.got[0].Messages[1].Content, "تحليل تعابير الوجه: sad")
}

func TestGenerateFailure(t *testing.T) {
	chat := &fakeChat{err: errors.New("401 unauthorized")}
	g := NewGenerator(chat, &stubDetector{code: "en"}, testOptions)

	res, err := g.Generate(context.Background(), "happy", "hello there")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, pipeerr.ErrTransport)

	wrapped := pipeerr.Transport(pipeerr.StageDiagnosis, errors.New("timeout"))
	chat.err = wrapped
	_, err = g.Generate(context.Background(), "happy", "hello there")
	assert.Same(t, wrapped, err)
}

func TestPromptUnknownLanguageUsesArabic(t *testing.T) {
	sys, _ := Prompt(Language("fr"), "x", "y")
	assert.Equal(t, templates[Arabic].system, sys)
}
