package diagnosis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubDetector struct {
	code  string
	err   error
	calls int
}

func (s *stubDetector) Detect(string) (string, error) {
	s.calls++
	return s.code, s.err
}

func TestResolveLanguageWithLingua(t *testing.T) {
	d := NewLinguaDetector()

	assert.Equal(t, English, ResolveLanguage(d, "I feel great today and I am looking forward to the weekend"))
	assert.Equal(t, Arabic, ResolveLanguage(d, "أشعر بسعادة كبيرة اليوم وأنا متفائل جدا"))
	assert.Equal(t, Arabic, ResolveLanguage(d, ""))
	assert.Equal(t, Arabic, ResolveLanguage(d, "   \n\t "))
}

func TestLinguaDetectorCodes(t *testing.T) {
	d := NewLinguaDetector()

	code, err := d.Detect("I feel great today and I am looking forward to the weekend")
	assert.NoError(t, err)
	assert.Equal(t, "en", code)

	code, err = d.Detect("Ik voel me vandaag heel goed en blij")
	assert.NoError(t, err)
	assert.Equal(t, "nl", code)

	_, err = d.Detect("  ")
	assert.ErrorIs(t, err, ErrUndetectable)
}

func TestResolveLanguageOtherLatinScriptIsArabic(t *testing.T) {
	d := NewLinguaDetector()

	assert.Equal(t, Arabic, ResolveLanguage(d, "Ik voel me vandaag heel goed en blij"))
	assert.Equal(t, Arabic, ResolveLanguage(d, "Je me sens très bien aujourd'hui et je suis content"))
	assert.Equal(t, Arabic, ResolveLanguage(d, "Ich fühle mich heute sehr gut und bin glücklich"))
}

func TestResolveLanguageFallbacks(t *testing.T) {
	failing := &stubDetector{err: errors.New("no features in text")}
	assert.Equal(t, Arabic, ResolveLanguage(failing, "???"))
	assert.Equal(t, 1, failing.calls)

	french := &stubDetector{code: "fr"}
	assert.Equal(t, Arabic, ResolveLanguage(french, "je suis content"))

	blank := &stubDetector{code: "en"}
	assert.Equal(t, Arabic, ResolveLanguage(blank, "  "))
	assert.Zero(t, blank.calls, "blank transcripts skip detection")

	assert.Equal(t, Arabic, ResolveLanguage(nil, "hello"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "English", English.DisplayName())
	assert.Equal(t, "العربية", Arabic.DisplayName())
}
