package diagnosis

import (
	"errors"
	"strings"

	"github.com/pemistahl/lingua-go"
	log "github.com/sirupsen/logrus"
)

type Language string

const (
	Arabic  Language = "ar"
	English Language = "en"
)

// DisplayName is the label shown next to a diagnosis.
func (l Language) DisplayName() string {
	if l == English {
		return "English"
	}
	return "العربية"
}

// Detector guesses the language of a text and returns a lowercase
// ISO 639-1 code.
type Detector interface {
	Detect(text string) (string, error)
}

var ErrUndetectable = errors.New("language not detectable")

// LinguaDetector is a Detector over every spoken language lingua knows, so
// text in a language other than Arabic or English keeps its own code.
type LinguaDetector struct {
	d lingua.LanguageDetector
}

func NewLinguaDetector() *LinguaDetector {
	d := lingua.NewLanguageDetectorBuilder().
		FromAllSpokenLanguages().
		Build()
	return &LinguaDetector{d: d}
}

func (l *LinguaDetector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrUndetectable
	}
	lang, ok := l.d.DetectLanguageOf(text)
	if !ok {
		return "", ErrUndetectable
	}
	return strings.ToLower(lang.IsoCode639_1().String()), nil
}

// ResolveLanguage picks the response language for a transcript. English
// text answers in English; everything else, including empty transcripts
// and detector failures, answers in Arabic.
func ResolveLanguage(d Detector, text string) Language {
	if strings.TrimSpace(text) == "" || d == nil {
		return Arabic
	}
	code, err := d.Detect(text)
	if err != nil {
		log.WithError(err).Debug("diagnosis.language.fallback")
		return Arabic
	}
	if code == string(English) {
		return English
	}
	return Arabic
}
