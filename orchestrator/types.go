package orchestrator

import (
	"time"

	"github.com/neurovision/emotion-pipeline/clients"
	"github.com/neurovision/emotion-pipeline/diagnosis"
)

type State int

const (
	Idle State = iota
	ImageAnalyzed
	AudioAnalyzed
	DiagnosisReady
	Rendered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ImageAnalyzed:
		return "image_analyzed"
	case AudioAnalyzed:
		return "audio_analyzed"
	case DiagnosisReady:
		return "diagnosis_ready"
	case Rendered:
		return "rendered"
	}
	return "unknown"
}

// Progress is told about each fixed checkpoint of a run.
type Progress func(s State, percent int)

type Input struct {
	Image     []byte
	ImageName string
	Audio     []byte
	AudioName string
}

type Chart struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Report is everything a finished run renders.
type Report struct {
	Emotions     []clients.EmotionScore `json:"emotions"`
	Dominant     clients.EmotionScore   `json:"dominant"`
	Transcript   clients.Transcript     `json:"transcript"`
	Diagnosis    diagnosis.Result       `json:"diagnosis"`
	LanguageName string                 `json:"language_name"`
	Chart        Chart                  `json:"chart"`
	GeneratedAt  time.Time              `json:"generated_at"`
}
