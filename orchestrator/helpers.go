package orchestrator

import (
	"time"

	"github.com/neurovision/emotion-pipeline/clients"
	"github.com/neurovision/emotion-pipeline/diagnosis"
)

// chartOf keeps the classifier's order so the bar chart matches the
// response as received.
func chartOf(scores []clients.EmotionScore) Chart {
	c := Chart{
		Labels: make([]string, 0, len(scores)),
		Scores: make([]float64, 0, len(scores)),
	}
	for _, s := range scores {
		c.Labels = append(c.Labels, s.Label)
		c.Scores = append(c.Scores, s.Score)
	}
	return c
}

func render(scores []clients.EmotionScore, dominant clients.EmotionScore, tr *clients.Transcript, d *diagnosis.Result) *Report {
	return &Report{
		Emotions:     scores,
		Dominant:     dominant,
		Transcript:   *tr,
		Diagnosis:    *d,
		LanguageName: d.Language.DisplayName(),
		Chart:        chartOf(scores),
		GeneratedAt:  time.Now().UTC(),
	}
}
