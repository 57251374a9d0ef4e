package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/neurovision/emotion-pipeline/pipeerr"
)

// --- Facial expression classifier ---
type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Dominant returns the highest-scoring entry. The first maximum wins ties.
func Dominant(scores []EmotionScore) (EmotionScore, bool) {
	if len(scores) == 0 {
		return EmotionScore{}, false
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best, true
}

type Vision struct {
	http  *HTTP
	url   string
	token string
}

func NewVision(url, token string, timeout time.Duration) *Vision {
	return &Vision{http: NewHTTP(timeout), url: url, token: token}
}

// Classify posts the raw image and returns the label distribution as
// received. An empty or non-array response means no face was found.
func (v *Vision) Classify(ctx context.Context, image []byte) ([]EmotionScore, error) {
	if len(image) == 0 {
		return nil, pipeerr.ErrNoInput
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(image))
	if err != nil {
		return nil, pipeerr.Transport(pipeerr.StageImage, err)
	}
	req.Header.Set("Authorization", "Bearer "+v.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	log.WithField("bytes", len(image)).Debug("vision.classify.request")

	body, err := v.http.do(req, "vision")
	if err != nil {
		return nil, pipeerr.Transport(pipeerr.StageImage, err)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, pipeerr.Transport(pipeerr.StageImage, fmt.Errorf("vision decode: %w", err))
	}
	if list, ok := raw.([]any); !ok || len(list) == 0 {
		return nil, pipeerr.ErrNoFaceDetected
	}

	var out []EmotionScore
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, pipeerr.Transport(pipeerr.StageImage, fmt.Errorf("vision decode: %w", err))
	}
	return out, nil
}
