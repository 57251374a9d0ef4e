package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/neurovision/emotion-pipeline/pipeerr"
)

// NoSpeechText stands in for a transcript that came back empty.
const NoSpeechText = "لا يوجد نص."

// SentimentAnnotation is one entry of the service's sentiment output, kept
// byte for byte.
type SentimentAnnotation = json.RawMessage

type Transcript struct {
	Text       string                `json:"text"`
	Sentiments []SentimentAnnotation `json:"sentiments"`
}

// --- Transcription (/v2/upload, /v2/transcript) ---
type uploadResp struct {
	UploadURL string `json:"upload_url"`
}

type transcriptReq struct {
	AudioURL          string   `json:"audio_url"`
	SpeechModels      []string `json:"speech_models"`
	SentimentAnalysis bool     `json:"sentiment_analysis"`
}

type transcriptResp struct {
	ID                string                `json:"id"`
	Status            string                `json:"status"`
	Text              *string               `json:"text"`
	Error             string                `json:"error"`
	SentimentAnalysis []SentimentAnnotation `json:"sentiment_analysis_results"`
}

const (
	statusCompleted = "completed"
	statusError     = "error"
)

var errJobPending = errors.New("transcript pending")

type SpeechOptions struct {
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	PollInterval time.Duration
	TempDir      string
}

type Speech struct {
	http *HTTP
	opt  SpeechOptions
}

func NewSpeech(opt SpeechOptions) *Speech {
	if opt.PollInterval <= 0 {
		opt.PollInterval = 3 * time.Second
	}
	return &Speech{http: NewHTTP(opt.Timeout), opt: opt}
}

// Transcribe stages the audio in a private temp file, uploads it, submits a
// transcription job with sentiment analysis and blocks until the job ends.
// The temp file is removed on every return path.
func (s *Speech) Transcribe(ctx context.Context, audio []byte) (*Transcript, error) {
	if len(audio) == 0 {
		return nil, pipeerr.ErrNoInput
	}
	if s.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opt.Timeout)
		defer cancel()
	}

	f, err := os.CreateTemp(s.opt.TempDir, "neurovision-*.wav")
	if err != nil {
		return nil, pipeerr.Transport(pipeerr.StageAudio, err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).WithField("path", path).Warn("speech.tempfile.remove")
		}
	}()

	_, werr := f.Write(audio)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return nil, pipeerr.Transport(pipeerr.StageAudio, werr)
	}

	audioURL, err := s.upload(ctx, path)
	if err != nil {
		return nil, pipeerr.Transport(pipeerr.StageAudio, err)
	}
	id, err := s.submit(ctx, audioURL)
	if err != nil {
		return nil, pipeerr.Transport(pipeerr.StageAudio, err)
	}
	log.WithField("transcript_id", id).Debug("speech.job.submitted")

	job, err := s.wait(ctx, id)
	if err != nil {
		return nil, pipeerr.Transport(pipeerr.StageAudio, err)
	}
	if job.Status == statusError {
		return nil, &pipeerr.JobFailedError{Detail: job.Error}
	}

	out := &Transcript{Text: NoSpeechText, Sentiments: job.SentimentAnalysis}
	if job.Text != nil && *job.Text != "" {
		out.Text = *job.Text
	}
	if out.Sentiments == nil {
		out.Sentiments = []SentimentAnnotation{}
	}
	return out, nil
}

func (s *Speech) upload(ctx context.Context, path string) (string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fd.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("/v2/upload"), fd)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", s.opt.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	body, err := s.http.do(req, "speech upload")
	if err != nil {
		return "", err
	}
	var out uploadResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("speech upload decode: %w", err)
	}
	if out.UploadURL == "" {
		return "", errors.New("speech upload: empty upload_url")
	}
	return out.UploadURL, nil
}

func (s *Speech) submit(ctx context.Context, audioURL string) (string, error) {
	b, _ := json.Marshal(transcriptReq{
		AudioURL:          audioURL,
		SpeechModels:      []string{s.opt.Model},
		SentimentAnalysis: true,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("/v2/transcript"), bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", s.opt.APIKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := s.http.do(req, "speech submit")
	if err != nil {
		return "", err
	}
	var out transcriptResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("speech submit decode: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("speech submit: empty transcript id")
	}
	return out.ID, nil
}

// wait polls the job until it is completed or errored. Network failures end
// the wait; only a queued or processing status is polled again.
func (s *Speech) wait(ctx context.Context, id string) (*transcriptResp, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opt.PollInterval
	b.MaxInterval = 4 * s.opt.PollInterval
	b.MaxElapsedTime = 0

	var job *transcriptResp
	poll := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("/v2/transcript/"+id), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", s.opt.APIKey)

		body, err := s.http.do(req, "speech poll")
		if err != nil {
			return backoff.Permanent(err)
		}
		var out transcriptResp
		if err := json.Unmarshal(body, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("speech poll decode: %w", err))
		}
		switch out.Status {
		case statusCompleted, statusError:
			job = &out
			return nil
		default:
			return errJobPending
		}
	}
	if err := backoff.Retry(poll, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("speech poll %s: %w", id, err)
	}
	return job, nil
}

func (s *Speech) endpoint(path string) string {
	return strings.TrimRight(s.opt.BaseURL, "/") + path
}
