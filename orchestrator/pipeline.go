package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/neurovision/emotion-pipeline/clients"
	cfg "github.com/neurovision/emotion-pipeline/config"
	"github.com/neurovision/emotion-pipeline/diagnosis"
	"github.com/neurovision/emotion-pipeline/metrics"
	"github.com/neurovision/emotion-pipeline/pipeerr"
)

type ImageClassifier interface {
	Classify(ctx context.Context, image []byte) ([]clients.EmotionScore, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (*clients.Transcript, error)
}

type Diagnoser interface {
	Generate(ctx context.Context, emotion, transcript string) (*diagnosis.Result, error)
}

// Pipeline holds only clients and settings, so one value can serve
// concurrent runs.
type Pipeline struct {
	vision   ImageClassifier
	speech   Transcriber
	diagnose Diagnoser
	progress Progress
}

type Option func(*Pipeline)

func WithProgress(fn Progress) Option {
	return func(p *Pipeline) { p.progress = fn }
}

func New(vision ImageClassifier, speech Transcriber, diagnose Diagnoser, opts ...Option) *Pipeline {
	p := &Pipeline{vision: vision, speech: speech, diagnose: diagnose}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewPipeline wires the hosted-service clients described by c.
func NewPipeline(c *cfg.Root, opts ...Option) *Pipeline {
	s := c.Services
	vision := clients.NewVision(s.Vision.URL, c.Secrets.HuggingFace, s.Vision.Timeout)
	speech := clients.NewSpeech(clients.SpeechOptions{
		BaseURL:      s.Speech.URL,
		APIKey:       c.Secrets.AssemblyAI,
		Model:        s.Speech.Model,
		Timeout:      s.Speech.Timeout,
		PollInterval: s.Speech.PollInterval,
		TempDir:      c.Paths.Temp,
	})
	chat := clients.NewChat(c.Secrets.OpenAI, s.Chat.URL, s.Chat.Timeout)
	gen := diagnosis.NewGenerator(chat, diagnosis.NewLinguaDetector(), diagnosis.Options{
		Model:       s.Chat.Model,
		Temperature: s.Chat.Temperature,
		MaxTokens:   s.Chat.MaxTokens,
	})
	return New(vision, speech, gen, opts...)
}

// run tracks one invocation. It never outlives Run.
type run struct {
	p     *Pipeline
	log   *log.Entry
	state State
}

func (r *run) advance(to State, percent int) {
	r.state = to
	r.log.WithField("state", to).Debug("pipeline.state")
	if r.p.progress != nil {
		r.p.progress(to, percent)
	}
}

func (r *run) stage(name pipeerr.Stage, fn func() error) error {
	start := time.Now()
	l := r.log.WithField("stage", name)
	l.Info("stage.start")
	err := fn()
	d := time.Since(start)
	metrics.StageDurationSeconds.WithLabelValues(string(name), pipeerr.Kind(err)).Observe(d.Seconds())
	if err != nil {
		l.WithError(err).WithField("duration", d).Warn("stage.failed")
		return err
	}
	l.WithField("duration", d).Info("stage.done")
	return nil
}

// Run executes image classification, transcription and diagnosis in order.
// Missing input returns ErrNoInput before any external call; any stage
// failure ends the run with no report.
func (p *Pipeline) Run(ctx context.Context, in Input) (rep *Report, err error) {
	r := &run{p: p, state: Idle, log: log.WithField("run_id", uuid.NewString())}

	if len(in.Image) == 0 || len(in.Audio) == 0 {
		r.log.Warn("pipeline.missing_input")
		metrics.RunsTotal.WithLabelValues(pipeerr.Kind(pipeerr.ErrNoInput)).Inc()
		return nil, pipeerr.ErrNoInput
	}

	metrics.RunsInFlight.Inc()
	defer func() {
		metrics.RunsInFlight.Dec()
		metrics.RunsTotal.WithLabelValues(pipeerr.Kind(err)).Inc()
	}()

	r.advance(Idle, 20)

	var (
		scores   []clients.EmotionScore
		dominant clients.EmotionScore
	)
	if err := r.stage(pipeerr.StageImage, func() error {
		var err error
		scores, err = p.vision.Classify(ctx, in.Image)
		if err != nil {
			return err
		}
		var ok bool
		if dominant, ok = clients.Dominant(scores); !ok {
			return pipeerr.ErrNoFaceDetected
		}
		return nil
	}); err != nil {
		return nil, err
	}
	r.advance(ImageAnalyzed, 50)

	var tr *clients.Transcript
	if err := r.stage(pipeerr.StageAudio, func() error {
		var err error
		tr, err = p.speech.Transcribe(ctx, in.Audio)
		return err
	}); err != nil {
		return nil, err
	}
	r.advance(AudioAnalyzed, 70)

	var d *diagnosis.Result
	if err := r.stage(pipeerr.StageDiagnosis, func() error {
		var err error
		d, err = p.diagnose.Generate(ctx, dominant.Label, tr.Text)
		return err
	}); err != nil {
		return nil, err
	}
	r.advance(DiagnosisReady, 90)

	rep = render(scores, dominant, tr, d)
	r.advance(Rendered, 100)
	r.log.WithFields(log.Fields{
		"dominant": dominant.Label,
		"language": d.Language,
	}).Info("pipeline.done")
	return rep, nil
}
