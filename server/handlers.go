package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/neurovision/emotion-pipeline/orchestrator"
	"github.com/neurovision/emotion-pipeline/pipeerr"
	"github.com/neurovision/emotion-pipeline/version"
)

var (
	imageExts = []string{".jpg", ".jpeg", ".png"}
	audioExts = []string{".mp3", ".wav", ".m4a"}
)

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":     "Emotion AI Pro — NeuroVision",
		"ImageExts": strings.Join(imageExts, ","),
		"AudioExts": strings.Join(audioExts, ","),
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.cfg.Pipeline.Name,
	})
}

func (s *Server) version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get(s.cfg.Pipeline.Name))
}

// analyze accepts a multipart form with "image" and "audio" files. A missing
// file is passed on as empty input so the pipeline reports it.
func (s *Server) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadMB<<20)

	var (
		in  orchestrator.Input
		err error
	)
	if in.Image, in.ImageName, err = readUpload(c, "image", imageExts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	if in.Audio, in.AudioName, err = readUpload(c, "audio", audioExts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}

	log.WithFields(log.Fields{
		"image": in.ImageName,
		"audio": in.AudioName,
	}).Debug("analyze.request")

	rep, err := s.analyzer.Run(c.Request.Context(), in)
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			log.WithError(err).Error("analyze failed")
		}
		c.JSON(status, gin.H{
			"error":   err.Error(),
			"kind":    pipeerr.Kind(err),
			"warning": errors.Is(err, pipeerr.ErrNoInput),
		})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func statusOf(err error) int {
	var job *pipeerr.JobFailedError
	switch {
	case errors.Is(err, pipeerr.ErrNoInput):
		return http.StatusBadRequest
	case errors.Is(err, pipeerr.ErrNoFaceDetected):
		return http.StatusUnprocessableEntity
	case errors.As(err, &job), errors.Is(err, pipeerr.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func readUpload(c *gin.Context, field string, exts []string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", field, err)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !slices.Contains(exts, ext) {
		return nil, "", fmt.Errorf("%s: unsupported file type %q (accepted: %s)", field, ext, strings.Join(exts, ", "))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", field, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", field, err)
	}
	return b, fh.Filename, nil
}
