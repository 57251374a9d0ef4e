package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/neurovision/emotion-pipeline/orchestrator"
)

var (
	analyzeImage string
	analyzeAudio string
	analyzeJSON  bool
	analyzeSave  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the pipeline once over a local image and audio file",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}

		in, err := readInput(analyzeImage, analyzeAudio)
		if err != nil {
			return err
		}

		p := orchestrator.NewPipeline(c, orchestrator.WithProgress(func(s orchestrator.State, pct int) {
			log.WithField("state", s).Infof("progress %d%%", pct)
		}))
		rep, err := p.Run(cmd.Context(), in)
		if err != nil {
			return err
		}

		if analyzeSave {
			path, err := orchestrator.WriteReport(c.Paths.Outputs, rep)
			if err != nil {
				return err
			}
			log.WithField("path", path).Info("report saved")
		}

		out := cmd.OutOrStdout()
		if analyzeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		printReport(out, rep)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeImage, "image", "", "face photo (jpg, jpeg, png)")
	analyzeCmd.Flags().StringVar(&analyzeAudio, "audio", "", "voice clip (mp3, wav, m4a)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "also write the report under paths.outputs")
}

// readInput loads both files. An empty path leaves that side empty so the
// pipeline reports the missing input itself.
func readInput(image, audio string) (orchestrator.Input, error) {
	var in orchestrator.Input
	if image != "" {
		b, err := os.ReadFile(image)
		if err != nil {
			return in, fmt.Errorf("read image: %w", err)
		}
		in.Image, in.ImageName = b, filepath.Base(image)
	}
	if audio != "" {
		b, err := os.ReadFile(audio)
		if err != nil {
			return in, fmt.Errorf("read audio: %w", err)
		}
		in.Audio, in.AudioName = b, filepath.Base(audio)
	}
	return in, nil
}

func printReport(w io.Writer, rep *orchestrator.Report) {
	fmt.Fprintln(w, "Facial emotions:")
	for i, l := range rep.Chart.Labels {
		bar := strings.Repeat("#", max(0, int(rep.Chart.Scores[i]*40+0.5)))
		fmt.Fprintf(w, "  %-10s %6.2f%% %s\n", l, rep.Chart.Scores[i]*100, bar)
	}
	fmt.Fprintf(w, "Dominant: %s\n\n", rep.Dominant.Label)
	fmt.Fprintf(w, "Transcript:\n  %s\n\n", rep.Transcript.Text)
	fmt.Fprintf(w, "Diagnosis (%s):\n%s\n", rep.LanguageName, rep.Diagnosis.Text)
}
