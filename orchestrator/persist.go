package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

func mkRunDir(outputsRoot string) (string, error) {
	ts := time.Now().Format("20060102-150405.000")
	dir := filepath.Join(outputsRoot, "run_"+ts)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteReport saves a finished report under outputsRoot/run_<timestamp>/
// and returns the file path. Only the CLI calls it; the server keeps
// nothing between requests.
func WriteReport(outputsRoot string, rep *Report) (string, error) {
	dir, err := mkRunDir(outputsRoot)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "report.json")
	if err := writeJSON(path, rep); err != nil {
		return "", err
	}
	return path, nil
}
