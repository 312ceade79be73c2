package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// ErrWhisperNotFound is returned when the whisper binary cannot be located
var ErrWhisperNotFound = errors.New("whisper binary not found")

// Whisper wraps the whisper.cpp command line tool
type Whisper struct {
	binaryPath string
	modelDir   string
	threads    int
}

// New creates a Whisper runner. Models are looked up as
// <modelDir>/ggml-<model>.bin.
func New(binaryPath, modelDir string) *Whisper {
	if binaryPath == "" {
		binaryPath = "whisper-cli"
	}
	threads := runtime.NumCPU()
	if threads > 8 {
		threads = 8
	}
	return &Whisper{
		binaryPath: binaryPath,
		modelDir:   modelDir,
		threads:    threads,
	}
}

// ValidateBinary checks that the binary is on PATH or at the configured path
func (w *Whisper) ValidateBinary() error {
	if _, err := exec.LookPath(w.binaryPath); err != nil {
		return fmt.Errorf("%w: %s", ErrWhisperNotFound, w.binaryPath)
	}
	return nil
}

// ModelPath returns the ggml model file for a model name such as "base"
func (w *Whisper) ModelPath(model string) string {
	if model == "" {
		model = "base"
	}
	if strings.HasSuffix(model, ".bin") {
		return filepath.Join(w.modelDir, model)
	}
	return filepath.Join(w.modelDir, "ggml-"+model+".bin")
}

// Transcribe runs whisper on a 16 kHz mono WAV file. An empty language
// lets whisper auto-detect it.
func (w *Whisper) Transcribe(ctx context.Context, wavPath, language, model string) (*Transcript, error) {
	if err := w.ValidateBinary(); err != nil {
		return nil, err
	}

	outDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	prefix := filepath.Join(outDir, "out")
	cmd := exec.CommandContext(ctx, w.binaryPath, w.args(wavPath, language, model, prefix)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w: %s", err, lastLine(stderr.String()))
	}

	data, err := os.ReadFile(prefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("reading whisper output: %w", err)
	}

	transcript, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	if transcript.Language == "" {
		transcript.Language = language
	}
	return transcript, nil
}

func (w *Whisper) args(wavPath, language, model, prefix string) []string {
	if language == "" {
		language = "auto"
	}
	return []string{
		"-m", w.ModelPath(model),
		"-f", wavPath,
		"-l", language,
		"-t", strconv.Itoa(w.threads),
		"-ojf",
		"-of", prefix,
		"-np",
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return s[i+1:]
	}
	return s
}
