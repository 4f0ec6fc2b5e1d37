package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

var ErrTranscriptionFailed = errors.New("speech transcription failed")

// SpeechToTextAdapter turns a downloaded audio file into text. Backends
// are interchangeable; the resolver only cares about text or an error.
type SpeechToTextAdapter interface {
	Transcribe(ctx context.Context, audioPath, languageHint string) (string, error)
	Source() Source
}

// WhisperLocal shells out to a whisper-compatible CLI. The binary writes
// a .txt next to its output directory; that file is the transcript.
type WhisperLocal struct {
	binary   string
	model    string
	language string
	logger   logger.Logger
}

// A non-empty language pins every transcription to that language instead
// of the per-video hint.
func NewWhisperLocal(binary, model, language string, log logger.Logger) *WhisperLocal {
	if binary == "" {
		binary = "whisper"
	}
	if model == "" {
		model = "small"
	}
	return &WhisperLocal{binary: binary, model: model, language: language, logger: log}
}

func (w *WhisperLocal) Source() Source {
	return SourceASRWhisper
}

func (w *WhisperLocal) Transcribe(ctx context.Context, audioPath, languageHint string) (string, error) {
	if w.language != "" {
		languageHint = w.language
	}
	outDir, err := os.MkdirTemp("", "infoai-whisper-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(outDir)

	args := []string{
		audioPath,
		"--model", w.model,
		"--output_format", "txt",
		"--output_dir", outDir,
	}
	if languageHint != "" {
		args = append(args, "--language", languageHint)
	}

	cmd := exec.CommandContext(ctx, w.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		w.logger.WithError(err).WithField("stderr", stderr.String()).Error("Whisper run failed")
		return "", errors.Join(ErrTranscriptionFailed, err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	content, err := os.ReadFile(filepath.Join(outDir, base+".txt"))
	if err != nil {
		return "", errors.Join(ErrTranscriptionFailed, err)
	}
	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", ErrTranscriptionFailed
	}
	return text, nil
}

// OpenAITranscriber uploads audio to the hosted transcription endpoint.
type OpenAITranscriber struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	language   string
	logger     logger.Logger
}

func NewOpenAITranscriber(httpClient *http.Client, baseURL, apiKey, model, language string, log logger.Logger) *OpenAITranscriber {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAITranscriber{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		language:   language,
		logger:     log,
	}
}

func (o *OpenAITranscriber) Source() Source {
	return SourceASROpenAI
}

func (o *OpenAITranscriber) Transcribe(ctx context.Context, audioPath, languageHint string) (string, error) {
	if o.language != "" {
		languageHint = o.language
	}
	file, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	writer.WriteField("model", o.model)
	if languageHint != "" {
		writer.WriteField("language", languageHint)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", errors.Join(ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Join(ErrTranscriptionFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrTranscriptionFailed, resp.StatusCode, truncate(string(body), 200))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", errors.Join(ErrTranscriptionFailed, err)
	}
	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", ErrTranscriptionFailed
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
