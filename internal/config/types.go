package config

import (
	"os"
	"strings"
)

type GlobalConfig struct {
	// OutputLanguage is the language summaries are delivered in. When it
	// differs from the prompt default the translation fallback chain runs.
	OutputLanguage string `koanf:"output_language"`
}

type HTTPConfig struct {
	proxy *string `koanf:"proxy"`
}

func (c HTTPConfig) GetProxy() string {
	if c.proxy != nil && *c.proxy != "" {
		return *c.proxy
	}
	for _, key := range []string{"HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy"} {
		if proxyURL := os.Getenv(key); proxyURL != "" {
			return proxyURL
		}
	}
	return ""
}

type LoggingConfig struct {
	LogLevel    string `koanf:"level"`
	WriteInFile bool   `koanf:"write_in_file"`
	FilePath    string `koanf:"file_path"`
}

func (c LoggingConfig) Level() string {
	return strings.ToLower(c.LogLevel)
}

type YouTubeConfig struct {
	UserAgent          string   `koanf:"user_agent"`
	CookiesFile        string   `koanf:"cookies_file"`
	PreferredLanguages []string `koanf:"preferred_languages"`
	MaxAgeDays         int      `koanf:"max_age_days"`
	MaxVideos          int      `koanf:"max_videos"`
	RequestsPerSecond  float64  `koanf:"requests_per_second"`
}

type AIConfig struct {
	Provider        string `koanf:"provider"`
	Model           string `koanf:"model"`
	APIKey          string `koanf:"api_key"`
	BaseURL         string `koanf:"base_url"`
	TokenLimit      int    `koanf:"token_limit"`
	SummaryMaxWords int    `koanf:"summary_max_words"`
}

type ASRConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Backend       string `koanf:"backend"`
	Language      string `koanf:"language"`
	WhisperBinary string `koanf:"whisper_binary"`
	WhisperModel  string `koanf:"whisper_model"`
}

type ExtractionConfig struct {
	// Mode "full" resolves transcripts and summaries, "basic" stops at
	// discovery and video details, "translate" additionally rewrites
	// summaries into the configured output language.
	Mode    string `koanf:"mode"`
	Workers int    `koanf:"workers"`
	NoLLM   bool   `koanf:"no_llm"`
}
