package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	GLOBAL_LANGUAGE          = "global.output_language"
	HTTP_PROXY               = "http.proxy"
	DATABASE_DSN             = "database.dsn"
	LOGGING_LEVEL            = "logging.level"
	LOGGING_WRITE_IN_FILE    = "logging.write_in_file"
	LOGGING_FILE_PATH        = "logging.file_path"
	YOUTUBE_USER_AGENT       = "youtube.user_agent"
	YOUTUBE_COOKIES_FILE     = "youtube.cookies_file"
	YOUTUBE_LANGUAGES        = "youtube.preferred_languages"
	YOUTUBE_MAX_AGE_DAYS     = "youtube.max_age_days"
	YOUTUBE_MAX_VIDEOS       = "youtube.max_videos"
	YOUTUBE_REQUESTS_PER_SEC = "youtube.requests_per_second"
	AI_PROVIDER              = "ai.provider"
	AI_MODEL                 = "ai.model"
	AI_API_KEY               = "ai.api_key"
	AI_BASE_URL              = "ai.base_url"
	AI_TOKEN_LIMIT           = "ai.token_limit"
	AI_SUMMARY_MAX_WORDS     = "ai.summary_max_words"
	ASR_ENABLED              = "asr.enabled"
	ASR_BACKEND              = "asr.backend"
	ASR_LANGUAGE             = "asr.language"
	ASR_WHISPER_BINARY       = "asr.whisper_binary"
	ASR_WHISPER_MODEL        = "asr.whisper_model"
	EXTRACTION_MODE          = "extraction.mode"
	EXTRACTION_WORKERS       = "extraction.workers"
	EXTRACTION_NO_LLM        = "extraction.no_llm"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

var defaultSQLiteParams = map[string]string{
	"_journal":      "WAL",
	"_busy_timeout": "10000",
	"_synchronous":  "NORMAL",
	"_cache":        "shared",
}

type Config struct {
	k *koanf.Koanf
}

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "", "Path to config file")
}

func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		GLOBAL_LANGUAGE:          "pt",
		HTTP_PROXY:               nil,
		DATABASE_DSN:             "infoai.db?_journal=WAL&_busy_timeout=5000&_synchronous=NORMAL&_cache=shared",
		LOGGING_LEVEL:            "info",
		LOGGING_WRITE_IN_FILE:    false,
		YOUTUBE_USER_AGENT:       defaultUserAgent,
		YOUTUBE_COOKIES_FILE:     "cookies.txt",
		YOUTUBE_LANGUAGES:        []string{"pt", "pt-BR", "pt-PT", "en"},
		YOUTUBE_MAX_AGE_DAYS:     0,
		YOUTUBE_MAX_VIDEOS:       0,
		YOUTUBE_REQUESTS_PER_SEC: 2.0,
		AI_PROVIDER:              "openai",
		AI_MODEL:                 "gpt-5-nano",
		AI_API_KEY:               "",
		AI_BASE_URL:              "https://api.openai.com/v1",
		AI_TOKEN_LIMIT:           4096,
		AI_SUMMARY_MAX_WORDS:     150,
		ASR_ENABLED:              false,
		ASR_BACKEND:              "whisper-local",
		ASR_LANGUAGE:             "pt",
		ASR_WHISPER_BINARY:       "whisper-cli",
		ASR_WHISPER_MODEL:        "small",
		EXTRACTION_MODE:          "full",
		EXTRACTION_WORKERS:       1,
		EXTRACTION_NO_LLM:        false,
	}
	k.Load(confmap.Provider(defaults, "."), nil)

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config %s: %v", path, err)
			}
			break
		}
	}

	k.Load(env.Provider("INFOAI_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "INFOAI_")),
			"_", ".",
		)
	}), nil)

	return &Config{k: k}, nil
}

func (c *Config) Global() GlobalConfig {
	return GlobalConfig{
		OutputLanguage: c.k.String(GLOBAL_LANGUAGE),
	}
}

func (c *Config) HTTP() HTTPConfig {
	var proxy string
	if proxyValue := c.k.Get(HTTP_PROXY); proxyValue != nil {
		proxy, _ = proxyValue.(string)
	}
	return HTTPConfig{proxy: &proxy}
}

func (c *Config) Log() LoggingConfig {
	return LoggingConfig{
		LogLevel:    c.k.String(LOGGING_LEVEL),
		WriteInFile: c.k.Bool(LOGGING_WRITE_IN_FILE),
		FilePath:    c.k.String(LOGGING_FILE_PATH),
	}
}

func (c *Config) YouTube() YouTubeConfig {
	return YouTubeConfig{
		UserAgent:          c.k.String(YOUTUBE_USER_AGENT),
		CookiesFile:        c.k.String(YOUTUBE_COOKIES_FILE),
		PreferredLanguages: c.k.Strings(YOUTUBE_LANGUAGES),
		MaxAgeDays:         c.k.Int(YOUTUBE_MAX_AGE_DAYS),
		MaxVideos:          c.k.Int(YOUTUBE_MAX_VIDEOS),
		RequestsPerSecond:  c.k.Float64(YOUTUBE_REQUESTS_PER_SEC),
	}
}

func (c *Config) AI() AIConfig {
	return AIConfig{
		Provider:        c.k.String(AI_PROVIDER),
		Model:           c.k.String(AI_MODEL),
		APIKey:          c.k.String(AI_API_KEY),
		BaseURL:         c.k.String(AI_BASE_URL),
		TokenLimit:      c.k.Int(AI_TOKEN_LIMIT),
		SummaryMaxWords: c.k.Int(AI_SUMMARY_MAX_WORDS),
	}
}

func (c *Config) ASR() ASRConfig {
	return ASRConfig{
		Enabled:       c.k.Bool(ASR_ENABLED),
		Backend:       c.k.String(ASR_BACKEND),
		Language:      c.k.String(ASR_LANGUAGE),
		WhisperBinary: c.k.String(ASR_WHISPER_BINARY),
		WhisperModel:  c.k.String(ASR_WHISPER_MODEL),
	}
}

func (c *Config) Extraction() ExtractionConfig {
	workers := c.k.Int(EXTRACTION_WORKERS)
	if workers < 1 {
		workers = 1
	}
	return ExtractionConfig{
		Mode:    c.k.String(EXTRACTION_MODE),
		Workers: workers,
		NoLLM:   c.k.Bool(EXTRACTION_NO_LLM),
	}
}

func (c *Config) GetDatabaseDSN() string {
	dsn := c.k.String(DATABASE_DSN)
	parts := strings.Split(dsn, "?")
	path := parts[0]

	params := make(map[string]string)
	if len(parts) > 1 {
		for param := range strings.SplitSeq(parts[1], "&") {
			if kv := strings.Split(param, "="); len(kv) == 2 {
				params[kv[0]] = kv[1]
			}
		}
	}

	for k, v := range defaultSQLiteParams {
		if _, exists := params[k]; !exists {
			params[k] = v
		}
	}

	queryParams := make([]string, 0, len(params))
	for k, v := range params {
		queryParams = append(queryParams, k+"="+v)
	}
	if len(queryParams) == 0 {
		return path
	}
	sort.Strings(queryParams)
	return path + "?" + strings.Join(queryParams, "&")
}

func getConfigPaths() []string {
	if configPath != "" {
		return []string{configPath}
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, _ := os.UserHomeDir()
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		"infoai.toml",
		"config.toml",
		filepath.Join(xdgConfig, "infoai", "config.toml"),
		"/etc/infoai/config.toml",
	}
}
