package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists the registry of monitored channels, model choices, web
// sources and the per-video extraction history.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

type Channel struct {
	ID        int64
	ChannelID string
	Name      string
	Groups    []string
	Active    bool
}

type LLMModel struct {
	ID       int64
	Provider string
	Model    string
	Active   bool
}

type WebSource struct {
	ID          int64
	URL         string
	Description string
	Active      bool
}

// ExtractionRecord is one processed video of one run.
type ExtractionRecord struct {
	RunID            string
	ChannelID        string
	VideoID          string
	VideoTitle       string
	TranscriptSource string
	SummaryJSON      string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostUSD          float64
}

func Open(dsn string, log logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.WithField("DSN", dsn).Debug("Database opened")

	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db, logger: log}, nil
}

// migrate brings the registry schema up to date. goose records applied
// versions in its own table inside the same database file.
func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply registry migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveChannel inserts or updates a channel registration keyed by its
// platform id.
func (s *Store) SaveChannel(ctx context.Context, channel Channel) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO channels (channel_id, name, groups, active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (channel_id) DO UPDATE SET
			name = excluded.name,
			groups = excluded.groups,
			active = excluded.active`,
		channel.ChannelID, channel.Name, SerializeGroups(channel.Groups), channel.Active,
	)
	return err
}

func (s *Store) ListChannels(ctx context.Context, activeOnly bool) ([]Channel, error) {
	query := `SELECT id, channel_id, name, groups, active FROM channels`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var channel Channel
		var groups string
		if err := rows.Scan(&channel.ID, &channel.ChannelID, &channel.Name, &groups, &channel.Active); err != nil {
			return nil, err
		}
		channel.Groups = SplitGroups(groups)
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

// ListChannelsInGroup filters active channels by group membership. An
// empty group returns every active channel.
func (s *Store) ListChannelsInGroup(ctx context.Context, group string) ([]Channel, error) {
	channels, err := s.ListChannels(ctx, true)
	if err != nil {
		return nil, err
	}
	if group == "" {
		return channels, nil
	}
	var filtered []Channel
	for _, channel := range channels {
		for _, g := range channel.Groups {
			if g == group {
				filtered = append(filtered, channel)
				break
			}
		}
	}
	return filtered, nil
}

func (s *Store) SaveModel(ctx context.Context, model LLMModel) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_models (provider, model, active)
		VALUES (?, ?, ?)
		ON CONFLICT (provider, model) DO UPDATE SET active = excluded.active`,
		model.Provider, model.Model, model.Active,
	)
	return err
}

func (s *Store) ListActiveModels(ctx context.Context) ([]LLMModel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, provider, model, active FROM llm_models WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []LLMModel
	for rows.Next() {
		var model LLMModel
		if err := rows.Scan(&model.ID, &model.Provider, &model.Model, &model.Active); err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, rows.Err()
}

func (s *Store) SaveWebSource(ctx context.Context, source WebSource) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO web_sources (url, description, active)
		VALUES (?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			description = excluded.description,
			active = excluded.active`,
		source.URL, source.Description, source.Active,
	)
	return err
}

func (s *Store) ListWebSources(ctx context.Context, activeOnly bool) ([]WebSource, error) {
	query := `SELECT id, url, description, active FROM web_sources`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []WebSource
	for rows.Next() {
		var source WebSource
		if err := rows.Scan(&source.ID, &source.URL, &source.Description, &source.Active); err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (s *Store) RecordExtraction(ctx context.Context, record ExtractionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO extractions (
			run_id, channel_id, video_id, video_title, transcript_source,
			summary_json, prompt_tokens, completion_tokens, total_tokens, cost_usd
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID, record.ChannelID, record.VideoID, record.VideoTitle,
		record.TranscriptSource, record.SummaryJSON,
		record.PromptTokens, record.CompletionTokens, record.TotalTokens, record.CostUSD,
	)
	return err
}

func (s *Store) ListExtractions(ctx context.Context, runID string) ([]ExtractionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, channel_id, video_id, video_title, transcript_source,
		       summary_json, prompt_tokens, completion_tokens, total_tokens, cost_usd
		FROM extractions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ExtractionRecord
	for rows.Next() {
		var record ExtractionRecord
		if err := rows.Scan(
			&record.RunID, &record.ChannelID, &record.VideoID, &record.VideoTitle,
			&record.TranscriptSource, &record.SummaryJSON,
			&record.PromptTokens, &record.CompletionTokens, &record.TotalTokens, &record.CostUSD,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
