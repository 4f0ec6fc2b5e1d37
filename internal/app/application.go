package app

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/jadermarques/Info-AI-Studio/internal/ai"
	"github.com/jadermarques/Info-AI-Studio/internal/config"
	"github.com/jadermarques/Info-AI-Studio/internal/extraction"
	"github.com/jadermarques/Info-AI-Studio/internal/logger"
	"github.com/jadermarques/Info-AI-Studio/internal/network"
	"github.com/jadermarques/Info-AI-Studio/internal/report"
	"github.com/jadermarques/Info-AI-Studio/internal/service"
	"github.com/jadermarques/Info-AI-Studio/internal/store"
	"github.com/jadermarques/Info-AI-Studio/internal/summarize"
	"github.com/jadermarques/Info-AI-Studio/internal/transcript"
	"github.com/jadermarques/Info-AI-Studio/internal/youtube"
)

var (
	flagGroup      = flag.String("group", "", "Channel group to process")
	flagMaxAge     = flag.Int("max-age", -1, "Override max video age in days")
	flagMaxVideos  = flag.Int("max-videos", -1, "Override max videos per channel")
	flagWorkers    = flag.Int("workers", 0, "Override worker count")
	flagNoLLM      = flag.Bool("no-llm", false, "Skip summarization")
	flagChannelGrp = flag.String("groups", "", "Groups when registering a channel")
)

type Application struct {
	Logger    logger.Logger
	cfg       *config.Config
	store     *store.Store
	localizer *service.Localizer
}

func New() (*Application, error) {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log()
	log := logger.NewLogrusLogger(logger.Options{
		Level:       logCfg.Level(),
		WriteInFile: logCfg.WriteInFile,
		FilePath:    logCfg.FilePath,
	})

	st, err := store.Open(cfg.GetDatabaseDSN(), log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	localizer, err := service.NewLocalizer(cfg.Global().OutputLanguage)
	if err != nil {
		return nil, fmt.Errorf("init localizer: %w", err)
	}

	return &Application{
		Logger:    log,
		cfg:       cfg,
		store:     st,
		localizer: localizer,
	}, nil
}

func (a *Application) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// Run dispatches the subcommand from the remaining CLI arguments. With
// no subcommand an extraction run starts.
func (a *Application) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.runExtraction(ctx, nil)
	}
	switch args[0] {
	case "run":
		return a.runExtraction(ctx, args[1:])
	case "channel":
		return a.runChannelCommand(ctx, args[1:])
	case "model":
		return a.runModelCommand(ctx, args[1:])
	case "source":
		return a.runSourceCommand(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *Application) runExtraction(ctx context.Context, channels []string) error {
	if len(channels) == 0 {
		registered, err := a.store.ListChannelsInGroup(ctx, *flagGroup)
		if err != nil {
			return err
		}
		for _, channel := range registered {
			channels = append(channels, channel.ChannelID)
		}
	}

	ytCfg := a.cfg.YouTube()
	scraperClient := network.SetupHTTPClient(network.NewScraperHTTPClientConfig(a.cfg.HTTP()), a.Logger)
	if err := youtube.LoadCookiesFile(scraperClient, ytCfg.CookiesFile, a.Logger); err != nil {
		a.Logger.WithError(err).Warn("Cookies file could not be loaded")
	}

	fetcher := youtube.NewPageFetcher(scraperClient, ytCfg.UserAgent, ytCfg.RequestsPerSecond, a.Logger)
	discoverer := youtube.NewDiscoverer(fetcher, a.Logger)
	channelInfo := youtube.NewChannelInfoFetcher(fetcher, a.Logger)
	details := youtube.NewVideoDetailFetcher(fetcher, a.Logger)

	if _, err := ytdlp.Install(ctx, nil); err != nil {
		a.Logger.WithError(err).Warn("yt-dlp install failed, legacy caption path degraded")
	}
	legacy := transcript.NewLegacyFetcher(scraperClient, ytCfg.CookiesFile, a.cfg.HTTP().GetProxy(), a.Logger)
	tracks := transcript.NewTrackLister(fetcher, a.Logger)
	resolver := transcript.NewResolver(tracks, legacy, a.buildASR(), ytCfg.PreferredLanguages, a.Logger)

	aiCfg := a.cfg.AI()
	models, err := a.store.ListActiveModels(ctx)
	if err != nil {
		a.Logger.WithError(err).Warn("Active model lookup failed, using configured model")
	}
	name, model := resolveModel(models, aiCfg)

	provider := a.buildProvider(name)
	engine := summarize.NewEngine(provider, model, aiCfg.SummaryMaxWords, aiCfg.TokenLimit, a.Logger)

	var translator *summarize.Translator
	if a.cfg.Extraction().Mode == "translate" && provider != nil {
		translator = summarize.NewTranslator(provider, model, a.Logger)
	}

	orchestrator := extraction.NewOrchestrator(
		channelInfo, discoverer, details, resolver, engine, translator,
		a.store, a.Logger,
	)
	orchestrator.SetNotify(func(p extraction.Progress) {
		switch p.Stage {
		case "channel":
			fmt.Printf("-> %s\n", p.ChannelID)
		case "video":
			fmt.Printf("   %s\n", p.VideoID)
		}
	})

	result, err := orchestrator.Run(ctx, a.extractionOptions(channels))
	if err != nil {
		return err
	}

	fmt.Println(report.NewRenderer(a.localizer).Render(result))
	return nil
}

func (a *Application) extractionOptions(channels []string) extraction.Options {
	ytCfg := a.cfg.YouTube()
	exCfg := a.cfg.Extraction()

	opts := extraction.Options{
		Channels:    channels,
		MaxAgeDays:  ytCfg.MaxAgeDays,
		MaxVideos:   ytCfg.MaxVideos,
		Workers:     exCfg.Workers,
		NoLLM:       exCfg.NoLLM || *flagNoLLM,
		DetailsOnly: exCfg.Mode == "basic",
	}
	if *flagMaxAge >= 0 {
		opts.MaxAgeDays = *flagMaxAge
	}
	if *flagMaxVideos >= 0 {
		opts.MaxVideos = *flagMaxVideos
	}
	if *flagWorkers > 0 {
		opts.Workers = *flagWorkers
	}
	if a.cfg.Extraction().Mode == "translate" {
		opts.TranslateTo = a.cfg.Global().OutputLanguage
	}
	return opts
}

// resolveModel picks the provider and model for a run. The first active
// model registered in the store wins; the static configuration is the
// fallback when nothing is registered.
func resolveModel(models []store.LLMModel, aiCfg config.AIConfig) (string, string) {
	for _, model := range models {
		if model.Provider != "" && model.Model != "" {
			return model.Provider, model.Model
		}
	}
	return providerName(aiCfg), aiCfg.Model
}

func providerName(aiCfg config.AIConfig) string {
	if aiCfg.Provider == "" {
		return "openai"
	}
	return aiCfg.Provider
}

// buildProvider returns nil when no usable model is configured, which
// downgrades summaries to the extractive heuristic.
func (a *Application) buildProvider(name string) ai.Provider {
	aiCfg := a.cfg.AI()
	if aiCfg.APIKey == "" {
		a.Logger.Info("No provider API key, summaries use the heuristic")
		return nil
	}
	client := network.SetupHTTPClient(network.NewProviderHTTPClientConfig(a.cfg.HTTP()), a.Logger)
	return ai.NewOpenAICompatibleClient(name, aiCfg.BaseURL, aiCfg.APIKey, a.Logger, client)
}

func (a *Application) buildASR() transcript.SpeechToTextAdapter {
	asrCfg := a.cfg.ASR()
	if !asrCfg.Enabled {
		return nil
	}
	switch asrCfg.Backend {
	case "openai":
		client := network.SetupHTTPClient(network.NewProviderHTTPClientConfig(a.cfg.HTTP()), a.Logger)
		return transcript.NewOpenAITranscriber(client, a.cfg.AI().BaseURL, a.cfg.AI().APIKey, "whisper-1", asrCfg.Language, a.Logger)
	default:
		return transcript.NewWhisperLocal(asrCfg.WhisperBinary, asrCfg.WhisperModel, asrCfg.Language, a.Logger)
	}
}

func (a *Application) runChannelCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: channel <add|list> [args]")
	}
	switch args[0] {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: channel add <id> [name]")
		}
		channel := store.Channel{
			ChannelID: youtube.NormalizeChannelID(args[1]),
			Groups:    store.SplitGroups(*flagChannelGrp),
			Active:    true,
		}
		if len(args) > 2 {
			channel.Name = strings.Join(args[2:], " ")
		}
		return a.store.SaveChannel(ctx, channel)
	case "list":
		channels, err := a.store.ListChannels(ctx, false)
		if err != nil {
			return err
		}
		for _, channel := range channels {
			state := "inactive"
			if channel.Active {
				state = "active"
			}
			fmt.Printf("%s\t%s\t%s\t[%s]\n", channel.ChannelID, channel.Name, store.SerializeGroups(channel.Groups), state)
		}
		return nil
	default:
		return fmt.Errorf("unknown channel command %q", args[0])
	}
}

func (a *Application) runModelCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: model <add|list> [args]")
	}
	switch args[0] {
	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: model add <provider> <model>")
		}
		return a.store.SaveModel(ctx, store.LLMModel{Provider: args[1], Model: args[2], Active: true})
	case "list":
		models, err := a.store.ListActiveModels(ctx)
		if err != nil {
			return err
		}
		for _, model := range models {
			fmt.Printf("%s\t%s\n", model.Provider, model.Model)
		}
		return nil
	default:
		return fmt.Errorf("unknown model command %q", args[0])
	}
}

func (a *Application) runSourceCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: source <add|list> [args]")
	}
	switch args[0] {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: source add <url> [description]")
		}
		source := store.WebSource{URL: args[1], Active: true}
		if len(args) > 2 {
			source.Description = strings.Join(args[2:], " ")
		}
		return a.store.SaveWebSource(ctx, source)
	case "list":
		sources, err := a.store.ListWebSources(ctx, false)
		if err != nil {
			return err
		}
		for _, source := range sources {
			fmt.Printf("%s\t%s\n", source.URL, source.Description)
		}
		return nil
	default:
		return fmt.Errorf("unknown source command %q", args[0])
	}
}
