package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gamestory/internal/config"
	"github.com/Sumatoshi-tech/gamestory/internal/observability"
	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
	"github.com/Sumatoshi-tech/gamestory/pkg/story"
	"github.com/Sumatoshi-tech/gamestory/pkg/version"
)

// ErrNoDataset is returned when neither an argument nor dataset.path names a CSV file.
var ErrNoDataset = errors.New("dataset path is required (argument or dataset.path)")

// session is everything a subcommand needs once the load gate has opened.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	logger    *slog.Logger
	story     *story.Story
	data      *dataset.Dataset
}

// openSession loads configuration, starts observability, and loads the story
// and dataset. The dataset path comes from args when given.
func (o *rootOptions) openSession(cmd *cobra.Command, mode observability.AppMode, args []string) (*session, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	path := cfg.Dataset.Path
	if len(args) > 0 {
		path = args[0]
	}

	if path == "" {
		return nil, ErrNoDataset
	}

	providers, err := initObservability(cmd, cfg, mode)
	if err != nil {
		return nil, err
	}

	sess := &session{
		cfg:       cfg,
		providers: providers,
		logger:    providers.Logger.With(slog.String("command", cmd.Name())),
	}

	sess.story, err = story.Load(cfg.Story.Path)
	if err != nil {
		sess.close(cmd.Context())

		return nil, err
	}

	sess.data, err = dataset.Open(cmd.Context(), path,
		dataset.WithColumns(cfg.Columns()),
		dataset.WithLogger(sess.logger),
	)
	if err != nil {
		sess.close(cmd.Context())

		return nil, err
	}

	return sess, nil
}

func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed(logLevelFlag) {
		cfg.Logging.Level = o.logLevel
	}

	if flags.Changed(logJSONFlag) {
		cfg.Logging.JSON = o.logJSON
	}

	if flags.Changed(storyFlag) {
		cfg.Story.Path = o.storyPath
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func initObservability(cmd *cobra.Command, cfg *config.Config, mode observability.AppMode) (observability.Providers, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return observability.Providers{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON || mode == observability.ModeMCP
	obsCfg.LogOutput = cmd.ErrOrStderr()
	obsCfg.Prometheus = mode == observability.ModeServe && cfg.Server.Metrics

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}

// close flushes telemetry. A failed flush is logged, never fatal.
func (s *session) close(ctx context.Context) {
	err := s.providers.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.WarnContext(ctx, "observability shutdown failed", slog.Any("error", err))
	}
}

// records returns the loaded record set.
func (s *session) records() []dataset.GameRecord {
	return s.data.Records
}
