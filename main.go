// Package main provides the entry point for the narrator CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/narrator/internal/config"
	"github.com/dgnsrekt/narrator/internal/control"
	"github.com/dgnsrekt/narrator/internal/offset"
	"github.com/dgnsrekt/narrator/internal/pipeline"
	"github.com/dgnsrekt/narrator/internal/playback"
	"github.com/dgnsrekt/narrator/internal/synth"
	"github.com/dgnsrekt/narrator/internal/transcript"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string

	rootCmd = &cobra.Command{
		Use:   "narrator [DIR]",
		Short: "Read coding-assistant replies aloud as they happen",
		Long: paragraph(
			fmt.Sprintf("\nWatch a directory of conversation transcripts and %s every new assistant reply, with instant interruption when a newer one arrives.", keyword("speak")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		RunE:             execute,
	}
)

func execute(cmd *cobra.Command, args []string) error {
	// API keys commonly live in a local .env during development.
	_ = godotenv.Load()

	cfg := config.FromViper(viper.GetViper())
	if len(args) == 1 {
		cfg.TranscriptDir = args[0]
	}
	if noControl, _ := cmd.Flags().GetBool("no-control"); noControl {
		cfg.Control.Enabled = false
	}

	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	logger := log.Default()

	dir, err := config.ExpandPath(cfg.TranscriptDir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("transcript directory %s does not exist", dir)
	}

	synthesizer, err := synth.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	// No audio device means nothing to narrate with; this is the one fatal
	// startup dependency.
	player, err := playback.NewOtoPlayer(playback.DefaultPlayerConfig(cfg.EngineSampleRate()))
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}

	ctrl := playback.NewController(synthesizer, player, logger)
	defer ctrl.Close() //nolint:errcheck

	tailer := transcript.NewTailer(dir, offset.NewTracker(), transcript.Options{
		Interval:   cfg.PollInterval,
		ActiveOnly: cfg.ActiveOnly,
		Logger:     logger,
	})
	extractor := transcript.NewExtractor(cfg.MaxNarrationLength)

	var controlClient pipeline.Runner
	if cfg.Control.Enabled {
		c := control.NewClient(cfg.Control.URL, cfg.Control.ClientName, ctrl, logger)
		c.SetReconnectDelay(cfg.Control.ReconnectDelay)
		controlClient = c
	}

	pipe := pipeline.New(tailer, extractor, ctrl, controlClient, cfg.NarrationGap, logger)

	printBanner(cfg, dir, synthesizer.Name())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := pipe.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("narrator stopped")
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringP("engine", "e", config.EngineOpenAI, "speech engine: openai, elevenlabs, exec, or mock")
	rootCmd.Flags().DurationP("poll", "p", config.DefaultPollInterval, "transcript poll interval")
	rootCmd.Flags().BoolP("active", "a", false, "narrate only the most recently active transcript")
	rootCmd.Flags().Int("max-length", config.DefaultMaxNarrationLength, "truncate narrations longer than this many characters")
	rootCmd.Flags().Duration("gap", config.DefaultNarrationGap, "minimum pause between narrations")
	rootCmd.Flags().String("control-url", config.DefaultControlURL, "backend control WebSocket URL")
	rootCmd.Flags().Bool("no-control", false, "run without the backend control connection")
	rootCmd.Flags().String("log-level", "info", "log level: debug, info, warn, or error")

	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("poll", rootCmd.Flags().Lookup("poll"))
	_ = viper.BindPFlag("active", rootCmd.Flags().Lookup("active"))
	_ = viper.BindPFlag("max-length", rootCmd.Flags().Lookup("max-length"))
	_ = viper.BindPFlag("gap", rootCmd.Flags().Lookup("gap"))
	_ = viper.BindPFlag("control.url", rootCmd.Flags().Lookup("control-url"))
	_ = viper.BindPFlag("log-level", rootCmd.Flags().Lookup("log-level"))

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "narrator")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "narrator")}, dirs...)
	}

	if c := os.Getenv("NARRATOR_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("narrator")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("narrator")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "narrator.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
