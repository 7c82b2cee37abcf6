package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Johnxjp/tts-evaluation/internal/observability"
	"github.com/Johnxjp/tts-evaluation/internal/pipeline"
	"github.com/Johnxjp/tts-evaluation/internal/store"
	"github.com/Johnxjp/tts-evaluation/internal/tts"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ttseval",
	Short: "Compare text-to-speech providers side by side",
	Long: `ttseval sends one prompt to every configured TTS backend, saves each
result under data/<uuid>/, and records which output you preferred.

Emotion can be annotated inline as <tag>emotion</tag>; supported emotions
are laughter, angry, excited, happy, sad, surprised, scared and calm.
Backends that cannot emote receive the plain text instead.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ttseval %s\n", Version)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [text]",
	Short: "Synthesize one prompt with every configured provider",
	RunE:  runGenerate,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent generation requests, newest first",
	RunE:  runHistory,
}

var preferCmd = &cobra.Command{
	Use:   "prefer <request-id> <provider>",
	Short: "Record which provider sounded best for a request",
	Args:  cobra.ExactArgs(2),
	RunE:  runPrefer,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show configured providers, their models, and emotion support",
	RunE:  runProviders,
}

var (
	flagDataDir string
	flagVerbose bool

	flagText    string
	flagNoInput bool

	flagCartesiaModel   string
	flagInworldModel    string
	flagElevenLabsModel string
	flagHumeModel       string
	flagSpeechifyModel  string

	flagCartesiaAPIKey   string
	flagInworldAPIKey    string
	flagElevenLabsAPIKey string
	flagHumeAPIKey       string
	flagSpeechifyAPIKey  string

	flagLimit int
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(preferCmd)
	rootCmd.AddCommand(providersCmd)

	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "data", "Directory holding request records and audio artifacts")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable detailed logging")

	generateCmd.Flags().StringVarP(&flagText, "text", "t", "", "Text to synthesize (falls back to positional args, then stdin)")
	generateCmd.Flags().BoolVar(&flagNoInput, "no-input", false, "Skip the interactive preference prompt")
	generateCmd.Flags().StringVar(&flagCartesiaModel, "cartesia-model", "", "Cartesia model (sonic-3 or sonic-2)")
	generateCmd.Flags().StringVar(&flagInworldModel, "inworld-model", "", "Inworld AI model (inworld-tts-1 or inworld-tts-1-max)")
	generateCmd.Flags().StringVar(&flagElevenLabsModel, "elevenlabs-model", "", "ElevenLabs model (eleven_v3 or eleven_flash_v2_5)")
	generateCmd.Flags().StringVar(&flagHumeModel, "hume-model", "", "Hume Octave version (2 or 1)")
	generateCmd.Flags().StringVar(&flagSpeechifyModel, "speechify-model", "", "Speechify model (simba-english)")
	generateCmd.Flags().StringVar(&flagCartesiaAPIKey, "cartesia-api-key", "", "Cartesia API key (overrides CARTESIA_API_KEY env var)")
	generateCmd.Flags().StringVar(&flagInworldAPIKey, "inworld-api-key", "", "Inworld AI API key (overrides INWORLD_API_KEY env var)")
	generateCmd.Flags().StringVar(&flagElevenLabsAPIKey, "elevenlabs-api-key", "", "ElevenLabs API key (overrides ELEVENLABS_API_KEY env var)")
	generateCmd.Flags().StringVar(&flagHumeAPIKey, "hume-api-key", "", "Hume API key (overrides HUME_API_KEY env var)")
	generateCmd.Flags().StringVar(&flagSpeechifyAPIKey, "speechify-api-key", "", "Speechify API key (overrides SPEECHIFY_API_KEY env var)")

	historyCmd.Flags().IntVarP(&flagLimit, "limit", "l", 5, "Maximum number of requests to list")
}

func Execute() error {
	// .env is optional, matching how credentials were loaded historically.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

// buildConfig resolves credentials and model selections from flags and the
// environment. This is the only place the core's configuration touches env
// vars; the registry itself takes the result explicitly.
func buildConfig() tts.Config {
	key := func(envVar, flagVal string) string {
		if flagVal != "" {
			return flagVal
		}
		return os.Getenv(envVar)
	}
	return tts.Config{
		Cartesia:   tts.ProviderConfig{APIKey: key("CARTESIA_API_KEY", flagCartesiaAPIKey), Model: flagCartesiaModel},
		Inworld:    tts.ProviderConfig{APIKey: key("INWORLD_API_KEY", flagInworldAPIKey), Model: flagInworldModel},
		ElevenLabs: tts.ProviderConfig{APIKey: key("ELEVENLABS_API_KEY", flagElevenLabsAPIKey), Model: flagElevenLabsModel},
		Hume:       tts.ProviderConfig{APIKey: key("HUME_API_KEY", flagHumeAPIKey), Model: flagHumeModel},
		Speechify:  tts.ProviderConfig{APIKey: key("SPEECHIFY_API_KEY", flagSpeechifyAPIKey), Model: flagSpeechifyModel},
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return observability.InitLogger(level)
}

// resolveText picks the prompt from --text, positional args, or stdin when
// it is piped in.
func resolveText(args []string) (string, error) {
	if flagText != "" {
		return flagText, nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return "", nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	text, err := resolveText(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text to synthesize — pass it as an argument, via --text, or on stdin")
	}

	models := map[string]string{
		"Cartesia":   flagCartesiaModel,
		"Inworld AI": flagInworldModel,
		"ElevenLabs": flagElevenLabsModel,
		"Hume":       flagHumeModel,
		"Speechify":  flagSpeechifyModel,
	}
	for _, name := range tts.ProviderNames() {
		if err := tts.ValidateModel(name, models[name]); err != nil {
			return err
		}
	}

	providers := tts.NewRegistry(buildConfig())
	if len(providers) == 0 {
		return fmt.Errorf("no TTS providers configured — set at least one of CARTESIA_API_KEY, INWORLD_API_KEY, ELEVENLABS_API_KEY, HUME_API_KEY, SPEECHIFY_API_KEY (a .env file works too)")
	}

	logger := newLogger()
	ctx := cmd.Context()

	tp, err := observability.InitTracer(ctx, "ttseval", Version)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}
	if tp != nil {
		defer tp.Shutdown(ctx)
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Settings().Name)
	}
	fmt.Printf("  Synthesizing with %d provider(s): %s\n", len(providers), strings.Join(names, ", "))

	result, err := pipeline.Run(ctx, pipeline.Options{
		Text:      text,
		Providers: providers,
		Store:     store.New(flagDataDir, logger),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n  Request %s\n", result.ID)
	succeeded := make([]string, 0, len(result.Providers))
	for _, name := range result.Providers {
		o := result.Outcomes[name]
		if o.Failed() {
			fmt.Printf("    %-12s failed: %s\n", name, o.Err)
			continue
		}
		fmt.Printf("    %-12s %s\n", name, o.Path)
		succeeded = append(succeeded, name)
	}

	if flagNoInput || len(succeeded) == 0 || !isatty.IsTerminal(os.Stdin.Fd()) {
		return nil
	}

	chosen, ok := runPreferencePicker(succeeded)
	if !ok {
		return nil
	}
	if err := store.New(flagDataDir, logger).SavePreference(result.ID, chosen); err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	fmt.Printf("\n  Preference saved: %s\n", chosen)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	st := store.New(flagDataDir, newLogger())
	summaries, err := st.ListRecent(flagLimit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No requests recorded yet.")
		return nil
	}

	for _, sum := range summaries {
		fmt.Printf("\n  %s  (%s)\n", sum.ID, sum.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("    Text: %s\n", truncate(sum.Text, 80))
		for _, ps := range sum.ProviderSettings {
			fmt.Printf("    %-12s model=%s voice=%s\n", ps.Name, ps.ModelID, ps.VoiceID)
		}
		for _, a := range sum.Artifacts {
			fmt.Printf("    audio: %s\n", a.Path)
		}
		if sum.Preference != "" {
			fmt.Printf("    Preferred: %s\n", sum.Preference)
		}
	}
	fmt.Println()
	return nil
}

func runPrefer(cmd *cobra.Command, args []string) error {
	st := store.New(flagDataDir, newLogger())
	if err := st.SavePreference(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("Preference saved: %s\n", args[1])
	return nil
}

func runProviders(cmd *cobra.Command, args []string) error {
	providers := tts.NewRegistry(buildConfig())
	configured := make(map[string]tts.Provider, len(providers))
	for _, p := range providers {
		configured[p.Settings().Name] = p
	}

	fmt.Println("\nProviders:")
	fmt.Printf("  %-12s %-12s %-20s %s\n", "NAME", "CONFIGURED", "MODEL", "EMOTION")
	for _, name := range tts.ProviderNames() {
		p, ok := configured[name]
		if !ok {
			fmt.Printf("  %-12s %-12s %-20s %s\n", name, "no", "-", "-")
			continue
		}
		st := p.Settings()
		emote := "no"
		if p.SupportsEmotion("") {
			emote = "yes"
		}
		fmt.Printf("  %-12s %-12s %-20s %s\n", name, "yes", st.ModelID, emote)
	}
	fmt.Println()
	return nil
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	// Cut on runes, not bytes, so multi-byte text is never split mid-rune.
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
