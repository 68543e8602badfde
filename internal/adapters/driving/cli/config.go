package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// EnvFileName is the dotenv file next to config.toml that holds API keys.
const EnvFileName = ".env"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	Long: `Shows the effective configuration and edits config.toml.

API keys are never written to config.toml. They are read from the
environment (or the .env file next to config.toml) using the variable named
by embedding.api_key_env / chat.api_key_env, or the provider's usual one.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets one dotted key in config.toml. Numbers and true/false are stored
typed, everything else as a string. Changes apply to the next command.

Examples:
  deckqa config set embedding.provider openai
  deckqa config set chunk.pptx.size 1500
  deckqa config set tracing.sample_rate 0.25`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured AI providers respond",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Choose the embedding provider interactively",
	Args:  cobra.NoArgs,
	RunE:  runConfigEmbedding,
}

var configChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Choose the chat model provider interactively",
	Args:  cobra.NoArgs,
	RunE:  runConfigChat,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	configCmd.AddCommand(configChatCmd)
	rootCmd.AddCommand(configCmd)
}

// configKeys are the scalar keys accepted by 'config set'.
// chunk.<filetype>.size|overlap are accepted separately.
var configKeys = map[string]bool{
	"data_dir":                  true,
	"max_file_size":             true,
	"request_timeout":           true,
	"retrieval.k":               true,
	"synth.token_budget":        true,
	"embedding.provider":        true,
	"embedding.model":           true,
	"embedding.base_url":        true,
	"embedding.api_key_env":     true,
	"embedding.rate_per_second": true,
	"chat.provider":             true,
	"chat.model":                true,
	"chat.base_url":             true,
	"chat.api_key_env":          true,
	"chat.rate_per_second":      true,
	"ocr.tesseract_path":        true,
	"ocr.lang":                  true,
	"ocr.secondary_psm":         true,
	"ocr.min_signal":            true,
	"vision.max_side":           true,
	"vision.kernel_divisor":     true,
	"vision.cluster_threshold":  true,
	"vision.min_boxes":          true,
	"transcription.base_url":    true,
	"transcription.model":       true,
	"transcription.api_key_env": true,
	"transcription.ffmpeg_path": true,
	"tracing.endpoint":          true,
	"tracing.service_name":      true,
	"tracing.sample_rate":       true,
}

func isConfigKey(key string) bool {
	if configKeys[key] {
		return true
	}
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != "chunk" {
		return false
	}
	return domain.FileType(parts[1]).IsValid() && (parts[2] == "size" || parts[2] == "overlap")
}

// parseConfigValue keeps numbers and booleans typed in the TOML file.
func parseConfigValue(raw string) any {
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s := settings

	cmd.Println("Configuration")
	cmd.Println("=============")
	if configStore != nil {
		cmd.Printf("  File: %s\n", configStore.Path())
	}
	cmd.Printf("  Data dir: %s\n", s.DataDir)
	cmd.Printf("  Max file size: %s\n", formatSize(s.MaxFileSize))
	cmd.Printf("  Request timeout: %s\n", s.RequestTimeout)
	cmd.Printf("  Retrieval k: %d, token budget: %d\n", s.RetrievalK, s.TokenBudget)
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, s.Embedding.Provider, s.Embedding.Model, s.Embedding.BaseURL, s.Embedding.APIKey,
		s.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[Chat]")
	printProvider(cmd, s.LLM.Provider, s.LLM.Model, s.LLM.BaseURL, s.LLM.APIKey, s.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[OCR]")
	cmd.Printf("  Tesseract: %s (lang %s, secondary psm %d)\n", s.OCR.TesseractPath, s.OCR.Language, s.OCR.SecondaryPSM)
	cmd.Printf("  Table detection: max side %d, kernel 1/%d, min boxes %d\n",
		s.Vision.MaxSide, s.Vision.KernelDivisor, s.Vision.MinBoxes)
	cmd.Println()

	cmd.Println("[Transcription]")
	if s.Transcription.IsConfigured() {
		cmd.Printf("  Model: %s\n", s.Transcription.Model)
		cmd.Printf("  API Key: %s\n", maskAPIKey(s.Transcription.APIKey))
	} else {
		cmd.Println("  Status: not configured (audio and video will be skipped)")
	}
	cmd.Printf("  ffmpeg: %s\n", s.Transcription.FFmpegPath)
	cmd.Println()

	cmd.Println("[Tracing]")
	if s.Tracing.Endpoint == "" {
		cmd.Println("  Status: disabled")
	} else {
		cmd.Printf("  Endpoint: %s (%s, sample rate %.2f)\n", s.Tracing.Endpoint, s.Tracing.ServiceName, s.Tracing.SampleRate)
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	types := make([]string, 0, len(s.ChunkWindows))
	for ft := range s.ChunkWindows {
		types = append(types, string(ft))
	}
	sort.Strings(types)
	for _, ft := range types {
		w := s.ChunkWindows[domain.FileType(ft)]
		cmd.Printf("  %-6s size %d, overlap %d\n", ft, w.Size, w.Overlap)
	}
	return nil
}

func printProvider(cmd *cobra.Command, p domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	if p == "" {
		cmd.Println("  Status: not configured")
		return
	}
	cmd.Printf("  Provider: %s\n", p.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set, export %s)\n", p.APIKeyEnv())
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	key, raw := args[0], args[1]
	if !isConfigKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	if strings.HasSuffix(key, ".provider") && !domain.AIProvider(raw).IsValid() {
		return fmt.Errorf("unknown provider %q", raw)
	}

	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if err := configStore.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	cmd.Printf("Set %s = %s\n", key, raw)
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if configValidator == nil {
		return errors.New("config validator not configured")
	}

	failed := 0
	check := func(name string, configured bool, validate func(context.Context) error) {
		cmd.Printf("%-10s ", name+":")
		if !configured {
			cmd.Println("not configured")
			return
		}
		if err := validate(cmd.Context()); err != nil {
			failed++
			cmd.Printf("FAILED: %v\n", err)
			return
		}
		cmd.Println("OK")
	}

	check("Embedding", settings.Embedding.IsConfigured(), func(ctx context.Context) error {
		return configValidator.ValidateEmbedding(ctx, &settings.Embedding)
	})
	check("Chat", settings.LLM.IsConfigured(), func(ctx context.Context) error {
		return configValidator.ValidateLLM(ctx, &settings.LLM)
	})

	if failed > 0 {
		return fmt.Errorf("%d provider check(s) failed", failed)
	}
	return nil
}

// providerChoice is the outcome of the interactive provider prompt.
type providerChoice struct {
	Provider domain.AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

func promptProvider(
	cmd *cobra.Command, reader *bufio.Reader, title string,
	providers []domain.AIProvider, defaults map[domain.AIProvider]string,
) (providerChoice, error) {
	cmd.Println(title)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	choice := providerChoice{Provider: providers[parseChoice(readLine(reader), len(providers), 1)-1]}

	defaultModel := defaults[choice.Provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	choice.Model = readLine(reader)
	if choice.Model == "" {
		choice.Model = defaultModel
	}

	if choice.Provider.IsLocal() {
		cmd.Print("Enter base URL [default]: ")
		choice.BaseURL = readLine(reader)
	}

	if choice.Provider.RequiresAPIKey() {
		env := choice.Provider.APIKeyEnv()
		if existing := os.Getenv(env); existing != "" {
			cmd.Printf("Using %s from the environment (%s)\n", env, maskAPIKey(existing))
			choice.APIKey = existing
		} else {
			cmd.Printf("Enter API key (saved as %s in %s): ", env, EnvFileName)
			choice.APIKey = readSecret(cmd, reader)
			if choice.APIKey == "" {
				return choice, errors.New("API key is required for this provider")
			}
		}
	}
	return choice, nil
}

// saveChoice writes the provider section and, for new keys, the .env entry.
func saveChoice(section string, c providerChoice) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	values := map[string]string{
		section + ".provider": string(c.Provider),
		section + ".model":    c.Model,
		section + ".base_url": c.BaseURL,
	}
	for k, v := range values {
		if err := configStore.Set(k, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	if err := configStore.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	env := c.Provider.APIKeyEnv()
	if env == "" || c.APIKey == "" || os.Getenv(env) == c.APIKey {
		return nil
	}
	if err := writeEnvKey(filepath.Join(filepath.Dir(configStore.Path()), EnvFileName), env, c.APIKey); err != nil {
		return err
	}
	return os.Setenv(env, c.APIKey)
}

// writeEnvKey merges one variable into a dotenv file.
func writeEnvKey(path, name, value string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		vars = map[string]string{}
	}
	vars[name] = value
	if err := godotenv.Write(vars, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

func runConfigEmbedding(cmd *cobra.Command, _ []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	choice, err := promptProvider(cmd, reader, "Select Embedding Provider",
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}
	if err := saveChoice("embedding", choice); err != nil {
		return err
	}

	if configValidator != nil {
		cmd.Print("Validating configuration... ")
		es := domain.EmbeddingSettings{
			Provider: choice.Provider,
			Model:    choice.Model,
			BaseURL:  choice.BaseURL,
			APIKey:   choice.APIKey,
		}
		if err := configValidator.ValidateEmbedding(cmd.Context(), &es); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}
	cmd.Printf("Embedding provider configured: %s (%s)\n", choice.Provider.Description(), choice.Model)
	cmd.Println("Run 'deckqa session rebuild' to re-embed existing sessions.")
	return nil
}

func runConfigChat(cmd *cobra.Command, _ []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	choice, err := promptProvider(cmd, reader, "Select Chat Provider",
		domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}
	if err := saveChoice("chat", choice); err != nil {
		return err
	}

	if configValidator != nil {
		cmd.Print("Validating configuration... ")
		ls := domain.LLMSettings{
			Provider: choice.Provider,
			Model:    choice.Model,
			BaseURL:  choice.BaseURL,
			APIKey:   choice.APIKey,
		}
		if err := configValidator.ValidateLLM(cmd.Context(), &ls); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("chat configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}
	cmd.Printf("Chat provider configured: %s (%s)\n", choice.Provider.Description(), choice.Model)
	return nil
}
