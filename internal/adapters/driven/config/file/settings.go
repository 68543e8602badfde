package file

import (
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// LoadSettings assembles typed settings from the store on top of
// domain.DefaultSettings. API keys come from the environment variable
// named by <section>.api_key_env, or the provider's conventional one.
// Invalid values are logged and the default kept.
func LoadSettings(store driven.ConfigStore) domain.Settings {
	s := domain.DefaultSettings()

	s.DataDir = filepath.Dir(store.Path())
	if dir := store.GetString("data_dir"); dir != "" {
		s.DataDir = expandHome(dir)
	}
	if n := store.GetInt("max_file_size"); n > 0 {
		s.MaxFileSize = int64(n)
	}
	if n := store.GetInt("synth.token_budget"); n > 0 {
		s.TokenBudget = n
	}
	if n := store.GetInt("retrieval.k"); n > 0 {
		s.RetrievalK = n
	}
	if secs := store.GetInt("request_timeout"); secs > 0 {
		s.RequestTimeout = time.Duration(secs) * time.Second
	}

	s.Embedding = domain.EmbeddingSettings{
		Provider:      domain.AIProvider(store.GetString("embedding.provider")),
		Model:         store.GetString("embedding.model"),
		BaseURL:       store.GetString("embedding.base_url"),
		RatePerSecond: store.GetFloat("embedding.rate_per_second"),
	}
	if s.Embedding.Model == "" {
		s.Embedding.Model = domain.DefaultEmbeddingModels()[s.Embedding.Provider]
	}
	s.Embedding.APIKey = apiKey(store, "embedding", s.Embedding.Provider)

	s.LLM = domain.LLMSettings{
		Provider:      domain.AIProvider(store.GetString("chat.provider")),
		Model:         store.GetString("chat.model"),
		BaseURL:       store.GetString("chat.base_url"),
		RatePerSecond: store.GetFloat("chat.rate_per_second"),
	}
	if s.LLM.Model == "" {
		s.LLM.Model = domain.DefaultLLMModels()[s.LLM.Provider]
	}
	s.LLM.APIKey = apiKey(store, "chat", s.LLM.Provider)

	for _, p := range []domain.AIProvider{s.Embedding.Provider, s.LLM.Provider} {
		if p != "" && !p.IsValid() {
			logger.Warn("config: unknown provider %q ignored", p)
		}
	}

	if v := store.GetString("ocr.tesseract_path"); v != "" {
		s.OCR.TesseractPath = v
	}
	if v := store.GetString("ocr.lang"); v != "" {
		s.OCR.Language = v
	}
	if n := store.GetInt("ocr.secondary_psm"); n > 0 {
		s.OCR.SecondaryPSM = n
	}
	if n := store.GetInt("ocr.min_signal"); n > 0 {
		s.OCR.MinSignal = n
	}

	if n := store.GetInt("vision.max_side"); n > 0 {
		s.Vision.MaxSide = n
	}
	if n := store.GetInt("vision.kernel_divisor"); n > 0 {
		s.Vision.KernelDivisor = n
	}
	if n := store.GetInt("vision.cluster_threshold"); n > 0 {
		s.Vision.ClusterThreshold = n
	}
	if n := store.GetInt("vision.min_boxes"); n > 0 {
		s.Vision.MinBoxes = n
	}

	s.Transcription.BaseURL = store.GetString("transcription.base_url")
	if v := store.GetString("transcription.model"); v != "" {
		s.Transcription.Model = v
	}
	if v := store.GetString("transcription.ffmpeg_path"); v != "" {
		s.Transcription.FFmpegPath = v
	}
	s.Transcription.APIKey = apiKey(store, "transcription", domain.AIProviderOpenAI)

	s.Tracing.Endpoint = store.GetString("tracing.endpoint")
	if v := store.GetString("tracing.service_name"); v != "" {
		s.Tracing.ServiceName = v
	}
	if _, ok := store.Get("tracing.sample_rate"); ok {
		s.Tracing.SampleRate = store.GetFloat("tracing.sample_rate")
	}

	for ft, w := range s.ChunkWindows {
		override := w
		prefix := "chunk." + string(ft) + "."
		if n := store.GetInt(prefix + "size"); n > 0 {
			override.Size = n
		}
		if _, ok := store.Get(prefix + "overlap"); ok {
			override.Overlap = store.GetInt(prefix + "overlap")
		}
		if err := override.Validate(); err != nil {
			logger.Warn("config: %s: %v; keeping %d/%d", prefix, err, w.Size, w.Overlap)
			continue
		}
		s.ChunkWindows[ft] = override
	}

	return s
}

func apiKey(store driven.ConfigStore, section string, provider domain.AIProvider) string {
	env := store.GetString(section + ".api_key_env")
	if env == "" {
		env = provider.APIKeyEnv()
	}
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
