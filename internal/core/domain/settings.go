package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or chat.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// APIKeyEnv returns the environment variable conventionally holding the key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// RatePerSecond throttles outbound embedding calls. Zero disables throttling.
	RatePerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds chat provider configuration.
type LLMSettings struct {
	// Provider is the chat service provider.
	Provider AIProvider

	// Model is the chat model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// RatePerSecond throttles outbound chat calls. Zero disables throttling.
	RatePerSecond float64
}

// IsConfigured returns true if the chat provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// OCRSettings configures the tesseract engines.
type OCRSettings struct {
	// TesseractPath is the tesseract binary.
	TesseractPath string

	// Language is the tesseract language pack, e.g. "eng".
	Language string

	// SecondaryPSM is the page segmentation mode of the fallback engine.
	SecondaryPSM int

	// MinSignal is the character count below which the fallback engine runs.
	MinSignal int
}

// VisionSettings tunes the table detector. The defaults are empirical.
type VisionSettings struct {
	// MaxSide caps the longest image side before detection.
	MaxSide int

	// KernelDivisor sizes the line-detection structuring elements as dimension/divisor.
	KernelDivisor int

	// ClusterThreshold is the pixel gap that starts a new separator cluster.
	ClusterThreshold int

	// MinBoxes is the number of line fragments that marks an image as a table.
	MinBoxes int
}

// TranscriptionSettings configures the speech-to-text service.
type TranscriptionSettings struct {
	// BaseURL is the OpenAI-compatible API endpoint.
	BaseURL string

	// Model is the transcription model.
	Model string

	// APIKey authenticates the requests.
	APIKey string

	// FFmpegPath is the binary used to pull audio out of video.
	FFmpegPath string
}

// IsConfigured returns true if transcription can run.
func (t TranscriptionSettings) IsConfigured() bool {
	return t.APIKey != "" || t.BaseURL != ""
}

// TracingSettings configures OpenTelemetry export.
type TracingSettings struct {
	// Endpoint is the OTLP gRPC collector address. Empty disables tracing.
	Endpoint string

	// ServiceName is reported on every span.
	ServiceName string

	// SampleRate is the fraction of traces kept (0..1).
	SampleRate float64
}

// Settings holds all application settings.
type Settings struct {
	// DataDir is the root of session artifacts.
	DataDir string

	// MaxFileSize rejects larger inputs before extraction.
	MaxFileSize int64

	// TokenBudget bounds the retrieved context in the answer prompt.
	TokenBudget int

	// RetrievalK is the number of neighbours fetched per question.
	RetrievalK int

	// RequestTimeout bounds each outbound provider call.
	RequestTimeout time.Duration

	Embedding     EmbeddingSettings
	LLM           LLMSettings
	OCR           OCRSettings
	Vision        VisionSettings
	Transcription TranscriptionSettings
	Tracing       TracingSettings

	// ChunkWindows overrides the per-file-type window table.
	ChunkWindows map[FileType]ChunkWindow
}

// Default limits.
const (
	DefaultMaxFileSize int64 = 200 * 1024 * 1024
	DefaultTokenBudget       = 4000
	DefaultRetrievalK        = 3
)

// DefaultSettings returns settings with sensible defaults.
// AI providers are left unconfigured; the config file or environment sets them.
func DefaultSettings() Settings {
	return Settings{
		MaxFileSize:    DefaultMaxFileSize,
		TokenBudget:    DefaultTokenBudget,
		RetrievalK:     DefaultRetrievalK,
		RequestTimeout: 60 * time.Second,
		OCR: OCRSettings{
			TesseractPath: "tesseract",
			Language:      "eng",
			SecondaryPSM:  11,
			MinSignal:     10,
		},
		Vision: DefaultVisionSettings(),
		Transcription: TranscriptionSettings{
			Model:      "whisper-1",
			FFmpegPath: "ffmpeg",
		},
		Tracing: TracingSettings{
			ServiceName: "deckqa",
			SampleRate:  1.0,
		},
		ChunkWindows: DefaultChunkWindows(),
	}
}

// DefaultVisionSettings returns the table-detection defaults.
func DefaultVisionSettings() VisionSettings {
	return VisionSettings{
		MaxSide:          2000,
		KernelDivisor:    30,
		ClusterThreshold: 10,
		MinBoxes:         5,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support chat completion.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each chat provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
