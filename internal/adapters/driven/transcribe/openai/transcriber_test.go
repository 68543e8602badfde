package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "call.wav")
	require.NoError(t, os.WriteFile(p, []byte("RIFF-audio"), 0600))
	return p
}

func TestNewTranscriber_RequiresKeyOrURL(t *testing.T) {
	_, err := NewTranscriber(Config{})
	assert.ErrorIs(t, err, domain.ErrTranscriberUnavailable)

	tr, err := NewTranscriber(Config{BaseURL: "http://localhost:9000/v1"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, tr.model)
}

func TestTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "call.wav", header.Filename)
		assert.Equal(t, "RIFF-audio", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hello from the call"}`))
	}))
	defer server.Close()

	tr, err := NewTranscriber(Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := tr.Transcribe(context.Background(), writeAudio(t))

	require.NoError(t, err)
	assert.Equal(t, "hello from the call", text)
}

func TestTranscribe_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"unsupported format"}}`))
	}))
	defer server.Close()

	tr, err := NewTranscriber(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), writeAudio(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestTranscribe_MissingFile(t *testing.T) {
	tr, err := NewTranscriber(Config{APIKey: "k"})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), "/no/such/file.mp3")
	assert.Error(t, err)
}
