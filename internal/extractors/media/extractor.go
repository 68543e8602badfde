// Package media transcribes audio and the sound track of video files.
package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/deckqa/internal/adapters/driven/command"
	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

var (
	_ driven.Extractor = (*AudioExtractor)(nil)
	_ driven.Extractor = (*VideoExtractor)(nil)
)

// AudioExtractor transcribes an audio file into a single unit.
type AudioExtractor struct {
	transcriber driven.Transcriber
}

// NewAudio creates an audio extractor.
func NewAudio(transcriber driven.Transcriber) *AudioExtractor {
	return &AudioExtractor{transcriber: transcriber}
}

// Extract returns the transcript as unit 1.
func (e *AudioExtractor) Extract(ctx context.Context, req driven.ExtractRequest) ([]domain.ContentUnit, error) {
	text, err := e.transcriber.Transcribe(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	return []domain.ContentUnit{domain.NewUnit(1, strings.TrimSpace(text))}, nil
}

// VideoExtractor pulls the sound track out with ffmpeg and transcribes it.
type VideoExtractor struct {
	audio  *AudioExtractor
	runner driven.CommandRunner
	ffmpeg string
}

// NewVideo creates a video extractor that runs ffmpeg directly.
func NewVideo(transcriber driven.Transcriber, ffmpeg string) *VideoExtractor {
	return NewVideoWithRunner(command.NewRunner(), transcriber, ffmpeg)
}

// NewVideoWithRunner creates a video extractor with a custom command runner (for testing).
func NewVideoWithRunner(runner driven.CommandRunner, transcriber driven.Transcriber, ffmpeg string) *VideoExtractor {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &VideoExtractor{audio: NewAudio(transcriber), runner: runner, ffmpeg: ffmpeg}
}

// Extract converts the video to 16kHz mono WAV in the work dir, then
// transcribes it as audio.
func (e *VideoExtractor) Extract(ctx context.Context, req driven.ExtractRequest) ([]domain.ContentUnit, error) {
	if req.WorkDir == "" {
		return nil, domain.NewExtractionError(domain.TagWorkDirFailed, fmt.Errorf("video: %w", domain.ErrInvalidInput))
	}
	wav := filepath.Join(req.WorkDir, "audio.wav")

	logger.Debug("video: extracting audio track of %s", filepath.Base(req.Path))
	if _, err := e.runner.Run(ctx, e.ffmpeg, "-y", "-i", req.Path, "-vn", "-ac", "1", "-ar", "16000", wav); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	return e.audio.Extract(ctx, driven.ExtractRequest{Path: wav, WorkDir: req.WorkDir})
}

// CheckAvailable returns domain.ErrToolNotFound if ffmpeg is not on PATH.
func (e *VideoExtractor) CheckAvailable() error {
	return command.CheckAvailable(e.ffmpeg)
}
