package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Audio is one captured utterance.
type Audio struct {
	Data []byte

	// Format is the container extension without a dot, e.g. "wav".
	Format string
}

// Filename returns a name transcription APIs use to detect the format.
func (a Audio) Filename() string {
	return "utterance." + a.Format
}

// MIMEType returns the media type of the audio container.
func (a Audio) MIMEType() string {
	switch a.Format {
	case "mp3":
		return "audio/mpeg"
	case "ogg":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	default:
		return "audio/wav"
	}
}

// ErrNoAudio is returned when a capture produced nothing.
var ErrNoAudio = errors.New("no audio captured")

// Source captures one utterance.
type Source interface {
	Capture(ctx context.Context) (Audio, error)
}

// CommandSource runs an external recorder that writes a single utterance to
// stdout, for example `arecord -q -f cd -d 10 -t wav -`.
type CommandSource struct {
	Name   string
	Args   []string
	Format string
}

// DefaultCommandSource records ten seconds of 16 kHz mono WAV with arecord.
func DefaultCommandSource() *CommandSource {
	return &CommandSource{
		Name:   "arecord",
		Args:   []string{"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-d", "10", "-t", "wav", "-"},
		Format: "wav",
	}
}

func (s *CommandSource) Capture(ctx context.Context) (Audio, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Name, s.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Audio{}, fmt.Errorf("%s: %w: %s", s.Name, err, msg)
		}
		return Audio{}, fmt.Errorf("%s: %w", s.Name, err)
	}
	if stdout.Len() == 0 {
		return Audio{}, ErrNoAudio
	}
	format := s.Format
	if format == "" {
		format = "wav"
	}
	return Audio{Data: stdout.Bytes(), Format: format}, nil
}

// FileSource replays a pre-recorded file on every capture.
type FileSource struct {
	Path string
}

func (s FileSource) Capture(ctx context.Context) (Audio, error) {
	if err := ctx.Err(); err != nil {
		return Audio{}, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Audio{}, fmt.Errorf("read audio: %w", err)
	}
	if len(data) == 0 {
		return Audio{}, ErrNoAudio
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(s.Path)), ".")
	if format == "" {
		format = "wav"
	}
	return Audio{Data: data, Format: format}, nil
}

// StaticSource returns the same audio every time. Useful with MockTranscriber.
type StaticSource Audio

func (s StaticSource) Capture(ctx context.Context) (Audio, error) {
	if err := ctx.Err(); err != nil {
		return Audio{}, err
	}
	return Audio(s), nil
}
