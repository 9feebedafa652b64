package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// TTSService generates narration audio as MP3 files using the Google
// Translate text-to-speech endpoint (free, no API key needed). Generated
// files are cached on disk; the web front end plays them by URL.
//
// As a Synthesizer, Speak ensures the audio file exists. Playback itself
// happens in the browser, so Speak returns once the file is ready and
// Cancel has nothing to stop server-side.
type TTSService struct {
	audioDir string
	client   *http.Client
}

// NewTTSService creates a TTS service caching files under audioDir
func NewTTSService(audioDir string) *TTSService {
	return &TTSService{
		audioDir: audioDir,
		client:   &http.Client{},
	}
}

func (s *TTSService) Speak(ctx context.Context, text string, opts Options) error {
	_, err := s.GenerateAudioFile(ctx, text)
	if ctx.Err() != nil {
		// Superseded by a newer announcement; not a failure
		return nil
	}
	if err != nil {
		return &Error{Text: text, Err: err}
	}
	return nil
}

func (s *TTSService) Cancel() {}

// AudioFileName returns the cache filename for a piece of text
func AudioFileName(text string) string {
	sanitized := strings.ToLower(strings.TrimSpace(text))
	sanitized = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, sanitized)
	return fmt.Sprintf("say_%s.mp3", sanitized)
}

// GenerateAudioFile converts text to speech and saves it as MP3, returning
// the filename (not full path). Existing files are reused.
func (s *TTSService) GenerateAudioFile(ctx context.Context, text string) (string, error) {
	filename := AudioFileName(text)
	path := filepath.Join(s.audioDir, filename)

	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := s.fetchFromGoogleTTS(ctx, text, path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	return filename, nil
}

// fetchFromGoogleTTS downloads spoken audio for text from Google
// Translate's text-to-speech API
func (s *TTSService) fetchFromGoogleTTS(ctx context.Context, text, outputPath string) error {
	baseURL := "https://translate.google.com/translate_tts"

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	fullURL := baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent (required by Google)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return nil
}

// BatchGenerateAudio pre-generates audio files for a list of phrases,
// used at startup so level words narrate without a first-play delay
func (s *TTSService) BatchGenerateAudio(ctx context.Context, phrases []string) (map[string]string, error) {
	results := make(map[string]string)

	for _, phrase := range phrases {
		filename, err := s.GenerateAudioFile(ctx, phrase)
		if err != nil {
			return results, fmt.Errorf("failed to generate audio for %q: %w", phrase, err)
		}
		results[phrase] = filename
	}

	return results, nil
}
