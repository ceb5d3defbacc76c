package caption

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/asticode/go-astisub"
	"github.com/cachedplayer/cachedplayer/filesystem"
	"github.com/cachedplayer/cachedplayer/network"
)

// Format identifies a caption file syntax.
type Format string

const (
	SubRip Format = "srt"
	WebVTT Format = "vtt"
)

// FormatOf infers the format from a file name or URL path.
func FormatOf(name string) (Format, error) {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" {
		name = u.Path
	}

	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case string(SubRip):
		return SubRip, nil
	case string(WebVTT):
		return WebVTT, nil
	default:
		return "", fmt.Errorf("unsupported caption file %q", name)
	}
}

// Loader produces a track asynchronously. Controllers await it during initialization
// and whenever the caption file is replaced.
type Loader func(ctx context.Context) (*Track, error)

// Parse reads a whole caption file in the given format.
func Parse(r io.Reader, format Format) (*Track, error) {
	var (
		subs *astisub.Subtitles
		err  error
	)

	switch format {
	case SubRip:
		subs, err = astisub.ReadFromSRT(r)
	case WebVTT:
		subs, err = astisub.ReadFromWebVTT(r)
	default:
		return nil, fmt.Errorf("unsupported caption format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s captions: %w", format, err)
	}

	track := &Track{Captions: make([]Caption, 0, len(subs.Items))}
	for i, item := range subs.Items {
		lines := make([]string, 0, len(item.Lines))
		for _, line := range item.Lines {
			lines = append(lines, line.String())
		}

		track.Captions = append(track.Captions, Caption{
			Number: i + 1,
			Start:  item.StartAt,
			End:    item.EndAt,
			Text:   strings.Join(lines, "\n"),
		})
	}

	return track, nil
}

// FromFile loads a caption file through the virtualized filesystem.
func FromFile(name string) Loader {
	return func(ctx context.Context) (*Track, error) {
		format, err := FormatOf(name)
		if err != nil {
			return nil, err
		}

		f, err := filesystem.API().Open(filepath.Clean(name))
		if err != nil {
			return nil, fmt.Errorf("open captions: %w", err)
		}
		defer f.Close()

		return Parse(f, format)
	}
}

// FromURL downloads a caption file with the shared network client.
func FromURL(rawURL string, headers map[string]string) Loader {
	return func(ctx context.Context) (*Track, error) {
		format, err := FormatOf(rawURL)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("captions request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := network.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch captions: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch captions: status %d", resp.StatusCode)
		}

		return Parse(resp.Body, format)
	}
}

// Static wraps an already-loaded track.
func Static(track *Track) Loader {
	return func(context.Context) (*Track, error) {
		return track, nil
	}
}

// From picks FromURL or FromFile depending on whether target looks like an http(s) URL.
func From(target string, headers map[string]string) Loader {
	if u, err := url.Parse(target); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return FromURL(target, headers)
	}
	return FromFile(target)
}
