// Package source describes where playable media comes from.
package source

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cachedplayer/cachedplayer/caption"
)

// Kind is the origin of a media source.
type Kind int

const (
	// KindAsset is media bundled with the application.
	KindAsset Kind = iota
	// KindNetwork is remote media. Only network sources are cached.
	KindNetwork
	// KindFile is media on local storage.
	KindFile
	// KindContent is an opaque content handle.
	KindContent
)

func (k Kind) String() string {
	switch k {
	case KindAsset:
		return "asset"
	case KindNetwork:
		return "network"
	case KindFile:
		return "file"
	case KindContent:
		return "content"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DataSource describes a single playable media item.
type DataSource struct {
	Kind Kind

	// URI is the URL, path, asset name or content handle, depending on Kind.
	URI string

	// Package scopes asset names. Assets only.
	Package string

	// FormatHint overrides container detection, e.g. "hls" or "dash".
	// Network and file sources only.
	FormatHint string

	// Headers are sent with every request for the media. Network and file sources only.
	Headers map[string]string

	// Caption loads an optional caption track.
	Caption caption.Loader
}

// Option configures a DataSource.
type Option func(*DataSource)

// WithHeaders adds request headers.
func WithHeaders(headers map[string]string) Option {
	return func(d *DataSource) {
		if d.Headers == nil {
			d.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			d.Headers[k] = v
		}
	}
}

// WithFormatHint sets the container format hint.
func WithFormatHint(hint string) Option {
	return func(d *DataSource) {
		d.FormatHint = hint
	}
}

// WithCaption attaches a caption track loader.
func WithCaption(loader caption.Loader) Option {
	return func(d *DataSource) {
		d.Caption = loader
	}
}

func build(d DataSource, opts []Option) DataSource {
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Network returns a source for remote media at rawURL.
func Network(rawURL string, opts ...Option) DataSource {
	return build(DataSource{Kind: KindNetwork, URI: rawURL}, opts)
}

// File returns a source for local media at path.
func File(path string, opts ...Option) DataSource {
	return build(DataSource{Kind: KindFile, URI: path}, opts)
}

// Asset returns a source for bundled media.
func Asset(name, pkg string, opts ...Option) DataSource {
	return build(DataSource{Kind: KindAsset, URI: name, Package: pkg}, opts)
}

// Content returns a source for an opaque content handle.
func Content(uri string, opts ...Option) DataSource {
	return build(DataSource{Kind: KindContent, URI: uri}, opts)
}

// Guess picks a network source for http(s) URLs and a file source for everything else.
func Guess(target string, opts ...Option) DataSource {
	if u, err := url.Parse(target); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return Network(target, opts...)
		case "file":
			return File(u.Path, opts...)
		}
	}

	return File(target, opts...)
}

// String returns a short human readable name for the source.
func (d DataSource) String() string {
	if d.Kind == KindNetwork {
		if u, err := url.Parse(d.URI); err == nil && u.Path != "" && u.Path != "/" {
			return filepath.Base(u.Path)
		}
		return d.URI
	}

	return filepath.Base(d.URI)
}
