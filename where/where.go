// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/cachedplayer/cachedplayer/constant"
	"github.com/cachedplayer/cachedplayer/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "CACHEDPLAYER_CONFIG_PATH"

// EnvCachePath overrides the directory holding cached media and the freshness ledger.
const EnvCachePath = "CACHEDPLAYER_CACHE_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// It prioritizes the XDG_CONFIG_HOME specification on Linux and equivalent user profile paths on Darwin and Windows.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	if custom, ok := os.LookupEnv(EnvCachePath); ok {
		return ensureDir(custom)
	}

	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Media resolves the directory holding cached media artifacts.
func Media() string {
	return ensureDir(filepath.Join(Cache(), "media"))
}

// Ledger resolves the file recording when each cached artifact was last fetched.
func Ledger() string {
	return filepath.Join(Cache(), "ledger.json")
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Assets resolves the directory searched for bundled asset sources.
func Assets() string {
	return ensureDir(filepath.Join(Config(), "assets"))
}

// Temp resolves a volatile filesystem path for transient artifacts such as IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
