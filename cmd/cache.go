package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cachedplayer/cachedplayer/color"
	"github.com/cachedplayer/cachedplayer/icon"
	"github.com/cachedplayer/cachedplayer/internal/cache"
	"github.com/cachedplayer/cachedplayer/key"
	"github.com/cachedplayer/cachedplayer/network"
	"github.com/cachedplayer/cachedplayer/style"
	"github.com/cachedplayer/cachedplayer/util"
	"github.com/cachedplayer/cachedplayer/where"
	"github.com/jonboulle/clockwork"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// drainGrace is how long shutdown waits silently for a background download before asking.
const drainGrace = 100 * time.Millisecond

// newManager builds the process-wide cache manager from the configuration.
func newManager() (*cache.Manager, error) {
	ttl, err := time.ParseDuration(viper.GetString(key.CacheTTL))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key.CacheTTL, err)
	}

	return cache.NewManager(where.Media(), where.Ledger(), ttl, network.Client, clockwork.NewRealClock()), nil
}

// drain lets a background download started during playback finish, unless the user interrupts it.
func drain(m *cache.Manager) {
	defer m.Close()

	done := make(chan struct{})
	go func() {
		m.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-time.After(drainGrace):
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	erase := util.PrintErasable(fmt.Sprintf("%s Finishing cache download, press ctrl+c to abort...", icon.Get(icon.Progress)))
	defer erase()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

// cacheCmd serves as the parent command for inspecting the media cache.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the local media cache",
}

func init() {
	cacheCmd.AddCommand(cacheLsCmd)
	cacheLsCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	cacheLsCmd.SetOut(os.Stdout)
}

var cacheLsCmd = &cobra.Command{
	Use:     "ls [filter]",
	Short:   "List cached sources, most recently fetched first",
	Aliases: []string{"list"},
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, err := newManager()
		handleErr(err)
		defer m.Close()

		entries, err := m.Entries()
		handleErr(err)

		if len(args) == 1 {
			entries = filterEntries(entries, args[0])
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("Nothing cached"))
			return
		}

		now := time.Now()
		for _, e := range entries {
			cmd.Println(entryLine(e, m.Fresh(e), now))
		}
		cmd.Println(style.Faint(util.Quantify(len(entries), "source", "sources")))
	},
}

// filterEntries keeps the entries whose key fuzzily matches filter.
func filterEntries(entries []cache.Entry, filter string) []cache.Entry {
	return lo.Filter(entries, func(e cache.Entry, _ int) bool {
		return fuzzy.MatchNormalizedFold(filter, e.Key)
	})
}

func entryLine(e cache.Entry, fresh bool, now time.Time) string {
	var status string
	switch {
	case !e.Present:
		status = style.Fg(color.Red)(icon.Get(icon.Fail) + " missing")
	case fresh:
		status = style.Fg(color.Green)(icon.Get(icon.Cached) + " fresh  ")
	default:
		status = style.Fg(color.Yellow)(icon.Get(icon.Cached) + " stale  ")
	}

	age := now.Sub(e.Fetched).Truncate(time.Minute)
	return fmt.Sprintf("%s %s %s", status, style.Faint(fmt.Sprintf("%10s ago", age)), e.Key)
}

func init() {
	cacheCmd.AddCommand(cacheRmCmd)
}

var cacheRmCmd = &cobra.Command{
	Use:     "rm <url>",
	Short:   "Remove the cached copy of a network source",
	Aliases: []string{"remove"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, err := newManager()
		handleErr(err)
		defer m.Close()

		err = m.Remove(args[0])
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		handleErr(err)

		fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached source",
	Run: func(cmd *cobra.Command, args []string) {
		m, err := newManager()
		handleErr(err)
		defer m.Close()

		e := util.PrintErasable(fmt.Sprintf("%s Clearing cache...", icon.Get(icon.Progress)))
		err = m.Clear()
		e()
		handleErr(err)

		fmt.Printf("%s Cache cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
