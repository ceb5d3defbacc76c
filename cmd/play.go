package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/cachedplayer/cachedplayer/caption"
	"github.com/cachedplayer/cachedplayer/filesystem"
	"github.com/cachedplayer/cachedplayer/icon"
	"github.com/cachedplayer/cachedplayer/key"
	"github.com/cachedplayer/cachedplayer/lifecycle"
	"github.com/cachedplayer/cachedplayer/log"
	"github.com/cachedplayer/cachedplayer/playback"
	"github.com/cachedplayer/cachedplayer/player"
	"github.com/cachedplayer/cachedplayer/source"
	"github.com/cachedplayer/cachedplayer/style"
	"github.com/cachedplayer/cachedplayer/tui"
	"github.com/cachedplayer/cachedplayer/util"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const disposeTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("caption", "c", "", "Closed caption file or URL (.srt or .vtt)")
	playCmd.Flags().Bool("no-cache", false, "Stream network sources without consulting or populating the cache")
	playCmd.Flags().Float64("speed", 1, "Playback speed")
	playCmd.Flags().StringToStringP("header", "H", map[string]string{}, "HTTP header sent with network requests, as key=value")
	playCmd.Flags().StringP("format", "f", "", "Container format hint for network sources (e.g. hls, dash)")
	playCmd.Flags().Bool("headless", false, "Print a progress line instead of the status view")

	playCmd.Flags().BoolP("loop", "l", false, "Loop playback when the end is reached")
	lo.Must0(viper.BindPFlag(key.PlayerLooping, playCmd.Flags().Lookup("loop")))

	playCmd.Flags().Float64("volume", 1, "Initial volume, from 0 to 1")
	lo.Must0(viper.BindPFlag(key.PlayerVolume, playCmd.Flags().Lookup("volume")))
}

// playCmd plays a single source until it completes or the user quits.
var playCmd = &cobra.Command{
	Use:   "play <url|path>",
	Short: "Play a network or local video, caching network sources on local storage",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handleErr(play(ctx, cmd, args[0]))
	},
}

func play(ctx context.Context, cmd *cobra.Command, target string) error {
	var (
		headless = lo.Must(cmd.Flags().GetBool("headless"))
		headers  = lo.Must(cmd.Flags().GetStringToString("header"))
		hint     = lo.Must(cmd.Flags().GetString("format"))
		captions = lo.Must(cmd.Flags().GetString("caption"))
		speed    = lo.Must(cmd.Flags().GetFloat64("speed"))
		noCache  = lo.Must(cmd.Flags().GetBool("no-cache"))
	)

	if speed <= 0 {
		return playback.ErrInvalidSpeed
	}

	if backend := viper.GetString(key.Player); backend != "mpv" {
		return fmt.Errorf("unsupported player %q", backend)
	}

	opts := []source.Option{source.WithHeaders(headers)}
	if hint != "" {
		opts = append(opts, source.WithFormatHint(hint))
	}
	if captions != "" {
		opts = append(opts, source.WithCaption(caption.From(captions, headers)))
	}

	src := source.Guess(target, opts...)
	if src.Kind == source.KindFile {
		if exists, err := filesystem.API().Exists(src.URI); err != nil || !exists {
			return fmt.Errorf("no such file: %s", src.URI)
		}
	}

	controllerOpts, err := controllerOptions()
	if err != nil {
		return err
	}
	controllerOpts = append(controllerOpts, playback.WithPlaybackSpeed(speed))

	if !noCache && viper.GetBool(key.CacheEnabled) {
		manager, err := newManager()
		if err != nil {
			return err
		}
		defer drain(manager)
		controllerOpts = append(controllerOpts, playback.WithCache(manager))
	}

	var notifier *lifecycle.Notifier
	if headless {
		notifier = lifecycle.Signals(ctx)
	} else {
		notifier = lifecycle.NewNotifier()
	}
	controllerOpts = append(controllerOpts, playback.WithLifecycle(notifier))

	ctrl := playback.New(player.NewMPV(), src, controllerOpts...)
	defer dispose(ctrl)

	log.Infof("playing %s (%s)", src, src.Kind)

	if headless {
		if err := ctrl.Initialize(ctx); err != nil {
			return err
		}
		return watch(ctx, ctrl, src.String())
	}

	go func() {
		if err := ctrl.Initialize(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("initialize %s: %s", src, err)
		}
	}()

	return tui.Run(ctx, ctrl, tui.Options{
		Title:          src.String(),
		Lifecycle:      notifier,
		ExitOnComplete: true,
	})
}

// controllerOptions reads the playback settings from the configuration.
func controllerOptions() ([]playback.Option, error) {
	poll, err := time.ParseDuration(viper.GetString(key.PlayerPollInterval))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key.PlayerPollInterval, err)
	}

	offset, err := time.ParseDuration(viper.GetString(key.CaptionsOffset))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key.CaptionsOffset, err)
	}

	return []playback.Option{
		playback.WithPollInterval(poll),
		playback.WithCaptionOffset(offset),
		playback.WithVolume(util.Clamp(viper.GetFloat64(key.PlayerVolume), 0, 1)),
		playback.WithLooping(viper.GetBool(key.PlayerLooping)),
		playback.WithAutoplay(viper.GetBool(key.PlayerAutoplay)),
		playback.WithBackgroundPlayback(viper.GetBool(key.PlayerBackgroundPlayback)),
	}, nil
}

func dispose(ctrl *playback.Controller) {
	ctx, cancel := context.WithTimeout(context.Background(), disposeTimeout)
	defer cancel()

	if err := ctrl.Dispose(ctx); err != nil {
		log.Warnf("dispose: %s", err)
		return
	}

	select {
	case <-ctrl.Done():
	case <-ctx.Done():
		log.Warn("dispose: controller still busy")
	}
}

// watch prints a single refreshing progress line until playback completes, fails or ctx is done.
func watch(ctx context.Context, ctrl *playback.Controller, title string) error {
	var latest atomic.Pointer[playback.Value]
	changed := make(chan struct{}, 1)

	id := ctrl.AddListener(func(v playback.Value) {
		latest.Store(&v)
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer ctrl.RemoveListener(id)

	v := ctrl.Value()
	latest.CompareAndSwap(nil, &v)
	changed <- struct{}{}

	defer fmt.Println()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
		}

		v := *latest.Load()
		width, _, err := util.TerminalSize()
		if err != nil {
			width = 80
		}
		fmt.Print("\r" + statusLine(title, v, width))

		if msg, ok := v.Error.Get(); ok {
			return errors.New(msg)
		}
		if v.IsCompleted && !v.IsLooping {
			return nil
		}
	}
}

// statusLine renders v on one line padded to width, so it overwrites the previous one.
func statusLine(title string, v playback.Value, width int) string {
	state := icon.Get(icon.Pause)
	switch {
	case v.IsCompleted:
		state = icon.Get(icon.Success)
	case v.IsBuffering:
		state = icon.Get(icon.Buffering)
	case v.IsPlaying:
		state = icon.Get(icon.Play)
	}

	parts := []string{
		state,
		fmt.Sprintf("%s / %s", util.FormatDuration(v.Position), util.FormatDuration(v.Duration)),
	}
	if v.IsLooping {
		parts = append(parts, icon.Get(icon.Loop))
	}
	parts = append(parts, title)
	if !v.Caption.IsEmpty() {
		parts = append(parts, style.Faint(strings.ReplaceAll(v.Caption.Text, "\n", " ")))
	}

	line := truncate.StringWithTail(strings.Join(parts, "  "), uint(max(width-1, 1)), "…")
	if pad := width - 1 - ansi.PrintableRuneWidth(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}
