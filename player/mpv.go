package player

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cachedplayer/cachedplayer/log"
	"github.com/cachedplayer/cachedplayer/where"
	"github.com/samber/lo"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// MPV implements Service by running one mpv process per session.
type MPV struct {
	binary string

	mu       sync.Mutex
	next     Handle
	sessions map[Handle]*session
}

// Option configures an MPV service.
type Option func(*MPV)

// WithBinary overrides the mpv executable. Defaults to "mpv" resolved through PATH.
func WithBinary(path string) Option {
	return func(m *MPV) {
		m.binary = path
	}
}

// NewMPV creates a service. No process is started until Create.
func NewMPV(opts ...Option) *MPV {
	m := &MPV{
		binary:   "mpv",
		sessions: make(map[Handle]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// session is a single mpv process and its IPC connections.
type session struct {
	ipc  *ipc
	cmd  *exec.Cmd
	conn net.Conn

	events     chan Event
	subscribed atomic.Bool

	exited    chan struct{} // closed when the mpv process exits
	done      chan struct{} // closed when the session is being torn down
	closeOnce sync.Once
}

func newSession(socketPath string) *session {
	return &session{
		ipc:    &ipc{socketPath: socketPath},
		events: make(chan Event, eventBuffer),
		exited: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Create starts a paused mpv process for d and attaches the event listener.
func (m *MPV) Create(ctx context.Context, d Descriptor) (Handle, error) {
	socketPath, err := newSocketPath()
	if err != nil {
		return 0, err
	}

	args, err := arguments(socketPath, d)
	if err != nil {
		return 0, err
	}

	s := newSession(socketPath)
	if err := s.start(ctx, m.binary, args); err != nil {
		return 0, err
	}

	if err := s.listen(ctx); err != nil {
		s.close()
		return 0, err
	}

	m.mu.Lock()
	m.next++
	h := m.next
	m.sessions[h] = s
	m.mu.Unlock()

	log.Infof("mpv session %d started on %s", h, socketPath)
	return h, nil
}

func (m *MPV) session(h Handle) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[h]
	if !ok {
		return nil, fmt.Errorf("handle %d: %w", h, ErrUnknownHandle)
	}
	return s, nil
}

// Dispose quits mpv, waiting briefly for a graceful exit before killing it.
func (m *MPV) Dispose(_ context.Context, h Handle) error {
	m.mu.Lock()
	s, ok := m.sessions[h]
	delete(m.sessions, h)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("handle %d: %w", h, ErrUnknownHandle)
	}

	s.close()
	log.Infof("mpv session %d disposed", h)
	return nil
}

func (m *MPV) Play(ctx context.Context, h Handle) error {
	return m.set(ctx, h, "pause", false)
}

func (m *MPV) Pause(ctx context.Context, h Handle) error {
	return m.set(ctx, h, "pause", true)
}

func (m *MPV) SeekTo(ctx context.Context, h Handle, position time.Duration) error {
	s, err := m.session(h)
	if err != nil {
		return err
	}
	_, err = s.ipc.command(ctx, "seek", position.Seconds(), "absolute")
	return err
}

// SetVolume maps [0, 1] onto mpv's [0, 100] scale.
func (m *MPV) SetVolume(ctx context.Context, h Handle, volume float64) error {
	return m.set(ctx, h, "volume", volume*100)
}

func (m *MPV) SetPlaybackSpeed(ctx context.Context, h Handle, speed float64) error {
	return m.set(ctx, h, "speed", speed)
}

func (m *MPV) SetLooping(ctx context.Context, h Handle, looping bool) error {
	value := "no"
	if looping {
		value = "inf"
	}
	return m.set(ctx, h, "loop-file", value)
}

func (m *MPV) Position(ctx context.Context, h Handle) (time.Duration, error) {
	s, err := m.session(h)
	if err != nil {
		return 0, err
	}

	pos, err := s.ipc.float(ctx, "time-pos")
	if err != nil {
		return 0, err
	}
	return seconds(pos), nil
}

func (m *MPV) Events(ctx context.Context, h Handle) (<-chan Event, error) {
	s, err := m.session(h)
	if err != nil {
		return nil, err
	}
	return s.subscribe(ctx)
}

func (m *MPV) set(ctx context.Context, h Handle, property string, value any) error {
	s, err := m.session(h)
	if err != nil {
		return err
	}
	return s.ipc.set(ctx, property, value)
}

// start launches mpv and waits for its IPC socket to accept connections.
func (s *session) start(ctx context.Context, binary string, args []string) error {
	s.cmd = exec.Command(binary, args...)

	// Detach from parent process group so terminal signals do not reach mpv directly.
	s.cmd.SysProcAttr = sysProcAttr()
	s.cmd.Stdout = nil
	s.cmd.Stderr = nil
	s.cmd.Stdin = nil

	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// reap the process to prevent zombies
	go func() {
		_ = s.cmd.Wait()
		close(s.exited)
	}()

	if err := s.waitForSocket(ctx); err != nil {
		select {
		case <-s.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(s.cmd)
		}
		_ = os.Remove(s.ipc.socketPath)
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (s *session) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-time.After(socketWaitDelay):
		case <-ctx.Done():
			return ctx.Err()
		case <-s.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		}

		conn, err := net.Dial("unix", s.ipc.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", s.ipc.socketPath, socketWaitRetries)
}

// close shuts the session down. Safe to call more than once.
func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}

		if s.cmd == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), quitTimeout)
		defer cancel()
		_, _ = s.ipc.command(ctx, "quit")

		select {
		case <-s.exited:
		case <-ctx.Done():
			_ = killProcess(s.cmd)
		}

		_ = os.Remove(s.ipc.socketPath)
	})
}

func newSocketPath() (string, error) {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	return filepath.Join(where.Temp(), fmt.Sprintf("mpv-%x.sock", randomBytes)), nil
}

// arguments builds the mpv command line for a descriptor.
// User mpv.conf settings are respected: no --vo, --profile or --hwdec.
func arguments(socketPath string, d Descriptor) ([]string, error) {
	var (
		target     string
		formatHint string
		headers    map[string]string
		err        error
	)

	switch d := d.(type) {
	case NetworkDescriptor:
		target, err = sanitizeMediaTarget(d.URI, "http", "https")
		formatHint, headers = d.FormatHint, d.Headers
	case FileDescriptor:
		target, err = sanitizeMediaTarget(d.URI, "file")
		formatHint, headers = d.FormatHint, d.Headers
	case AssetDescriptor:
		target, err = sanitizeMediaTarget(filepath.Join(where.Assets(), d.Package, d.Asset))
	case ContentDescriptor:
		target, err = sanitizeMediaTarget(d.URI, "http", "https", "file")
	default:
		err = fmt.Errorf("unsupported descriptor %T", d)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid media target: %w", err)
	}

	title := sanitizeTitle(filepath.Base(target))

	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + socketPath,
		"--force-media-title=" + title,
		"--title=" + title,
		"--force-window=yes",
		"--idle=yes",
		"--pause",
		"--keep-open=yes",
	}

	if len(headers) > 0 {
		args = append(args, "--http-header-fields="+headerFields(headers))
	}

	if formatHint != "" {
		args = append(args, "--demuxer-lavf-format="+formatHint)
	}

	return append(args, "--", target), nil
}

// headerFields renders headers for --http-header-fields.
// The option is a comma separated list, so commas inside values are escaped.
func headerFields(headers map[string]string) string {
	keys := lo.Keys(headers)
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%s: %s", k, strings.ReplaceAll(headers[k], ",", "%2C"))
	}
	return b.String()
}

// sanitizeMediaTarget validates that a target is safe to pass to mpv.
// Targets containing "://" must use one of the allowed schemes; anything else is a local path.
func sanitizeMediaTarget(link string, schemes ...string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		scheme := strings.ToLower(u.Scheme)
		for _, allowed := range schemes {
			if scheme == allowed {
				return l, nil
			}
		}
		return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle cleans up the title for mpv
func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
