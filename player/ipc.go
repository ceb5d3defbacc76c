package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// ipcRequest is the JSON structure sent to mpv's IPC socket.
type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is any line received from mpv: a command reply or an asynchronous event.
type ipcMessage struct {
	RequestID *int64          `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`

	Event     string `json:"event"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

// CommandError is an error reported by mpv itself, as opposed to a transport failure.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.Command, e.Message)
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = time.Second
)

var requestIDs atomic.Int64

// ipc sends commands to one mpv instance. Each command uses its own connection,
// so callers never contend with the event stream.
type ipc struct {
	socketPath string
}

// command runs a JSON-IPC command and returns the raw data field of the reply.
// Transport failures are retried; errors reported by mpv are not.
func (c *ipc) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := c.roundTrip(ctx, args)
		if err == nil {
			return data, nil
		}

		var cmdErr *CommandError
		if errors.As(err, &cmdErr) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *ipc) roundTrip(ctx context.Context, args []any) (json.RawMessage, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(readDeadline)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	id := requestIDs.Add(1)
	payload, err := json.Marshal(ipcRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	// mpv broadcasts events to every client, so skip lines until our reply shows up
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		if msg.Event != "" || msg.RequestID == nil || *msg.RequestID != id {
			continue
		}

		if msg.Error != "" && msg.Error != "success" {
			return nil, &CommandError{Command: fmt.Sprint(args[0]), Message: msg.Error}
		}

		return msg.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, errors.New("read: connection closed before reply")
}

func (c *ipc) set(ctx context.Context, property string, value any) error {
	_, err := c.command(ctx, "set_property", property, value)
	return err
}

func (c *ipc) float(ctx context.Context, property string) (float64, error) {
	data, err := c.command(ctx, "get_property", property)
	if err != nil {
		return 0, err
	}

	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("property %s: %w", property, err)
	}
	if v == nil {
		return 0, fmt.Errorf("property %s: nil response", property)
	}

	return *v, nil
}

// seconds converts mpv's floating point seconds into a duration.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
