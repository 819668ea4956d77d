package serial

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/mazebot/internal/core/motion"
	"github.com/example/mazebot/internal/ports/secondary"
)

// Sensor modes for ReadCell.
const (
	SensorColor    = "color"
	SensorDistance = "dist"
)

// ErrProtocol is returned when the brick answers with something unexpected.
var ErrProtocol = errors.New("unexpected reply from robot")

// BridgeConfig tunes the protocol timing and which sensor ReadCell uses.
type BridgeConfig struct {
	Speed        int           // wheel speed in degrees per second
	SensorMode   string        // color or dist
	ReplyTimeout time.Duration // sensor replies, and the slack added to every move
}

// DefaultBridgeConfig returns a colour-sensor setup at the calibration speed.
func DefaultBridgeConfig(speed int) BridgeConfig {
	return BridgeConfig{
		Speed:        speed,
		SensorMode:   SensorColor,
		ReplyTimeout: 500 * time.Millisecond,
	}
}

// Bridge talks to the brick one request at a time:
//
//	MOVE <left_deg> <right_deg> <speed>   -> OK | ERR <reason>
//	COLOR                                 -> COLOR <code>
//	DIST                                  -> DIST <mm>
//	GYRO                                  -> GYRO <deg, clockwise positive>
type Bridge struct {
	port    Port
	cfg     BridgeConfig
	mu      sync.Mutex
	pending []byte

	// inflight carries the result of a port read that outlived its request.
	inflight chan readResult
}

type readResult struct {
	data []byte
	err  error
}

// NewBridge wraps an open port.
func NewBridge(port Port, cfg BridgeConfig) (*Bridge, error) {
	if cfg.Speed <= 0 {
		return nil, fmt.Errorf("speed must be positive, got %d", cfg.Speed)
	}
	switch cfg.SensorMode {
	case SensorColor, SensorDistance:
	case "":
		cfg.SensorMode = SensorColor
	default:
		return nil, fmt.Errorf("unknown sensor mode %q (want %s or %s)", cfg.SensorMode, SensorColor, SensorDistance)
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = DefaultBridgeConfig(cfg.Speed).ReplyTimeout
	}
	return &Bridge{port: port, cfg: cfg}, nil
}

// Ports exposes the bridge as the robot collaborators.
func (b *Bridge) Ports() secondary.Robot {
	return secondary.Robot{Mover: b, Sensor: b, Heading: b}
}

// Close closes the underlying port.
func (b *Bridge) Close() error {
	return b.port.Close()
}

// Execute sends one move and blocks until the brick confirms it.
func (b *Bridge) Execute(ctx context.Context, cmd motion.Command) error {
	left, right := wheelDegrees(cmd)
	reply, err := b.request(ctx, fmt.Sprintf("MOVE %d %d %d", left, right, b.cfg.Speed), b.moveTimeout(cmd))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", secondary.ErrMoveFailed, cmd.Kind, err)
	}

	switch {
	case reply == "OK":
		return nil
	case strings.HasPrefix(reply, "ERR"):
		reason := strings.TrimSpace(strings.TrimPrefix(reply, "ERR"))
		return fmt.Errorf("%w: %s: %s", secondary.ErrMoveFailed, cmd.Kind, reason)
	}
	return fmt.Errorf("%w: %s: %w %q", secondary.ErrMoveFailed, cmd.Kind, ErrProtocol, reply)
}

// ReadCell returns the colour code or the distance in millimetres,
// depending on the sensor mode.
func (b *Bridge) ReadCell(ctx context.Context) (int, error) {
	verb := "COLOR"
	if b.cfg.SensorMode == SensorDistance {
		verb = "DIST"
	}
	v, err := b.readValue(ctx, verb)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// ReadHeading returns the gyro angle with counter-clockwise positive.
func (b *Bridge) ReadHeading(ctx context.Context) (float64, error) {
	v, err := b.readValue(ctx, "GYRO")
	if err != nil {
		return 0, err
	}
	// the EV3 gyro counts clockwise
	return -v, nil
}

func (b *Bridge) readValue(ctx context.Context, verb string) (float64, error) {
	reply, err := b.request(ctx, verb, b.cfg.ReplyTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", secondary.ErrSensorRead, strings.ToLower(verb), err)
	}

	fields := strings.Fields(reply)
	if len(fields) != 2 || fields[0] != verb {
		return 0, fmt.Errorf("%w: %w %q", secondary.ErrSensorRead, ErrProtocol, reply)
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s value %q", secondary.ErrSensorRead, strings.ToLower(verb), fields[1])
	}
	return v, nil
}

// request writes one line and waits for one reply line.
func (b *Bridge) request(ctx context.Context, line string, timeout time.Duration) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	// drop anything left over from a reply that timed out
	b.pending = b.pending[:0]
	if b.inflight != nil {
		select {
		case <-b.inflight:
			b.inflight = nil
		default:
		}
	}
	if err := b.port.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush port: %w", err)
	}

	if _, err := b.port.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", line, err)
	}

	return b.readLine(ctx, time.Now().Add(timeout))
}

// readLine collects bytes until a newline. Empty reads (the port's own read
// timeout) are retried until the deadline.
func (b *Bridge) readLine(ctx context.Context, deadline time.Time) (string, error) {
	for {
		if i := bytes.IndexByte(b.pending, '\n'); i >= 0 {
			line := strings.TrimSpace(string(b.pending[:i]))
			b.pending = append(b.pending[:0], b.pending[i+1:]...)
			if line == "" {
				continue
			}
			return line, nil
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}
		if time.Now().After(deadline) {
			return "", errReplyTimeout
		}

		data, err := b.read(ctx, deadline)
		b.pending = append(b.pending, data...)
		if err != nil && !errors.Is(err, io.EOF) {
			if errors.Is(err, errReplyTimeout) || ctx.Err() != nil {
				return "", err
			}
			return "", fmt.Errorf("failed to read reply: %w", err)
		}
	}
}

var errReplyTimeout = errors.New("timed out waiting for reply")

// read waits for one port read, but no longer than the deadline or the
// context allow. A port that blocks keeps its read in flight, and the next
// call picks up that read instead of starting another.
func (b *Bridge) read(ctx context.Context, deadline time.Time) ([]byte, error) {
	if b.inflight == nil {
		ch := make(chan readResult, 1)
		b.inflight = ch
		go func() {
			buf := make([]byte, 64)
			n, err := b.port.Read(buf)
			ch <- readResult{data: buf[:n], err: err}
		}()
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case r := <-b.inflight:
		b.inflight = nil
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, errReplyTimeout
	}
}

// moveTimeout allows for the time the wheels need at the configured speed.
func (b *Bridge) moveTimeout(cmd motion.Command) time.Duration {
	deg := cmd.Magnitude
	if deg < 0 {
		deg = -deg
	}
	return time.Duration(deg*1000/b.cfg.Speed)*time.Millisecond + b.cfg.ReplyTimeout
}

// wheelDegrees splits a command into left and right wheel rotation.
// Turns are tank turns, counter-clockwise when the magnitude is positive.
func wheelDegrees(cmd motion.Command) (left, right int) {
	if cmd.Kind.IsTurn() {
		return -cmd.Magnitude, cmd.Magnitude
	}
	return cmd.Magnitude, cmd.Magnitude
}

var (
	_ secondary.MoveExecutor  = (*Bridge)(nil)
	_ secondary.CellSensor    = (*Bridge)(nil)
	_ secondary.HeadingSensor = (*Bridge)(nil)
)
