// Package serial bridges the ports to a robot brick that speaks a line
// protocol over a serial link.
package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is a serial connection. Tests substitute an in-memory fake.
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	Baud int

	// Read timeout in milliseconds, must be positive
	ReadTimeout int
}

// DefaultConfig returns the settings the brick firmware ships with.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// NativePort wraps the tarm/serial implementation
type NativePort struct {
	port *serial.Port
}

// Open opens a native serial port
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Device == "" {
		return nil, fmt.Errorf("no serial device configured")
	}
	if cfg.ReadTimeout <= 0 {
		return nil, fmt.Errorf("read timeout must be positive, got %dms", cfg.ReadTimeout)
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &NativePort{port: port}, nil
}

func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the serial port
func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Flush discards unread input so a stale reply cannot be taken for the next one.
func (p *NativePort) Flush() error {
	return p.port.Flush()
}
