// Package connutil wires command line flags and config files to a plx
// session.
package connutil

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gotmc/plx"
	"gopkg.in/yaml.v3"
)

// Conn holds the connection settings of a command line tool. Field values set
// before AddFlags become the flag defaults.
type Conn struct {
	Kind         string        `yaml:"kind"`
	SerialNumber string        `yaml:"serial_number"`
	Port         string        `yaml:"port"`
	BaudRate     int           `yaml:"baud_rate"`
	Host         string        `yaml:"host"`
	TCPPort      int           `yaml:"tcp_port"`
	Timeout      time.Duration `yaml:"timeout"`
	EOT          string        `yaml:"eot"`
	LogLevel     string        `yaml:"log_level"`
	// Addr is the GPIB primary address selected after connecting; -1 leaves
	// the adapter's current address alone.
	Addr int `yaml:"addr"`
	// Configure sends the default controller configuration after connecting.
	Configure bool `yaml:"configure"`
}

// Defaults returns the settings used when neither flags nor a config file
// override them.
func Defaults() Conn {
	return Conn{
		Kind:     "usb",
		BaudRate: 9600,
		Timeout:  500 * time.Millisecond,
		EOT:      `\r\n`,
		LogLevel: "warn",
		Addr:     -1,
	}
}

// LoadConfig reads YAML settings from path on top of Defaults.
func LoadConfig(path string) (Conn, error) {
	c := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parsing %s: %w", path, err)
	}
	return c, nil
}

// AddFlags is to be called before fs.Parse.
func (c *Conn) AddFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Kind, "kind", c.Kind, "transport: usb, tcp or debug")
	fs.StringVar(&c.SerialNumber, "serial", c.SerialNumber, "USB serial number of the adapter (usb only)")
	fs.StringVar(&c.Port, "port", c.Port, "serial device path, overrides -serial (usb only)")
	fs.IntVar(&c.BaudRate, "baud", c.BaudRate, "baud rate (usb only)")
	fs.StringVar(&c.Host, "host", c.Host, "adapter IP address or name (tcp only)")
	fs.IntVar(&c.TCPPort, "tcp-port", c.TCPPort, "adapter TCP port (tcp only, 0 for 1234)")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "transport read timeout")
	fs.StringVar(&c.EOT, "eot", c.EOT, `instrument payload terminator, escapes such as \r\n allowed`)
	fs.StringVar(&c.LogLevel, "log", c.LogLevel, "log level: debug, info, warn or error")
	fs.IntVar(&c.Addr, "addr", c.Addr, "GPIB primary address to select, -1 to keep the current one")
	fs.BoolVar(&c.Configure, "configure", c.Configure, "send the default controller configuration after connecting")
}

// Config converts the settings to a plx.Config.
func (c *Conn) Config() (plx.Config, error) {
	eot, err := Unescape(c.EOT)
	if err != nil {
		return plx.Config{}, fmt.Errorf("-eot: %w", err)
	}
	return plx.Config{
		Kind:         c.Kind,
		SerialNumber: c.SerialNumber,
		Port:         c.Port,
		BaudRate:     c.BaudRate,
		Host:         c.Host,
		TCPPort:      c.TCPPort,
		ReadTimeout:  c.Timeout,
		EOT:          eot,
		LogLevel:     c.LogLevel,
	}, nil
}

// Setup is to be called after flags are parsed. It opens the session,
// optionally configures the controller and selects the GPIB address. The
// returned cleanup returns the instrument to local control and closes the
// transport.
func (c *Conn) Setup(opts ...plx.SessionOption) (s *plx.Session, cleanup func() error, err error) {
	nocleanup := func() error { return nil }

	cfg, err := c.Config()
	if err != nil {
		return nil, nocleanup, err
	}
	s, err = plx.Open(cfg, opts...)
	if err != nil {
		return nil, nocleanup, err
	}

	if c.Configure {
		if err := s.Configure(plx.DefaultControllerConfig()); err != nil {
			s.Close()
			return nil, nocleanup, err
		}
	}
	if c.Addr >= 0 {
		if err := s.SetAddress(c.Addr); err != nil {
			s.Close()
			return nil, nocleanup, err
		}
	}

	cleanup = func() error {
		if c.Addr < 0 {
			return s.Close()
		}
		return s.CloseLocal()
	}
	return s, cleanup, nil
}
