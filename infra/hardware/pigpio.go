package hardware

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	corehw "github.com/kilianp07/autopi/core/hardware"
	"github.com/kilianp07/autopi/infra/logger"
)

// pigpiod socket command codes.
const (
	cmdModes = 0
	cmdWrite = 4
	cmdPWM   = 5
	cmdPFS   = 7

	modeOutput = 1
)

var pigpioErrors = map[int32]string{
	-2:  "bad user gpio",
	-3:  "bad gpio",
	-4:  "bad mode",
	-5:  "bad level",
	-8:  "bad dutycycle",
	-41: "not permitted",
	-99: "bad user frequency",
}

// PigpioConfig describes how to reach the pigpio daemon.
type PigpioConfig struct {
	Address   string `json:"address"`
	TimeoutMS int    `json:"timeout_ms"`
}

// SetDefaults applies the daemon's default port and a 2s I/O timeout.
func (c *PigpioConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = "localhost:8888"
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 2000
	}
}

// PigpioDriver talks to pigpiod over its socket interface. Every request
// and response is a 16 byte little-endian frame.
type PigpioDriver struct {
	mu      sync.Mutex
	conn    net.Conn
	timeout time.Duration
	log     logger.Logger
	outputs map[int]bool
	closed  bool
}

var dialPigpio = func(addr string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", addr, timeout)
}

// NewPigpioDriver connects to pigpiod.
func NewPigpioDriver(cfg PigpioConfig) (*PigpioDriver, error) {
	cfg.SetDefaults()
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	conn, err := dialPigpio(cfg.Address, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect pigpiod %s: %w", cfg.Address, err)
	}
	log := logger.New("pigpio")
	log.Infof("connected to pigpiod at %s", cfg.Address)
	return &PigpioDriver{conn: conn, timeout: timeout, log: log, outputs: make(map[int]bool)}, nil
}

func (p *PigpioDriver) command(cmd, p1, p2 uint32) (int32, error) {
	if p.closed {
		return 0, corehw.ErrDriverClosed
	}
	if err := p.conn.SetDeadline(time.Now().Add(p.timeout)); err != nil {
		return 0, err
	}
	var req [16]byte
	binary.LittleEndian.PutUint32(req[0:], cmd)
	binary.LittleEndian.PutUint32(req[4:], p1)
	binary.LittleEndian.PutUint32(req[8:], p2)
	if _, err := p.conn.Write(req[:]); err != nil {
		return 0, fmt.Errorf("pigpio cmd %d: %w", cmd, err)
	}
	var resp [16]byte
	if _, err := io.ReadFull(p.conn, resp[:]); err != nil {
		return 0, fmt.Errorf("pigpio cmd %d: %w", cmd, err)
	}
	res := int32(binary.LittleEndian.Uint32(resp[12:]))
	if res < 0 {
		msg, ok := pigpioErrors[res]
		if !ok {
			msg = "unknown error"
		}
		return res, fmt.Errorf("pigpio cmd %d gpio %d: %s (%d)", cmd, p1, msg, res)
	}
	return res, nil
}

// SetOutput switches pin to output mode on first use, then writes the level.
func (p *PigpioDriver) SetOutput(pin int, high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.outputs[pin] {
		if _, err := p.command(cmdModes, uint32(pin), modeOutput); err != nil {
			return err
		}
		p.outputs[pin] = true
	}
	level := uint32(0)
	if high {
		level = 1
	}
	_, err := p.command(cmdWrite, uint32(pin), level)
	return err
}

func (p *PigpioDriver) SetDutyCycle(pin int, value int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.command(cmdPWM, uint32(pin), uint32(value))
	return err
}

// SetFrequency asks for value Hz. pigpiod picks the closest frequency it
// supports for the current sample rate.
func (p *PigpioDriver) SetFrequency(pin int, value int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	got, err := p.command(cmdPFS, uint32(pin), uint32(value))
	if err != nil {
		return err
	}
	if int(got) != value {
		p.log.Debugf("pin %d: requested %d Hz, pigpiod set %d Hz", pin, value, got)
	}
	return nil
}

func (p *PigpioDriver) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.conn.Close()
}
