package si7210

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

var (
	// ErrInvalidRange is returned for a range/magnet pair without calibration
	// coefficients.
	ErrInvalidRange = errors.New("invalid range and magnet combination")

	// ErrInvalidBurstSize is returned when a FIR or IIR filter burst size is
	// outside 0-12. The filter is disabled when this happens.
	ErrInvalidBurstSize = errors.New("filter burst size must be 0-12")

	// ErrInvalidFilter is returned for an unknown filter type.
	ErrInvalidFilter = errors.New("invalid filter type")

	// ErrUnsupportedMode is returned for any mode other than ModeContinuous.
	ErrUnsupportedMode = errors.New("unsupported mode")
)

// Filter configures the digital filter. The number of averaged samples is
// 2^BurstSize.
type Filter struct {
	Type      FilterType
	BurstSize int
}

// Opts holds the sensor configuration applied by New and Wakeup.
type Opts struct {
	// Addr is the 7-bit I²C address. Zero selects DefaultAddr.
	Addr   uint16
	Range  Range
	Magnet MagnetType
	Mode   Mode
	Filter Filter
}

func DefaultOptions() *Opts {
	return &Opts{
		Addr:   DefaultAddr,
		Range:  Range20mT,
		Magnet: MagnetNone,
		Mode:   ModeContinuous,
	}
}

// PrecisionOptions averages 4096 samples on the 20mT range with neodymium
// compensation.
func PrecisionOptions() *Opts {
	return &Opts{
		Addr:   DefaultAddr,
		Range:  Range20mT,
		Magnet: MagnetNeodymium,
		Mode:   ModeContinuous,
		Filter: Filter{Type: FilterFIR, BurstSize: 12},
	}
}

// New returns a handle to an Si7210 on b and applies opts to the chip.
//
// The bus is not owned by Dev; other devices may share it and the caller
// closes it. Access to a shared bus must be serialized by the caller.
func New(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	d := &Dev{
		opts: *opts,
		name: "si7210",
	}
	if d.opts.Addr == 0 {
		d.opts.Addr = DefaultAddr
	}
	d.d = &i2c.Dev{Bus: b, Addr: d.opts.Addr}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Dev is a handle to an Si7210 hall effect sensor.
//
// Dev performs no locking.
type Dev struct {
	d    conn.Conn
	opts Opts
	name string
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%s}", d.name, d.d)
}

// Opts returns the configuration last pushed to the chip.
func (d *Dev) Opts() Opts {
	return d.opts
}

// Addr8 returns the 8-bit bus address, the 7-bit address shifted left by the
// R/W bit.
func (d *Dev) Addr8() uint8 {
	return uint8(d.opts.Addr << 1)
}

// Halt puts the sensor to sleep.
//
// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	return d.Sleep()
}

// init pushes mode, range and filter to the chip, in that order. Every step
// is attempted; the failures are returned together.
func (d *Dev) init() error {
	err := d.SetMode(d.opts.Mode)
	err = multierr.Append(err, d.SetRange(d.opts.Range, d.opts.Magnet))
	return multierr.Append(err, d.SetFilter(d.opts.Filter))
}

// ReadRegister reads a single register.
func (d *Dev) ReadRegister(reg uint8) (Reg, error) {
	v, err := d.readByte(reg)
	if err != nil {
		return 0, d.wrap(err)
	}
	return Reg(v), nil
}

// WriteRegister writes a single register.
func (d *Dev) WriteRegister(reg uint8, v Reg) error {
	if err := d.writeReg(reg, uint8(v)); err != nil {
		return d.wrap(err)
	}
	return nil
}

// ChipID returns the chip id, 0x1 for all Si7210 parts.
func (d *Dev) ChipID() (uint8, error) {
	r, err := d.ReadRegister(regID)
	if err != nil {
		return 0, err
	}
	return r.ChipID(), nil
}

// RevID returns the revision id, 0x4 for revision B.
func (d *Dev) RevID() (uint8, error) {
	r, err := d.ReadRegister(regID)
	if err != nil {
		return 0, err
	}
	return r.RevID(), nil
}

// CheckGood reports whether the sensor responds with the expected chip and
// revision id.
func (d *Dev) CheckGood() (bool, error) {
	r, err := d.ReadRegister(regID)
	if err != nil {
		return false, err
	}
	return uint8(r) == goodID, nil
}

// SetMode sets the conversion mode. Only ModeContinuous is supported.
func (d *Dev) SetMode(m Mode) error {
	d.opts.Mode = m
	if m != ModeContinuous {
		return d.wrap(fmt.Errorf("%w: %d", ErrUnsupportedMode, m))
	}

	// sl_fast with sl_time 0 overrides the idle counter: zero idle time.
	if err := d.update(regSlCtrl, slTimeEna, slFast); err != nil {
		return d.wrap(err)
	}
	if err := d.writeReg(regSlTime, 0); err != nil {
		return d.wrap(err)
	}
	// Clearing stop and sleep starts the measurements.
	if err := d.update(regPowerCtrl, ctrlStop|ctrlSleep, 0); err != nil {
		return d.wrap(err)
	}
	return nil
}

// Sleep stops the AFE and puts the sensor in its lowest power state.
func (d *Dev) Sleep() error {
	if err := d.update(regSlCtrl, slTimeEna, 0); err != nil {
		return d.wrap(err)
	}
	if err := d.update(regPowerCtrl, ctrlOneBurst|ctrlStop|ctrlSleep, ctrlSleep); err != nil {
		return d.wrap(err)
	}
	return nil
}

// Wakeup wakes the sensor and pushes the saved configuration again. A step
// that fails does not prevent the following ones.
func (d *Dev) Wakeup() error {
	// Any transaction addressed to the chip wakes it up.
	if err := d.d.Tx([]byte{regID}, nil); err != nil {
		return d.wrap(err)
	}
	return d.init()
}

// SetFilter configures the digital filter.
//
// A FIR or IIR filter with a burst size outside 0-12 disables filtering and
// returns ErrInvalidBurstSize; the disabled filter is what Opts reports
// afterwards.
func (d *Dev) SetFilter(f Filter) error {
	switch f.Type {
	case FilterNone, FilterFIR, FilterIIR:
	default:
		return d.wrap(fmt.Errorf("%w: %d", ErrInvalidFilter, f.Type))
	}

	r, ok := filterReg(f)
	if ok {
		d.opts.Filter = f
	} else {
		d.opts.Filter = Filter{}
	}
	if err := d.writeReg(regFilter, uint8(r)); err != nil {
		return d.wrap(err)
	}
	if !ok {
		return d.wrap(fmt.Errorf("%w: got %d", ErrInvalidBurstSize, f.BurstSize))
	}
	return nil
}

// readReg reads len(b) bytes starting at reg with a repeated start between
// the address and data phases. b is left untouched on failure.
func (d *Dev) readReg(reg uint8, b []byte) error {
	read := make([]byte, len(b))
	if err := d.d.Tx([]byte{reg}, read); err != nil {
		return err
	}
	copy(b, read)
	return nil
}

func (d *Dev) readByte(reg uint8) (uint8, error) {
	var b [1]byte
	err := d.readReg(reg, b[:])
	return b[0], err
}

func (d *Dev) writeReg(reg, v uint8) error {
	return d.d.Tx([]byte{reg, v}, nil)
}

// update does a read-modify-write of reg.
func (d *Dev) update(reg, clr, set uint8) error {
	v, err := d.readByte(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, uint8(Reg(v).update(clr, set)))
}

func (d *Dev) wrap(err error) error {
	return fmt.Errorf("%s: %w", d.name, err)
}

var _ conn.Resource = &Dev{}
