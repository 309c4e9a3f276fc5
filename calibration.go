package si7210

import (
	"fmt"

	"go.uber.org/multierr"
)

type calKey struct {
	r Range
	m MagnetType
}

// otpBase maps a range and magnet pair to the first of six contiguous OTP
// addresses holding its A0-A5 coefficients.
var otpBase = map[calKey]uint8{
	{Range20mT, MagnetNone}:       0x21,
	{Range200mT, MagnetNone}:      0x27,
	{Range20mT, MagnetNeodymium}:  0x2D,
	{Range200mT, MagnetNeodymium}: 0x33,
	{Range20mT, MagnetCeramic}:    0x39,
	{Range200mT, MagnetCeramic}:   0x3F,
}

// AFE coefficient registers, in write order. 0xCD between A2 and A3 is the
// filter register.
var coefRegs = [...]uint8{regA0, regA1, regA2, regA3, regA4, regA5}

// SetRange sets the measurement range and the magnet temperature
// compensation by copying the matching factory coefficients from OTP into
// the AFE.
//
// Every coefficient is attempted. A coefficient whose OTP read fails is not
// written; all failures are returned together. Nothing is rolled back.
func (d *Dev) SetRange(r Range, m MagnetType) error {
	base, ok := otpBase[calKey{r, m}]
	if !ok {
		return d.wrap(fmt.Errorf("%w: %s/%s", ErrInvalidRange, r, m))
	}
	d.opts.Range = r
	d.opts.Magnet = m

	var errs error
	for i, reg := range coefRegs {
		addr := base + uint8(i)
		v, err := d.readOTP(addr)
		if err == nil {
			err = d.writeReg(reg, v)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("A%d from otp 0x%02X: %w", i, addr, err))
		}
	}
	if errs != nil {
		return d.wrap(errs)
	}
	return nil
}

func (d *Dev) readOTP(addr uint8) (uint8, error) {
	if err := d.writeReg(regOTPAddr, addr); err != nil {
		return 0, err
	}
	if err := d.writeReg(regOTPCtrl, otpReadEn); err != nil {
		return 0, err
	}
	return d.readByte(regOTPData)
}
