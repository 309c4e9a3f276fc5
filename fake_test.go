package si7210

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

var errNack = errors.New("nack")

// fakeChip simulates the register file and OTP of an Si7210.
type fakeChip struct {
	regs  [256]uint8
	otp   [256]uint8
	nack  map[uint8]bool
	wakes int
}

func newFakeChip() *fakeChip {
	c := &fakeChip{nack: map[uint8]bool{}}
	c.regs[regID] = goodID
	c.regs[regPowerCtrl] = ctrlStop
	c.regs[regSlCtrl] = slTimeEna
	c.regs[regSlTime] = 0x10
	for i := range c.otp {
		c.otp[i] = uint8(i) ^ 0xA5
	}
	return c
}

func (c *fakeChip) String() string {
	return "fake"
}

func (c *fakeChip) SetSpeed(f physic.Frequency) error {
	return nil
}

func (c *fakeChip) Tx(addr uint16, w, r []byte) error {
	if addr != DefaultAddr || len(w) == 0 {
		return errNack
	}
	reg := w[0]
	if c.nack[reg] {
		return errNack
	}
	switch {
	case len(w) == 1 && len(r) == 0:
		c.wakes++
	case len(w) == 2 && len(r) == 0:
		c.write(reg, w[1])
	case len(w) == 1:
		for i := range r {
			r[i] = c.regs[reg+uint8(i)]
		}
	default:
		return fmt.Errorf("unexpected transaction w=%v r=%d", w, len(r))
	}
	return nil
}

func (c *fakeChip) write(reg, v uint8) {
	if reg == regOTPCtrl {
		v &^= otpBusy
		if v&otpReadEn != 0 {
			c.regs[regOTPData] = c.otp[c.regs[regOTPAddr]]
		}
	}
	c.regs[reg] = v
}

// newTestDev returns a Dev on a simulated chip. The transactions issued by
// New are dropped from the recording.
func newTestDev(t *testing.T, opts *Opts) (*Dev, *fakeChip, *i2ctest.Record) {
	t.Helper()
	chip := newFakeChip()
	rec := &i2ctest.Record{Bus: chip}
	d, err := New(rec, opts)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	rec.Ops = nil
	return d, chip, rec
}

func write(reg, v uint8) i2ctest.IO {
	return i2ctest.IO{Addr: DefaultAddr, W: []byte{reg, v}}
}

func read(reg, v uint8) i2ctest.IO {
	return i2ctest.IO{Addr: DefaultAddr, W: []byte{reg}, R: []byte{v}}
}

func checkOps(t *testing.T, got, want []i2ctest.IO) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d transactions, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i].Addr != want[i].Addr || !bytes.Equal(got[i].W, want[i].W) || !bytes.Equal(got[i].R, want[i].R) {
			t.Errorf("transaction %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
