package si7210

import "fmt"

// Reg is the content of one 8-bit Si7210 register.
//
// The accessors decode the bitfields of the register they are named after;
// calling them on the content of another register is meaningless.
type Reg uint8

// ChipID returns chipid, bits 7:4 of the identity register.
func (r Reg) ChipID() uint8 {
	return uint8(r) >> 4
}

// RevID returns revid, bits 3:0 of the identity register.
func (r Reg) RevID() uint8 {
	return uint8(r) & 0x0F
}

// Fresh reports whether dspsigm holds a sample that was not read yet.
func (r Reg) Fresh() bool {
	return uint8(r)&freshBit != 0
}

// Signal returns dspsigm with the fresh bit cleared.
func (r Reg) Signal() uint8 {
	return uint8(r) &^ freshBit
}

// OTPBusy reports the read-only busy flag of the OTP control register.
func (r Reg) OTPBusy() bool {
	return uint8(r)&otpBusy != 0
}

// Sleeping reports whether the power control register requests sleep.
func (r Reg) Sleeping() bool {
	return uint8(r)&ctrlSleep != 0
}

// Stopped reports whether the power control register holds the AFE stopped.
func (r Reg) Stopped() bool {
	return uint8(r)&ctrlStop != 0
}

// FilterType decodes df_iir of the filter register. A zero register reads as
// FilterNone.
func (r Reg) FilterType() FilterType {
	switch {
	case r == 0:
		return FilterNone
	case uint8(r)&filterIIR != 0:
		return FilterIIR
	default:
		return FilterFIR
	}
}

// BurstSize decodes df_bw of the filter register.
func (r Reg) BurstSize() int {
	return int(uint8(r)>>1) & 0x0F
}

// update clears the bits in clr then sets the bits in set.
func (r Reg) update(clr, set uint8) Reg {
	return Reg((uint8(r) &^ clr) | set)
}

// String formats the register as eight binary digits.
func (r Reg) String() string {
	return fmt.Sprintf("%08b", uint8(r))
}

// filterReg encodes f for the filter register. ok is false when the burst
// size is out of range.
func filterReg(f Filter) (r Reg, ok bool) {
	if f.Type == FilterNone {
		return 0, true
	}
	if f.BurstSize < 0 || f.BurstSize > maxBurstSize {
		return 0, false
	}
	t := filterFIR
	if f.Type == FilterIIR {
		t = filterIIR
	}
	return Reg(uint8(f.BurstSize)<<1 | t), true
}
