package si7210

// FieldStrength returns the measured field strength in µT.
func (d *Dev) FieldStrength() (int, error) {
	msb, err := d.readByte(regDspSigM)
	if err != nil {
		return 0, d.wrap(err)
	}
	lsb, err := d.readByte(regDspSigL)
	if err != nil {
		return 0, d.wrap(err)
	}
	return Convert(Reg(msb), Reg(lsb), d.opts.Range), nil
}

// Convert returns the field strength in µT held by the dspsigm and dspsigl
// registers for range r. Unknown ranges convert to 0.
//
// One LSB is 1.25µT on the 20mT range and 12.5µT on the 200mT range. The
// fractional part is computed with integer division and truncates toward
// zero.
func Convert(msb, lsb Reg, r Range) int {
	raw := 256*int(msb.Signal()) + int(lsb) - dspSigOffset

	switch r {
	case Range20mT:
		return raw/4 + raw
	case Range200mT:
		return raw*12 + raw/2
	default:
		return 0
	}
}
