package si7210

import "fmt"

// Register is the address and content of a register.
type Register struct {
	Addr  uint8
	Value Reg
}

func (r Register) String() string {
	return fmt.Sprintf("0x%X: %s", r.Addr, r.Value)
}

// RegisterInfo describes a mapped I²C register.
type RegisterInfo struct {
	Addr     uint8
	Name     string
	Writable bool
}

var registerMap = [...]RegisterInfo{
	{regID, "chipid/revid", false},
	{regDspSigM, "dspsigm", false},
	{regDspSigL, "dspsigl", false},
	{regDspSel, "dspsigsel", true},
	{regPowerCtrl, "power_ctrl", true},
	{regArAutoInc, "arautoinc", true},
	{regThreshold, "sw_op", true},
	{regHysteresis, "sw_hyst", true},
	{regSlTime, "sltime", true},
	{regSlCtrl, "sl_fast/sltimena", true},
	{regA0, "a0", true},
	{regA1, "a1", true},
	{regA2, "a2", true},
	{regFilter, "df_bw/df_iir", true},
	{regA3, "a3", true},
	{regA4, "a4", true},
	{regA5, "a5", true},
	{regOTPAddr, "otp_addr", true},
	{regOTPData, "otp_data", false},
	{regOTPCtrl, "otp_ctrl", true},
	{regTmFg, "tm_fg", true},
}

// RegisterMap returns the mapped registers, 0xC0-0xD0 then 0xE1-0xE4.
func RegisterMap() []RegisterInfo {
	return append([]RegisterInfo(nil), registerMap[:]...)
}

// Writable reports whether addr is a mapped register that accepts writes.
func Writable(addr uint8) bool {
	for _, r := range registerMap {
		if r.Addr == addr {
			return r.Writable
		}
	}
	return false
}

// MemDump reads every mapped register in RegisterMap order.
func (d *Dev) MemDump() ([]Register, error) {
	regs := make([]Register, 0, len(registerMap))
	for _, info := range registerMap {
		v, err := d.readByte(info.Addr)
		if err != nil {
			return nil, d.wrap(fmt.Errorf("dump 0x%02X: %w", info.Addr, err))
		}
		regs = append(regs, Register{Addr: info.Addr, Value: Reg(v)})
	}
	return regs, nil
}
