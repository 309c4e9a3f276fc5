package si7210

// Range is the bipolar full-scale measurement range.
type Range int

const (
	Range20mT Range = iota
	Range200mT
)

func (r Range) String() string {
	switch r {
	case Range20mT:
		return "20mT"
	case Range200mT:
		return "200mT"
	}
	return "invalid"
}

// MagnetType selects the temperature compensation applied by the AFE.
type MagnetType int

const (
	MagnetNone MagnetType = iota
	MagnetNeodymium
	MagnetCeramic
)

func (m MagnetType) String() string {
	switch m {
	case MagnetNone:
		return "none"
	case MagnetNeodymium:
		return "neodymium"
	case MagnetCeramic:
		return "ceramic"
	}
	return "invalid"
}

type Mode int

const (
	// ModeContinuous runs the AFE with zero idle time between samples.
	ModeContinuous Mode = iota
	// ModeOneBurst is not supported by this driver.
	ModeOneBurst
)

type FilterType int

const (
	FilterNone FilterType = iota
	FilterFIR
	FilterIIR
)

// DefaultAddr is the 7-bit address of the Si7210-B-01 variant.
const DefaultAddr uint16 = 0x31

// Expected content of regID: chip id 0x1, revision B (0x4).
const goodID uint8 = 0x14

const maxBurstSize = 12

const (
	regID         uint8 = 0xC0 // chipid[7:4] revid[3:0]
	regDspSigM    uint8 = 0xC1 // fresh[7] dspsig[14:8]
	regDspSigL    uint8 = 0xC2 // dspsig[7:0]
	regDspSel     uint8 = 0xC3
	regPowerCtrl  uint8 = 0xC4 // meas[7] oneburst[2] stop[1] sleep[0]
	regArAutoInc  uint8 = 0xC5
	regThreshold  uint8 = 0xC6
	regHysteresis uint8 = 0xC7
	regSlTime     uint8 = 0xC8
	regSlCtrl     uint8 = 0xC9 // sl_fast[1] sltimena[0]
	regA0         uint8 = 0xCA
	regA1         uint8 = 0xCB
	regA2         uint8 = 0xCC
	regFilter     uint8 = 0xCD // df_bw[4:1] df_iir[0]
	regA3         uint8 = 0xCE
	regA4         uint8 = 0xCF
	regA5         uint8 = 0xD0
	regOTPAddr    uint8 = 0xE1
	regOTPData    uint8 = 0xE2
	regOTPCtrl    uint8 = 0xE3 // otp_read_en[1] otp_busy[0]
	regTmFg       uint8 = 0xE4
)

const (
	ctrlSleep    uint8 = 0x01
	ctrlStop     uint8 = 0x02
	ctrlOneBurst uint8 = 0x04

	slTimeEna uint8 = 0x01
	slFast    uint8 = 0x02

	otpBusy   uint8 = 0x01
	otpReadEn uint8 = 0x02

	filterIIR uint8 = 0x01
	filterFIR uint8 = 0x00

	freshBit uint8 = 0x80
)

// Offset applied to the 15-bit dspsig value to center it around zero.
const dspSigOffset = 16384
