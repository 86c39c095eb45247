package protocol

import "errors"

// Report message identifiers
const (
	MsgStatsReport = 1
)

// Report flags
const (
	FlagReset     = 1 << 0 // Statistics were reset since the previous report
	FlagStoreFail = 1 << 1 // Persisting this period failed
)

// ErrUnknownMessage is returned for a payload that is not a stats report
var ErrUnknownMessage = errors.New("unknown message id")

// Report is the per-period telemetry sent by the device.
// Floating point values are sent as fixed point integers.
type Report struct {
	ElapsedS      uint32
	DistanceMilli int32  // Distance x1000, same scaling as the stored value
	SpeedCentiKMH uint32 // km/h x100
	AvgCentiKMH   uint32 // km/h x100
	Pulses        uint32 // Pulses counted in the period
	Mode          uint8  // Display mode at the time of the report
	Flags         uint8
}

// Distance returns the distance in the accumulator's units
func (r Report) Distance() float64 {
	return float64(r.DistanceMilli) / 1000.0
}

// SpeedKMH returns the speed in km/h
func (r Report) SpeedKMH() float64 {
	return float64(r.SpeedCentiKMH) / 100.0
}

// AvgKMH returns the average speed in km/h
func (r Report) AvgKMH() float64 {
	return float64(r.AvgCentiKMH) / 100.0
}

// EncodeReport writes r as a framed message
func EncodeReport(output OutputBuffer, seq uint8, r Report) error {
	return EncodeFrame(output, seq, func(output OutputBuffer) {
		EncodeVLQUint(output, MsgStatsReport)
		EncodeVLQUint(output, r.ElapsedS)
		EncodeVLQInt(output, r.DistanceMilli)
		EncodeVLQUint(output, r.SpeedCentiKMH)
		EncodeVLQUint(output, r.AvgCentiKMH)
		EncodeVLQUint(output, r.Pulses)
		EncodeVLQUint(output, uint32(r.Mode))
		EncodeVLQUint(output, uint32(r.Flags))
	})
}

// DecodeReport parses a frame payload written by EncodeReport
func DecodeReport(payload []byte) (Report, error) {
	data := payload
	var r Report

	id, err := DecodeVLQUint(&data)
	if err != nil {
		return r, err
	}
	if id != MsgStatsReport {
		return r, ErrUnknownMessage
	}

	if r.ElapsedS, err = DecodeVLQUint(&data); err != nil {
		return r, err
	}
	if r.DistanceMilli, err = DecodeVLQInt(&data); err != nil {
		return r, err
	}
	if r.SpeedCentiKMH, err = DecodeVLQUint(&data); err != nil {
		return r, err
	}
	if r.AvgCentiKMH, err = DecodeVLQUint(&data); err != nil {
		return r, err
	}
	if r.Pulses, err = DecodeVLQUint(&data); err != nil {
		return r, err
	}

	mode, err := DecodeVLQUint(&data)
	if err != nil {
		return r, err
	}
	flags, err := DecodeVLQUint(&data)
	if err != nil {
		return r, err
	}
	r.Mode = uint8(mode)
	r.Flags = uint8(flags)
	return r, nil
}
