// Package sensortag implements the TI CC2650 SensorTag barometer/IMU
// helpers (sensor_tag.c), built entirely on the public GATT read/write
// API — it exercises pkg/lightblue's ReadCharValue/WriteCharValue path
// end to end without needing any sensor-specific controller support.
package sensortag

import "github.com/signbit/lightblue/pkg/lightblue"

// Characteristic attribute handles, from the CC2650 SensorTag firmware
// (sensor_tag.c).
const (
	handleBarometerData   uint16 = 0x31
	handleBarometerConfig uint16 = 0x34
	handleIMUData         uint16 = 0x39
	handleIMUNotify       uint16 = 0x3A
	handleIMUConfig       uint16 = 0x3C
)

// ThreeDVector is a raw gyroscope/accelerometer/magnetometer sample.
type ThreeDVector struct {
	X, Y, Z int16
}

// EnableBarometer turns the barometer sensor on or off.
func EnableBarometer(s *lightblue.Session, d *lightblue.Device, enable bool) error {
	var v byte
	if enable {
		v = 1
	}
	return s.WriteCharValue(d, handleBarometerConfig, []byte{v})
}

// ReadBarometerData reads the current temperature and pressure. The wire
// format packs a 24-bit little-endian scaled temperature followed by a
// 24-bit little-endian pressure.
func ReadBarometerData(s *lightblue.Session, d *lightblue.Device) (temperatureC float32, pressurePa uint32, err error) {
	var raw [6]byte
	n, err := s.ReadCharValue(d, handleBarometerData, raw[:])
	if err != nil {
		return 0, 0, err
	}
	if n < 6 {
		return 0, 0, lightblue.ErrFailure
	}

	scaledTemp := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16
	pressurePa = uint32(raw[3]) | uint32(raw[4])<<8 | uint32(raw[5])<<16
	temperatureC = float32(scaledTemp) / 100.0

	return temperatureC, pressurePa, nil
}

// EnableIMU turns the IMU sensor on or off. The enable mask sets all
// gyro/accel/mag axes when enable is true, matching sensor_tag.c's
// {0xFF, 0x00} argument.
func EnableIMU(s *lightblue.Session, d *lightblue.Device, enable bool) error {
	arg := [2]byte{}
	if enable {
		arg[0] = 0xFF
	}
	return s.WriteCharValue(d, handleIMUConfig, arg[:])
}

// EnableIMUNotifications enables or disables IMU notification delivery.
func EnableIMUNotifications(s *lightblue.Session, d *lightblue.Device, enable bool) error {
	var v byte
	if enable {
		v = 1
	}
	return s.WriteCharValue(d, handleIMUNotify, []byte{v, 0})
}

// ReadIMUData reads gyroscope, accelerometer, and magnetometer samples in
// one 18-byte characteristic read.
func ReadIMUData(s *lightblue.Session, d *lightblue.Device) (gyro, accel, mag ThreeDVector, err error) {
	var raw [18]byte
	n, err := s.ReadCharValue(d, handleIMUData, raw[:])
	if err != nil {
		return ThreeDVector{}, ThreeDVector{}, ThreeDVector{}, err
	}
	if n < 18 {
		return ThreeDVector{}, ThreeDVector{}, ThreeDVector{}, lightblue.ErrFailure
	}

	gyro = ThreeDVector{
		X: le16(raw[0], raw[1]),
		Y: le16(raw[2], raw[3]),
		Z: le16(raw[4], raw[5]),
	}
	accel = ThreeDVector{
		X: le16(raw[6], raw[7]),
		Y: le16(raw[8], raw[9]),
		Z: le16(raw[10], raw[11]),
	}
	mag = ThreeDVector{
		X: le16(raw[12], raw[13]),
		Y: le16(raw[14], raw[15]),
		Z: le16(raw[16], raw[17]),
	}
	return gyro, accel, mag, nil
}

func le16(lo, hi byte) int16 {
	return int16(uint16(lo) | uint16(hi)<<8)
}
