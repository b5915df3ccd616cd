// Command sensortag-imu connects to a TI CC2650 SensorTag, enables IMU
// notifications, and prints each sample received until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signbit/lightblue/internal/devicetable"
	"github.com/signbit/lightblue/internal/vendor"
	"github.com/signbit/lightblue/pkg/gap"
	"github.com/signbit/lightblue/pkg/lightblue"
	"github.com/signbit/lightblue/pkg/sensortag"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Serial port missing")
		os.Exit(1)
	}
	if len(os.Args) < 3 {
		fmt.Println("Bluetooth address missing")
		os.Exit(1)
	}

	peerAddress, err := gap.ParseAddress(os.Args[2])
	if err != nil {
		fmt.Printf("Failed to parse input address: %s\n", os.Args[2])
		os.Exit(1)
	}

	callbacks := &vendor.Callbacks{
		OnNotification: func(device *devicetable.Entry, attributeHandle uint16, status uint8, value []byte) {
			fmt.Printf("Attr: %04x  Status: %02x  % x\n", attributeHandle, status, value)
		},
	}

	session, err := lightblue.Connect(os.Args[1], lightblue.WithCallbacks(callbacks))
	if err != nil {
		fmt.Printf("Failed to connect to %s.\n", os.Args[1])
		os.Exit(3)
	}
	defer session.Close()

	if err := session.InitializeHCI(); err != nil {
		return
	}
	if err := session.ConfigureAsCentral(); err != nil {
		return
	}

	device, err := session.OpenDeviceConnection(peerAddress)
	if err != nil {
		return
	}
	fmt.Printf("Connected to %s on %v\n", gap.FormatAddress(peerAddress), device.Handle())
	defer func() {
		time.Sleep(time.Second)
		session.CloseDeviceConnection(device)
	}()

	if err := sensortag.EnableIMU(session, device, true); err != nil {
		fmt.Println("Failed to enable IMU")
		return
	}
	fmt.Println("IMU enabled")

	sensortag.EnableIMUNotifications(session, device, true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	sensortag.EnableIMUNotifications(session, device, false)

	if err := sensortag.EnableIMU(session, device, false); err != nil {
		fmt.Println("Failed to disable IMU")
		return
	}
	fmt.Println("IMU disabled")
}
