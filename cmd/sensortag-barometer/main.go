// Command sensortag-barometer connects to a TI CC2650 SensorTag and
// periodically prints barometric readings until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	session, err := lightblue.Connect(os.Args[1])
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

	if err := sensortag.EnableBarometer(session, device, true); err != nil {
		fmt.Println("Failed to enable barometer")
		return
	}
	fmt.Println("Barometer enabled")

	fmt.Println("Start reading...")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

readLoop:
	for {
		temperatureC, pressurePa, err := sensortag.ReadBarometerData(session, device)
		if err != nil {
			fmt.Println("Failed to read barometer data")
			break
		}

		if temperatureC == 0 && pressurePa == 0 {
			fmt.Println("Barometer is not enabled: reads are all 0s.")
		} else {
			fmt.Printf("Temperature: %.2f degC   Pressure: %.3f kPa\n", temperatureC, float64(pressurePa)/1000.0)
		}

		select {
		case <-sigCh:
			break readLoop
		case <-time.After(10 * time.Second):
		}
	}

	fmt.Println("Interrupted")

	if err := sensortag.EnableBarometer(session, device, false); err != nil {
		fmt.Println("Failed to disable barometer")
		return
	}
	fmt.Println("Barometer disabled")
}
