// Command discover-services connects to a peripheral by address and lists
// its primary GATT services.
package main

import (
	"fmt"
	"os"

	"github.com/signbit/lightblue/internal/devicetable"
	"github.com/signbit/lightblue/internal/vendor"
	"github.com/signbit/lightblue/pkg/gap"
	"github.com/signbit/lightblue/pkg/lightblue"
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
		OnDisconnected: func(device *devicetable.Entry, reason uint8) {
			fmt.Printf("Device disconnected: %v\n", device.Handle())
		},
		OnPrimaryService: func(device *devicetable.Entry, startHandle, endHandle uint16, uuid []byte) {
			fmt.Printf("H: %v   [Start: %04x - End: %04x] -> % x\n", device.Handle(), startHandle, endHandle, uuid)
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

	fmt.Printf("Connected to %s using: %v\n", gap.FormatAddress(peerAddress), device.Handle())

	if err := session.StartServiceDiscovery(device); err != nil {
		fmt.Printf("Service discovery failed: %v\n", err)
	} else {
		fmt.Printf("H: %v   All services discovered\n", device.Handle())
	}

	session.CloseDeviceConnection(device)
}
