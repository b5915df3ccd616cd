// Command discover-devices scans for nearby BLE advertisers and prints
// each one as it's observed, until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

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

	callbacks := &vendor.Callbacks{
		OnAdvertisement: func(address [6]byte, rssi int8, data []byte) {
			fmt.Printf("Device found: %s\n", gap.FormatAddress(address))
			fmt.Printf("   RSSI: %d\n", rssi)
			fmt.Print("   Data:")
			elements := gap.DecodeAdvertisingData(data)
			if name, ok := gap.LocalName(elements); ok {
				fmt.Printf(" name=%q", name)
			}
			fmt.Println()
		},
		OnDeviceDiscoveryComplete: func() {
			fmt.Println("Discovery complete.")
		},
		OnDisconnected: func(device *devicetable.Entry, reason uint8) {},
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
	if err := session.StartDeviceDiscovery(); err != nil {
		return
	}

	fmt.Println("Waiting for events. Press Ctrl-C to quit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
