package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/signbit/lightblue/pkg/gap"
	"github.com/signbit/lightblue/pkg/lightblue"
	"github.com/signbit/lightblue/internal/vendor"
)

var scanDuration time.Duration

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for nearby BLE advertisers",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 5*time.Second, "scan duration")
}

func runScan(cmd *cobra.Command, args []string) error {
	port, err := cmd.Flags().GetString("port")
	if err != nil {
		return err
	}

	found := color.New(color.FgGreen)

	callbacks := &vendor.Callbacks{
		OnAdvertisement: func(address [6]byte, rssi int8, data []byte) {
			elements := gap.DecodeAdvertisingData(data)
			name, _ := gap.LocalName(elements)
			found.Printf("%s  rssi=%d  %s\n", gap.FormatAddress(address), rssi, name)
		},
	}

	session, err := lightblue.Connect(port, lightblue.WithCallbacks(callbacks))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", port, err)
	}
	defer session.Close()

	if err := session.InitializeHCI(); err != nil {
		return fmt.Errorf("initialize HCI: %w", err)
	}
	if err := session.ConfigureAsCentral(); err != nil {
		return fmt.Errorf("configure as central: %w", err)
	}
	if err := session.StartDeviceDiscovery(); err != nil {
		return fmt.Errorf("start discovery: %w", err)
	}

	time.Sleep(scanDuration)

	return session.StopDeviceDiscovery()
}
