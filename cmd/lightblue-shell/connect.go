package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/signbit/lightblue/internal/devicetable"
	"github.com/signbit/lightblue/internal/vendor"
	"github.com/signbit/lightblue/pkg/gap"
	"github.com/signbit/lightblue/pkg/lightblue"
)

var connectCmd = &cobra.Command{
	Use:   "connect <address>",
	Short: "Connect to a device and list its primary services",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	port, err := cmd.Flags().GetString("port")
	if err != nil {
		return err
	}

	address, err := gap.ParseAddress(args[0])
	if err != nil {
		return err
	}

	callbacks := &vendor.Callbacks{
		OnPrimaryService: func(_ *devicetable.Entry, startHandle, endHandle uint16, uuid []byte) {
			fmt.Printf("service: start=%04x end=%04x uuid=% x\n", startHandle, endHandle, uuid)
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

	device, err := session.OpenDeviceConnection(address)
	if err != nil {
		return fmt.Errorf("open device connection: %w", err)
	}
	defer session.CloseDeviceConnection(device)

	bold := color.New(color.Bold)
	bold.Printf("connected: handle=%v\n", device.Handle())

	if err := session.StartServiceDiscovery(device); err != nil {
		return fmt.Errorf("service discovery: %w", err)
	}

	return nil
}
