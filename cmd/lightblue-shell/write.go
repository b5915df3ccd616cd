package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/signbit/lightblue/pkg/gap"
	"github.com/signbit/lightblue/pkg/lightblue"
)

var writeCmd = &cobra.Command{
	Use:   "write <address> <attribute-handle> <hex-value>",
	Short: "Write a GATT characteristic value",
	Args:  cobra.ExactArgs(3),
	RunE:  runWrite,
}

func runWrite(cmd *cobra.Command, args []string) error {
	port, err := cmd.Flags().GetString("port")
	if err != nil {
		return err
	}

	address, err := gap.ParseAddress(args[0])
	if err != nil {
		return err
	}

	attributeHandle, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return fmt.Errorf("invalid attribute handle %q: %w", args[1], err)
	}

	value, err := hex.DecodeString(args[2])
	if err != nil {
		return fmt.Errorf("invalid hex value %q: %w", args[2], err)
	}

	session, err := lightblue.Connect(port)
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

	if err := session.WriteCharValue(device, uint16(attributeHandle), value); err != nil {
		return fmt.Errorf("write char value: %w", err)
	}

	color.New(color.FgGreen).Println("ok")
	return nil
}
