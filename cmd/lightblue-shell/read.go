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

var readCmd = &cobra.Command{
	Use:   "read <address> <attribute-handle>",
	Short: "Read a GATT characteristic value",
	Args:  cobra.ExactArgs(2),
	RunE:  runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
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

	buf := make([]byte, 512)
	n, err := session.ReadCharValue(device, uint16(attributeHandle), buf)
	if err != nil {
		return fmt.Errorf("read char value: %w", err)
	}

	color.New(color.FgCyan).Println(hex.EncodeToString(buf[:n]))
	return nil
}
