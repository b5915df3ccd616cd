// Command lightblue-shell is an interactive CLI over pkg/lightblue: scan
// for nearby devices, connect to one by address, and read/write GATT
// characteristics, with colorized output.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lightblue-shell",
	Short: "Interactive shell for the lightblue BLE host library",
	Long: `lightblue-shell drives a BLE network processor over a serial port:

- scan: discover nearby advertisers
- connect: open a device connection and list its primary services
- read: read a GATT characteristic value
- write: write a GATT characteristic value`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().String("port", "", "serial port (e.g. /dev/ttyUSB0)")
	rootCmd.MarkPersistentFlagRequired("port")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
}
