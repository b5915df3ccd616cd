// Command get-version connects to a BLE controller, resets it, and prints
// the manufacturer ID reported by Read_Local_Version_Information.
package main

import (
	"fmt"
	"os"

	"github.com/signbit/lightblue/pkg/lightblue"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Serial port missing")
		os.Exit(1)
	}

	session, err := lightblue.Connect(os.Args[1])
	if err != nil {
		fmt.Printf("Failed to connect to %s.\n", os.Args[1])
		os.Exit(3)
	}
	defer session.Close()

	if err := session.ResetHCI(); err != nil {
		fmt.Println("Failed initialize HCI")
		os.Exit(0)
	}
	fmt.Println("HCI successfully reset on device")

	version, err := session.ReadLocalVersion()
	if err != nil {
		fmt.Println("Failed to read network processor version.")
	} else {
		fmt.Printf("Manufacturer id: %02x\n", version.ManufacturerID)
	}

	fmt.Println("All done; shutting down.")
}
