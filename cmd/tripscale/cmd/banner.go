package cmd

import (
	"fmt"
)

// Version is the service version reported at startup.
const Version = "1.0.0"

const banner = `
  _____     _      ____            _
 |_   _| __(_)_ __/ ___|  ___ __ _| | ___
   | || '__| | '_ \___ \ / __/ _` + "`" + ` | |/ _ \
   | || |  | | |_) |__) | (_| (_| | |  __/
   |_||_|  |_| .__/____/ \___\__,_|_|\___|
             |_|
`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Travel Planning Service - Version %s\x1b[0m\n\n", Version)
}
