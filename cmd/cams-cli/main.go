package main

import (
	"cams-catalog/cmd/cams-cli/commands"
	"cams-catalog/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
