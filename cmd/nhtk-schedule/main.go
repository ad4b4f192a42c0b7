package main

import (
	"nhtk-schedule/cmd/nhtk-schedule/commands"
	"nhtk-schedule/pkg/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
