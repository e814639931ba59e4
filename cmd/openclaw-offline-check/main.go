package main

import "github.com/daxiondi/openclaw-desktop/cmd/openclaw-offline-check/cmd"

func main() {
	cmd.Execute()
}
