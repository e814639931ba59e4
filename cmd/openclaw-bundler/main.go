package main

import "github.com/daxiondi/openclaw-desktop/cmd/openclaw-bundler/cmd"

func main() {
	cmd.Execute()
}
