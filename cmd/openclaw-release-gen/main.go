package main

import "github.com/daxiondi/openclaw-desktop/cmd/openclaw-release-gen/cmd"

func main() {
	cmd.Execute()
}
