package main

import "github.com/talentpulse/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
