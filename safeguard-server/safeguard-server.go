package main

import "github.com/safeguardhq/safeguard/cmd/safeguard-server/cmd"

func main() {
	cmd.Execute()
}
