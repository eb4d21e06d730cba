package main

import "github.com/safeguardhq/safeguard/cmd/safeguard-checker/cmd"

func main() {
	cmd.Execute()
}
