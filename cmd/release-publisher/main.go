package main

import "github.com/amplopt/release-publisher/cmd/release-publisher/cmd"

func main() {
	cmd.Execute()
}
