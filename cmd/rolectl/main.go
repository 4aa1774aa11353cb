package main

import "github.com/veylabs/rolegate/cmd/rolectl/cmd"

func main() {
	cmd.Execute()
}
