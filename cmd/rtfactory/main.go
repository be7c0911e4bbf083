package main

import "github.com/rtfactory/rtfactory/cmd/rtfactory/cmd"

func main() {
	cmd.Execute()
}
