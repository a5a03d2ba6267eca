package main

import "github.com/fernwell/bandcut/cmd"

func main() {
	cmd.Execute()
}
