package main

import "github.com/kozaktomas/photo-memories/cmd"

func main() {
	cmd.Execute()
}
