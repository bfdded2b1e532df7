package main

import "github.com/aurora-skin/skinsafety/cmd"

func main() {
	cmd.Execute()
}
