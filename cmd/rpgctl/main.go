package main

import "multirpg/internal/cli"

func main() {
	cli.Execute()
}
