package main

import "fngroup/internal/cli"

func main() {
	cli.Execute()
}
