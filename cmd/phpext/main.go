package main

import "phpext/internal/cli"

func main() {
	cli.Execute()
}
