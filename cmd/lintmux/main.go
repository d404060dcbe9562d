package main

import "github.com/lintmux/lintmux/internal/cli"

func main() {
	cli.Execute()
}
