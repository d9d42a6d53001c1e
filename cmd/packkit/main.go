package main

import "github.com/huitzo/packkit/internal/cli"

func main() {
	cli.Execute()
}
