package main

import "github.com/safar/furnishop/internal/cli"

func main() {
	cli.Execute()
}
