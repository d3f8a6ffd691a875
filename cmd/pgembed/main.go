package main

import "github.com/chirino/pgembed/internal/cli"

func main() {
	cli.Execute()
}
