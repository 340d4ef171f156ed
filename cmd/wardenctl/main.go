package main

import "github.com/agentwarden/agentwarden-go/internal/cli"

func main() {
	cli.Execute()
}
