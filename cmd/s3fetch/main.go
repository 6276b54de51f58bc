package main

import "github.com/pixvault/service/internal/cli"

func main() {
	cli.Execute()
}
