package main

import "github.com/gomenu/services/menu/internal/cli"

func main() {
	cli.Execute()
}
