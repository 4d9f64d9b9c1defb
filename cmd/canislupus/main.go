package main

import (
	"github.com/mizucoffee/canislupus-server/internal/cli"
)

func main() {
	cli.Execute()
}
