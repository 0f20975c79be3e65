package main

import (
	"github.com/foomo/flatfileserver/cmd"
)

func main() {
	cmd.Execute()
}
