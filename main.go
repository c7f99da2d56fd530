package main

import (
	"github.com/seejay/notefall/cmd"
)

func main() {
	cmd.Execute()
}
