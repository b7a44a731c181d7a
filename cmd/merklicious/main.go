package main

import (
	"github.com/datatrails/go-datatrails-merklicious/cmd/merklicious/internal/cmd"
)

func main() {
	cmd.Execute()
}
