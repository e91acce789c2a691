package main

import (
	"os"

	"github.com/KostasZigo/gitsync/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
