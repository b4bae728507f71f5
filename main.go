package main

import (
	"os"

	"github.com/spigell/talentmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
