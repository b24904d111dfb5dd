package main

import (
	"os"

	recallcmder "github.com/aupherehq/recall/cmd/recall"
)

func main() {
	cmd := recallcmder.NewRecallCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
