// main is the entry point of the debtlens CLI.
package main

import (
	"github.com/huangsam/debtlens/cmd"
	"github.com/huangsam/debtlens/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("debtlens failed", err)
	}
}
