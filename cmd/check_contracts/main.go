package main

import (
	"os"

	"hr_contract_notifier/cmd/check_contracts/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
