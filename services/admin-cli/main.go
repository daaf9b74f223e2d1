package main

import (
	"context"
	"fmt"
	"os"

	"AdminPanelPlatform/services/admin-cli/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		if !cmd.IsSilent(err) {
			fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		}
		os.Exit(1)
	}
}
