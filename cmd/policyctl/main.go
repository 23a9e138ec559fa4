package main

import (
	"context"
	"fmt"
	"os"

	"policygen/pkg/cli"
)

func main() {
	if err := cli.Execute(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
