package main

import (
	"fmt"
	"os"

	"github.com/mercadolabs/taskqueue/cmd/queuectl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
