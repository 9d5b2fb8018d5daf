package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(nil, nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
