// Command woptim allocates a total quantity across weighted requirements.
package main

import (
	"os"
)

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
