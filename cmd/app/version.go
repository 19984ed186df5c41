package main

import (
	"fmt"
	"io"
)

var (
	Version    = "0.0.1"
	CommitHash = ""
)

func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "proxy-sync version: %s\n", Version)
	if CommitHash != "" {
		fmt.Fprintf(w, "commit hash: %s\n", CommitHash)
	}
}
