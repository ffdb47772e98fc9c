// FileCabinet - a person record store with memory and binary file backends
//
// Usage:
//
//	filecabinet <command> [flags]
//
// Global flags:
//
//	-c, --config string           Config file (default "filecabinet.yaml")
//	-s, --storage string          Storage backend: memory, file
//	    --data string             Data directory
//	    --validation-rules string Validation profile: default, custom
//	-v, --verbose                 Debug logging
package main

import (
	"os"

	"github.com/filecabinet/filecabinet/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
