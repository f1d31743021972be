package main

import (
	stdLog "log"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		stdLog.Println(err)
		os.Exit(1)
	}
}
