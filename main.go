package main

import (
	"os"

	"mojejecna/logger"
	"mojejecna/server"
)

const version = "mojejecna v1.0.0"

func main() {
	tls := true

	if len(os.Args) > 2 || len(os.Args) == 2 && os.Args[1] != "-w" {
		os.Stderr.WriteString("mojejecna: invalid invocation\n")
		os.Exit(1)
	}
	if len(os.Args) == 2 {
		tls = false
	}

	server.Announce(version)

	err := server.Configure()
	if err != nil {
		logger.Fatal(err)
	}

	err = server.Run(tls)
	if err != nil {
		logger.Fatal(err)
	}
}
