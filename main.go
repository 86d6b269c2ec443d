package main

import (
	"flag"
	"fmt"
	"os"

	"fitsyncd/internal/di"
	"fitsyncd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log to console as well as the log file")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "fitsyncd: %s\n", err)
		os.Exit(1)
	}
}
