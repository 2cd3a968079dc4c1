package main

import (
	"os"
	"runtime/debug"

	"github.com/cms-PdmV/PdmVPages/internal/cli"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
