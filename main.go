package main

import "github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/cmd"

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
