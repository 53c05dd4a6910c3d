package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// version is set by goreleaser at build time.
var version = "dev"

const usage = `usage: codemap <command> [args]

Commands:
  generate [sourceDir] [mapDir]  scan source and create or update the map
  validate [mapDir]              check the map against its source tree
  status [mapDir]                report fill progress per level
  query <symbol>                 look up a symbol in the graph index
  export [mapDir]                print the map and index as JSON or mermaid
  init [dir]                     install the skill, config and MCP entry
  mcp                            serve the MCP tools over stdio
  version                        print version and exit

Directories default to the codemap.yml configuration.`

// silentExit sets the process exit status for a command that already printed
// its own report.
type silentExit int

func (e silentExit) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	err := run(os.Args[1:])
	if err == nil {
		return
	}
	var s silentExit
	if errors.As(err, &s) {
		os.Exit(int(s))
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return silentExit(1)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "generate":
		return runGenerate(rest)
	case "validate":
		return runValidate(rest)
	case "status":
		return runStatus(rest)
	case "query":
		return runQuery(rest)
	case "export":
		return runExport(rest)
	case "init":
		return runInit(rest)
	case "mcp":
		return runMCP(rest)
	case "version", "--version":
		fmt.Println(version)
		return nil
	case "help", "--help", "-h":
		fmt.Println(usage)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// argOr returns positional argument i, or fallback when absent.
func argOr(fs *flag.FlagSet, i int, fallback string) string {
	if v := fs.Arg(i); v != "" {
		return v
	}
	return fallback
}
