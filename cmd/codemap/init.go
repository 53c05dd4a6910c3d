package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dusk-indust/codemap/internal/skilldata"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// codemapMCPEntry is the MCP server configuration for the codemap binary.
var codemapMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "codemap",
  "args": ["mcp"]
}`)

// runInit installs the code-map skill files, a starter codemap.yml and the
// MCP configuration into the target project directory.
func runInit(args []string) error {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	force := flags.Bool("force", false, "overwrite existing files")
	if err := flags.Parse(args); err != nil {
		return err
	}
	projectRoot := argOr(flags, 0, ".")

	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	if err := copySkillFiles(abs, *force); err != nil {
		return fmt.Errorf("copying skill files: %w", err)
	}
	if err := writeConfigTemplate(abs, *force); err != nil {
		return err
	}
	if err := mergeMCPConfig(filepath.Join(abs, ".mcp.json"), *force); err != nil {
		return err
	}

	fmt.Println("\nSetup complete. The code-map skill and MCP server are ready.")
	return nil
}

// copySkillFiles walks the embedded skill tree into .claude/skills/code-map.
func copySkillFiles(projectRoot string, force bool) error {
	skillDir := filepath.Join(projectRoot, ".claude", "skills", "code-map")

	root := "skill/code-map"
	return fs.WalkDir(skilldata.SkillFS, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(skillDir, rel)

		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}

		if !force {
			if _, err := os.Stat(dest); err == nil {
				fmt.Printf("  skipped %s (exists, use --force to overwrite)\n", dotRelative(projectRoot, dest))
				return nil
			}
		}

		data, err := skilldata.SkillFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading embedded %s: %w", path, err)
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}

		fmt.Printf("  created %s\n", dotRelative(projectRoot, dest))
		return nil
	})
}

// writeConfigTemplate drops the commented default config at the project root
// unless one already exists under either extension.
func writeConfigTemplate(projectRoot string, force bool) error {
	if !force {
		for _, name := range []string{"codemap.yml", "codemap.yaml"} {
			if _, err := os.Stat(filepath.Join(projectRoot, name)); err == nil {
				fmt.Printf("  skipped %s (exists, use --force to overwrite)\n", "./"+name)
				return nil
			}
		}
	}

	path := filepath.Join(projectRoot, "codemap.yml")
	if err := os.WriteFile(path, skilldata.ConfigTemplate, 0o644); err != nil {
		return fmt.Errorf("writing codemap.yml: %w", err)
	}
	fmt.Println("  created ./codemap.yml")
	return nil
}

// mergeMCPConfig creates or merges the codemap entry into .mcp.json.
func mergeMCPConfig(mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["codemap"]; exists && !force {
		fmt.Printf("  skipped .mcp.json codemap entry (exists, use --force to overwrite)\n")
		return nil
	}

	cfg.MCPServers["codemap"] = codemapMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Printf("  %s .mcp.json with codemap MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
