// Package skilldata embeds the code-map skill files for distribution
// inside the codemap binary. The embedded filesystem is rooted at
// "skill/code-map/" and contains SKILL.md and references/.
package skilldata

import "embed"

// SkillFS contains the embedded skill files. Walk from "skill/code-map"
// to iterate over all files.
//
//go:embed all:skill
var SkillFS embed.FS

// ConfigTemplate is the commented codemap.yml written by init when the
// project has no config file yet.
//
//go:embed codemap.yml
var ConfigTemplate []byte
