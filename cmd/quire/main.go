package main

import (
	"os"
	"path/filepath"
	"strings"

	"quire/internal/cli"
)

func isDocumentPath(s string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(s))) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func rewriteDirectDocumentArgs(argv []string) []string {
	// Convenience: `quire notes.yaml` works like `quire --doc notes.yaml`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (e.g. `quire --log-file x.log notes.yaml`), so we look
	// for the first positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--doc":       true,
		"--log-file":  true,
		"--log-level": true,
		"--format":    true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insertDoc := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "--doc")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isDocumentPath(argv[i+1]) {
				out := make([]string, 0, len(argv))
				out = append(out, argv[:i]...)
				out = append(out, "--doc")
				out = append(out, argv[i+1:]...)
				return out
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if isDocumentPath(a) {
			return insertDoc(i)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectDocumentArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
