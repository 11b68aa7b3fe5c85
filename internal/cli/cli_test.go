package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// isolate points the config dir at a temp dir and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("QUIRE_CONFIG_DIR", dir)
	for _, k := range []string{"QUIRE_FORMAT", "QUIRE_LOG_LEVEL", "QUIRE_LOG_FILE", "QUIRE_DOC", "QUIRE_CHROME", "QUIRE_ADDR", "QUIRE_TOKEN"} {
		t.Setenv(k, "")
	}
	return dir
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustRunJSON(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("quire %v: %v\nstderr:\n%s", args, err, stderr)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v\nstdout:\n%s", err, stdout)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected data key in envelope: %v", env)
	}
	return env
}

const guideFixture = `
active: intro
nodes:
  - id: guide
    type: heading
    content: Guide
  - id: setup
    type: subheading
    parent: guide
    content: Setup
  - id: intro
    type: text
    parent: setup
    content: "<p>Install it.</p>"
  - id: notes
    type: heading
    order: 1
    pinned: true
    content: Notes
`

func writeFixture(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "guide.yaml")
	if err := os.WriteFile(p, []byte(guideFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

func TestTree_WelcomeDocument(t *testing.T) {
	isolate(t)
	env := mustRunJSON(t, "tree")
	data := env["data"].(map[string]any)
	if got := data["active"]; got != "welcome-heading" {
		t.Fatalf("active = %v", got)
	}
	rows := data["rows"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %v", rows)
	}
	first := rows[0].(map[string]any)
	second := rows[1].(map[string]any)
	if first["label"] != "Welcome to Quire" || first["hasChildren"] != true {
		t.Fatalf("unexpected first row %v", first)
	}
	if second["id"] != "intro-text" || second["depth"] != float64(1) {
		t.Fatalf("unexpected second row %v", second)
	}
}

func TestTree_TextFormatWithFixture(t *testing.T) {
	isolate(t)
	stdout, stderr, err := runCLI(t, []string{"--doc", writeFixture(t), "tree", "--format", "text"})
	if err != nil {
		t.Fatalf("tree: %v\n%s", err, stderr)
	}
	out := string(stdout)
	for _, want := range []string{
		"Pinned\n",
		"[heading notes]",
		"- Guide  [heading guide]",
		"* ",
		"Install it.  [text intro]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Count(out, "[heading notes]") != 1 {
		t.Fatalf("pinned root should be listed once, in the pinned section:\n%s", out)
	}
}

func TestOutline_Subtree(t *testing.T) {
	isolate(t)
	env := mustRunJSON(t, "--doc", writeFixture(t), "outline", "guide")
	marks := env["data"].(map[string]any)["bookmarks"].([]any)
	if len(marks) != 1 {
		t.Fatalf("expected one root bookmark, got %v", marks)
	}
	guide := marks[0].(map[string]any)
	children := guide["children"].([]any)
	if guide["title"] != "Guide" || len(children) != 1 || children[0].(map[string]any)["title"] != "Setup" {
		t.Fatalf("unexpected outline %v", guide)
	}
	if got := env["meta"].(map[string]any)["count"]; got != float64(2) {
		t.Fatalf("count = %v", got)
	}

	if _, _, err := runCLI(t, []string{"--doc", writeFixture(t), "outline", "nope"}); err == nil {
		t.Fatalf("expected error for unknown root")
	}
}

func TestExport_MarkdownAndHTML(t *testing.T) {
	isolate(t)
	out := t.TempDir()
	env := mustRunJSON(t, "--doc", writeFixture(t), "export", "--to", out, "--as", "md,html")

	written := env["data"].(map[string]any)["written"].([]any)
	if len(written) != 2 {
		t.Fatalf("written = %v", written)
	}
	md, err := os.ReadFile(filepath.Join(out, "quire-export.md"))
	if err != nil {
		t.Fatalf("read md: %v", err)
	}
	if !strings.HasPrefix(string(md), "## Contents\n") || !strings.Contains(string(md), "# Guide\n") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
	if _, err := os.Stat(filepath.Join(out, "quire-export.html")); err != nil {
		t.Fatalf("html missing: %v", err)
	}

	_, stderr, err := runCLI(t, []string{"--doc", writeFixture(t), "export", "--to", out, "--as", "md"})
	if err == nil || !strings.Contains(string(stderr), "file exists") {
		t.Fatalf("expected overwrite refusal, got %v\n%s", err, stderr)
	}
	mustRunJSON(t, "--doc", writeFixture(t), "export", "--to", out, "--as", "md", "--overwrite", "--bookmarks=false", "--root", "guide")
	md, _ = os.ReadFile(filepath.Join(out, "quire-export.md"))
	if strings.Contains(string(md), "Contents") || strings.Contains(string(md), "Notes") {
		t.Fatalf("expected the Guide subtree without contents:\n%s", md)
	}
}

func TestExport_Validation(t *testing.T) {
	isolate(t)
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing to", []string{"export"}, "missing --to"},
		{"bad format", []string{"export", "--to", t.TempDir(), "--as", "docx"}, "unknown export format"},
		{"bad page size", []string{"export", "--to", t.TempDir(), "--page-size", "tabloid"}, "unknown page size"},
		{"bad orientation", []string{"export", "--to", t.TempDir(), "--orientation", "sideways"}, "unknown orientation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCLI(t, tc.args)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}

func TestExport_ConfigDefaults(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(t.TempDir(), "exports")
	cfg := `{"export":{"outDir":` + jsonString(out) + `,"includeBookmarks":false}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	env := mustRunJSON(t, "export")
	if got := env["meta"].(map[string]any)["bookmarks"]; got != false {
		t.Fatalf("bookmarks = %v", got)
	}
	md, err := os.ReadFile(filepath.Join(out, "quire-export.md"))
	if err != nil {
		t.Fatalf("read md: %v", err)
	}
	if !strings.HasPrefix(string(md), "# Welcome to Quire\n") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestPalette_AddListRemove(t *testing.T) {
	isolate(t)
	env := mustRunJSON(t, "palette", "add", "#AA0000", "#0f0", "#aa0000")
	colors := env["data"].(map[string]any)["colors"].([]any)
	if len(colors) != 2 || colors[0] != "#aa0000" || colors[1] != "#0f0" {
		t.Fatalf("colors after add = %v", colors)
	}

	stdout, _, err := runCLI(t, []string{"palette", "list", "--format", "text"})
	if err != nil {
		t.Fatalf("palette list: %v", err)
	}
	if string(stdout) != "#aa0000\n#0f0\n" {
		t.Fatalf("text list = %q", stdout)
	}

	env = mustRunJSON(t, "palette", "rm", "#AA0000")
	colors = env["data"].(map[string]any)["colors"].([]any)
	if len(colors) != 1 || colors[0] != "#0f0" {
		t.Fatalf("colors after rm = %v", colors)
	}

	if _, _, err := runCLI(t, []string{"palette", "add", "red"}); err == nil {
		t.Fatalf("expected invalid hex error")
	}
}

func TestDoctor(t *testing.T) {
	dir := isolate(t)
	env := mustRunJSON(t, "--doc", writeFixture(t), "doctor", "--fail")
	data := env["data"].(map[string]any)
	if data["nodes"] != float64(4) || data["roots"] != float64(2) {
		t.Fatalf("unexpected counts %v", data)
	}
	if issues := data["issues"].([]any); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"export":{"pageSize":"Tabloid"}}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	stdout, _, err := runCLI(t, []string{"doctor", "--fail"})
	if !errors.Is(err, errDoctorIssuesFound) {
		t.Fatalf("expected doctor failure, got %v", err)
	}
	if !strings.Contains(string(stdout), "config.export") {
		t.Fatalf("expected config.export issue in:\n%s", stdout)
	}
}

func TestFormat_FromConfigAndFlag(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"format":"yaml"}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	stdout, _, err := runCLI(t, []string{"outline"})
	if err != nil {
		t.Fatalf("outline: %v", err)
	}
	var env struct {
		Data struct {
			Bookmarks []struct {
				Title string `yaml:"title"`
			} `yaml:"bookmarks"`
		} `yaml:"data"`
	}
	if err := yaml.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("yaml: %v\n%s", err, stdout)
	}
	if len(env.Data.Bookmarks) != 1 || env.Data.Bookmarks[0].Title != "Welcome to Quire" {
		t.Fatalf("unexpected yaml output:\n%s", stdout)
	}

	// The flag wins over config.
	mustRunJSON(t, "--format", "json", "outline")

	if _, _, err := runCLI(t, []string{"--format", "edn", "outline"}); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestShell_Commands(t *testing.T) {
	isolate(t)
	stdout, stderr, err := runCLI(t, []string{
		"shell",
		"-c", "add subheading welcome-heading",
		"-c", "drag intro-text",
		"-c", "drop welcome-heading",
		"-c", "tree",
	})
	if err != nil {
		t.Fatalf("shell: %v\n%s", err, stderr)
	}
	out := string(stdout)
	if !strings.Contains(out, "New Subheading") {
		t.Fatalf("expected created subheading in:\n%s", out)
	}

	_, stderr, err = runCLI(t, []string{"shell", "-c", "bogus"})
	if err == nil || !strings.Contains(string(stderr), "unknown command") {
		t.Fatalf("expected unknown command error, got %v\n%s", err, stderr)
	}
}

func TestLogFile(t *testing.T) {
	isolate(t)
	logPath := filepath.Join(t.TempDir(), "quire.log")
	mustRunJSON(t, "--log-file", logPath, "--log-level", "debug", "tree")
	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"message":"session loaded"`) {
		t.Fatalf("expected session log line, got:\n%s", b)
	}
}

func TestServe_BindsAndStopsWithContext(t *testing.T) {
	isolate(t)

	cmd := NewRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0", "--auth", "--read-only"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve: %v\nstderr:\n%s", err, errBuf.String())
	}

	var env struct {
		Data struct {
			Addr     string `json:"addr"`
			URL      string `json:"url"`
			ReadOnly bool   `json:"readOnly"`
		} `json:"data"`
	}
	if err := json.Unmarshal(outBuf.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, outBuf.String())
	}
	if !strings.HasPrefix(env.Data.Addr, "127.0.0.1:") || strings.HasSuffix(env.Data.Addr, ":0") {
		t.Fatalf("addr = %q", env.Data.Addr)
	}
	if !strings.Contains(env.Data.URL, "?token=") {
		t.Fatalf("url without token: %q", env.Data.URL)
	}
	if !env.Data.ReadOnly {
		t.Fatalf("expected readOnly")
	}
	if !strings.Contains(errBuf.String(), "Quire preview running at") {
		t.Fatalf("stderr = %q", errBuf.String())
	}
}

func TestDocs(t *testing.T) {
	isolate(t)

	env := mustRunJSON(t, "docs")
	topics, _ := env["data"].(map[string]any)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("no topics: %v", env)
	}

	stdout, _, err := runCLI(t, []string{"docs", "drops", "--raw"})
	if err != nil {
		t.Fatalf("docs --raw: %v", err)
	}
	if !strings.HasPrefix(string(stdout), "# Drops\n") {
		t.Fatalf("raw docs = %q", stdout)
	}

	stdout, _, err = runCLI(t, []string{"--format", "text", "docs", "keys"})
	if err != nil {
		t.Fatalf("docs text: %v", err)
	}
	if !strings.HasPrefix(string(stdout), "# Keys\n") {
		t.Fatalf("text docs = %q", stdout)
	}

	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatal("expected unknown topic error")
	}
}
