package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.REPL.Prompt != ">>> " || cfg.REPL.ContinuePrompt != "... " {
		t.Error("unexpected default prompts")
	}
	if cfg.Diagnostics.Color != "auto" {
		t.Errorf("expected color auto, got %q", cfg.Diagnostics.Color)
	}
	if cfg.Diagnostics.TabWidth != 4 {
		t.Errorf("expected tab width 4, got %d", cfg.Diagnostics.TabWidth)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	content := `
[repl]
prompt = "lox> "

[diagnostics]
color = "never"
tab_width = 8
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.REPL.Prompt != "lox> " {
		t.Errorf("expected custom prompt, got %q", cfg.REPL.Prompt)
	}
	// 未设置的字段用默认值补齐
	if cfg.REPL.ContinuePrompt != "... " {
		t.Errorf("expected default continue prompt, got %q", cfg.REPL.ContinuePrompt)
	}
	if cfg.Diagnostics.Color != "never" {
		t.Errorf("expected color never, got %q", cfg.Diagnostics.Color)
	}
	if cfg.Diagnostics.TabWidth != 8 {
		t.Errorf("expected tab width 8, got %d", cfg.Diagnostics.TabWidth)
	}
}

func TestFindConfigFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(root, ConfigFileName)
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	found := FindConfigFile(nested)
	if found == "" {
		t.Fatal("expected to find the config file in an ancestor directory")
	}
	if filepath.Base(filepath.Dir(found)) != filepath.Base(root) {
		t.Errorf("found config in unexpected place: %s", found)
	}
}

func TestLoadMissingConfig(t *testing.T) {
	dir := t.TempDir()

	cfg := Load(dir)
	if cfg.REPL.Prompt != ">>> " {
		t.Error("missing config file should yield defaults")
	}
}

func TestLoadCorruptConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}

	// 损坏的配置不阻止解释器启动
	cfg := Load(dir)
	if cfg.REPL.Prompt != ">>> " {
		t.Error("corrupt config file should yield defaults")
	}
}
