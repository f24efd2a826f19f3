package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if *p != *Defaults() {
		t.Errorf("expected defaults, got %+v", p)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := &Prefs{Server: "http://example.test:9000", UserID: "u1", Username: "ann", Theme: "dark"}

	if err := want.Save(path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("user_id = \"u7\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.UserID != "u7" || p.Server != DefaultServer || p.Theme != "system" {
		t.Errorf("unexpected prefs %+v", p)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("server = [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(ConfigEnv, "/tmp/custom.toml")
	if p, _ := DefaultPath(); p != "/tmp/custom.toml" {
		t.Errorf("expected env override, got %s", p)
	}

	t.Setenv(ConfigEnv, "")
	t.Setenv("HOME", "/home/ann")
	if p, _ := DefaultPath(); p != filepath.Join("/home/ann", ".config", "todoctl", "config.toml") {
		t.Errorf("unexpected default path %s", p)
	}
}
