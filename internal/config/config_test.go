package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfig_ValidMinimal(t *testing.T) {
	yaml := `
sources:
  - index: zoo.yaml
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(cfg.Sources))
	}
	if kind := cfg.Sources[0].Kind(); kind != SourceIndex {
		t.Errorf("kind = %q, want %q", kind, SourceIndex)
	}
	if cfg.Join != DefaultJoin {
		t.Errorf("join = %q, want %q", cfg.Join, DefaultJoin)
	}
	if cfg.Color != DefaultColor {
		t.Errorf("color = %q, want %q", cfg.Color, DefaultColor)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
}

func TestParseConfig_ModesIgnoreCase(t *testing.T) {
	yaml := `
sources:
  - index: zoo.yaml
join: Space
color: NEVER
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Join != "space" {
		t.Errorf("join = %q, want space", cfg.Join)
	}
	if cfg.Color != "never" {
		t.Errorf("color = %q, want never", cfg.Color)
	}
}

func TestParseConfig_AllSources(t *testing.T) {
	yaml := `
sources:
  - go: [./..., net/http]
    dir: src
    tests: true
    tags: [integration]
  - index: zoo.yaml
  - sqlite: zoo.db
  - proto: [store.proto]
    import_paths: [api]
  - grpc: localhost:50051
join: concat
color: never
timeout: 5s
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{SourceGo, SourceIndex, SourceSQLite, SourceProto, SourceGRPC}
	for i, src := range cfg.Sources {
		if got := src.Kind(); got != want[i] {
			t.Errorf("sources[%d] kind = %q, want %q", i, got, want[i])
		}
	}
	goSrc := cfg.Sources[0]
	if len(goSrc.Go) != 2 || goSrc.Dir != "src" || !goSrc.Tests || goSrc.Tags[0] != "integration" {
		t.Errorf("go source = %+v", goSrc)
	}
	if cfg.Join != "concat" || cfg.Color != "never" {
		t.Errorf("join = %q, color = %q", cfg.Join, cfg.Color)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Timeout)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no sources",
			yaml:    "join: space\n",
			wantErr: "no sources defined",
		},
		{
			name:    "empty source",
			yaml:    "sources:\n  - {}\n",
			wantErr: "sources[0]: one of go, index, sqlite, proto, or grpc is required",
		},
		{
			name:    "two kinds",
			yaml:    "sources:\n  - index: a.yaml\n    sqlite: a.db\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "dir without go",
			yaml:    "sources:\n  - index: a.yaml\n    dir: x\n",
			wantErr: "sources[0] (index): dir, tests and tags are only valid with go",
		},
		{
			name:    "tags without go",
			yaml:    "sources:\n  - proto: [a.proto]\n    tags: [integration]\n",
			wantErr: "sources[0] (proto): dir, tests and tags are only valid with go",
		},
		{
			name:    "import paths without proto",
			yaml:    "sources:\n  - grpc: host:1\n    import_paths: [x]\n",
			wantErr: "import_paths is only valid with proto",
		},
		{
			name:    "blank pattern",
			yaml:    "sources:\n  - go: [' ']\n",
			wantErr: "sources[0].go[0]: empty package pattern",
		},
		{
			name:    "bad join",
			yaml:    "sources:\n  - index: a.yaml\njoin: comma\n",
			wantErr: `join "comma" must be one of space, concat`,
		},
		{
			name:    "bad color",
			yaml:    "sources:\n  - index: a.yaml\ncolor: pink\n",
			wantErr: `color "pink"`,
		},
		{
			name:    "negative timeout",
			yaml:    "sources:\n  - index: a.yaml\ntimeout: -1s\n",
			wantErr: "timeout must not be negative",
		},
		{
			name:    "invalid yaml",
			yaml:    "sources: [",
			wantErr: "parsing test.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml), "test.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_ResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte("sources:\n  - index: snaps/zoo.yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(dir, "snaps", "zoo.yaml")
	if got := cfg.Abs(cfg.Sources[0].Index); got != want {
		t.Errorf("Abs = %q, want %q", got, want)
	}
	if got := cfg.Abs("/abs/zoo.yaml"); got != "/abs/zoo.yaml" {
		t.Errorf("Abs kept absolute path as %q", got)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config") {
		t.Fatalf("err = %v, want reading error", err)
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	if got, err := FindConfig(nested); err != nil || got != "" {
		t.Fatalf("FindConfig without file = %q, %v", got, err)
	}

	path := filepath.Join(root, "typeprobe.yml")
	if err := os.WriteFile(path, []byte("sources: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("FindConfig = %q, want %q", got, path)
	}
}
