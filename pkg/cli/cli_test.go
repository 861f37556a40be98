package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/funvibe/typeprobe/internal/catalog"
)

const zooYAML = `source: zoo
types:
  - name: zoo.Animal
    fields:
      - {name: name, type: string}
      - {name: population, type: int, static: true}
    methods:
      - {name: speak, return: string}
  - name: zoo.Dog
    supertypes: [zoo.Animal]
    fields:
      - {name: legs, type: int}
      - {name: DEFAULT, type: zoo.Dog, static: true}
    methods:
      - {name: bark, params: [int]}
      - {name: of, params: [string], return: zoo.Dog, static: true}
`

func writeZoo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zoo.yaml")
	if err := os.WriteFile(path, []byte(zooYAML), 0644); err != nil {
		t.Fatalf("failed to write index: %v", err)
	}
	return path
}

// runCLI runs the command line with a silent logger.
func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(&app{stdout: &out, stderr: &errOut, logger: zap.NewNop()}, args)
	return code, out.String(), errOut.String()
}

func TestQueryCheckClass(t *testing.T) {
	zoo := writeZoo(t)

	code, stdout, stderr := runCLI(t, "query", "--index", zoo, "CHECK", "CLASS", "(zoo.Dog", "zoo.Cat", "int)")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	want := " * Class zoo.Dog exists.\n * Class zoo.Cat does not exist.\n * Class int exists.\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestQueryCheckMembers(t *testing.T) {
	zoo := writeZoo(t)

	tests := []struct {
		name  string
		words []string
		want  string
	}{
		{
			name:  "static field found as instance",
			words: []string{"CHECK STATIC_FIELD zoo.Dog (legs DEFAULT tail)"},
			want: " * Static field 'legs' does not exist (found instance field with same name).\n" +
				" * Static field 'DEFAULT' exists.\n" +
				" * Static field 'tail' does not exist.\n",
		},
		{
			name:  "method with params",
			words: []string{"CHECK", "STATIC_METHOD", "zoo.Dog", "(of)", "(String)"},
			want:  " * Static method 'zoo.Dog#of(string)' exists.\n",
		},
		{
			name:  "method without params prints the found signature",
			words: []string{"CHECK", "INSTANCE_METHOD", "zoo.Dog", "(bark fly)"},
			want: " * Instance method 'zoo.Dog#bark(int)' exists.\n" +
				" * Instance method 'zoo.Dog#fly()' does not exist.\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"query", "--index", zoo, "--"}, tt.words...)
			code, stdout, stderr := runCLI(t, args...)
			if code != 0 {
				t.Fatalf("exit code = %d, stderr: %s", code, stderr)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestQueryFind(t *testing.T) {
	zoo := writeZoo(t)

	code, stdout, stderr := runCLI(t, "query", "--index", zoo,
		"FIND", "(STATIC_FIELD STATIC_METHOD)", "parent:(zoo.Dog)", "target:(zoo.Animal)")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	want := " * Found static field: zoo.Dog#DEFAULT (Type: zoo.Dog)\n" +
		" * Found static method: zoo.Dog#of(string) -> zoo.Dog\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestQueryFatalError(t *testing.T) {
	zoo := writeZoo(t)

	code, stdout, stderr := runCLI(t, "query", "--index", zoo, "CHECK", "INSTANCE_FIELD", "zoo.Cat", "(name)")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if stdout != "" {
		t.Errorf("unexpected stdout: %q", stdout)
	}
	if stderr != "Error: invalid parent class: zoo.Cat\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestQueryJoinConcat(t *testing.T) {
	zoo := writeZoo(t)

	// Concatenated words need their own separators.
	code, stdout, stderr := runCLI(t, "query", "--index", zoo, "--join", "concat", "CHECK ", "CLASS ", "(zoo.Dog)")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if stdout != " * Class zoo.Dog exists.\n" {
		t.Errorf("stdout = %q", stdout)
	}

	code, _, stderr = runCLI(t, "query", "--index", zoo, "--join", "comma", "CHECK CLASS (zoo.Dog)")
	if code != 1 || !strings.HasPrefix(stderr, "Error: ") {
		t.Errorf("bad join mode: code %d, stderr %q", code, stderr)
	}
}

func TestQueryConfigFile(t *testing.T) {
	zoo := writeZoo(t)
	dir := filepath.Dir(zoo)
	cfgPath := filepath.Join(dir, "typeprobe.yaml")
	if err := os.WriteFile(cfgPath, []byte("sources:\n  - index: zoo.yaml\ncolor: never\n"), 0644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCLI(t, "query", "--config", cfgPath, "CHECK", "CLASS", "(zoo.Animal)")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if stdout != " * Class zoo.Animal exists.\n" {
		t.Errorf("stdout = %q", stdout)
	}

	// Found by walking up from the working directory.
	sub := filepath.Join(dir, "nested", "deeper")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(sub)
	code, stdout, stderr = runCLI(t, "query", "CHECK", "CLASS", "(zoo.Animal)")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if stdout != " * Class zoo.Animal exists.\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestQueryNoSources(t *testing.T) {
	t.Chdir(t.TempDir())

	code, _, stderr := runCLI(t, "query", "CHECK", "CLASS", "(int)")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "no catalog sources") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestQueryMissingIndex(t *testing.T) {
	code, _, stderr := runCLI(t, "query", "--index", filepath.Join(t.TempDir(), "nope.yaml"), "CHECK", "CLASS", "(int)")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr, "Error: loading index catalog: ") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestQueryMissingSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.db")
	code, _, stderr := runCLI(t, "query", "--sqlite", path, "CHECK", "CLASS", "(int)")
	if code != 1 || !strings.HasPrefix(stderr, "Error: loading sqlite catalog: ") {
		t.Errorf("code %d, stderr %q", code, stderr)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("query created %s", path)
	}
}

func TestIndexCommand(t *testing.T) {
	zoo := writeZoo(t)
	dir := t.TempDir()

	for _, name := range []string{"snapshot.yaml", "snapshot.db"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(dir, name)
			code, stdout, stderr := runCLI(t, "index", "--index", zoo, "--out", out)
			if code != 0 {
				t.Fatalf("index exit code = %d, stderr: %s", code, stderr)
			}
			if !strings.HasPrefix(stdout, "Wrote ") || !strings.HasSuffix(stdout, " types to "+out+"\n") {
				t.Errorf("stdout = %q", stdout)
			}

			flag := "--index"
			if filepath.Ext(name) == ".db" {
				flag = "--sqlite"
			}
			code, stdout, stderr = runCLI(t, "query", flag, out,
				"FIND", "(INSTANCE_FIELD)", "(zoo.Dog zoo.Animal)", "(string int)")
			if code != 0 {
				t.Fatalf("query exit code = %d, stderr: %s", code, stderr)
			}
			want := " * Found instance field: zoo.Dog#legs (Type: int)\n" +
				" * Found instance field: zoo.Animal#name (Type: string)\n"
			if stdout != want {
				t.Errorf("stdout = %q, want %q", stdout, want)
			}
		})
	}
}

func TestIndexSelectedTypes(t *testing.T) {
	zoo := writeZoo(t)
	out := filepath.Join(t.TempDir(), "dog.yaml")

	code, _, stderr := runCLI(t, "index", "--index", zoo, "--out", out, "--type", "zoo.Dog")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	idx, err := catalog.ReadIndex(out)
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if idx.Types[0].Name != "zoo.Dog" {
		t.Errorf("first type = %q, want zoo.Dog", idx.Types[0].Name)
	}
	if idx.Source != "index:"+zoo {
		t.Errorf("source = %q", idx.Source)
	}
	for _, it := range idx.Types[1:] {
		if len(it.Fields) > 0 || len(it.Methods) > 0 {
			t.Errorf("referenced type %s should be exported without members", it.Name)
		}
	}
}

func TestIndexBadOutput(t *testing.T) {
	zoo := writeZoo(t)
	code, _, stderr := runCLI(t, "index", "--index", zoo, "--out", "snapshot.json")
	if code != 1 || !strings.Contains(stderr, "unsupported index file") {
		t.Errorf("code %d, stderr %q", code, stderr)
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if stdout != "typeprobe "+Version+"\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestQueryGoSource(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the go command")
	}
	dir := t.TempDir()
	files := map[string]string{
		"go.mod":  "module example.com/pets\n\ngo 1.22\n",
		"pets.go": "package pets\n\ntype Pet struct {\n\tName string\n}\n\nfunc (p Pet) Greet(times int) string { return p.Name }\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	code, stdout, stderr := runCLI(t, "query", "--go", "./...", "--go-dir", dir,
		"CHECK", "INSTANCE_METHOD", "example.com/pets.Pet", "(Greet)")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if want := " * Instance method 'example.com/pets.Pet#Greet(int)' exists.\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}
