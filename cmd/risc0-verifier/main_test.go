package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	risc0verifier "github.com/zkVerify/risc0-verifier/pkg/risc0-verifier"
)

func init() {
	cli.OsExiter = func(int) {}
}

// run executes the command line and returns what it printed
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"risc0-verifier", "--log-level", "disabled"}, args...))
	return out.String(), err
}

func generateStatement(t *testing.T, dir string, args ...string) string {
	t.Helper()
	path := filepath.Join(dir, "statement.json")
	if _, err := run(t, append(args, "--out", path)...); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return path
}

func TestGenerateAndVerify(t *testing.T) {
	dir := t.TempDir()
	path := generateStatement(t, dir, "-p", "v1.2", "generate", "--label", "cli", "--journal", "0x0100", "--shape", "composite", "--segments", "2")

	out, err := run(t, "verify", "--statement", path)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if !strings.Contains(out, "Verification successful") {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var s risc0verifier.Statement
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	if s.Version != risc0verifier.V1_2 {
		t.Errorf("statement version = %s", s.Version)
	}

	proofPath := filepath.Join(dir, "proof.cbor")
	proof, _ := risc0verifier.EncodeProof(s.Proof, "cbor")
	if err := os.WriteFile(proofPath, proof, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"flags", []string{"-p", "1.2", "verify", "--vk", s.Vk.String(), "--journal", "0x0100", "--proof", proofPath}, false},
		{"wrong journal", []string{"-p", "1.2", "verify", "--vk", s.Vk.String(), "--journal", "0x0101", "--proof", proofPath}, true},
		{"wrong version", []string{"-p", "1.1", "verify", "--vk", s.Vk.String(), "--journal", "0x0100", "--proof", proofPath}, true},
		{"forced json", []string{"-p", "1.2", "--format", "json", "verify", "--vk", s.Vk.String(), "--journal", "0x0100", "--proof", proofPath}, true},
		{"missing vk", []string{"verify", "--proof", proofPath}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if tt.wantErr && err == nil {
				t.Error("expected error but got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, version := range []string{"v1.0", "v2.1", "v3.0"} {
		sub := filepath.Join(dir, version)
		if err := os.Mkdir(sub, 0o700); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, generateStatement(t, sub, "-p", version, "generate", "--label", strings.Repeat("b", i+1)))
	}

	out, err := run(t, append([]string{"batch", "--no-progress", "--workers", "2"}, paths...)...)
	if err != nil {
		t.Fatalf("batch error: %v", err)
	}
	if !strings.Contains(out, "3/3 statements verified") {
		t.Errorf("output = %q", out)
	}

	// a statement whose journal was edited fails on its own
	data, _ := os.ReadFile(paths[1])
	var s risc0verifier.Statement
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	s.Journal = []byte("edited")
	data, _ = json.Marshal(&s)
	if err := os.WriteFile(paths[1], data, 0o600); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, append([]string{"batch", "--no-progress"}, paths...)...)
	if err == nil {
		t.Fatal("batch accepted an edited statement")
	}
	if !strings.Contains(out, "2/3 statements verified") {
		t.Errorf("output = %q", out)
	}
}

func TestExtractPo2(t *testing.T) {
	dir := t.TempDir()
	proofPath := filepath.Join(dir, "proof.json")
	generateStatement(t, dir, "-p", "v2.0", "generate", "--shape", "composite", "--segments", "2", "--po2", "14", "--proof-out", proofPath)

	out, err := run(t, "-p", "v2.0", "extract-po2", "--proof", proofPath)
	if err != nil {
		t.Fatalf("extract-po2 error: %v", err)
	}
	var infos []risc0verifier.SegmentInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if len(infos) != 2 || infos[0].Po2 != 14 {
		t.Errorf("infos = %+v", infos)
	}
}

func TestParams(t *testing.T) {
	out, err := run(t, "params")
	if err != nil {
		t.Fatalf("params error: %v", err)
	}
	var all []risc0verifier.Parameters
	if err := json.Unmarshal([]byte(out), &all); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if len(all) != len(risc0verifier.Versions()) {
		t.Errorf("params listed %d versions", len(all))
	}

	out, err = run(t, "-p", "v1.1", "--max-po2", "16", "params")
	if err != nil {
		t.Fatalf("params error: %v", err)
	}
	var one risc0verifier.Parameters
	if err := json.Unmarshal([]byte(out), &one); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if one.Version != risc0verifier.V1_1 || one.MaxPo2 != 16 {
		t.Errorf("params = %+v", one)
	}

	if _, err := run(t, "-p", "v9", "params"); err == nil {
		t.Error("params accepted an unknown version")
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verifier.yaml")
	if err := os.WriteFile(path, []byte("protocol_version: v2.2\nlog_level: disabled\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--config", path, "params")
	if err != nil {
		t.Fatalf("params error: %v", err)
	}
	var one risc0verifier.Parameters
	if err := json.Unmarshal([]byte(out), &one); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if one.Version != risc0verifier.V2_2 {
		t.Errorf("version = %s", one.Version)
	}

	if _, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "params"); err == nil {
		t.Error("missing config file accepted")
	}
}

func TestParseJournal(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"0x", "", false},
		{"0x6869", "hi", false},
		{"6869", "", true},
		{"0xzz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseJournal(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseJournal(%q) error = %v", tt.in, err)
			}
			if string(got) != tt.want {
				t.Errorf("parseJournal(%q) = %q", tt.in, got)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log.json"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	log, err := newLogger("info", f)
	if err != nil {
		t.Fatalf("newLogger() error: %v", err)
	}
	log.Info().Str("cmd", "verify").Msg("done")
	log.Debug().Msg("hidden")

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &line); err != nil {
		t.Fatalf("regular files should get JSON lines, got %q", data)
	}
	if line["cmd"] != "verify" || line["message"] != "done" {
		t.Errorf("line = %v", line)
	}

	if _, err := newLogger("loud", io.Discard); err == nil {
		t.Error("newLogger() accepted an unknown level")
	}
}
