package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"

	risc0verifier "github.com/zkVerify/risc0-verifier/pkg/risc0-verifier"
)

// readInput reads a file, or standard input for "-"
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// parseJournal accepts 0x prefixed hex; the empty string is an empty journal
func parseJournal(s string) (risc0verifier.Journal, error) {
	if s == "" || s == "0x" {
		return risc0verifier.Journal{}, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid journal hex: %w", err)
	}
	return b, nil
}

// readStatement loads a statement as written by the generate command
func readStatement(path string, stdin io.Reader) (*risc0verifier.Statement, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	var s risc0verifier.Statement
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse statement %s: %w", path, err)
	}
	if s.Proof == nil {
		return nil, fmt.Errorf("statement %s has no proof", path)
	}
	if err := s.Proof.Validate(); err != nil {
		return nil, fmt.Errorf("statement %s: %w", path, err)
	}
	return &s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
