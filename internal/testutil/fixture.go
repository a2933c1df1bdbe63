package testutil

import (
	"encoding/json"
	"os"
	"testing"
)

// FixtureCase is one grammar/input/result triple from a JSON fixture file.
// Rendered is the canonical debug form of the expected root node; Entry
// overrides the default entry rule when non-empty. Cases with a non-empty
// Error expect the parse to fail with a message containing that substring.
type FixtureCase struct {
	Name     string `json:"Name"`
	Grammar  string `json:"Grammar"`
	Input    string `json:"Input"`
	Entry    string `json:"Entry"`
	Rendered string `json:"Rendered"`
	Error    string `json:"Error"`
}

// LoadFixture loads a fixture JSON file holding a list of cases.
func LoadFixture(t testing.TB, path string) []FixtureCase {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", path, err)
	}
	var cases []FixtureCase
	if err := json.Unmarshal(data, &cases); err != nil {
		t.Fatalf("failed to parse fixture %s: %v", path, err)
	}
	return cases
}
