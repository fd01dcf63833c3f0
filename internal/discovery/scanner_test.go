package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanner_Scan(t *testing.T) {
	// Create a temporary directory structure for testing
	tmpDir := t.TempDir()

	// Create test files
	testFiles := []string{
		"test_echo.yml",
		"tests/test_grep.yaml",
		"tests/nested/test-moo.yml",
		"tests/not_a_test.yml",
		"tests/test_notes.txt",
		"node_modules/some/test_pkg.yml",
		".hidden/test_hidden.yml",
	}
	for _, file := range testFiles {
		fullPath := filepath.Join(tmpDir, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("- name: x\n"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}

	scanner := NewScanner([]string{"node_modules"})

	t.Run("scans test files correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{
			filepath.Join(tmpDir, "test_echo.yml"),
			filepath.Join(tmpDir, "tests/nested/test-moo.yml"),
			filepath.Join(tmpDir, "tests/test_grep.yaml"),
		}
		if len(results) != len(expected) {
			t.Fatalf("expected %d test files, got %d: %v", len(expected), len(results), results)
		}
		for i := range expected {
			if results[i] != expected[i] {
				t.Errorf("result %d: expected %s, got %s", i, expected[i], results[i])
			}
		}
	})

	t.Run("single test file as root", func(t *testing.T) {
		path := filepath.Join(tmpDir, "test_echo.yml")
		results, err := scanner.Scan(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 || results[0] != path {
			t.Errorf("expected [%s], got %v", path, results)
		}
	})

	t.Run("returns error for non-test file root", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "tests/test_notes.txt"))
		if err == nil {
			t.Error("expected error for non-test file")
		}
	})

	t.Run("returns error for non-existent path", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "missing"))
		if err == nil {
			t.Error("expected error for non-existent path")
		}
	})
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"test.yml", true},
		{"test_echo.yml", true},
		{"test-echo.yaml", true},
		{"echo_test.yml", false},
		{"test_echo.json", false},
		{"Test_echo.yml", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTestFile(tt.name); got != tt.expected {
				t.Errorf("IsTestFile(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}
