package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_GetTestPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				TestPath:    ".",
				Flags:       Flags{},
			},
			expected: ".",
		},
		{
			name: "with test path flag",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "tests",
				},
			},
			expected: "/project/tests",
		},
		{
			name: "absolute test path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetTestPath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.Processors != DefaultProcessors {
		t.Errorf("expected Processors %d, got %d", DefaultProcessors, cfg.Processors)
	}

	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}
}

func TestLoad_AppliesFlags(t *testing.T) {
	cfg := Load(Flags{Processors: 6, Timeout: 3 * time.Second})

	if cfg.Processors != 6 {
		t.Errorf("expected Processors 6, got %d", cfg.Processors)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("expected Timeout 3s, got %s", cfg.Timeout)
	}
	if cfg.Flags.ResultsDriver != DefaultResultsDriver {
		t.Errorf("expected driver %s, got %s", DefaultResultsDriver, cfg.Flags.ResultsDriver)
	}
	if cfg.Flags.LogLevel != DefaultLogLevel {
		t.Errorf("expected log level %s, got %s", DefaultLogLevel, cfg.Flags.LogLevel)
	}
}

func TestConfig_WorkerCount(t *testing.T) {
	cfg := New()
	cfg.Processors = 0
	if got := cfg.WorkerCount(); got != 1 {
		t.Errorf("expected 1 worker for zero processors, got %d", got)
	}
	cfg.Processors = 3
	if got := cfg.WorkerCount(); got != 3 {
		t.Errorf("expected 3 workers, got %d", got)
	}
}

func TestConfig_GetBaseTemp(t *testing.T) {
	t.Run("explicit basetemp is created", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "base")
		cfg := Load(Flags{BaseTemp: dir})

		got, err := cfg.GetBaseTemp()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != dir {
			t.Errorf("expected %s, got %s", dir, got)
		}
		if info, err := os.Stat(got); err != nil || !info.IsDir() {
			t.Errorf("expected basetemp directory to exist")
		}
	})

	t.Run("fresh temporary directory without flag", func(t *testing.T) {
		cfg := New()
		got, err := cfg.GetBaseTemp()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer os.RemoveAll(got)
		if filepath.Base(got)[:len(BaseTempPrefix)] != BaseTempPrefix {
			t.Errorf("expected basetemp to start with %s, got %s", BaseTempPrefix, got)
		}
	})
}

func TestConfig_WorkflowEnv(t *testing.T) {
	t.Run("missing default env file is ignored", func(t *testing.T) {
		cfg := New()
		cfg.ProjectPath = t.TempDir()

		env, err := cfg.WorkflowEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(env) != len(os.Environ()) {
			t.Errorf("expected only the process environment, got %d entries", len(env))
		}
	})

	t.Run("missing explicit env file is an error", func(t *testing.T) {
		cfg := Load(Flags{EnvFile: "missing.env"})
		cfg.ProjectPath = t.TempDir()

		if _, err := cfg.WorkflowEnv(); err == nil {
			t.Error("expected error for missing explicit env file")
		}
	})

	t.Run("dotenv variables are appended", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PWT_A=1\nPWT_B=two\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		cfg := New()
		cfg.ProjectPath = dir

		env, err := cfg.WorkflowEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tail := env[len(env)-2:]
		if tail[0] != "PWT_A=1" || tail[1] != "PWT_B=two" {
			t.Errorf("expected dotenv variables at the end, got %v", tail)
		}
	})
}
