package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

// WorkflowEnv returns the environment every workflow process starts with:
// the current environment plus the variables of the project's dotenv file.
// A missing default .env file is not an error; a missing explicit one is.
func (c *Config) WorkflowEnv() ([]string, error) {
	env := os.Environ()

	path, explicit := c.GetEnvFile()
	vars, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return env, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, vars[k]))
	}
	return env, nil
}
