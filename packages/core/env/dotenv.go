package env

import (
	"fmt"
	"sort"

	"github.com/joho/godotenv"
)

// LoadDotEnv parses a .env file and returns its entries as enabled variables,
// sorted by key. Supports KEY=value, quoted values, export prefixes and
// # comments. Nothing is exported to the OS environment.
func LoadDotEnv(path string) ([]EnvVar, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read env file: %w", err)
	}
	return fromMap(values), nil
}

// ParseDotEnv parses .env formatted content.
func ParseDotEnv(content string) ([]EnvVar, error) {
	values, err := godotenv.Unmarshal(content)
	if err != nil {
		return nil, fmt.Errorf("parsing env content: %w", err)
	}
	return fromMap(values), nil
}

func fromMap(values map[string]string) []EnvVar {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vars := make([]EnvVar, 0, len(keys))
	for _, k := range keys {
		vars = append(vars, EnvVar{Key: k, Value: values[k], Enabled: true})
	}
	return vars
}
