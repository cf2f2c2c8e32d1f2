package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// EnvLookup returns a getenv function backed by the process environment and, for keys not set
// there, by the dotenv file at path. A missing dotenv file is not an error.
func EnvLookup(path string) (func(string) string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		values = map[string]string{}
	} else if err != nil {
		return nil, err
	}

	return func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return values[key]
	}, nil
}
