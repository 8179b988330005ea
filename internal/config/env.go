package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment without overriding variables already set.
// Missing files are not an error; the boolean reports whether any file was read.
func LoadDotEnv(paths ...string) (bool, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	loaded := false
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		loaded = true
	}
	return loaded, nil
}
