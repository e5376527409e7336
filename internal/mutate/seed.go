package mutate

import (
	"os"
	"path/filepath"

	"github.com/evanmh/activitybot/internal/domain"
)

const seedReadme = `# Activity Playground

This repository is managed by a bot that creates scheduled activity.
`

const seedStub = `// Package lib is a placeholder library stub.
package lib

// Hello returns a greeting.
func Hello() string {
	return "Hello, world!"
}
`

// SeedDefaults writes a minimal default file set into an empty repository so
// the pipeline always has material to commit: a library stub, and a README
// if none exists. It returns the repo-relative paths it wrote.
func SeedDefaults(root string) ([]string, error) {
	var created []string

	stubPath := filepath.Join(root, "src", "lib.go")
	if err := os.MkdirAll(filepath.Dir(stubPath), 0755); err != nil {
		return nil, &domain.FSError{Path: "src", Err: err}
	}
	if err := os.WriteFile(stubPath, []byte(seedStub), 0644); err != nil {
		return nil, &domain.FSError{Path: "src/lib.go", Err: err}
	}
	created = append(created, "src/lib.go")

	readmePath := filepath.Join(root, "README.md")
	if _, err := os.Stat(readmePath); os.IsNotExist(err) {
		if err := os.WriteFile(readmePath, []byte(seedReadme), 0644); err != nil {
			return nil, &domain.FSError{Path: "README.md", Err: err}
		}
		created = append(created, "README.md")
	}

	return created, nil
}
