package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"modtest/internal/domain"
)

// Project is the content of modtest.json
type Project struct {
	SourceDirectories []string `json:"source-directories"`
	ArtifactsDir      string   `json:"artifacts-dir"`
	Worker            []string `json:"worker"`
}

// ReadProject reads and validates modtest.json in root
func ReadProject(root string) (*Project, error) {
	path := filepath.Join(root, ProjectFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError(domain.ConfigurationError, path, err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, domain.NewError(domain.ConfigurationError, path, fmt.Errorf("parse project file: %w", err))
	}

	if len(p.SourceDirectories) == 0 {
		p.SourceDirectories = append([]string(nil), DefaultSourceDirectories...)
	}
	for _, dir := range p.SourceDirectories {
		if dir == "" {
			return nil, domain.NewError(domain.ConfigurationError, path, errors.New("empty entry in source-directories"))
		}
	}
	if p.ArtifactsDir == "" {
		p.ArtifactsDir = DefaultArtifactsDir
	}
	return &p, nil
}

// FindRoot returns the nearest directory at or above start containing modtest.json
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", domain.NewError(domain.ConfigurationError, start, err)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, ProjectFile))
		if err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", domain.NewError(domain.ConfigurationError, start, fmt.Errorf("no %s found in this directory or any parent", ProjectFile))
		}
		dir = parent
	}
}
