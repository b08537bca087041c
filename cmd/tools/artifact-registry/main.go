package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"eiv-admissions/internal/eiv/scoring"
	"eiv-admissions/pkg/registry"
)

var manifestPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{addCmd, listCmd, validateCmd} {
		fs.StringVar(&manifestPath, "manifest", "artifacts/manifest.json", "Path to the artifact manifest")
	}

	// Add command flags
	role := addCmd.String("role", "", "Artifact role (scaler, regressor, classifier)")
	file := addCmd.String("file", "", "Artifact document, relative to the manifest directory")
	version := addCmd.String("version", "1.0.0", "Version")
	description := addCmd.String("description", "", "Description")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *role == "" || *file == "" {
			fmt.Println("Error: role and file are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		if err := addArtifact(*role, *file, *version, *description); err != nil {
			fmt.Printf("Error adding artifact: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registered %s: %s@%s\n", *role, *file, *version)

	case "list":
		listCmd.Parse(os.Args[2:])
		if err := listArtifacts(); err != nil {
			fmt.Printf("Error listing artifacts: %v\n", err)
			os.Exit(1)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateManifest(); err != nil {
			fmt.Printf("Manifest validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Manifest validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func isRole(name string) bool {
	for _, r := range registry.Roles {
		if r == name {
			return true
		}
	}
	return false
}

func addArtifact(role, key, version, description string) error {
	if !isRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(manifestPath), key))
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	if err := scoring.ValidateDocument(data); err != nil {
		return fmt.Errorf("artifact %s: %w", key, err)
	}

	m, err := registry.LoadManifest(manifestPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
		m = &registry.Manifest{Version: "1"}
	}

	m.Upsert(registry.Artifact{
		Name:         role,
		Key:          key,
		Version:      version,
		SHA256:       registry.Checksum(data),
		Description:  description,
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	})

	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return m.Save(manifestPath)
}

func listArtifacts() error {
	m, err := registry.LoadManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	fmt.Printf("Manifest %s (version %s, updated %s)\n", manifestPath, m.Version, m.LastUpdated)
	for _, a := range m.Artifacts {
		fmt.Printf("  %-10s %-28s %-8s %s\n", a.Name, a.Key, a.Version, a.SHA256[:min(12, len(a.SHA256))])
	}
	return nil
}

// validateManifest checks the manifest shape, then each document's checksum
// and schema.
func validateManifest() error {
	m, err := registry.LoadManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(manifestPath)
	for _, a := range m.Artifacts {
		data, err := os.ReadFile(filepath.Join(dir, a.Key))
		if err != nil {
			return fmt.Errorf("%s: %w", a.Name, err)
		}
		if got := registry.Checksum(data); got != a.SHA256 {
			return fmt.Errorf("%s: checksum mismatch (manifest %s, file %s)", a.Name, a.SHA256, got)
		}
		if err := scoring.ValidateDocument(data); err != nil {
			return fmt.Errorf("%s: %w", a.Name, err)
		}
	}
	fmt.Printf("Found %d artifacts (%s).\n", len(m.Artifacts), m.Label())
	return nil
}

func help() {
	fmt.Print(`
Usage: artifact-registry <command> [flags]

Commands:
  add       Register a model artifact document in the manifest
  list      List registered artifacts
  validate  Verify the manifest, checksums and document schemas
  help      Show this help message

Examples:
  artifact-registry add -role scaler -file scaler.json -version 1.0.0
  artifact-registry list -manifest artifacts/manifest.json
  artifact-registry validate -manifest artifacts/manifest.json

Use 'artifact-registry <command> -h' for more information about a command.

`)
}
