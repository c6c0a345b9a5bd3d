package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lane-core/pack/internal/registry"
	"github.com/lane-core/pack/internal/types"
)

var scalarFiles = map[string]bool{
	"branch": true, "tag": true, "commit": true, "as": true, "local": true,
	"load": true, "build": true, "disabled": true, "source_file": true,
	"rc": true, "url": true,
}

var arrayDirs = map[string]bool{"fpath": true, "path": true}

// Filesystem reads the directory-per-package config layout spec.md §4.2
// defines: one subdirectory per package under root, "source" required,
// the remaining scalar fields as plain files, "fpath"/"path" as
// subdirectories whose entry names are the values, "depends" as a
// subdirectory whose entry names are dependency names and whose (optional)
// file content is the version constraint, and "alias"/"env" as
// subdirectories whose entry names are keys and whose first content line
// is the value.
type Filesystem struct {
	Registry *registry.Registry
}

// Load walks root, declaring one package per subdirectory found. Missing
// root is not an error — an unconfigured filesystem layer is normal.
func (f *Filesystem) Load(root string) []*types.DeclarationError {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var errs []*types.DeclarationError
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		fields, id, fErrs := f.readPackageDir(dir, entry.Name())
		errs = append(errs, fErrs...)
		if id == "" {
			continue
		}
		errs = append(errs, f.Registry.Declare(id, fields)...)
	}
	return errs
}

func (f *Filesystem) readPackageDir(dir, name string) (map[string]registry.FieldValue, string, []*types.DeclarationError) {
	fields := make(map[string]registry.FieldValue)
	var errs []*types.DeclarationError

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, "", []*types.DeclarationError{{Name: name, Message: "cannot read package directory: " + err.Error()}}
	}

	var id string
	var dependsEntries, aliasEntries, envEntries []os.DirEntry

	for _, entry := range entries {
		switch {
		case !entry.IsDir() && entry.Name() == "source":
			content, err := readTrimmedFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				errs = append(errs, &types.DeclarationError{Name: name, Field: "source", Message: err.Error()})
				continue
			}
			id = content
		case !entry.IsDir() && scalarFiles[entry.Name()]:
			content, err := readTrimmedFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				errs = append(errs, &types.DeclarationError{Name: name, Field: entry.Name(), Message: err.Error()})
				continue
			}
			fields[entry.Name()] = registry.Scalar(content)
		case entry.IsDir() && arrayDirs[entry.Name()]:
			names, err := listEntryNames(filepath.Join(dir, entry.Name()))
			if err != nil {
				errs = append(errs, &types.DeclarationError{Name: name, Field: entry.Name(), Message: err.Error()})
				continue
			}
			fields[entry.Name()] = registry.List(names...)
		case entry.IsDir() && entry.Name() == "depends":
			dependsEntries, err = os.ReadDir(filepath.Join(dir, "depends"))
			if err != nil {
				errs = append(errs, &types.DeclarationError{Name: name, Field: "depends", Message: err.Error()})
			}
		case entry.IsDir() && entry.Name() == "alias":
			aliasEntries, err = os.ReadDir(filepath.Join(dir, "alias"))
			if err != nil {
				errs = append(errs, &types.DeclarationError{Name: name, Field: "alias", Message: err.Error()})
			}
		case entry.IsDir() && entry.Name() == "env":
			envEntries, err = os.ReadDir(filepath.Join(dir, "env"))
			if err != nil {
				errs = append(errs, &types.DeclarationError{Name: name, Field: "env", Message: err.Error()})
			}
		}
	}

	if id == "" {
		return nil, "", append(errs, &types.DeclarationError{Name: name, Field: "source", Message: "required file missing"})
	}

	if len(dependsEntries) > 0 {
		fields["depends"] = registry.List(joinDepends(dir, dependsEntries)...)
	}
	if len(aliasEntries) > 0 {
		fields["alias"] = registry.List(joinKeyValue(dir, "alias", aliasEntries)...)
	}
	if len(envEntries) > 0 {
		fields["env"] = registry.List(joinKeyValue(dir, "env", envEntries)...)
	}

	return fields, id, errs
}

func joinDepends(dir string, entries []os.DirEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		constraint, _ := readTrimmedFile(filepath.Join(dir, "depends", e.Name()))
		if constraint == "" {
			out = append(out, e.Name())
		} else {
			out = append(out, e.Name()+"@"+constraint)
		}
	}
	return out
}

func joinKeyValue(dir, sub string, entries []os.DirEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		value, _ := readFirstLine(filepath.Join(dir, sub, e.Name()))
		out = append(out, e.Name()+"="+value)
	}
	return out
}

func listEntryNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func readTrimmedFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readFirstLine(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimRight(line, "\r"), nil
}
