// Package templates embeds the starter taxonomies written by taxonomy:init.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// starterTaxonomies embeds one YAML taxonomy per starter:
//   - taxonomies/<name>.yaml
//
//go:embed taxonomies
var starterTaxonomies embed.FS

// DefaultStarter is used when taxonomy:init is given no name.
const DefaultStarter = "gameplay"

// TaxonomyFS returns the embedded filesystem rooted at the starters directory.
func TaxonomyFS() fs.FS {
	sub, err := fs.Sub(starterTaxonomies, "taxonomies")
	if err != nil {
		panic(err)
	}
	return sub
}

// Starters lists the embedded starter names, sorted.
func Starters() []string {
	entries, err := fs.ReadDir(TaxonomyFS(), ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return names
}

// StarterFile returns the file name of the named starter within TaxonomyFS.
func StarterFile(name string) (string, error) {
	file := name + ".yaml"
	if _, err := fs.Stat(TaxonomyFS(), file); err != nil {
		return "", fmt.Errorf("unknown starter %q (available: %s)", name, strings.Join(Starters(), ", "))
	}
	return file, nil
}

// Starter returns the raw YAML of the named starter.
func Starter(name string) ([]byte, error) {
	file, err := StarterFile(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(TaxonomyFS(), file)
}
