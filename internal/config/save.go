package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// SaveQueries replaces the queries section of the config file.
// Comments and formatting in other sections survive because the file is
// edited as a yaml.Node tree.
func SaveQueries(configPath string, queries []QueryConfig) error {
	if err := ValidateQueries(queries); err != nil {
		return err
	}

	node, err := buildQueriesNode(queries)
	if err != nil {
		return fmt.Errorf("building queries node: %w", err)
	}
	return saveSection(configPath, "queries", node)
}

// UpsertQuery adds q to existing, replacing any query with the same name,
// and saves the result.
func UpsertQuery(configPath string, q QueryConfig, existing []QueryConfig) ([]QueryConfig, error) {
	queries := slices.Clone(existing)
	idx := slices.IndexFunc(queries, func(e QueryConfig) bool { return e.Name == q.Name })
	if idx >= 0 {
		queries[idx] = q
	} else {
		queries = append(queries, q)
	}
	if err := SaveQueries(configPath, queries); err != nil {
		return nil, err
	}
	return queries, nil
}

// DeleteQuery removes the named query and saves the result.
func DeleteQuery(configPath, name string, existing []QueryConfig) ([]QueryConfig, error) {
	idx := slices.IndexFunc(existing, func(e QueryConfig) bool { return e.Name == name })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrQueryNotFound, name)
	}
	queries := slices.Delete(slices.Clone(existing), idx, idx+1)
	if err := SaveQueries(configPath, queries); err != nil {
		return nil, err
	}
	return queries, nil
}

func buildQueriesNode(queries []QueryConfig) (*yaml.Node, error) {
	if queries == nil {
		queries = []QueryConfig{}
	}
	var node yaml.Node
	if err := node.Encode(queries); err != nil {
		return nil, err
	}
	return &node, nil
}

// saveSection sets key in the root mapping of the YAML file to value and
// writes the file atomically.
func saveSection(configPath, key string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level must be a mapping")
	}

	root := doc.Content[0]
	found := false
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == key {
			// keep the comment attached to the old value
			value.HeadComment = root.Content[i+1].HeadComment
			root.Content[i+1] = value
			found = true
			break
		}
	}
	if !found {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			value,
		)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".undertags.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
