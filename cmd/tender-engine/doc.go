// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/bidwise/tender-engine/internal/rules"
	"github.com/bidwise/tender-engine/pkg/types"
)

// documentFile is the on-disk form of collaborator output: page texts
// plus the raw tables found on them.
type documentFile struct {
	Pages  []string `yaml:"pages"`
	Tables []struct {
		Page int        `yaml:"page"`
		Rows [][]string `yaml:"rows"`
	} `yaml:"tables"`
}

// loadDocument reads a document from path. YAML (and JSON, which YAML
// subsumes) files carry pages and tables; a .txt file is split into pages
// on form-feed characters.
func loadDocument(path string) (rules.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rules.Document{}, fmt.Errorf("reading document %s: %w", path, err)
	}

	if strings.HasSuffix(path, ".txt") {
		var pages []string
		for _, p := range strings.Split(string(data), "\f") {
			if strings.TrimSpace(p) != "" {
				pages = append(pages, p)
			}
		}
		return rules.Document{Pages: pages}, nil
	}

	var df documentFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return rules.Document{}, fmt.Errorf("parsing document %s: %w", path, err)
	}

	doc := rules.Document{Pages: df.Pages}
	for _, t := range df.Tables {
		doc.Tables = append(doc.Tables, types.RawTable{Page: t.Page, Rows: t.Rows})
	}
	return doc, nil
}
