// Package catalog loads the declarative service catalog from YAML files
// mirrored out of S3 and serves parsed documents with a staleness check.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	catalogDomain "accessgate/internal/domain/catalog"
)

// LoadFile parses one catalog YAML file. The source format allows multiple
// concatenated documents in a single stream; empty documents are skipped.
func LoadFile(path string) ([]*catalogDomain.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file %q: %w", path, err)
	}
	defer file.Close()

	return parseDocuments(file, path)
}

func parseDocuments(r io.Reader, source string) ([]*catalogDomain.Document, error) {
	var docs []*catalogDomain.Document

	decoder := yaml.NewDecoder(r)
	for {
		var doc catalogDomain.Document
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse catalog YAML %q: %w", source, err)
		}
		if len(doc.AWSServices) == 0 && len(doc.TwingateServices) == 0 {
			continue
		}
		docs = append(docs, &doc)
	}

	return docs, nil
}
