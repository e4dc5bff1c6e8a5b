// Package schemaloader is the Descriptor Set Loader (SPEC_FULL.md
// §4.11): it satisfies the external "schema loader" collaborator
// boundary spec.md §1 and §6 describe, without re-implementing a
// `.proto` text parser (explicitly out of scope). Instead it walks the
// configured search paths for compiled `FileDescriptorSet` blobs
// (`.protoset` files, the form `protoc --descriptor_set_out` or `buf
// build -o` produce) and feeds them to schema.BuildFromFileDescriptorSet.
package schemaloader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/protobuf/proto"
	dpb "github.com/golang/protobuf/protoc-gen-go/descriptor"

	"github.com/protolens/pbtree/config"
	"github.com/protolens/pbtree/schema"
)

// Load builds a Pool from every `.protoset` file found under the
// search paths that have LoadAll set. A bad file is recorded in the
// returned error slice and does not abort the walk — matching the
// design note in spec.md §9 that the loader's success/failure signal
// must be unambiguous per file, unlike the source's inverted return
// polarity.
func Load(paths []config.SearchPath) (*schema.Pool, []error) {
	var errs []error
	combined := &dpb.FileDescriptorSet{}

	for _, sp := range paths {
		if !sp.LoadAll {
			continue
		}
		walkErr := filepath.WalkDir(sp.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, fmt.Errorf("walking %s: %w", path, err))
				return nil // don't abort the rest of the tree
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".protoset") {
				return nil
			}
			fds, loadErr := readFileDescriptorSet(path)
			if loadErr != nil {
				errs = append(errs, loadErr)
				return nil
			}
			combined.File = append(combined.File, fds.GetFile()...)
			return nil
		})
		if walkErr != nil {
			errs = append(errs, fmt.Errorf("scanning %s: %w", sp.Path, walkErr))
		}
	}

	pool, buildErrs := schema.BuildFromFileDescriptorSet(combined)
	errs = append(errs, buildErrs...)
	return pool, errs
}

func readFileDescriptorSet(path string) (*dpb.FileDescriptorSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var fds dpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &fds); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &fds, nil
}
