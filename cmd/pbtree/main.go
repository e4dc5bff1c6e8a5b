// Command pbtree decodes a Protocol Buffers wire-format buffer into a
// labelled tree and prints it, exercising the full dispatch → message →
// field → render/packed pipeline end to end.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/protolens/pbtree/config"
	"github.com/protolens/pbtree/dispatch"
	"github.com/protolens/pbtree/tree"
	"github.com/protolens/pbtree/schemaloader"
)

var log = logrus.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("pbtree failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var descriptorSetDirs []string
	var messageName string
	var hint string
	var showAllTypes bool
	var tryDissectAsString bool
	var dissectBytesAsString bool

	root := &cobra.Command{
		Use:   "pbtree [input-file]",
		Short: "Decode a protobuf wire-format buffer into a labelled tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := readInput(args)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			var paths []config.SearchPath
			for _, d := range descriptorSetDirs {
				paths = append(paths, config.SearchPath{Path: d, LoadAll: true})
			}
			pool, loadErrs := schemaloader.Load(paths)
			for _, e := range loadErrs {
				log.WithError(e).Warn("descriptor set load issue")
			}

			cfg := config.Snapshot{
				ShowAllPossibleTypes: showAllTypes,
				TryDissectAsString:   tryDissectAsString,
				DissectBytesAsString: dissectBytesAsString,
			}

			req := dispatch.Request{Buffer: buf, Hint: resolveHint(hint, messageName)}
			result := dispatch.Decode(req, pool, cfg)
			logExpertInfo(result)
			tree.Print(cmd.OutOrStdout(), result)
			return nil
		},
	}

	root.Flags().StringSliceVar(&descriptorSetDirs, "descriptor-set-dir", nil, "directory to recursively scan for .protoset files")
	root.Flags().StringVar(&messageName, "message", "", "fully-qualified message type to decode as (shorthand for --hint message,<name>)")
	root.Flags().StringVar(&hint, "hint", "", `decode hint: "message,<full_name>" or "<content-type>,[/]<service>/<method>,(request|response)"`)
	root.Flags().BoolVar(&showAllTypes, "show-all-types", false, "render unknown fields under every type permitted by their wire type")
	root.Flags().BoolVar(&tryDissectAsString, "try-string", false, "render unknown length-delimited fields as UTF-8 strings")
	root.Flags().BoolVar(&dissectBytesAsString, "bytes-as-string", false, "additionally render BYTES fields as UTF-8")

	return root
}

func resolveHint(hint, messageName string) string {
	if hint != "" {
		return hint
	}
	if messageName != "" {
		return "message," + messageName
	}
	return ""
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(os.Stdin)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// logExpertInfo surfaces every warning/error-severity diagnostic the
// decode produced as a structured log line, the way an operator running
// this against a live capture would want to see problems without
// scrolling through the whole tree.
func logExpertInfo(root *tree.Node) {
	tree.Walk(root, func(n *tree.Node) {
		for _, ei := range n.ExpertInfos {
			entry := log.WithFields(logrus.Fields{
				"kind":     ei.Kind,
				"severity": ei.Severity,
				"node":     n.Label,
				"offset":   n.Range.Offset,
			})
			if ei.Severity.String() == "error" {
				entry.Error(ei.Message)
			} else {
				entry.Warn(ei.Message)
			}
		}
	})
}
