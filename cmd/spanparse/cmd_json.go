package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/spanparse/jsonspan"
	"github.com/dhamidi/spanparse/span"
)

func newJSONCmd() *cobra.Command {
	var allowTrailing bool
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "json [file]",
		Short: "Parse a JSON document and print its span tree",
		Long: `Parse a JSON document and print its span tree as indented JSON.

If no file is provided, the document is read from stdin. Every node in the
output carries the byte range of its raw source text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readInput(args)
			if err != nil {
				return err
			}

			opts := []jsonspan.Option{jsonspan.WithMaxDepth(maxDepth)}
			if allowTrailing {
				opts = append(opts, jsonspan.WithTrailingData())
			}

			value, err := jsonspan.Parse(source, opts...)
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			log.Debugf("parsed %d of %d input bytes", value.Span.End, len(source))

			return writeTree(os.Stdout, jsonTree(source, value))
		},
	}

	cmd.Flags().BoolVar(&allowTrailing, "allow-trailing", false, "allow content after the top-level value")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 128, "maximum nesting depth")
	return cmd
}

func jsonTree(source []byte, v span.Spanned[*jsonspan.Value]) *treeNode {
	node := &treeNode{
		Kind: v.Value.Kind.String(),
		Span: spanJSON{Start: v.Span.Start, End: v.Span.End},
	}

	switch v.Value.Kind {
	case jsonspan.KindArray:
		for _, elem := range v.Value.Elems {
			node.Children = append(node.Children, jsonTree(source, elem))
		}
	case jsonspan.KindObject:
		for _, m := range v.Value.Members {
			key := &treeNode{
				Kind: "key",
				Span: spanJSON{Start: m.Key.Span.Start, End: m.Key.Span.End},
				Text: m.Key.Value,
			}
			node.Children = append(node.Children, key, jsonTree(source, m.Value))
		}
	default:
		node.Text = string(v.Bytes(source))
	}
	return node
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 {
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return source, nil
	}
	source, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return source, nil
}
