package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/spanparse/httpspan"
	"github.com/dhamidi/spanparse/span"
)

func newHTTPCmd() *cobra.Command {
	var asResponse bool
	var readToClose bool

	cmd := &cobra.Command{
		Use:   "http [file]",
		Short: "Parse an HTTP/1.1 message and print its span tree",
		Long: `Parse a single HTTP/1.1 message and print its span tree as indented JSON.

If no file is provided, the message is read from stdin. By default the input
is parsed as a request; use --response for responses. --read-to-close permits
a response body framed by connection close, meaning the buffer must end where
the connection did.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readInput(args)
			if err != nil {
				return err
			}

			var root *treeNode
			if asResponse {
				var opts []httpspan.Option
				if readToClose {
					opts = append(opts, httpspan.WithReadToClose())
				}
				res, err := httpspan.ParseResponse(source, opts...)
				if err != nil {
					return fmt.Errorf("parse response: %w", err)
				}
				log.Debugf("parsed %d of %d input bytes", res.Span.End, len(source))
				root = responseTree(source, res)
			} else {
				req, err := httpspan.ParseRequest(source)
				if err != nil {
					return fmt.Errorf("parse request: %w", err)
				}
				log.Debugf("parsed %d of %d input bytes", req.Span.End, len(source))
				root = requestTree(source, req)
			}

			return writeTree(os.Stdout, root)
		},
	}

	cmd.Flags().BoolVar(&asResponse, "response", false, "parse a response instead of a request")
	cmd.Flags().BoolVar(&readToClose, "read-to-close", false, "permit read-to-close body framing (responses only)")
	return cmd
}

func requestTree(source []byte, req span.Spanned[httpspan.Request]) *treeNode {
	root := &treeNode{
		Kind: "request",
		Span: spanJSON{Start: req.Span.Start, End: req.Span.End},
	}
	root.Children = append(root.Children,
		leaf("method", source, req.Value.Method),
		leaf("target", source, req.Value.Target),
		versionLeaf(source, req.Value.Version),
	)
	root.Children = append(root.Children, headerNodes(source, req.Value.Headers)...)
	root.Children = append(root.Children, bodyTree(source, req.Value.Body))
	return root
}

func responseTree(source []byte, res span.Spanned[httpspan.Response]) *treeNode {
	root := &treeNode{
		Kind: "response",
		Span: spanJSON{Start: res.Span.Start, End: res.Span.End},
	}
	root.Children = append(root.Children,
		versionLeaf(source, res.Value.Version),
		&treeNode{
			Kind: "status",
			Span: spanJSON{Start: res.Value.Status.Span.Start, End: res.Value.Status.Span.End},
			Text: fmt.Sprintf("%d", res.Value.Status.Value),
		},
		leaf("reason", source, res.Value.Reason),
	)
	root.Children = append(root.Children, headerNodes(source, res.Value.Headers)...)
	root.Children = append(root.Children, bodyTree(source, res.Value.Body))
	return root
}

func headerNodes(source []byte, headers []span.Spanned[httpspan.Header]) []*treeNode {
	var nodes []*treeNode
	for _, h := range headers {
		nodes = append(nodes, &treeNode{
			Kind: "header",
			Span: spanJSON{Start: h.Span.Start, End: h.Span.End},
			Children: []*treeNode{
				leaf("name", source, h.Value.Name),
				leaf("value", source, h.Value.Value),
			},
		})
	}
	return nodes
}

func bodyTree(source []byte, body span.Spanned[httpspan.Body]) *treeNode {
	node := &treeNode{
		Kind: "body:" + body.Value.Kind.String(),
		Span: spanJSON{Start: body.Span.Start, End: body.Span.End},
	}
	for _, chunk := range body.Value.Chunks {
		node.Children = append(node.Children, &treeNode{
			Kind: "chunk",
			Span: spanJSON{Start: chunk.Span.Start, End: chunk.Span.End},
			Text: fmt.Sprintf("size=%d", chunk.Value.Size),
		})
	}
	return node
}

func leaf(kind string, source []byte, s span.Spanned[string]) *treeNode {
	return &treeNode{
		Kind: kind,
		Span: spanJSON{Start: s.Span.Start, End: s.Span.End},
		Text: string(s.Bytes(source)),
	}
}

func versionLeaf(source []byte, v span.Spanned[httpspan.Version]) *treeNode {
	return &treeNode{
		Kind: "version",
		Span: spanJSON{Start: v.Span.Start, End: v.Span.End},
		Text: string(v.Bytes(source)),
	}
}
