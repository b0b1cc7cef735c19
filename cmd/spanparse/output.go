package main

import (
	"encoding/json"
	"io"
)

type treeNode struct {
	Kind     string      `json:"kind"`
	Span     spanJSON    `json:"span"`
	Text     string      `json:"text,omitempty"`
	Children []*treeNode `json:"children,omitempty"`
}

type spanJSON struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func writeTree(w io.Writer, root *treeNode) error {
	text, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(text); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
