package domain

import (
	"path/filepath"
	"strings"
)

// ToolKind identifies one of the external programs the app orchestrates.
type ToolKind string

const (
	ToolExtractor  ToolKind = "extractor"
	ToolTranscoder ToolKind = "transcoder"
	ToolRecognizer ToolKind = "recognizer"
)

// InvocationMode says whether a tool runs directly or through an interpreter.
type InvocationMode string

const (
	InvocationNative      InvocationMode = "native"
	InvocationInterpreted InvocationMode = "interpreted"
)

// ScriptInterpreter runs extractor scripts found without a native build.
const ScriptInterpreter = "python3"

// ToolBinary is a resolved external tool.
type ToolBinary struct {
	Kind      ToolKind       `json:"kind"`
	Path      string         `json:"path"`
	Mode      InvocationMode `json:"mode"`
	ModelPath string         `json:"modelPath,omitempty"`
}

// Invocation returns the program and argument vector used to start the tool.
func (t ToolBinary) Invocation(args []string) (string, []string) {
	if t.Mode == InvocationInterpreted {
		return ScriptInterpreter, append([]string{t.Path}, args...)
	}
	return t.Path, args
}

// IsBundled reports whether Path points at a file rather than a bare PATH name.
func (t ToolBinary) IsBundled() bool {
	return strings.ContainsRune(t.Path, filepath.Separator) || strings.ContainsRune(t.Path, '/')
}
