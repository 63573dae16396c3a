// --- START OF FINAL REVISED FILE pkg/auditor/document/snapshot.go ---
package document

import (
	"strings"

	"github.com/stackvity/template-auditor/pkg/auditor"
)

// SnapshotSchemaVersion is written to every saved snapshot.
const SnapshotSchemaVersion = "1"

// Snapshot is the serialized form of a design document.
type Snapshot struct {
	SchemaVersion string     `json:"schemaVersion,omitempty" yaml:"schemaVersion,omitempty" toml:"schemaVersion,omitempty" msgpack:"schemaVersion,omitempty"`
	Name          string     `json:"name" yaml:"name" toml:"name" msgpack:"name"`
	CurrentPage   string     `json:"currentPage,omitempty" yaml:"currentPage,omitempty" toml:"currentPage,omitempty" msgpack:"currentPage,omitempty"`
	Selection     []string   `json:"selection,omitempty" yaml:"selection,omitempty" toml:"selection,omitempty" msgpack:"selection,omitempty"`
	Library       []NodeSpec `json:"library,omitempty" yaml:"library,omitempty" toml:"library,omitempty" msgpack:"library,omitempty"` // templates published from other files
	Pages         []NodeSpec `json:"pages" yaml:"pages" toml:"pages" msgpack:"pages"`
}

// NodeSpec is one serialized node. Instances reference their template by id in Main.
type NodeSpec struct {
	ID        string         `json:"id" yaml:"id" toml:"id" msgpack:"id"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" msgpack:"name,omitempty"`
	Type      string         `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty" msgpack:"type,omitempty"`
	Main      string         `json:"main,omitempty" yaml:"main,omitempty" toml:"main,omitempty" msgpack:"main,omitempty"`
	Remote    bool           `json:"remote,omitempty" yaml:"remote,omitempty" toml:"remote,omitempty" msgpack:"remote,omitempty"`
	Overrides map[string]any `json:"overrides,omitempty" yaml:"overrides,omitempty" toml:"overrides,omitempty" msgpack:"overrides,omitempty"`
	Children  []NodeSpec     `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty" msgpack:"children,omitempty"`
}

// kindFromType maps a serialized type to a node kind. Unknown types are KindOther.
func kindFromType(t string) auditor.NodeKind {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "instance":
		return auditor.KindInstance
	case "component":
		return auditor.KindComponent
	case "component-set", "component_set", "componentset":
		return auditor.KindComponentSet
	case "container", "frame", "group", "section":
		return auditor.KindContainer
	default:
		return auditor.KindOther
	}
}

// --- END OF FINAL REVISED FILE pkg/auditor/document/snapshot.go ---
