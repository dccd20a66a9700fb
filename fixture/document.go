// Package fixture builds metadata blobs from a YAML description.
//
// A document lists scopes, the types each scope defines and, optionally,
// method roots:
//
//	scopes:
//	  - name: System.Runtime
//	    version: 8.0.0.0
//	    types:
//	      - name: System.Object
//	      - name: System.Collections.Generic.List`1
//	        base: System.Object
//	        generic: [T]
//	        methods:
//	          - {name: Add, returns: System.Void, params: ["!0"]}
//	  - name: App
//	    types:
//	      - name: Demo.Names
//	        base: System.Collections.Generic.List`1<System.String>
//	roots:
//	  - scope: App
//	    method: System.Collections.Generic.List`1<System.String>::Add
//
// Type names use the syntax of package typename. A name defined by the
// current scope becomes a type definition, a name defined by another scope
// becomes a type reference into it, and a "[Scope]" prefix forces a
// reference into a scope the document does not need to define.
package fixture

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/nativeformat/errors"
)

// Document is the YAML form of a blob.
type Document struct {
	Scopes []*Scope `yaml:"scopes"`
	Roots  []*Root  `yaml:"roots,omitempty"`
}

// Scope is one scope definition.
type Scope struct {
	Name string `yaml:"name"`
	// Version is major[.minor[.build[.revision]]].
	Version    string  `yaml:"version,omitempty"`
	Culture    string  `yaml:"culture,omitempty"`
	EntryPoint string  `yaml:"entrypoint,omitempty"`
	Types      []*Type `yaml:"types,omitempty"`
}

// Type is a type definition. Top-level names are namespace qualified;
// nested type names are simple.
type Type struct {
	Name       string    `yaml:"name"`
	Base       string    `yaml:"base,omitempty"`
	Interface  bool      `yaml:"interface,omitempty"`
	Abstract   bool      `yaml:"abstract,omitempty"`
	Sealed     bool      `yaml:"sealed,omitempty"`
	Interfaces []string  `yaml:"interfaces,omitempty"`
	Generic    []string  `yaml:"generic,omitempty"`
	Size       uint32    `yaml:"size,omitempty"`
	Fields     []*Field  `yaml:"fields,omitempty"`
	Methods    []*Method `yaml:"methods,omitempty"`
	Nested     []*Type   `yaml:"nested,omitempty"`
}

// Field is a field definition.
type Field struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static,omitempty"`
}

// Method is a method definition. An empty Returns records no return type.
type Method struct {
	Name     string   `yaml:"name"`
	Static   bool     `yaml:"static,omitempty"`
	Virtual  bool     `yaml:"virtual,omitempty"`
	Abstract bool     `yaml:"abstract,omitempty"`
	Generic  []string `yaml:"generic,omitempty"`
	Returns  string   `yaml:"returns,omitempty"`
	Params   []string `yaml:"params,omitempty"`
}

// Root names a method as seen from a scope, in Owner::Name<Args>(Params)
// form. When the owner does not declare the method, the root becomes a
// member reference with a signature built from Returns, Static and the
// parameter list, which is then required.
type Root struct {
	Scope   string `yaml:"scope"`
	Method  string `yaml:"method"`
	Returns string `yaml:"returns,omitempty"`
	Static  bool   `yaml:"static,omitempty"`
}

// Parse decodes a document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	doc := &Document{}
	if err := dec.Decode(doc); err != nil {
		return nil, errors.ParseFailed("fixture", err)
	}
	if len(doc.Scopes) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "fixture defines no scopes")
	}
	return doc, nil
}

// Load parses data and builds its record graph.
func Load(data []byte) (*Fixture, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return doc.Build()
}
