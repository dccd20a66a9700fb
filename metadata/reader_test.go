package metadata_test

import (
	"encoding/binary"
	"testing"

	"github.com/wippyai/nativeformat/codec"
	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/metadata"
	"github.com/wippyai/nativeformat/metadata/writer"
)

func sampleBlob(t *testing.T) ([]byte, *writer.Writer, *writer.TypeDefinition) {
	t.Helper()
	scope := &writer.ScopeDefinition{Name: "Sample", MajorVersion: 1}
	root := &writer.NamespaceDefinition{ParentScopeOrNamespace: scope}
	scope.RootNamespaceDefinition = root
	td := &writer.TypeDefinition{Name: "Widget", NamespaceDefinition: root}
	td.Fields = []*writer.Field{{
		Name:      "count",
		Flags:     metadata.FieldAttributePublic,
		Signature: &writer.FieldSignature{Type: td},
	}}
	root.TypeDefinitions = []*writer.TypeDefinition{td}

	w := writer.New(writer.DefaultOptions())
	w.ScopeDefinitions = []*writer.ScopeDefinition{scope}
	data, err := w.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	return data, w, td
}

func TestNewReaderHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{0xFD, 0xDF}},
		{"bad magic", []byte{0, 0, 0, 0, 0}},
		{"missing count", binary.LittleEndian.AppendUint32(nil, metadata.Signature)},
		{"count past end", codec.AppendUnsigned(binary.LittleEndian.AppendUint32(nil, metadata.Signature), 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := metadata.NewReader(tt.data, metadata.DefaultOptions())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsBadMetadata(err) {
				t.Errorf("not bad metadata: %v", err)
			}
		})
	}
}

func TestEmptyBlob(t *testing.T) {
	data := codec.AppendUnsigned(binary.LittleEndian.AppendUint32(nil, metadata.Signature), 0)
	r, err := metadata.NewReader(data, metadata.DefaultOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.ScopeDefinitions().Count() != 0 {
		t.Errorf("scope count = %d", r.ScopeDefinitions().Count())
	}
}

func TestReaderFields(t *testing.T) {
	data, w, td := sampleBlob(t)
	for _, size := range []int{0, 16} {
		r, err := metadata.NewReader(data, metadata.Options{StringCacheSize: size})
		if err != nil {
			t.Fatalf("NewReader: %v", err)
		}
		h, _ := w.HandleOf(td)
		rec, err := r.GetTypeDefinition(metadata.TypeDefinitionHandle(h))
		if err != nil {
			t.Fatalf("GetTypeDefinition: %v", err)
		}
		if rec.Handle() != metadata.TypeDefinitionHandle(h) {
			t.Errorf("Handle() = %v", rec.Handle())
		}
		if len(rec.Fields) != 1 {
			t.Fatalf("fields = %d", len(rec.Fields))
		}
		f, err := r.GetField(rec.Fields[0])
		if err != nil {
			t.Fatalf("GetField: %v", err)
		}
		// read twice to go through the cache
		for range 2 {
			name, err := r.GetString(f.Name)
			if err != nil || name != "count" {
				t.Errorf("field name = %q, %v", name, err)
			}
		}
		sig, err := r.GetFieldSignature(f.Signature)
		if err != nil {
			t.Fatalf("GetFieldSignature: %v", err)
		}
		if sig.Type != h {
			t.Errorf("field type = %v, want %v", sig.Type, h)
		}
	}
}

func TestReaderHandleErrors(t *testing.T) {
	data, w, td := sampleBlob(t)
	r, err := metadata.NewReader(data, metadata.DefaultOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	h, _ := w.HandleOf(td)

	if _, err := r.GetMethod(metadata.MethodHandle(h)); err == nil || !errors.IsBadMetadata(err) {
		t.Errorf("wrong-tag read: %v", err)
	}
	if _, err := r.GetTypeDefinition(0); err == nil {
		t.Error("nil handle read succeeded")
	}
	past := metadata.TypeDefinitionHandle(uint32(metadata.HandleTypeTypeDefinition)<<24 | uint32(len(data)+10))
	if _, err := r.GetTypeDefinition(past); err == nil || !errors.IsBadMetadata(err) {
		t.Errorf("out of range read: %v", err)
	}
	header := metadata.TypeDefinitionHandle(uint32(metadata.HandleTypeTypeDefinition)<<24 | 1)
	if _, err := r.GetTypeDefinition(header); err == nil || !errors.IsBadMetadata(err) {
		t.Errorf("header read: %v", err)
	}
	if s, err := r.GetString(0); err != nil || s != "" {
		t.Errorf("null string = %q, %v", s, err)
	}
}

func TestReaderTruncated(t *testing.T) {
	data, w, td := sampleBlob(t)
	h, _ := w.HandleOf(td)
	cut := data[:h.Offset()+2]
	r, err := metadata.NewReader(cut, metadata.DefaultOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	_, err = r.GetTypeDefinition(metadata.TypeDefinitionHandle(h))
	if err == nil {
		t.Fatal("truncated record decoded")
	}
	if !errors.IsBadMetadata(err) {
		t.Errorf("not bad metadata: %v", err)
	}
}

func TestScopeIteration(t *testing.T) {
	data, _, _ := sampleBlob(t)
	r, err := metadata.NewReader(data, metadata.DefaultOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	n := 0
	for h := range r.ScopeDefinitions().All() {
		s, err := r.GetScopeDefinition(h)
		if err != nil {
			t.Fatalf("GetScopeDefinition: %v", err)
		}
		if name, _ := r.GetString(s.Name); name != "Sample" {
			t.Errorf("scope name = %q", name)
		}
		n++
	}
	if n != 1 {
		t.Errorf("iterated %d scopes", n)
	}
}
