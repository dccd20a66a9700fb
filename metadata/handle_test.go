package metadata

import (
	"testing"

	"github.com/wippyai/nativeformat/errors"
)

func TestNewHandle(t *testing.T) {
	h, err := NewHandle(HandleTypeTypeDefinition, 0x1234)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	if h.HandleType() != HandleTypeTypeDefinition {
		t.Errorf("HandleType = %s", h.HandleType())
	}
	if h.Offset() != 0x1234 {
		t.Errorf("Offset = %#x", h.Offset())
	}
	if uint32(h) != 5<<24|0x1234 {
		t.Errorf("raw = %#x", uint32(h))
	}

	if _, err := NewHandle(HandleTypeMethod, MaxOffset+1); err == nil {
		t.Error("expected overflow for offset past 24 bits")
	}
	if _, err := NewHandle(handleTypeCount, 0); err == nil {
		t.Error("expected error for unknown tag")
	}
}

func TestAs(t *testing.T) {
	tests := []struct {
		name    string
		raw     Handle
		wantErr bool
	}{
		{"zero", 0, false},
		{"matching tag", Handle(uint32(HandleTypeTypeDefinition)<<24 | 5), false},
		{"null tag with offset", Handle(5), false},
		{"method tag", Handle(uint32(HandleTypeMethod)<<24 | 5), true},
		{"type reference tag", Handle(uint32(HandleTypeTypeReference)<<24 | 5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := As[TypeDefinitionHandle](tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("As(%v) succeeded", tt.raw)
				}
				if !errors.IsBadMetadata(err) {
					t.Errorf("tag mismatch not classified as bad metadata: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("As(%v): %v", tt.raw, err)
			}
			if Handle(h) != tt.raw {
				t.Errorf("As changed the handle: %v", h)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	good := MethodHandle(uint32(HandleTypeMethod)<<24 | 9)
	if err := Validate(good); err != nil {
		t.Errorf("Validate(%v): %v", Handle(good), err)
	}
	bad := MethodHandle(uint32(HandleTypeField)<<24 | 9)
	if err := Validate(bad); err == nil {
		t.Error("Validate accepted a field-tagged method handle")
	}
}

func TestHandleTypeString(t *testing.T) {
	if s := HandleTypeMemberReference.String(); s != "MemberReference" {
		t.Errorf("String = %q", s)
	}
	if s := HandleType(200).String(); s != "HandleType(200)" {
		t.Errorf("String = %q", s)
	}
	if HandleTypeMethod.IsType() {
		t.Error("Method is not a type kind")
	}
	if !HandleTypeTypeInstantiationSignature.IsType() {
		t.Error("TypeInstantiationSignature is a type kind")
	}
}
