package typesystem

import "github.com/wippyai/nativeformat/metadata"

// FieldDesc is a field of a MetadataType or of an instantiation of one.
type FieldDesc struct {
	owner     TypeDesc
	typical   *FieldDesc
	fieldType TypeDesc
	name      string
	attrs     metadata.FieldAttributes
}

func (f *FieldDesc) OwningType() TypeDesc                 { return f.owner }
func (f *FieldDesc) Name() string                         { return f.name }
func (f *FieldDesc) Attributes() metadata.FieldAttributes { return f.attrs }
func (f *FieldDesc) IsStatic() bool                       { return f.attrs&metadata.FieldAttributeStatic != 0 }

// FieldType returns the field's type with the owner's arguments substituted.
func (f *FieldDesc) FieldType() TypeDesc { return f.fieldType }

// GetTypicalFieldDefinition returns the field on the generic definition.
func (f *FieldDesc) GetTypicalFieldDefinition() *FieldDesc {
	if f.typical != nil {
		return f.typical
	}
	return f
}

func (f *FieldDesc) String() string { return f.owner.String() + "." + f.name }
