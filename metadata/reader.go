package metadata

import (
	"fmt"
	"iter"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wippyai/nativeformat/codec"
	"github.com/wippyai/nativeformat/errors"
)

// Signature is the little-endian magic at offset 0 of every blob.
const Signature uint32 = 0xDEADDFFD

// Options configures a Reader.
type Options struct {
	// StringCacheSize bounds the decoded-string cache. Zero disables it.
	StringCacheSize int
}

// DefaultOptions returns default reader configuration.
func DefaultOptions() Options {
	return Options{
		StringCacheSize: 4096,
	}
}

// Reader resolves handles against an immutable blob.
// Safe for concurrent use; the blob must not be modified while in use.
type Reader struct {
	strings *lru.Cache[ConstantStringValueHandle, string]
	data    []byte
	scopes  []ScopeDefinitionHandle
	// first byte past the header; no record lives below it
	recordsStart int
}

// NewReader validates the header and returns a Reader over data.
func NewReader(data []byte, opts Options) (*Reader, error) {
	r := &Reader{data: data}

	cr := codec.NewReader(data, 0)
	sig, err := cr.ReadU32LE()
	if err != nil {
		return nil, errors.BadMetadata("Header", 0, err)
	}
	if sig != Signature {
		return nil, errors.New(errors.PhaseDecode, errors.KindBadMetadata).
			Record("Header").
			Detail("bad signature 0x%08x", sig).
			Value(sig).
			Build()
	}

	d := decoder{r: cr}
	r.scopes = readTypedHandles[ScopeDefinitionHandle](&d)
	if d.err != nil {
		return nil, errors.BadMetadata("Header", d.r.Offset(), d.err)
	}
	r.recordsStart = d.r.Offset()

	if opts.StringCacheSize > 0 {
		cache, err := lru.New[ConstantStringValueHandle, string](opts.StringCacheSize)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "string cache")
		}
		r.strings = cache
	}
	return r, nil
}

// Bytes returns the underlying blob.
func (r *Reader) Bytes() []byte {
	return r.data
}

// ScopeDefinitionHandleCollection is the root collection of a blob.
type ScopeDefinitionHandleCollection struct {
	handles []ScopeDefinitionHandle
}

// Count returns the number of scopes.
func (c ScopeDefinitionHandleCollection) Count() int {
	return len(c.handles)
}

// At returns the i-th scope handle.
func (c ScopeDefinitionHandleCollection) At(i int) ScopeDefinitionHandle {
	return c.handles[i]
}

// All iterates the scope handles in blob order.
func (c ScopeDefinitionHandleCollection) All() iter.Seq[ScopeDefinitionHandle] {
	return func(yield func(ScopeDefinitionHandle) bool) {
		for _, h := range c.handles {
			if !yield(h) {
				return
			}
		}
	}
}

// ScopeDefinitions returns the root scopes of the blob.
func (r *Reader) ScopeDefinitions() ScopeDefinitionHandleCollection {
	return ScopeDefinitionHandleCollection{handles: r.scopes}
}

// open positions a decoder at the record addressed by h.
func (r *Reader) open(h Handle, want HandleType) (decoder, error) {
	if h.IsNil() {
		return decoder{}, errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("nil %s handle", want))
	}
	if h.HandleType() != want {
		return decoder{}, errors.TagMismatch(want.String(), h.HandleType().String(), uint32(h))
	}
	off := h.Offset()
	if off < r.recordsStart || off >= len(r.data) {
		return decoder{}, errors.New(errors.PhaseDecode, errors.KindBadMetadata).
			Record(want.String()).
			Detail("offset %d outside record area [%d, %d)", off, r.recordsStart, len(r.data)).
			Value(off).
			Build()
	}
	return decoder{r: codec.NewReader(r.data, off)}, nil
}

func finish(d *decoder, h Handle) error {
	if d.err == nil {
		return nil
	}
	return errors.BadMetadata(h.HandleType().String(), h.Offset(), d.err)
}

// GetScopeDefinition decodes the scope definition at h.
func (r *Reader) GetScopeDefinition(h ScopeDefinitionHandle) (ScopeDefinition, error) {
	var rec ScopeDefinition
	d, err := r.open(Handle(h), HandleTypeScopeDefinition)
	if err != nil {
		return rec, err
	}
	rec.Flags = readEnum[AssemblyFlags](&d)
	rec.Name = readTypedHandle[ConstantStringValueHandle](&d)
	rec.HashAlgorithm = readEnum[AssemblyHashAlgorithm](&d)
	rec.MajorVersion = d.u16()
	rec.MinorVersion = d.u16()
	rec.BuildNumber = d.u16()
	rec.RevisionNumber = d.u16()
	rec.PublicKey = d.blob()
	rec.Culture = readTypedHandle[ConstantStringValueHandle](&d)
	rec.RootNamespaceDefinition = readTypedHandle[NamespaceDefinitionHandle](&d)
	rec.EntryPoint = readTypedHandle[MethodHandle](&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetScopeReference decodes the scope reference at h.
func (r *Reader) GetScopeReference(h ScopeReferenceHandle) (ScopeReference, error) {
	var rec ScopeReference
	d, err := r.open(Handle(h), HandleTypeScopeReference)
	if err != nil {
		return rec, err
	}
	rec.Flags = readEnum[AssemblyFlags](&d)
	rec.Name = readTypedHandle[ConstantStringValueHandle](&d)
	rec.MajorVersion = d.u16()
	rec.MinorVersion = d.u16()
	rec.BuildNumber = d.u16()
	rec.RevisionNumber = d.u16()
	rec.PublicKeyOrToken = d.blob()
	rec.Culture = readTypedHandle[ConstantStringValueHandle](&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetNamespaceDefinition decodes the namespace definition at h.
func (r *Reader) GetNamespaceDefinition(h NamespaceDefinitionHandle) (NamespaceDefinition, error) {
	var rec NamespaceDefinition
	d, err := r.open(Handle(h), HandleTypeNamespaceDefinition)
	if err != nil {
		return rec, err
	}
	rec.ParentScopeOrNamespace = readHandle(&d)
	rec.Name = readTypedHandle[ConstantStringValueHandle](&d)
	rec.TypeDefinitions = readTypedHandles[TypeDefinitionHandle](&d)
	rec.NamespaceDefinitions = readTypedHandles[NamespaceDefinitionHandle](&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetNamespaceReference decodes the namespace reference at h.
func (r *Reader) GetNamespaceReference(h NamespaceReferenceHandle) (NamespaceReference, error) {
	var rec NamespaceReference
	d, err := r.open(Handle(h), HandleTypeNamespaceReference)
	if err != nil {
		return rec, err
	}
	rec.ParentScopeOrNamespace = readHandle(&d)
	rec.Name = readTypedHandle[ConstantStringValueHandle](&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetTypeDefinition decodes the type definition at h.
func (r *Reader) GetTypeDefinition(h TypeDefinitionHandle) (TypeDefinition, error) {
	var rec TypeDefinition
	d, err := r.open(Handle(h), HandleTypeTypeDefinition)
	if err != nil {
		return rec, err
	}
	rec.Flags = readEnum[TypeAttributes](&d)
	rec.BaseType = readHandle(&d)
	rec.NamespaceDefinition = readTypedHandle[NamespaceDefinitionHandle](&d)
	rec.Name = readTypedHandle[ConstantStringValueHandle](&d)
	rec.Size = d.u32()
	rec.PackingSize = d.u16()
	rec.EnclosingType = readTypedHandle[TypeDefinitionHandle](&d)
	rec.NestedTypes = readTypedHandles[TypeDefinitionHandle](&d)
	rec.Methods = readTypedHandles[MethodHandle](&d)
	rec.Fields = readTypedHandles[FieldHandle](&d)
	rec.Interfaces = readHandles(&d)
	rec.GenericParameters = readTypedHandles[GenericParameterHandle](&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetTypeReference decodes the type reference at h.
func (r *Reader) GetTypeReference(h TypeReferenceHandle) (TypeReference, error) {
	var rec TypeReference
	d, err := r.open(Handle(h), HandleTypeTypeReference)
	if err != nil {
		return rec, err
	}
	rec.ParentNamespaceOrType = readHandle(&d)
	rec.TypeName = readTypedHandle[ConstantStringValueHandle](&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetTypeSpecification decodes the type specification at h.
func (r *Reader) GetTypeSpecification(h TypeSpecificationHandle) (TypeSpecification, error) {
	var rec TypeSpecification
	d, err := r.open(Handle(h), HandleTypeTypeSpecification)
	if err != nil {
		return rec, err
	}
	rec.Signature = readHandle(&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetTypeInstantiationSignature decodes the instantiation signature at h.
func (r *Reader) GetTypeInstantiationSignature(h TypeInstantiationSignatureHandle) (TypeInstantiationSignature, error) {
	var rec TypeInstantiationSignature
	d, err := r.open(Handle(h), HandleTypeTypeInstantiationSignature)
	if err != nil {
		return rec, err
	}
	rec.GenericType = readHandle(&d)
	rec.GenericTypeArguments = readHandles(&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetSZArraySignature decodes the array signature at h.
func (r *Reader) GetSZArraySignature(h SZArraySignatureHandle) (SZArraySignature, error) {
	var rec SZArraySignature
	d, err := r.open(Handle(h), HandleTypeSZArraySignature)
	if err != nil {
		return rec, err
	}
	rec.ElementType = readHandle(&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetArraySignature decodes the multi-dimensional array signature at h.
func (r *Reader) GetArraySignature(h ArraySignatureHandle) (ArraySignature, error) {
	var rec ArraySignature
	d, err := r.open(Handle(h), HandleTypeArraySignature)
	if err != nil {
		return rec, err
	}
	rec.ElementType = readHandle(&d)
	rec.Rank = d.u32()
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetByReferenceSignature decodes the byref signature at h.
func (r *Reader) GetByReferenceSignature(h ByReferenceSignatureHandle) (ByReferenceSignature, error) {
	var rec ByReferenceSignature
	d, err := r.open(Handle(h), HandleTypeByReferenceSignature)
	if err != nil {
		return rec, err
	}
	rec.Type = readHandle(&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetPointerSignature decodes the pointer signature at h.
func (r *Reader) GetPointerSignature(h PointerSignatureHandle) (PointerSignature, error) {
	var rec PointerSignature
	d, err := r.open(Handle(h), HandleTypePointerSignature)
	if err != nil {
		return rec, err
	}
	rec.Type = readHandle(&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetTypeVariableSignature decodes the type variable at h.
func (r *Reader) GetTypeVariableSignature(h TypeVariableSignatureHandle) (TypeVariableSignature, error) {
	var rec TypeVariableSignature
	d, err := r.open(Handle(h), HandleTypeTypeVariableSignature)
	if err != nil {
		return rec, err
	}
	rec.Number = d.u32()
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetMethodTypeVariableSignature decodes the method type variable at h.
func (r *Reader) GetMethodTypeVariableSignature(h MethodTypeVariableSignatureHandle) (MethodTypeVariableSignature, error) {
	var rec MethodTypeVariableSignature
	d, err := r.open(Handle(h), HandleTypeMethodTypeVariableSignature)
	if err != nil {
		return rec, err
	}
	rec.Number = d.u32()
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetGenericParameter decodes the generic parameter at h.
func (r *Reader) GetGenericParameter(h GenericParameterHandle) (GenericParameter, error) {
	var rec GenericParameter
	d, err := r.open(Handle(h), HandleTypeGenericParameter)
	if err != nil {
		return rec, err
	}
	rec.Number = d.u16()
	rec.Flags = readEnum[GenericParameterAttributes](&d)
	rec.Kind = GenericParameterKind(d.u8())
	rec.Name = readTypedHandle[ConstantStringValueHandle](&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetMethod decodes the method at h.
func (r *Reader) GetMethod(h MethodHandle) (Method, error) {
	var rec Method
	d, err := r.open(Handle(h), HandleTypeMethod)
	if err != nil {
		return rec, err
	}
	rec.Flags = readEnum[MethodAttributes](&d)
	rec.ImplFlags = readEnum[MethodImplAttributes](&d)
	rec.Name = readTypedHandle[ConstantStringValueHandle](&d)
	rec.Signature = readTypedHandle[MethodSignatureHandle](&d)
	rec.GenericParameters = readTypedHandles[GenericParameterHandle](&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetMethodSignature decodes the method signature at h.
func (r *Reader) GetMethodSignature(h MethodSignatureHandle) (MethodSignature, error) {
	var rec MethodSignature
	d, err := r.open(Handle(h), HandleTypeMethodSignature)
	if err != nil {
		return rec, err
	}
	rec.CallingConvention = readEnum[SignatureCallingConvention](&d)
	rec.GenericParameterCount = d.u32()
	rec.ReturnType = readHandle(&d)
	rec.Parameters = readHandles(&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetMethodInstantiation decodes the method instantiation at h.
func (r *Reader) GetMethodInstantiation(h MethodInstantiationHandle) (MethodInstantiation, error) {
	var rec MethodInstantiation
	d, err := r.open(Handle(h), HandleTypeMethodInstantiation)
	if err != nil {
		return rec, err
	}
	rec.Method = readHandle(&d)
	rec.GenericTypeArguments = readHandles(&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetMemberReference decodes the member reference at h.
func (r *Reader) GetMemberReference(h MemberReferenceHandle) (MemberReference, error) {
	var rec MemberReference
	d, err := r.open(Handle(h), HandleTypeMemberReference)
	if err != nil {
		return rec, err
	}
	rec.Parent = readHandle(&d)
	rec.Name = readTypedHandle[ConstantStringValueHandle](&d)
	rec.Signature = readHandle(&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetField decodes the field at h.
func (r *Reader) GetField(h FieldHandle) (Field, error) {
	var rec Field
	d, err := r.open(Handle(h), HandleTypeField)
	if err != nil {
		return rec, err
	}
	rec.Flags = readEnum[FieldAttributes](&d)
	rec.Name = readTypedHandle[ConstantStringValueHandle](&d)
	rec.Signature = readTypedHandle[FieldSignatureHandle](&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetFieldSignature decodes the field signature at h.
func (r *Reader) GetFieldSignature(h FieldSignatureHandle) (FieldSignature, error) {
	var rec FieldSignature
	d, err := r.open(Handle(h), HandleTypeFieldSignature)
	if err != nil {
		return rec, err
	}
	rec.Type = readHandle(&d)
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetConstantStringValue decodes the string record at h.
func (r *Reader) GetConstantStringValue(h ConstantStringValueHandle) (ConstantStringValue, error) {
	var rec ConstantStringValue
	d, err := r.open(Handle(h), HandleTypeConstantStringValue)
	if err != nil {
		return rec, err
	}
	rec.Value = d.str()
	rec.handle = h
	return rec, finish(&d, Handle(h))
}

// GetString returns the value of a string record. The null handle reads as "".
func (r *Reader) GetString(h ConstantStringValueHandle) (string, error) {
	if h.IsNil() {
		return "", nil
	}
	if r.strings != nil {
		if s, ok := r.strings.Get(h); ok {
			return s, nil
		}
	}
	rec, err := r.GetConstantStringValue(h)
	if err != nil {
		return "", err
	}
	if r.strings != nil {
		r.strings.Add(h, rec.Value)
	}
	return rec.Value, nil
}
