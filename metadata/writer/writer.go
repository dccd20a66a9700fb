package writer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"

	"fortio.org/safecast"
	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-set/v3"
	"go.uber.org/zap"

	"github.com/wippyai/nativeformat/codec"
	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/metadata"
)

// Options configures a Writer.
type Options struct {
	// DisableDedup emits every reachable record as its own blob entry.
	DisableDedup bool
}

// DefaultOptions returns the default writer options.
func DefaultOptions() Options {
	return Options{}
}

// Writer serializes a record graph rooted at its scope definitions.
//
// Scope, namespace and type definitions are emitted once per object.
// Every other record is hash-consed: records with equal kind and equal
// encoded fields, after their children have been merged, share one blob
// entry and one handle.
type Writer struct {
	// ScopeDefinitions are listed in the blob header.
	ScopeDefinitions []*ScopeDefinition
	// AdditionalRootRecords are emitted even if no scope reaches them.
	AdditionalRootRecords []Record

	opts    Options
	handles map[Record]metadata.Handle
}

// New creates a Writer.
func New(opts Options) *Writer {
	return &Writer{opts: opts}
}

// HandleOf returns the handle assigned to r by the last successful Write.
// Records merged with an equal record report the surviving record's handle.
func (w *Writer) HandleOf(r Record) (metadata.Handle, bool) {
	if isNilRecord(r) {
		return 0, false
	}
	h, ok := w.handles[r]
	return h, ok
}

// WriteTo writes the blob to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	data, err := w.Write()
	if err != nil {
		return 0, err
	}
	n, err := out.Write(data)
	return int64(n), err
}

// Write lays out and encodes every record reachable from the roots.
func (w *Writer) Write() ([]byte, error) {
	g := newGraph(w.opts)
	for _, s := range w.ScopeDefinitions {
		if s == nil {
			return nil, errors.Precondition(errors.PhaseEncode, "nil scope definition root")
		}
		g.discover(s)
	}
	for _, r := range w.AdditionalRootRecords {
		g.discover(r)
	}
	if g.err != nil {
		return nil, g.err
	}

	if err := g.canonicalize(); err != nil {
		return nil, err
	}

	// Scope handles in the header have a fixed width whatever their offset.
	scopeHandleLen := codec.EncodedLen(uint32(metadata.HandleTypeScopeDefinition) << 24)
	start := 4 + codec.EncodedLen(uint32(len(w.ScopeDefinitions))) + len(w.ScopeDefinitions)*scopeHandleLen
	if err := g.layout(start); err != nil {
		return nil, err
	}

	out := codec.NewWriter(g.size)
	out.WriteU32LE(metadata.Signature)
	out.WriteU32(uint32(len(w.ScopeDefinitions)))
	for _, s := range w.ScopeDefinitions {
		out.WriteU32(uint32(g.handle(s)))
	}
	if err := g.emit(out); err != nil {
		return nil, err
	}

	w.handles = make(map[Record]metadata.Handle, len(g.order))
	for _, r := range g.order {
		w.handles[r] = g.handle(r)
	}

	Logger().Debug("metadata written",
		zap.Int("records", len(g.order)),
		zap.Int("emitted", len(g.emitted)),
		zap.Int("merged", len(g.order)-len(g.emitted)),
		zap.Int("bytes", out.Len()))
	return out.Bytes(), nil
}

// graph holds the per-Write state.
type graph struct {
	err     error
	opts    Options
	visited *set.Set[Record]
	ids     map[Record]uint32
	order   []Record
	strings map[string]*ConstantStringValue

	canon   map[Record]Record
	keys    map[Record][]byte
	buckets map[uint64][]Record
	active  *set.Set[Record]

	emitted []Record
	offsets map[Record]uint32
	size    int
}

func newGraph(opts Options) *graph {
	return &graph{
		opts:    opts,
		visited: set.New[Record](256),
		ids:     make(map[Record]uint32),
		strings: make(map[string]*ConstantStringValue),
		canon:   make(map[Record]Record),
		keys:    make(map[Record][]byte),
		buckets: make(map[uint64][]Record),
		active:  set.New[Record](16),
		offsets: make(map[Record]uint32),
	}
}

func (g *graph) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func isNilRecord(r Record) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// isDefinition reports whether r keeps its own identity in the blob.
func isDefinition(r Record) bool {
	switch r.HandleType() {
	case metadata.HandleTypeScopeDefinition,
		metadata.HandleTypeNamespaceDefinition,
		metadata.HandleTypeTypeDefinition:
		return true
	}
	return false
}

func (g *graph) intern(s string) *ConstantStringValue {
	if r, ok := g.strings[s]; ok {
		return r
	}
	r := &ConstantStringValue{Value: s}
	g.strings[s] = r
	return r
}

// discover walks the graph depth-first and numbers every record in
// first-visit order.
func (g *graph) discover(r Record) {
	if g.err != nil || isNilRecord(r) {
		return
	}
	if t := r.HandleType(); t == metadata.HandleTypeNull || !t.Valid() {
		g.fail(errors.Precondition(errors.PhaseEncode,
			fmt.Sprintf("record %T has unknown kind %s", r, t)))
		return
	}
	if !g.visited.Insert(r) {
		return
	}
	g.ids[r] = uint32(len(g.order)) + 1
	g.order = append(g.order, r)
	r.visit(walker{g: g, owner: r})
}

type walker struct {
	g     *graph
	owner Record
}

func (walker) u8(uint8)       {}
func (walker) u16(uint16)     {}
func (walker) u32(uint32)     {}
func (walker) blob([]byte)    {}
func (walker) count(int)      {}
func (w walker) ref(r Record) { w.g.discover(r) }

func (w walker) str(s string) {
	if s != "" {
		w.g.discover(w.g.intern(s))
	}
}

func (w walker) typeRef(r Record) {
	if !isNilRecord(r) && !r.HandleType().IsType() {
		w.g.fail(errors.Precondition(errors.PhaseEncode,
			fmt.Sprintf("%s referenced as a type from %s", r.HandleType(), w.owner.HandleType())))
		return
	}
	w.g.discover(r)
}

// canonicalize maps every record to its representative.
func (g *graph) canonicalize() error {
	for _, r := range g.order {
		if _, err := g.resolve(r); err != nil {
			return err
		}
	}
	for _, r := range g.order {
		if g.canon[r] == r {
			g.emitted = append(g.emitted, r)
		}
	}
	return nil
}

func (g *graph) resolve(r Record) (Record, error) {
	if c, ok := g.canon[r]; ok {
		return c, nil
	}
	if g.opts.DisableDedup || isDefinition(r) {
		g.canon[r] = r
		return r, nil
	}
	if !g.active.Insert(r) {
		return nil, errors.Cycle(errors.PhaseEncode, r.HandleType().String())
	}
	k := &keyer{g: g}
	k.buf = codec.AppendUnsigned(k.buf, uint32(r.HandleType()))
	r.visit(k)
	g.active.Remove(r)
	if k.err != nil {
		return nil, k.err
	}

	sum := xxhash.Sum64(k.buf)
	for _, c := range g.buckets[sum] {
		if bytes.Equal(g.keys[c], k.buf) {
			g.canon[r] = c
			return c, nil
		}
	}
	g.buckets[sum] = append(g.buckets[sum], r)
	g.keys[r] = k.buf
	g.canon[r] = r
	return r, nil
}

// keyer encodes a structural record with every child replaced by the id
// of its representative.
type keyer struct {
	g   *graph
	err error
	buf []byte
}

func (k *keyer) u8(v uint8)   { k.buf = codec.AppendUnsigned(k.buf, uint32(v)) }
func (k *keyer) u16(v uint16) { k.buf = codec.AppendUnsigned(k.buf, uint32(v)) }
func (k *keyer) u32(v uint32) { k.buf = codec.AppendUnsigned(k.buf, v) }
func (k *keyer) count(n int)  { k.buf = codec.AppendUnsigned(k.buf, uint32(n)) }

func (k *keyer) blob(b []byte) {
	k.buf = codec.AppendUnsigned(k.buf, uint32(len(b)))
	k.buf = append(k.buf, b...)
}

func (k *keyer) str(s string) {
	if s == "" {
		k.ref(nil)
		return
	}
	k.ref(k.g.intern(s))
}

func (k *keyer) typeRef(r Record) { k.ref(r) }

func (k *keyer) ref(r Record) {
	if k.err != nil {
		return
	}
	// Every ref slot is four bytes wide; ids start at 1, so zero is nil.
	if isNilRecord(r) {
		k.buf = binary.LittleEndian.AppendUint32(k.buf, 0)
		return
	}
	c, err := k.g.resolve(r)
	if err != nil {
		k.err = err
		return
	}
	k.buf = binary.LittleEndian.AppendUint32(k.buf, k.g.ids[c])
}

// layout assigns offsets to representatives in discovery order. A handle's
// encoded length depends only on its tag, so sizes are final before any
// offset is known.
func (g *graph) layout(start int) error {
	pos := start
	scratch := codec.NewWriter(256)
	for _, r := range g.emitted {
		off, err := safecast.Conv[uint32](pos)
		if err != nil || off > metadata.MaxOffset {
			return errors.Overflow(errors.PhaseEncode, []string{r.HandleType().String()}, pos, "handle offset")
		}
		g.offsets[r] = off
		scratch.Reset()
		e := &emitter{g: g, w: scratch, placeholder: true}
		r.visit(e)
		if e.err != nil {
			return e.err
		}
		pos += scratch.Len()
	}
	g.size = pos
	return nil
}

func (g *graph) handle(r Record) metadata.Handle {
	if isNilRecord(r) {
		return 0
	}
	c := g.canon[r]
	return metadata.Handle(uint32(c.HandleType())<<24 | g.offsets[c])
}

func (g *graph) emit(out *codec.Writer) error {
	for _, r := range g.emitted {
		if out.Len() != int(g.offsets[r]) {
			return errors.Precondition(errors.PhaseEncode,
				fmt.Sprintf("%s laid out at %d but emitted at %d", r.HandleType(), g.offsets[r], out.Len()))
		}
		e := &emitter{g: g, w: out}
		r.visit(e)
		if e.err != nil {
			return e.err
		}
	}
	return nil
}

type emitter struct {
	g           *graph
	w           *codec.Writer
	err         error
	placeholder bool
}

func (e *emitter) u8(v uint8)    { e.w.WriteU32(uint32(v)) }
func (e *emitter) u16(v uint16)  { e.w.WriteU32(uint32(v)) }
func (e *emitter) u32(v uint32)  { e.w.WriteU32(v) }
func (e *emitter) blob(b []byte) { e.w.WriteBlob(b) }

func (e *emitter) count(n int) {
	c, err := safecast.Conv[uint32](n)
	if err != nil && e.err == nil {
		e.err = errors.Overflow(errors.PhaseEncode, nil, n, "count")
	}
	e.w.WriteU32(c)
}

func (e *emitter) str(s string) {
	if s == "" {
		e.ref(nil)
		return
	}
	e.ref(e.g.intern(s))
}

func (e *emitter) typeRef(r Record) { e.ref(r) }

func (e *emitter) ref(r Record) {
	if isNilRecord(r) {
		e.w.WriteU32(0)
		return
	}
	if e.placeholder {
		e.w.WriteU32(uint32(r.HandleType()) << 24)
		return
	}
	e.w.WriteU32(uint32(e.g.handle(r)))
}
