package ul

import "sync"

// LabelSet selects which flavor of the dictionary a writer/reader targets.
type LabelSet int

const (
	Interop LabelSet = iota
	SMPTE
	Composite
)

// Entry is one Metadata Dictionary entry: a symbolic name bound to a UL,
// optionally a fixed local tag, and whether the field is optional in a set.
type Entry struct {
	Name     string
	UL       UL
	LocalTag uint16 // 0 if dynamically assigned
	Optional bool
}

// Registry is the process-wide, read-only-after-init catalog mapping
// symbolic names to MDD entries (spec §4.B, §5 "process-wide, read-only
// singleton initialized lazily under a one-shot mutex").
type Registry struct {
	set      LabelSet
	byName   map[string]*Entry
	byUL     map[UL]*Entry
}

var (
	once       sync.Once
	interopReg *Registry
	smpteReg   *Registry
	compReg    *Registry
)

func build(set LabelSet) *Registry {
	r := &Registry{set: set, byName: map[string]*Entry{}, byUL: map[UL]*Entry{}}
	for _, e := range baseEntries(set) {
		ee := e
		r.byName[ee.Name] = &ee
		r.byUL[ee.UL] = &ee
	}
	return r
}

func initRegistries() {
	once.Do(func() {
		interopReg = build(Interop)
		smpteReg = build(SMPTE)
		compReg = build(Composite)
	})
}

// For returns the process-wide registry for the requested label set.
func For(set LabelSet) *Registry {
	initRegistries()
	switch set {
	case Interop:
		return interopReg
	case SMPTE:
		return smpteReg
	default:
		return compReg
	}
}

func (r *Registry) ByName(name string) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

func (r *Registry) ByUL(u UL) (*Entry, bool) {
	e, ok := r.byUL[u]
	return e, ok
}

func ulOf(hexBytes ...byte) UL {
	var u UL
	copy(u[:], hexBytes)
	return u
}

// baseEntries returns the MDD table. Both label sets share every entry
// except the EssenceContainerMXFGC UL, which differs between Interop and
// SMPTE.
func baseEntries(set LabelSet) []Entry {
	entries := []Entry{
		{Name: "InstanceUID", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x15, 0x02, 0x03, 0x00, 0x00, 0x00), LocalTag: 0x3c0a},
		{Name: "GenerationUID", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x02, 0x05, 0x20, 0x07, 0x01, 0x01, 0x02, 0x00, 0x00), LocalTag: 0x0102, Optional: true},
		{Name: "Preface", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x2f, 0x00)},
		{Name: "ContentStorage", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x18, 0x00)},
		{Name: "MaterialPackage", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x36, 0x00)},
		{Name: "SourcePackage", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x37, 0x00)},
		{Name: "StaticTrack", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x3a, 0x00)},
		{Name: "Track", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x3b, 0x00)},
		{Name: "Sequence", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x0f, 0x00)},
		{Name: "SourceClip", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x11, 0x00)},
		{Name: "TimecodeComponent", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x14, 0x00)},
		{Name: "DMSegment", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x41, 0x00)},
		{Name: "CryptographicFramework", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x02, 0x20, 0x00)},
		{Name: "CryptographicContext", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x02, 0x21, 0x00)},
		{Name: "Identification", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x30, 0x00)},
		{Name: "CDCIEssenceDescriptor", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x28, 0x00)},
		{Name: "RGBAEssenceDescriptor", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x29, 0x00)},
		{Name: "WaveAudioDescriptor", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x01, 0x48, 0x00)},
		{Name: "JPEG2000PictureSubDescriptor", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x02, 0x1b, 0x00)},
		{Name: "MCALabelSubDescriptor", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x02, 0x0e, 0x00)},
		{Name: "TimedTextResourceSubDescriptor", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x02, 0x25, 0x00)},
		{Name: "GenericStreamTextBasedSet", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x01, 0x01, 0x01, 0x02, 0x30, 0x00)},

		// Frame-wrapped essence element ULs (stream index carried in byte 15).
		{Name: "MPEG2PictureElement", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x01, 0x02, 0x01, 0x01, 0x0d, 0x01, 0x03, 0x01, 0x15, 0x01, 0x05, 0x00)},
		{Name: "JPEG2000PictureElement", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x01, 0x02, 0x01, 0x01, 0x0d, 0x01, 0x03, 0x01, 0x15, 0x01, 0x09, 0x00)},
		{Name: "WaveAudioElement", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x01, 0x02, 0x01, 0x01, 0x0d, 0x01, 0x03, 0x01, 0x16, 0x01, 0x01, 0x00)},
		{Name: "TimedTextElement", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x01, 0x02, 0x01, 0x01, 0x0d, 0x01, 0x03, 0x01, 0x17, 0x01, 0x01, 0x00)},
		{Name: "EncryptedTripletElement", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x04, 0x01, 0x07, 0x0d, 0x01, 0x03, 0x01, 0x02, 0x7e, 0x01, 0x00)},

		{Name: "OperationalPatternAtom", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0d, 0x01, 0x02, 0x01, 0x10, 0x00, 0x00, 0x00)},
		{Name: "OperationalPattern1a", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x01, 0x0d, 0x01, 0x02, 0x01, 0x01, 0x01, 0x00, 0x00)},

		{Name: "HeaderPartitionClosedComplete", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x05, 0x01, 0x01, 0x0d, 0x01, 0x02, 0x01, 0x01, 0x02, 0x04, 0x00)},
		{Name: "BodyPartitionClosedComplete", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x05, 0x01, 0x01, 0x0d, 0x01, 0x02, 0x01, 0x01, 0x03, 0x04, 0x00)},
		{Name: "FooterPartitionComplete", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x05, 0x01, 0x01, 0x0d, 0x01, 0x02, 0x01, 0x01, 0x04, 0x04, 0x00)},
		{Name: "RandomIndexPack", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x05, 0x01, 0x01, 0x0d, 0x01, 0x02, 0x01, 0x01, 0x11, 0x01, 0x00)},
		{Name: "KLVFill", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x01, 0x03, 0x01, 0x02, 0x10, 0x01, 0x00, 0x00, 0x00)},
		{Name: "IndexTableSegment", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0d, 0x01, 0x02, 0x01, 0x01, 0x10, 0x01, 0x00)},
		{Name: "PrimerPack", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x02, 0x05, 0x01, 0x01, 0x0d, 0x01, 0x02, 0x01, 0x01, 0x05, 0x01, 0x00)},
	}

	if set == Interop {
		entries = append(entries, Entry{Name: "EssenceContainerMXFGC", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x02, 0x0d, 0x01, 0x03, 0x01, 0x02, 0x02, 0x01, 0x00)})
	} else {
		entries = append(entries, Entry{Name: "EssenceContainerMXFGC", UL: ulOf(0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x03, 0x0d, 0x01, 0x03, 0x01, 0x02, 0x02, 0x01, 0x00)})
	}
	return entries
}
