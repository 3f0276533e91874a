// Package mxf implements the structural header-metadata object graph,
// component E: a typed representation of Preface, ContentStorage,
// Packages, Tracks, Sequences, components and descriptors. Per spec §9
// ("Cyclic / by-reference object graph") the graph is modeled as an
// arena + index rather than a pointer graph: a single owning Arena of
// tagged InterchangeObject variants, plus instance_uid -> index and
// class -> indices lookup maps. Cross-references are byte-equal UUIDs,
// so no pointer fix-up is needed on load.
package mxf

import (
	"time"

	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// Header carries the fields every InterchangeObject shares.
type Header struct {
	InstanceUID   ul.UUID
	GenerationUID *ul.UUID
}

// Class names every concrete object variant the arena can hold.
type Class int

const (
	ClassPreface Class = iota
	ClassIdentification
	ClassContentStorage
	ClassMaterialPackage
	ClassSourcePackage
	ClassTrack
	ClassStaticTrack
	ClassSequence
	ClassSourceClip
	ClassTimecodeComponent
	ClassDMSegment
	ClassCryptographicFramework
	ClassCryptographicContext
	ClassCDCIEssenceDescriptor
	ClassRGBAEssenceDescriptor
	ClassWaveAudioDescriptor
	ClassJPEG2000SubDescriptor
	ClassMCALabelSubDescriptor
	ClassTimedTextResourceSubDescriptor
)

// Object is a tagged variant: Header plus a class-specific field struct.
// Only one of the typed fields is populated, selected by Class.
type Object struct {
	Header
	Class Class

	Preface       *Preface
	Identification *Identification
	ContentStorage *ContentStorage
	Package       *Package
	Track         *Track
	Sequence      *Sequence
	SourceClip    *SourceClip
	Timecode      *TimecodeComponent
	DMSegment     *DMSegment
	CryptoFramework *CryptographicFramework
	CryptoContext *CryptographicContext
	PictureDescriptor *PictureDescriptor
	SoundDescriptor *SoundDescriptor
	SubDescriptor *SubDescriptor
}

type Preface struct {
	ContentStorage ul.UUID
	OperationalPattern ul.UL
	EssenceContainers []ul.UL
	DMSchemes []ul.UL
	IsEncrypted bool
	LastModifiedDate time.Time
	Version uint16
}

type Identification struct {
	CompanyName      string
	ProductName      string
	ProductVersion   string
	ToolkitVersion   string
	ProductUID       ul.UUID
	ModificationDate time.Time
}

type ContentStorage struct {
	Packages []ul.UUID
}

// PackageKind distinguishes Material vs Source (File) packages.
type PackageKind int

const (
	KindMaterial PackageKind = iota
	KindSource
)

type Package struct {
	Kind        PackageKind
	PackageUID  ul.UMID
	Tracks      []ul.UUID
	Descriptor  *ul.UUID // File Package only
}

type Track struct {
	TrackID     uint32
	TrackNumber uint32
	EditRateNum int32
	EditRateDen int32
	Sequence    ul.UUID
	IsStatic    bool
}

type Sequence struct {
	DataDefinition ul.UL
	Duration       int64 // -1 == not yet known
	Components     []ul.UUID
	DurationPtr    *int64
}

type SourceClip struct {
	Duration    int64
	StartPosition int64
	SourcePackageID ul.UMID
	SourceTrackID   uint32
	DurationPtr *int64
}

type TimecodeComponent struct {
	Duration          int64
	RoundedTimecodeBase uint16
	StartTimecode     int64
	DropFrame         bool
	DurationPtr *int64
}

type DMSegment struct {
	Duration     int64
	DMFramework  *ul.UUID
	DurationPtr  *int64
}

type CryptographicFramework struct {
	ContextSR ul.UUID
}

type CryptographicContext struct {
	ContextID            ul.UUID
	SourceEssenceContainer ul.UL
	CryptographicKeyID   ul.UUID
	MICAlgorithm         ul.UL
	CryptographicAlgorithm ul.UL
}

type PictureDescriptor struct {
	ContainerDuration int64
	SampleRateNum     int32
	SampleRateDen     int32
	FrameLayout       uint8
	StoredWidth       uint32
	StoredHeight      uint32
	EssenceContainer  ul.UL
	PictureCompression ul.UL
	SubDescriptors    []ul.UUID
	ContainerDurationPtr *int64
}

type SoundDescriptor struct {
	ContainerDuration int64
	SampleRateNum     int32
	SampleRateDen     int32
	AudioSamplingRateNum int32
	AudioSamplingRateDen int32
	Channels          uint32
	QuantizationBits  uint32
	BlockAlign        uint16
	AvgBps            uint32
	EssenceContainer  ul.UL
	SubDescriptors    []ul.UUID
	ContainerDurationPtr *int64
}

// SubDescriptor is a tagged union of the ST 377-4/429 subdescriptor kinds.
type SubDescriptor struct {
	Kind           Class
	Rsize          uint32 // JPEG2000
	Xsize, Ysize   uint32
	ResourceID     *ul.UUID // timed-text
	MCALabelDictionaryID *ul.UL
	MCATagSymbol   string
}
