package trackfile

import (
	"time"

	"github.com/cinecert/asdcplib-sub001/internal/mxf"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// graph is the in-memory header-metadata object set a writer assembles on
// open and mutates at finalize. Exactly one File (Source) Package carries
// the essence track; a mirrored Material Package references the same
// duration-bearing components through independent Sequence/Component
// objects so the two packages never alias the same instance_uid.
type graph struct {
	arena *mxf.Arena

	preface        *mxf.Object
	filePackage    *mxf.Object
	materialPackage *mxf.Object
	essenceTrack   *mxf.Object
	timecodeTrack  *mxf.Object
	essenceSeq     *mxf.Object
	sourceClip     *mxf.Object
	descriptor     *mxf.Object
	cryptoContext  *mxf.Object
}

const (
	materialTypeFile byte = 0x0d
	materialTypeMat  byte = 0x0f
)

// buildGraph constructs the minimal legal Preface/ContentStorage/Package
// graph for one essence kind (spec §4.I open_write), wiring duration
// pointers the writer updates on finalize.
func buildGraph(info WriterInfo, kind EssenceKind, opPattern OperationalPattern, editRateNum, editRateDen int32, encrypted bool) *graph {
	a := mxf.NewArena()
	g := &graph{arena: a}

	ident := a.Add(&mxf.Object{Class: mxf.ClassIdentification, Identification: &mxf.Identification{
		CompanyName:      info.CompanyName,
		ProductName:      info.ProductName,
		ProductVersion:   info.ProductVersion,
		ToolkitVersion:   info.ToolkitVersion,
		ProductUID:       info.ProductUUID,
		ModificationDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}})

	descriptor := buildDescriptor(a, kind)
	g.descriptor = descriptor

	dataDef := dataDefinitionFor(kind)

	// Essence sequence + source clip (duration filled in at finalize).
	clip := &mxf.SourceClip{Duration: -1, StartPosition: 0}
	clip.DurationPtr = &clip.Duration
	clipObj := a.Add(&mxf.Object{Class: mxf.ClassSourceClip, SourceClip: clip})
	g.sourceClip = clipObj

	seq := &mxf.Sequence{DataDefinition: dataDef, Duration: -1, Components: []ul.UUID{clipObj.InstanceUID}}
	seq.DurationPtr = &seq.Duration
	seqObj := a.Add(&mxf.Object{Class: mxf.ClassSequence, Sequence: seq})
	g.essenceSeq = seqObj

	essenceTrack := a.Add(&mxf.Object{Class: mxf.ClassTrack, Track: &mxf.Track{
		TrackID: 2, TrackNumber: 1, EditRateNum: editRateNum, EditRateDen: editRateDen, Sequence: seqObj.InstanceUID,
	}})
	g.essenceTrack = essenceTrack

	// Timecode track: one TimecodeComponent inside its own Sequence.
	tc := &mxf.TimecodeComponent{Duration: -1, RoundedTimecodeBase: roundedTimecodeBase(editRateNum, editRateDen), StartTimecode: 0}
	tc.DurationPtr = &tc.Duration
	tcObj := a.Add(&mxf.Object{Class: mxf.ClassTimecodeComponent, Timecode: tc})
	tcSeq := &mxf.Sequence{DataDefinition: timecodeDataDef(), Duration: -1, Components: []ul.UUID{tcObj.InstanceUID}}
	tcSeq.DurationPtr = &tcSeq.Duration
	tcSeqObj := a.Add(&mxf.Object{Class: mxf.ClassSequence, Sequence: tcSeq})
	timecodeTrack := a.Add(&mxf.Object{Class: mxf.ClassTrack, Track: &mxf.Track{
		TrackID: 1, TrackNumber: 0, EditRateNum: editRateNum, EditRateDen: editRateDen, Sequence: tcSeqObj.InstanceUID,
	}})
	g.timecodeTrack = timecodeTrack

	filePkgTracks := []ul.UUID{timecodeTrack.InstanceUID, essenceTrack.InstanceUID}

	if encrypted {
		ctxID := info.ContextID
		if ctxID == (ul.UUID{}) {
			ctxID = ul.NewUUID()
		}
		cryptoCtx := a.Add(&mxf.Object{Class: mxf.ClassCryptographicContext, CryptoContext: &mxf.CryptographicContext{
			ContextID:              ctxID,
			SourceEssenceContainer: descriptorEssenceContainer(descriptor),
			CryptographicKeyID:     info.CryptographicKeyID,
			MICAlgorithm:           hmacSHA1UL(),
			CryptographicAlgorithm: aes128CBCUL(),
		}})
		g.cryptoContext = cryptoCtx
		fw := a.Add(&mxf.Object{Class: mxf.ClassCryptographicFramework, CryptoFramework: &mxf.CryptographicFramework{ContextSR: cryptoCtx.InstanceUID}})
		dm := &mxf.DMSegment{Duration: -1}
		dm.DurationPtr = &dm.Duration
		dmFW := fw.InstanceUID
		dm.DMFramework = &dmFW
		dmObj := a.Add(&mxf.Object{Class: mxf.ClassDMSegment, DMSegment: dm})
		cryptoSeq := &mxf.Sequence{DataDefinition: dataDef, Duration: -1, Components: []ul.UUID{dmObj.InstanceUID}}
		cryptoSeq.DurationPtr = &cryptoSeq.Duration
		cryptoSeqObj := a.Add(&mxf.Object{Class: mxf.ClassSequence, Sequence: cryptoSeq})
		staticTrack := a.Add(&mxf.Object{Class: mxf.ClassStaticTrack, Track: &mxf.Track{
			TrackID: 3, TrackNumber: 0, EditRateNum: editRateNum, EditRateDen: editRateDen, Sequence: cryptoSeqObj.InstanceUID, IsStatic: true,
		}})
		filePkgTracks = append(filePkgTracks, staticTrack.InstanceUID)
	}

	descObj := a.Add(descriptor)
	filePkg := a.Add(&mxf.Object{Class: mxf.ClassSourcePackage, Package: &mxf.Package{
		Kind: mxf.KindSource, PackageUID: ul.NewUMID(materialTypeFile, [3]byte{1, 1, 0}),
		Tracks: filePkgTracks, Descriptor: &descObj.InstanceUID,
	}})
	g.filePackage = filePkg

	// Material package mirrors the File Package's essence track (not its
	// timecode track) with independent Sequence/SourceClip instances
	// pointing back at it.
	matClip := &mxf.SourceClip{Duration: -1, SourcePackageID: filePkg.Package.PackageUID, SourceTrackID: essenceTrack.Track.TrackID}
	matClip.DurationPtr = &matClip.Duration
	matClipObj := a.Add(&mxf.Object{Class: mxf.ClassSourceClip, SourceClip: matClip})
	matSeq := &mxf.Sequence{DataDefinition: dataDef, Duration: -1, Components: []ul.UUID{matClipObj.InstanceUID}}
	matSeq.DurationPtr = &matSeq.Duration
	matSeqObj := a.Add(&mxf.Object{Class: mxf.ClassSequence, Sequence: matSeq})
	matTrack := a.Add(&mxf.Object{Class: mxf.ClassTrack, Track: &mxf.Track{
		TrackID: 2, TrackNumber: 1, EditRateNum: editRateNum, EditRateDen: editRateDen, Sequence: matSeqObj.InstanceUID,
	}})
	matPkg := a.Add(&mxf.Object{Class: mxf.ClassMaterialPackage, Package: &mxf.Package{
		Kind: mxf.KindMaterial, PackageUID: ul.NewUMID(materialTypeMat, [3]byte{1, 1, 0}),
		Tracks: []ul.UUID{matTrack.InstanceUID},
	}})
	g.materialPackage = matPkg

	cs := a.Add(&mxf.Object{Class: mxf.ClassContentStorage, ContentStorage: &mxf.ContentStorage{
		Packages: []ul.UUID{matPkg.InstanceUID, filePkg.InstanceUID},
	}})

	opUL := operationalPatternUL(opPattern)
	preface := &mxf.Preface{
		ContentStorage:     cs.InstanceUID,
		OperationalPattern: opUL,
		EssenceContainers:  []ul.UL{essenceContainerULFor(kind)},
		IsEncrypted:        encrypted,
		LastModifiedDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Version:            0x0103,
	}
	prefaceObj := a.Add(&mxf.Object{Class: mxf.ClassPreface, Preface: preface})
	g.preface = prefaceObj
	_ = ident

	// Arena insertion order (Identification before Preface is intentional:
	// Preface must be findable by MustOne regardless of position since it
	// is looked up by class, not by file offset).
	return g
}

func operationalPatternUL(op OperationalPattern) ul.UL {
	name := "OperationalPattern1a"
	if op == OPAtom {
		name = "OperationalPatternAtom"
	}
	e, _ := ul.For(ul.SMPTE).ByName(name)
	return e.UL
}

func essenceContainerULFor(kind EssenceKind) ul.UL {
	e, _ := ul.For(ul.SMPTE).ByName("EssenceContainerMXFGC")
	return e.UL
}

func dataDefinitionFor(kind EssenceKind) ul.UL {
	var u ul.UL
	switch kind {
	case EssencePCM:
		u = ulOf(0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x01, 0x01, 0x03, 0x02, 0x02, 0x02, 0x00, 0x00, 0x00)
	default:
		u = ulOf(0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x01, 0x01, 0x03, 0x02, 0x02, 0x01, 0x00, 0x00, 0x00)
	}
	return u
}

// roundedTimecodeBase derives a TimecodeComponent's rounded_timecode_base
// from the track's edit rate (spec §4.I: ceil(rate)), so a 30000/1001
// (29.97) or 24000/1001 (23.976) edit rate rounds up to 30 or 24, not the
// fixed 24 an 24/1 track happens to share.
func roundedTimecodeBase(editRateNum, editRateDen int32) uint16 {
	if editRateDen <= 0 {
		return uint16(editRateNum)
	}
	return uint16((editRateNum + editRateDen - 1) / editRateDen)
}

func timecodeDataDef() ul.UL {
	return ulOf(0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x01, 0x01, 0x03, 0x02, 0x01, 0x01, 0x00, 0x00, 0x00)
}

func hmacSHA1UL() ul.UL {
	return ulOf(0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x07, 0x02, 0x09, 0x02, 0x01, 0x02, 0x00, 0x00, 0x00)
}

func aes128CBCUL() ul.UL {
	return ulOf(0x06, 0x0e, 0x2b, 0x34, 0x04, 0x01, 0x01, 0x07, 0x02, 0x09, 0x02, 0x01, 0x01, 0x00, 0x00, 0x00)
}

func ulOf(b ...byte) ul.UL {
	var u ul.UL
	copy(u[:], b)
	return u
}

// descriptorEssenceContainer reads the EssenceContainer UL out of whichever
// typed descriptor variant is populated.
func descriptorEssenceContainer(obj *mxf.Object) ul.UL {
	if obj.PictureDescriptor != nil {
		return obj.PictureDescriptor.EssenceContainer
	}
	if obj.SoundDescriptor != nil {
		return obj.SoundDescriptor.EssenceContainer
	}
	return ul.UL{}
}

func buildDescriptor(a *mxf.Arena, kind EssenceKind) *mxf.Object {
	ec := essenceContainerULFor(kind)
	switch kind {
	case EssenceJPEG2000:
		sub := a.Add(&mxf.Object{Class: mxf.ClassJPEG2000SubDescriptor, SubDescriptor: &mxf.SubDescriptor{Kind: mxf.ClassJPEG2000SubDescriptor}})
		pd := &mxf.PictureDescriptor{
			ContainerDuration: -1, SampleRateNum: 24, SampleRateDen: 1, FrameLayout: 0,
			EssenceContainer: ec, SubDescriptors: []ul.UUID{sub.InstanceUID},
		}
		pd.ContainerDurationPtr = &pd.ContainerDuration
		return &mxf.Object{Class: mxf.ClassRGBAEssenceDescriptor, PictureDescriptor: pd}
	case EssenceMPEG2:
		pd := &mxf.PictureDescriptor{ContainerDuration: -1, SampleRateNum: 24, SampleRateDen: 1, FrameLayout: 0, EssenceContainer: ec}
		pd.ContainerDurationPtr = &pd.ContainerDuration
		return &mxf.Object{Class: mxf.ClassCDCIEssenceDescriptor, PictureDescriptor: pd}
	case EssencePCM:
		sd := &mxf.SoundDescriptor{
			ContainerDuration: -1, SampleRateNum: 48000, SampleRateDen: 1,
			AudioSamplingRateNum: 48000, AudioSamplingRateDen: 1, EssenceContainer: ec,
		}
		sd.ContainerDurationPtr = &sd.ContainerDuration
		return &mxf.Object{Class: mxf.ClassWaveAudioDescriptor, SoundDescriptor: sd}
	case EssenceTimedText:
		sub := a.Add(&mxf.Object{Class: mxf.ClassTimedTextResourceSubDescriptor, SubDescriptor: &mxf.SubDescriptor{Kind: mxf.ClassTimedTextResourceSubDescriptor}})
		sd := &mxf.SoundDescriptor{
			ContainerDuration: -1, SampleRateNum: 24, SampleRateDen: 1, EssenceContainer: ec,
			SubDescriptors: []ul.UUID{sub.InstanceUID},
		}
		sd.ContainerDurationPtr = &sd.ContainerDuration
		return &mxf.Object{Class: mxf.ClassWaveAudioDescriptor, SoundDescriptor: sd}
	default:
		pd := &mxf.PictureDescriptor{ContainerDuration: -1, SampleRateNum: 24, SampleRateDen: 1, EssenceContainer: ec}
		pd.ContainerDurationPtr = &pd.ContainerDuration
		return &mxf.Object{Class: mxf.ClassCDCIEssenceDescriptor, PictureDescriptor: pd}
	}
}
