package mxf

import (
	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/tlv"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

var classByName = map[string]Class{
	"Preface":                        ClassPreface,
	"Identification":                 ClassIdentification,
	"ContentStorage":                 ClassContentStorage,
	"MaterialPackage":                ClassMaterialPackage,
	"SourcePackage":                  ClassSourcePackage,
	"Track":                          ClassTrack,
	"StaticTrack":                    ClassStaticTrack,
	"Sequence":                       ClassSequence,
	"SourceClip":                     ClassSourceClip,
	"TimecodeComponent":              ClassTimecodeComponent,
	"DMSegment":                      ClassDMSegment,
	"CryptographicFramework":         ClassCryptographicFramework,
	"CryptographicContext":           ClassCryptographicContext,
	"CDCIEssenceDescriptor":          ClassCDCIEssenceDescriptor,
	"RGBAEssenceDescriptor":          ClassRGBAEssenceDescriptor,
	"WaveAudioDescriptor":            ClassWaveAudioDescriptor,
	"JPEG2000PictureSubDescriptor":   ClassJPEG2000SubDescriptor,
	"MCALabelSubDescriptor":          ClassMCALabelSubDescriptor,
	"TimedTextResourceSubDescriptor": ClassTimedTextResourceSubDescriptor,
}

// classForUL finds the class whose MDD entry (in either label set) matches key.
func classForUL(key ul.UL) (Class, bool) {
	for name, c := range classByName {
		if e, ok := ul.For(ul.Interop).ByName(name); ok && e.UL.Equal(key) {
			return c, true
		}
		if e, ok := ul.For(ul.SMPTE).ByName(name); ok && e.UL.Equal(key) {
			return c, true
		}
	}
	return 0, false
}

// DecodeObject parses one header-metadata KLV packet (key + value already
// split) into an Object, resolving tags through primer.
func DecodeObject(key ul.UL, value []byte, primer *tlv.Primer) (*Object, error) {
	const op = "mxf.DecodeObject"
	class, ok := classForUL(key)
	if !ok {
		return nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	items, err := tlv.DecodeSet(value)
	if err != nil {
		return nil, err
	}
	get := func(tag uint16) ([]byte, bool) {
		it, ok := items[tag]
		if !ok {
			return nil, false
		}
		return it.Value, true
	}
	obj := &Object{Class: class}
	if v, ok := get(tagInstanceUID); ok {
		copy(obj.InstanceUID[:], v)
	}
	if v, ok := get(tagGenerationUID); ok {
		var g ul.UUID
		copy(g[:], v)
		obj.GenerationUID = &g
	}
	if err := readBody(obj, get); err != nil {
		return nil, err
	}
	return obj, nil
}

func u64(v []byte) int64 {
	var n uint64
	for _, b := range v {
		n = (n << 8) | uint64(b)
	}
	return int64(n)
}

func u32(v []byte) uint32 {
	var n uint32
	for _, b := range v {
		n = (n << 8) | uint32(b)
	}
	return n
}

func u16(v []byte) uint16 {
	if len(v) < 2 {
		return 0
	}
	return uint16(v[0])<<8 | uint16(v[1])
}

func uuidOf(v []byte) ul.UUID {
	var u ul.UUID
	copy(u[:], v)
	return u
}

func umidOf(v []byte) ul.UMID {
	var u ul.UMID
	copy(u[:], v)
	return u
}

func ulOfBytes(v []byte) ul.UL {
	var u ul.UL
	copy(u[:], v)
	return u
}

func decodeUUIDBatch(v []byte) ([]ul.UUID, error) {
	size, elems, err := tlv.DecodeBatch(v)
	if err != nil {
		return nil, err
	}
	if size != 16 {
		return nil, asdcperr.New(asdcperr.FormatError, "mxf.decodeUUIDBatch", nil)
	}
	out := make([]ul.UUID, len(elems))
	for i, e := range elems {
		out[i] = uuidOf(e)
	}
	return out, nil
}

func readBody(obj *Object, get func(uint16) ([]byte, bool)) error {
	switch obj.Class {
	case ClassPreface:
		p := &Preface{}
		if v, ok := get(tagPrefaceContentStorage); ok {
			p.ContentStorage = uuidOf(v)
		}
		if v, ok := get(tagPrefaceOperationalPattern); ok {
			p.OperationalPattern = ulOfBytes(v)
		}
		if v, ok := get(tagPrefaceEssenceContainers); ok {
			us, err := tlv.DecodeULArray(v)
			if err != nil {
				return err
			}
			p.EssenceContainers = us
		}
		if v, ok := get(tagPrefaceDMSchemes); ok {
			us, err := tlv.DecodeULArray(v)
			if err != nil {
				return err
			}
			p.DMSchemes = us
		}
		if v, ok := get(tagPrefaceIsEncrypted); ok && len(v) == 1 {
			p.IsEncrypted = v[0] != 0
		}
		if v, ok := get(tagPrefaceLastModifiedDate); ok {
			t, err := tlv.DecodeTimestamp(v)
			if err != nil {
				return err
			}
			p.LastModifiedDate = t
		}
		if v, ok := get(tagPrefaceVersion); ok {
			p.Version = u16(v)
		}
		obj.Preface = p

	case ClassIdentification:
		id := &Identification{}
		if v, ok := get(tagIdCompanyName); ok {
			s, _ := tlv.DecodeUTF16BE(v)
			id.CompanyName = s
		}
		if v, ok := get(tagIdProductName); ok {
			s, _ := tlv.DecodeUTF16BE(v)
			id.ProductName = s
		}
		if v, ok := get(tagIdProductVersion); ok {
			s, _ := tlv.DecodeUTF16BE(v)
			id.ProductVersion = s
		}
		if v, ok := get(tagIdToolkitVersion); ok {
			s, _ := tlv.DecodeUTF16BE(v)
			id.ToolkitVersion = s
		}
		if v, ok := get(tagIdProductUID); ok {
			id.ProductUID = uuidOf(v)
		}
		if v, ok := get(tagIdModDate); ok {
			t, err := tlv.DecodeTimestamp(v)
			if err != nil {
				return err
			}
			id.ModificationDate = t
		}
		obj.Identification = id

	case ClassContentStorage:
		cs := &ContentStorage{}
		if v, ok := get(tagContentStoragePackages); ok {
			ids, err := decodeUUIDBatch(v)
			if err != nil {
				return err
			}
			cs.Packages = ids
		}
		obj.ContentStorage = cs

	case ClassMaterialPackage, ClassSourcePackage:
		pk := &Package{Kind: KindMaterial}
		if obj.Class == ClassSourcePackage {
			pk.Kind = KindSource
		}
		if v, ok := get(tagPackageUID); ok {
			pk.PackageUID = umidOf(v)
		}
		if v, ok := get(tagPackageTracks); ok {
			ids, err := decodeUUIDBatch(v)
			if err != nil {
				return err
			}
			pk.Tracks = ids
		}
		if v, ok := get(tagPackageDescriptor); ok {
			id := uuidOf(v)
			pk.Descriptor = &id
		}
		obj.Package = pk

	case ClassTrack, ClassStaticTrack:
		t := &Track{IsStatic: obj.Class == ClassStaticTrack}
		if v, ok := get(tagTrackID); ok {
			t.TrackID = u32(v)
		}
		if v, ok := get(tagTrackNumber); ok {
			t.TrackNumber = u32(v)
		}
		if v, ok := get(tagTrackEditRate); ok {
			n, d, err := tlv.DecodeRational(v)
			if err != nil {
				return err
			}
			t.EditRateNum, t.EditRateDen = n, d
		}
		if v, ok := get(tagTrackSequence); ok {
			t.Sequence = uuidOf(v)
		}
		obj.Track = t

	case ClassSequence:
		s := &Sequence{}
		if v, ok := get(tagSequenceDataDef); ok {
			s.DataDefinition = ulOfBytes(v)
		}
		if v, ok := get(tagSequenceDuration); ok {
			s.Duration = u64(v)
		}
		if v, ok := get(tagSequenceComponents); ok {
			ids, err := decodeUUIDBatch(v)
			if err != nil {
				return err
			}
			s.Components = ids
		}
		s.DurationPtr = &s.Duration
		obj.Sequence = s

	case ClassSourceClip:
		c := &SourceClip{}
		if v, ok := get(tagClipDuration); ok {
			c.Duration = u64(v)
		}
		if v, ok := get(tagClipStartPosition); ok {
			c.StartPosition = u64(v)
		}
		if v, ok := get(tagClipSourcePackageID); ok {
			c.SourcePackageID = umidOf(v)
		}
		if v, ok := get(tagClipSourceTrackID); ok {
			c.SourceTrackID = u32(v)
		}
		c.DurationPtr = &c.Duration
		obj.SourceClip = c

	case ClassTimecodeComponent:
		t := &TimecodeComponent{}
		if v, ok := get(tagClipDuration); ok {
			t.Duration = u64(v)
		}
		if v, ok := get(tagTimecodeRoundedBase); ok {
			t.RoundedTimecodeBase = u16(v)
		}
		if v, ok := get(tagTimecodeStart); ok {
			t.StartTimecode = u64(v)
		}
		if v, ok := get(tagTimecodeDrop); ok && len(v) == 1 {
			t.DropFrame = v[0] != 0
		}
		t.DurationPtr = &t.Duration
		obj.Timecode = t

	case ClassDMSegment:
		d := &DMSegment{}
		if v, ok := get(tagClipDuration); ok {
			d.Duration = u64(v)
		}
		if v, ok := get(tagDMSegmentFramework); ok {
			id := uuidOf(v)
			d.DMFramework = &id
		}
		d.DurationPtr = &d.Duration
		obj.DMSegment = d

	case ClassCryptographicFramework:
		f := &CryptographicFramework{}
		if v, ok := get(tagCryptoFrameworkContext); ok {
			f.ContextSR = uuidOf(v)
		}
		obj.CryptoFramework = f

	case ClassCryptographicContext:
		c := &CryptographicContext{}
		if v, ok := get(tagCryptoContextID); ok {
			c.ContextID = uuidOf(v)
		}
		if v, ok := get(tagCryptoSourceEssence); ok {
			c.SourceEssenceContainer = ulOfBytes(v)
		}
		if v, ok := get(tagCryptoKeyID); ok {
			c.CryptographicKeyID = uuidOf(v)
		}
		if v, ok := get(tagCryptoMICAlg); ok {
			c.MICAlgorithm = ulOfBytes(v)
		}
		if v, ok := get(tagCryptoAlg); ok {
			c.CryptographicAlgorithm = ulOfBytes(v)
		}
		obj.CryptoContext = c

	case ClassCDCIEssenceDescriptor, ClassRGBAEssenceDescriptor:
		p := &PictureDescriptor{}
		if v, ok := get(tagDescContainerDuration); ok {
			p.ContainerDuration = u64(v)
		}
		if v, ok := get(tagDescSampleRate); ok {
			n, d, err := tlv.DecodeRational(v)
			if err != nil {
				return err
			}
			p.SampleRateNum, p.SampleRateDen = n, d
		}
		if v, ok := get(tagDescEssenceContainer); ok {
			p.EssenceContainer = ulOfBytes(v)
		}
		if v, ok := get(tagDescFrameLayout); ok && len(v) == 1 {
			p.FrameLayout = v[0]
		}
		if v, ok := get(tagDescStoredWidth); ok {
			p.StoredWidth = u32(v)
		}
		if v, ok := get(tagDescStoredHeight); ok {
			p.StoredHeight = u32(v)
		}
		if v, ok := get(tagDescPictureCompression); ok {
			p.PictureCompression = ulOfBytes(v)
		}
		if v, ok := get(tagDescSubDescriptors); ok {
			ids, err := decodeUUIDBatch(v)
			if err != nil {
				return err
			}
			p.SubDescriptors = ids
		}
		p.ContainerDurationPtr = &p.ContainerDuration
		obj.PictureDescriptor = p

	case ClassWaveAudioDescriptor:
		s := &SoundDescriptor{}
		if v, ok := get(tagDescContainerDuration); ok {
			s.ContainerDuration = u64(v)
		}
		if v, ok := get(tagDescSampleRate); ok {
			n, d, err := tlv.DecodeRational(v)
			if err != nil {
				return err
			}
			s.SampleRateNum, s.SampleRateDen = n, d
		}
		if v, ok := get(tagSoundAudioSamplingRate); ok {
			n, d, err := tlv.DecodeRational(v)
			if err != nil {
				return err
			}
			s.AudioSamplingRateNum, s.AudioSamplingRateDen = n, d
		}
		if v, ok := get(tagDescEssenceContainer); ok {
			s.EssenceContainer = ulOfBytes(v)
		}
		if v, ok := get(tagSoundChannels); ok {
			s.Channels = u32(v)
		}
		if v, ok := get(tagSoundQuantizationBits); ok {
			s.QuantizationBits = u32(v)
		}
		if v, ok := get(tagSoundBlockAlign); ok {
			s.BlockAlign = u16(v)
		}
		if v, ok := get(tagSoundAvgBps); ok {
			s.AvgBps = u32(v)
		}
		if v, ok := get(tagDescSubDescriptors); ok {
			ids, err := decodeUUIDBatch(v)
			if err != nil {
				return err
			}
			s.SubDescriptors = ids
		}
		s.ContainerDurationPtr = &s.ContainerDuration
		obj.SoundDescriptor = s

	case ClassJPEG2000SubDescriptor:
		sd := &SubDescriptor{Kind: obj.Class}
		if v, ok := get(tagJ2KRsize); ok {
			sd.Rsize = u32(v)
		}
		if v, ok := get(tagJ2KXsize); ok {
			sd.Xsize = u32(v)
		}
		if v, ok := get(tagJ2KYsize); ok {
			sd.Ysize = u32(v)
		}
		obj.SubDescriptor = sd

	case ClassTimedTextResourceSubDescriptor:
		sd := &SubDescriptor{Kind: obj.Class}
		if v, ok := get(tagTTResourceID); ok {
			id := uuidOf(v)
			sd.ResourceID = &id
		}
		obj.SubDescriptor = sd

	case ClassMCALabelSubDescriptor:
		sd := &SubDescriptor{Kind: obj.Class}
		if v, ok := get(tagMCALabelDictID); ok {
			u := ulOfBytes(v)
			sd.MCALabelDictionaryID = &u
		}
		if v, ok := get(tagMCATagSymbol); ok {
			s, _ := tlv.DecodeUTF16BE(v)
			sd.MCATagSymbol = s
		}
		obj.SubDescriptor = sd

	default:
		return asdcperr.New(asdcperr.FormatError, "mxf.readBody", nil)
	}
	return nil
}

// IsKLVFill reports whether key is the KLV-Fill UL (objects of this key
// are skipped while iterating header metadata, per spec §4.I step 3).
func IsKLVFill(key ul.UL) bool {
	e, ok := ul.For(ul.SMPTE).ByName("KLVFill")
	return ok && e.UL.Equal(key)
}
