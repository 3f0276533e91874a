package mxf

import (
	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/klv"
	"github.com/cinecert/asdcplib-sub001/internal/tlv"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// classUL derives a per-property UL from a class's MDD UL by overwriting
// octets 14-15 with the property's local tag. The MDD class ULs differ
// only in octets 13-14, and no class-specific tag is shared by two classes
// whose octet 13 differs, so each tag maps to one UL; InstanceUID and
// GenerationUID, which every class carries, use their own MDD ULs (see
// writeHeader). Real MXF assigns each property its own registered UL; this
// scheme keeps the Primer's tag->UL map internally unique and
// round-trip-stable without hand-cataloging ~60 individual SMPTE property ULs.
func classUL(base ul.UL, tag uint16) ul.UL {
	out := base
	out[14] = byte(tag >> 8)
	out[15] = byte(tag)
	return out
}

func classEntry(set ul.LabelSet, name string) *ul.Entry {
	e, ok := ul.For(set).ByName(name)
	if !ok {
		panic("mxf: unknown MDD entry " + name)
	}
	return e
}

// Encode serializes obj as a KLV packet: key = class UL, value = TLV set.
func Encode(obj *Object, set ul.LabelSet, primer *tlv.Primer, minBERWidth int) ([]byte, error) {
	className, classUL_, err := classNameAndUL(obj, set)
	if err != nil {
		return nil, err
	}
	sw := tlv.NewSetWriter(primer)
	if err := writeHeader(sw, set, obj.Header); err != nil {
		return nil, err
	}
	if err := writeBody(sw, classUL_, obj); err != nil {
		return nil, err
	}
	_ = className
	return klv.WritePacket(classUL_, sw.Bytes(), minBERWidth)
}

func writeHeader(sw *tlv.SetWriter, set ul.LabelSet, h Header) error {
	if err := sw.WriteItem(classEntry(set, "InstanceUID").UL, tagInstanceUID, h.InstanceUID.Bytes()); err != nil {
		return err
	}
	if h.GenerationUID != nil {
		if err := sw.WriteItem(classEntry(set, "GenerationUID").UL, tagGenerationUID, h.GenerationUID.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func classNameAndUL(obj *Object, set ul.LabelSet) (string, ul.UL, error) {
	var name string
	switch obj.Class {
	case ClassPreface:
		name = "Preface"
	case ClassIdentification:
		name = "Identification"
	case ClassContentStorage:
		name = "ContentStorage"
	case ClassMaterialPackage:
		name = "MaterialPackage"
	case ClassSourcePackage:
		name = "SourcePackage"
	case ClassTrack:
		name = "Track"
	case ClassStaticTrack:
		name = "StaticTrack"
	case ClassSequence:
		name = "Sequence"
	case ClassSourceClip:
		name = "SourceClip"
	case ClassTimecodeComponent:
		name = "TimecodeComponent"
	case ClassDMSegment:
		name = "DMSegment"
	case ClassCryptographicFramework:
		name = "CryptographicFramework"
	case ClassCryptographicContext:
		name = "CryptographicContext"
	case ClassCDCIEssenceDescriptor:
		name = "CDCIEssenceDescriptor"
	case ClassRGBAEssenceDescriptor:
		name = "RGBAEssenceDescriptor"
	case ClassWaveAudioDescriptor:
		name = "WaveAudioDescriptor"
	case ClassJPEG2000SubDescriptor:
		name = "JPEG2000PictureSubDescriptor"
	case ClassMCALabelSubDescriptor:
		name = "MCALabelSubDescriptor"
	case ClassTimedTextResourceSubDescriptor:
		name = "TimedTextResourceSubDescriptor"
	default:
		return "", ul.UL{}, asdcperr.New(asdcperr.FormatError, "mxf.classNameAndUL", nil)
	}
	return name, classEntry(set, name).UL, nil
}

func writeBody(sw *tlv.SetWriter, base ul.UL, obj *Object) error {
	item := func(tag uint16, v []byte) error { return sw.WriteItem(classUL(base, tag), tag, v) }
	switch obj.Class {
	case ClassPreface:
		p := obj.Preface
		if err := item(tagPrefaceContentStorage, p.ContentStorage.Bytes()); err != nil {
			return err
		}
		if err := item(tagPrefaceOperationalPattern, p.OperationalPattern.Bytes()); err != nil {
			return err
		}
		if err := item(tagPrefaceEssenceContainers, tlv.EncodeULArray(p.EssenceContainers)); err != nil {
			return err
		}
		if len(p.DMSchemes) > 0 {
			if err := item(tagPrefaceDMSchemes, tlv.EncodeULArray(p.DMSchemes)); err != nil {
				return err
			}
		}
		if err := item(tagPrefaceIsEncrypted, tlv.EncodeU8(boolToU8(p.IsEncrypted))); err != nil {
			return err
		}
		if err := item(tagPrefaceLastModifiedDate, tlv.EncodeTimestamp(p.LastModifiedDate)); err != nil {
			return err
		}
		return item(tagPrefaceVersion, tlv.EncodeU16(p.Version))

	case ClassIdentification:
		id := obj.Identification
		if err := item(tagIdCompanyName, tlv.EncodeUTF16BE(id.CompanyName)); err != nil {
			return err
		}
		if err := item(tagIdProductName, tlv.EncodeUTF16BE(id.ProductName)); err != nil {
			return err
		}
		if err := item(tagIdProductVersion, tlv.EncodeUTF16BE(id.ProductVersion)); err != nil {
			return err
		}
		if err := item(tagIdToolkitVersion, tlv.EncodeUTF16BE(id.ToolkitVersion)); err != nil {
			return err
		}
		if err := item(tagIdProductUID, id.ProductUID.Bytes()); err != nil {
			return err
		}
		return item(tagIdModDate, tlv.EncodeTimestamp(id.ModificationDate))

	case ClassContentStorage:
		batch, err := tlv.EncodeBatch(16, uuidsToBytes(obj.ContentStorage.Packages))
		if err != nil {
			return err
		}
		return item(tagContentStoragePackages, batch)

	case ClassMaterialPackage, ClassSourcePackage:
		pk := obj.Package
		if err := item(tagPackageUID, pk.PackageUID.Bytes()); err != nil {
			return err
		}
		batch, err := tlv.EncodeBatch(16, uuidsToBytes(pk.Tracks))
		if err != nil {
			return err
		}
		if err := item(tagPackageTracks, batch); err != nil {
			return err
		}
		if pk.Descriptor != nil {
			return item(tagPackageDescriptor, pk.Descriptor.Bytes())
		}
		return nil

	case ClassTrack, ClassStaticTrack:
		t := obj.Track
		if err := item(tagTrackID, tlv.EncodeU32(t.TrackID)); err != nil {
			return err
		}
		if err := item(tagTrackNumber, tlv.EncodeU32(t.TrackNumber)); err != nil {
			return err
		}
		if err := item(tagTrackEditRate, tlv.EncodeRational(t.EditRateNum, t.EditRateDen)); err != nil {
			return err
		}
		return item(tagTrackSequence, t.Sequence.Bytes())

	case ClassSequence:
		s := obj.Sequence
		if err := item(tagSequenceDataDef, s.DataDefinition.Bytes()); err != nil {
			return err
		}
		if err := item(tagSequenceDuration, tlv.EncodeU64(uint64(s.Duration))); err != nil {
			return err
		}
		batch, err := tlv.EncodeBatch(16, uuidsToBytes(s.Components))
		if err != nil {
			return err
		}
		return item(tagSequenceComponents, batch)

	case ClassSourceClip:
		c := obj.SourceClip
		if err := item(tagClipDuration, tlv.EncodeU64(uint64(c.Duration))); err != nil {
			return err
		}
		if err := item(tagClipStartPosition, tlv.EncodeU64(uint64(c.StartPosition))); err != nil {
			return err
		}
		if err := item(tagClipSourcePackageID, c.SourcePackageID.Bytes()); err != nil {
			return err
		}
		return item(tagClipSourceTrackID, tlv.EncodeU32(c.SourceTrackID))

	case ClassTimecodeComponent:
		t := obj.Timecode
		if err := item(tagClipDuration, tlv.EncodeU64(uint64(t.Duration))); err != nil {
			return err
		}
		if err := item(tagTimecodeRoundedBase, tlv.EncodeU16(t.RoundedTimecodeBase)); err != nil {
			return err
		}
		if err := item(tagTimecodeStart, tlv.EncodeU64(uint64(t.StartTimecode))); err != nil {
			return err
		}
		return item(tagTimecodeDrop, tlv.EncodeU8(boolToU8(t.DropFrame)))

	case ClassDMSegment:
		d := obj.DMSegment
		if err := item(tagClipDuration, tlv.EncodeU64(uint64(d.Duration))); err != nil {
			return err
		}
		if d.DMFramework != nil {
			return item(tagDMSegmentFramework, d.DMFramework.Bytes())
		}
		return nil

	case ClassCryptographicFramework:
		return item(tagCryptoFrameworkContext, obj.CryptoFramework.ContextSR.Bytes())

	case ClassCryptographicContext:
		c := obj.CryptoContext
		if err := item(tagCryptoContextID, c.ContextID.Bytes()); err != nil {
			return err
		}
		if err := item(tagCryptoSourceEssence, c.SourceEssenceContainer.Bytes()); err != nil {
			return err
		}
		if err := item(tagCryptoKeyID, c.CryptographicKeyID.Bytes()); err != nil {
			return err
		}
		if err := item(tagCryptoMICAlg, c.MICAlgorithm.Bytes()); err != nil {
			return err
		}
		return item(tagCryptoAlg, c.CryptographicAlgorithm.Bytes())

	case ClassCDCIEssenceDescriptor, ClassRGBAEssenceDescriptor:
		p := obj.PictureDescriptor
		if err := item(tagDescContainerDuration, tlv.EncodeU64(uint64(p.ContainerDuration))); err != nil {
			return err
		}
		if err := item(tagDescSampleRate, tlv.EncodeRational(p.SampleRateNum, p.SampleRateDen)); err != nil {
			return err
		}
		if err := item(tagDescEssenceContainer, p.EssenceContainer.Bytes()); err != nil {
			return err
		}
		if err := item(tagDescFrameLayout, tlv.EncodeU8(p.FrameLayout)); err != nil {
			return err
		}
		if err := item(tagDescStoredWidth, tlv.EncodeU32(p.StoredWidth)); err != nil {
			return err
		}
		if err := item(tagDescStoredHeight, tlv.EncodeU32(p.StoredHeight)); err != nil {
			return err
		}
		if (p.PictureCompression != ul.UL{}) {
			if err := item(tagDescPictureCompression, p.PictureCompression.Bytes()); err != nil {
				return err
			}
		}
		if len(p.SubDescriptors) > 0 {
			batch, err := tlv.EncodeBatch(16, uuidsToBytes(p.SubDescriptors))
			if err != nil {
				return err
			}
			return item(tagDescSubDescriptors, batch)
		}
		return nil

	case ClassWaveAudioDescriptor:
		s := obj.SoundDescriptor
		if err := item(tagDescContainerDuration, tlv.EncodeU64(uint64(s.ContainerDuration))); err != nil {
			return err
		}
		if err := item(tagDescSampleRate, tlv.EncodeRational(s.SampleRateNum, s.SampleRateDen)); err != nil {
			return err
		}
		if err := item(tagSoundAudioSamplingRate, tlv.EncodeRational(s.AudioSamplingRateNum, s.AudioSamplingRateDen)); err != nil {
			return err
		}
		if err := item(tagDescEssenceContainer, s.EssenceContainer.Bytes()); err != nil {
			return err
		}
		if err := item(tagSoundChannels, tlv.EncodeU32(s.Channels)); err != nil {
			return err
		}
		if err := item(tagSoundQuantizationBits, tlv.EncodeU32(s.QuantizationBits)); err != nil {
			return err
		}
		if err := item(tagSoundBlockAlign, tlv.EncodeU16(s.BlockAlign)); err != nil {
			return err
		}
		if err := item(tagSoundAvgBps, tlv.EncodeU32(s.AvgBps)); err != nil {
			return err
		}
		if len(s.SubDescriptors) > 0 {
			batch, err := tlv.EncodeBatch(16, uuidsToBytes(s.SubDescriptors))
			if err != nil {
				return err
			}
			return item(tagDescSubDescriptors, batch)
		}
		return nil

	case ClassJPEG2000SubDescriptor:
		sd := obj.SubDescriptor
		if err := item(tagJ2KRsize, tlv.EncodeU32(sd.Rsize)); err != nil {
			return err
		}
		if err := item(tagJ2KXsize, tlv.EncodeU32(sd.Xsize)); err != nil {
			return err
		}
		return item(tagJ2KYsize, tlv.EncodeU32(sd.Ysize))

	case ClassTimedTextResourceSubDescriptor:
		sd := obj.SubDescriptor
		if sd.ResourceID != nil {
			return item(tagTTResourceID, sd.ResourceID.Bytes())
		}
		return nil

	case ClassMCALabelSubDescriptor:
		sd := obj.SubDescriptor
		if sd.MCALabelDictionaryID != nil {
			if err := item(tagMCALabelDictID, sd.MCALabelDictionaryID.Bytes()); err != nil {
				return err
			}
		}
		return item(tagMCATagSymbol, tlv.EncodeUTF16BE(sd.MCATagSymbol))
	}
	return asdcperr.New(asdcperr.FormatError, "mxf.writeBody", nil)
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func uuidsToBytes(ids []ul.UUID) [][]byte {
	out := make([][]byte, len(ids))
	for i, id := range ids {
		out[i] = id.Bytes()
	}
	return out
}
