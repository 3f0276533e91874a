package mxf

// Local tag constants for header-metadata properties. InstanceUID and
// GenerationUID carry the real SMPTE-assigned tags (0x3c0a / 0x0102);
// the remaining per-class property tags are assigned from the
// implementation's own stable low range, mirroring how a vendor's
// private MDD extension block is laid out, and registered through the
// Primer exactly like every standard property (invariant P4 does not
// distinguish the two).
const (
	tagInstanceUID   = 0x3c0a
	tagGenerationUID = 0x0102

	tagPrefaceContentStorage     = 0x3b03
	tagPrefaceOperationalPattern = 0x3b09
	tagPrefaceEssenceContainers  = 0x3b0a
	tagPrefaceDMSchemes          = 0x3b0b
	tagPrefaceIsEncrypted        = 0x3b10
	tagPrefaceLastModifiedDate   = 0x3b06
	tagPrefaceVersion            = 0x3b05

	tagIdCompanyName    = 0x3c01
	tagIdProductName    = 0x3c02
	tagIdProductVersion = 0x3c03
	tagIdToolkitVersion = 0x3c05
	tagIdProductUID     = 0x3c09
	tagIdModDate        = 0x3c06

	tagContentStoragePackages = 0x1901

	tagPackageUID   = 0x4401
	tagPackageTracks = 0x4403
	tagPackageDescriptor = 0x4701

	tagTrackID     = 0x4801
	tagTrackNumber = 0x4804
	tagTrackEditRate = 0x4b01
	tagTrackSequence = 0x4803

	tagSequenceDataDef   = 0x0201
	tagSequenceDuration  = 0x0202
	tagSequenceComponents = 0x1001

	tagClipDuration      = 0x0202
	tagClipStartPosition = 0x1201
	tagClipSourcePackageID = 0x1101
	tagClipSourceTrackID   = 0x1102

	tagTimecodeRoundedBase = 0x1502
	tagTimecodeStart       = 0x1501
	tagTimecodeDrop        = 0x1503

	tagDMSegmentFramework = 0x6101

	tagCryptoFrameworkContext = 0x0301

	tagCryptoContextID      = 0x8100
	tagCryptoSourceEssence  = 0x8101
	tagCryptoKeyID          = 0x8102
	tagCryptoMICAlg         = 0x8103
	tagCryptoAlg            = 0x8104

	tagDescContainerDuration = 0x3002
	tagDescSampleRate        = 0x3001
	tagDescEssenceContainer  = 0x3004
	tagDescSubDescriptors    = 0x3f01
	tagDescFrameLayout       = 0x320c
	tagDescStoredWidth       = 0x3203
	tagDescStoredHeight      = 0x3202
	tagDescPictureCompression = 0x3201

	tagSoundAudioSamplingRate = 0x3d03
	tagSoundChannels          = 0x3d07
	tagSoundQuantizationBits  = 0x3d01
	tagSoundBlockAlign        = 0x3d0a
	tagSoundAvgBps            = 0x3d09

	tagJ2KRsize = 0x0301
	tagJ2KXsize = 0x0302
	tagJ2KYsize = 0x0303

	tagTTResourceID = 0x0301

	tagMCALabelDictID = 0x0302
	tagMCATagSymbol   = 0x0303
)
