package trackfile

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/cryptoframe"
	"github.com/cinecert/asdcplib-sub001/internal/indextable"
	"github.com/cinecert/asdcplib-sub001/internal/iobackend"
	"github.com/cinecert/asdcplib-sub001/internal/klv"
	"github.com/cinecert/asdcplib-sub001/internal/logging"
	"github.com/cinecert/asdcplib-sub001/internal/metrics"
	"github.com/cinecert/asdcplib-sub001/internal/mxf"
	"github.com/cinecert/asdcplib-sub001/internal/partition"
	"github.com/cinecert/asdcplib-sub001/internal/tlv"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

const (
	bodySID   uint32 = 1
	indexSID  uint32 = 129
	minBERWidth      = 4
)

// Writer drives the Begin -> Init -> Ready -> Running -> Final state
// machine described in spec §4.I, composing the structural layer
// (partitions, header metadata, index table) and, when enabled, the
// per-frame crypto triplet (component H) into one legal track file.
type Writer struct {
	backend iobackend.WriterAt
	state   State
	info    WriterInfo
	kind    EssenceKind
	op      OperationalPattern
	is3Part bool

	g *graph

	editRateNum, editRateDen int32

	headerByteCount    int64
	essenceStart       int64
	curOffset          int64
	bodyPartitionStart int64

	builder        *indextable.Builder
	frameCount     int64
	lastIV         [16]byte
	sequenceNumber uint64

	stereo      bool
	stereoPhase StereoPhase

	limiter *rate.Limiter
}

// WriterOption configures NewWriter (functional-options, matching the
// teacher's decoder construction style).
type WriterOption func(*Writer)

// WithThreePartLayout selects the SMPTE Header/Body/Footer partition
// layout instead of the AS-02/Interop 2-part layout (spec §4.I).
func WithThreePartLayout() WriterOption { return func(w *Writer) { w.is3Part = true } }

// WithStereoscopic enables the inner Left/Right sub-state machine for
// JPEG-2000 3D essence (spec §4.I).
func WithStereoscopic() WriterOption { return func(w *Writer) { w.stereo = true } }

// WithRateLimit throttles WriteFrame to at most bytesPerSecond, useful
// when a writer targets a network-backed iobackend and the caller wants
// to avoid saturating a shared upstream link. The limiter's burst equals
// bytesPerSecond, so a frame whose KLV packet is larger than
// bytesPerSecond is refused with FormatError.
func WithRateLimit(bytesPerSecond int) WriterOption {
	return func(w *Writer) {
		w.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond)
	}
}

// NewWriter records backend and the write configuration, transitioning
// Begin -> Init (spec §4.I open_write); the header-metadata object graph
// is built later by SetSourceStream.
func NewWriter(backend iobackend.WriterAt, info WriterInfo, kind EssenceKind, op OperationalPattern, editRateNum, editRateDen int32, opts ...WriterOption) *Writer {
	w := &Writer{
		backend: backend, state: StateInit, info: info, kind: kind, op: op,
		editRateNum: editRateNum, editRateDen: editRateDen,
		lastIV: func() [16]byte { var iv [16]byte; ul.RandomBytes(iv[:]); return iv }(),
		sequenceNumber: 0,
	}
	for _, o := range opts {
		o(w)
	}
	metrics.OpenHandles.Inc()
	return w
}

// SetSourceStream builds the object graph and writes the header (and,
// for a 3-part file, body) partition, transitioning Init -> Ready (spec
// §4.I set_source_stream).
func (w *Writer) SetSourceStream() error {
	const op = "trackfile.Writer.SetSourceStream"
	if w.state != StateInit {
		return stateErr(op)
	}
	w.g = buildGraph(w.info, w.kind, w.op, w.editRateNum, w.editRateDen, w.info.EncryptEssence)

	cbr := uint32(0) // VBR by default; essence adapters that know a fixed frame size can widen this later.
	w.builder = indextable.NewBuilder(w.editRateNum, w.editRateDen, indexSID, bodySID, cbr)

	if err := w.writeHeaderPartition(); err != nil {
		return err
	}
	if w.is3Part {
		if err := w.writeBodyPartition(); err != nil {
			return err
		}
	} else {
		w.essenceStart = w.curOffset
	}
	w.state = StateReady
	return nil
}

func (w *Writer) labelSet() ul.LabelSet { return w.info.LabelSet }

// serializeHeaderMetadata encodes the Primer plus every arena object in a
// stable order, returning the Primer used so the writer can re-derive the
// exact same tag assignments at finalize.
func (w *Writer) serializeHeaderMetadata() ([]byte, *tlv.Primer, error) {
	primer := tlv.NewPrimer()
	var objBytes [][]byte
	for _, obj := range w.g.arena.All() {
		b, err := mxf.Encode(obj, w.labelSet(), primer, minBERWidth)
		if err != nil {
			return nil, nil, err
		}
		objBytes = append(objBytes, b)
	}
	primerEntry, _ := ul.For(w.labelSet()).ByName("PrimerPack")
	primerPacket, err := klv.WritePacket(primerEntry.UL, primer.Encode(), minBERWidth)
	if err != nil {
		return nil, nil, err
	}
	total := make([]byte, 0, len(primerPacket))
	total = append(total, primerPacket...)
	for _, b := range objBytes {
		total = append(total, b...)
	}
	return total, primer, nil
}

func (w *Writer) writeHeaderPartition() error {
	const op = "trackfile.Writer.writeHeaderPartition"
	meta, _, err := w.serializeHeaderMetadata()
	if err != nil {
		return err
	}
	w.headerByteCount = int64(len(meta))

	opUL := operationalPatternUL(w.op)
	pack := partition.Pack{
		Kind: partition.KindHeader, MajorVersion: 1, MinorVersion: 3, KAGSize: 1,
		ThisPartition: 0, PreviousPartition: 0, FooterPartition: 0,
		HeaderByteCount: uint64(w.headerByteCount), IndexByteCount: 0, IndexSID: 0,
		BodyOffset: 0, BodySID: 0, OperationalPattern: opUL,
		EssenceContainers: []ul.UL{essenceContainerULFor(w.kind)},
	}
	packBytes, err := pack.Encode(w.labelSet(), minBERWidth)
	if err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	if _, err := w.backend.WriteAt(packBytes, 0); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	if _, err := w.backend.WriteAt(meta, int64(len(packBytes))); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	w.curOffset = int64(len(packBytes)) + int64(len(meta))
	if !w.is3Part {
		w.essenceStart = w.curOffset
	}
	return nil
}

func (w *Writer) writeBodyPartition() error {
	const op = "trackfile.Writer.writeBodyPartition"
	w.bodyPartitionStart = w.curOffset
	pack := partition.Pack{
		Kind: partition.KindBody, MajorVersion: 1, MinorVersion: 3, KAGSize: 1,
		ThisPartition: uint64(w.curOffset), PreviousPartition: 0, FooterPartition: 0,
		HeaderByteCount: 0, IndexByteCount: 0, IndexSID: 0,
		BodyOffset: 0, BodySID: bodySID, OperationalPattern: operationalPatternUL(w.op),
		EssenceContainers: []ul.UL{essenceContainerULFor(w.kind)},
	}
	packBytes, err := pack.Encode(w.labelSet(), minBERWidth)
	if err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	if _, err := w.backend.WriteAt(packBytes, w.curOffset); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	w.curOffset += int64(len(packBytes))
	w.essenceStart = w.curOffset
	return nil
}

// WriteFrame writes one essence frame with an implicit GOP-start flag on
// the first frame only. Essence adapters that know their own GOP
// structure (mpeg2) should call WriteFrameWithFlags instead.
func (w *Writer) WriteFrame(plaintext []byte) error {
	flags := uint8(0)
	if w.frameCount == 0 {
		flags = indextable.FlagGOPStart
	}
	return w.WriteFrameWithFlags(plaintext, flags, 0)
}

// WriteFrameWithFlags writes one essence frame, encrypting it first if the
// writer was opened with EncryptEssence, recording the given index-entry
// flags and temporal offset, and transitions Ready/Running -> Running
// (spec §4.I write_frame).
func (w *Writer) WriteFrameWithFlags(plaintext []byte, flags uint8, temporalOffset int8) error {
	const op = "trackfile.Writer.WriteFrameWithFlags"
	if w.state != StateReady && w.state != StateRunning {
		return stateErr(op)
	}
	if w.stereo {
		// Alternate Left/Right after each frame; the essence element key
		// is the same for both phases.
		defer func() {
			if w.stereoPhase == PhaseLeft {
				w.stereoPhase = PhaseRight
			} else {
				w.stereoPhase = PhaseLeft
			}
		}()
	}

	streamOffset := uint64(w.curOffset - w.essenceStart)
	var payload []byte
	var err error
	elemKey := essenceElementUL(w.kind, w.labelSet())

	if w.info.EncryptEssence {
		triplet, nextIV, encErr := cryptoframe.Encrypt(
			cryptoframe.Key(w.info.cryptoKey()), w.info.ContextID, w.info.AssetUUID,
			elemKey, plaintext, 0, w.lastIV, w.sequenceNumber,
		)
		if encErr != nil {
			return encErr
		}
		w.lastIV = nextIV
		w.sequenceNumber++
		encUL, _ := ul.For(w.labelSet()).ByName("EncryptedTripletElement")
		payload, err = klv.WritePacket(encUL.UL, triplet, minBERWidth)
	} else {
		payload, err = klv.WritePacket(elemKey, plaintext, minBERWidth)
	}
	if err != nil {
		return err
	}

	if w.limiter != nil {
		if err := w.limiter.WaitN(context.Background(), len(payload)); err != nil {
			return asdcperr.New(asdcperr.FormatError, op, err)
		}
	}

	if _, err := w.backend.WriteAt(payload, w.curOffset); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	w.curOffset += int64(len(payload))

	w.builder.Append(streamOffset, flags, temporalOffset)
	w.frameCount++
	w.state = StateRunning

	metrics.FramesWritten.Inc()
	metrics.BytesWritten.Add(float64(len(payload)))
	return nil
}

// cryptoKey derives the raw AES/HMAC key material from the
// CryptographicKeyID. Real deployments supply the key out of band (KDM
// delivery); this toolkit only carries the key identifier through the
// object graph, so the symmetric key itself must be set directly by the
// caller via WriterInfo before SetSourceStream.
func (w WriterInfo) cryptoKey() [16]byte {
	var k [16]byte
	copy(k[:], w.CryptographicKeyID[:16])
	return k
}

func essenceElementUL(kind EssenceKind, set ul.LabelSet) ul.UL {
	name := "MPEG2PictureElement"
	switch kind {
	case EssenceJPEG2000:
		name = "JPEG2000PictureElement"
	case EssencePCM:
		name = "WaveAudioElement"
	case EssenceTimedText:
		name = "TimedTextElement"
	}
	e, _ := ul.For(set).ByName(name)
	return e.UL
}

// Finalize propagates the final duration to every duration-bearing
// property, writes the Footer Partition and Index Table Segments, writes
// the trailing Random Index Pack, and re-serializes the Header Partition
// with the updated durations at offset 0 (spec §4.I finalize). Finalize
// is accepted from Ready (a legally empty track file) or Running.
func (w *Writer) Finalize(ctx context.Context) error {
	const op = "trackfile.Writer.Finalize"
	if w.state != StateReady && w.state != StateRunning {
		return stateErr(op)
	}

	for _, ptr := range w.g.arena.DurationPointers(w.g.filePackage) {
		*ptr = w.frameCount
	}
	for _, ptr := range w.g.arena.DurationPointers(w.g.materialPackage) {
		*ptr = w.frameCount
	}
	if w.g.descriptor.PictureDescriptor != nil {
		*w.g.descriptor.PictureDescriptor.ContainerDurationPtr = w.frameCount
	}
	if w.g.descriptor.SoundDescriptor != nil {
		*w.g.descriptor.SoundDescriptor.ContainerDurationPtr = w.frameCount
	}

	footerOffset := w.curOffset
	segments := w.builder.Segments()
	var indexBytes []byte
	primerForIndex := tlv.NewPrimer()
	for _, seg := range segments {
		b, err := seg.Encode(w.labelSet(), primerForIndex, minBERWidth)
		if err != nil {
			return err
		}
		indexBytes = append(indexBytes, b...)
	}

	footerPack := partition.Pack{
		Kind: partition.KindFooter, MajorVersion: 1, MinorVersion: 3, KAGSize: 1,
		ThisPartition: uint64(footerOffset), PreviousPartition: 0, FooterPartition: uint64(footerOffset),
		HeaderByteCount: 0, IndexByteCount: uint64(len(indexBytes)), IndexSID: indexSID,
		BodyOffset: 0, BodySID: 0, OperationalPattern: operationalPatternUL(w.op),
		EssenceContainers: []ul.UL{essenceContainerULFor(w.kind)},
	}
	footerBytes, err := footerPack.Encode(w.labelSet(), minBERWidth)
	if err != nil {
		return err
	}
	if _, err := w.backend.WriteAt(footerBytes, footerOffset); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	if _, err := w.backend.WriteAt(indexBytes, footerOffset+int64(len(footerBytes))); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	ripOffset := footerOffset + int64(len(footerBytes)) + int64(len(indexBytes))

	rip := partition.RIP{Entries: []partition.RIPEntry{
		{BodySID: 0, Offset: 0},
	}}
	if w.is3Part {
		rip.Entries = append(rip.Entries, partition.RIPEntry{BodySID: bodySID, Offset: uint64(w.bodyPartitionStart)})
	}
	rip.Entries = append(rip.Entries, partition.RIPEntry{BodySID: 0, Offset: uint64(footerOffset)})
	ripBytes, err := rip.Encode(w.labelSet())
	if err != nil {
		return err
	}
	if _, err := w.backend.WriteAt(ripBytes, ripOffset); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}

	if err := w.writeHeaderPartitionFinal(footerOffset); err != nil {
		return err
	}

	logging.Default().Info(op, "track file finalized", map[string]interface{}{
		"frames": w.frameCount, "footer_offset": footerOffset,
	})
	w.state = StateFinal
	metrics.OpenHandles.Dec()
	return w.backend.Close()
}

func (w *Writer) writeHeaderPartitionFinal(footerOffset int64) error {
	const op = "trackfile.Writer.writeHeaderPartitionFinal"
	meta, _, err := w.serializeHeaderMetadata()
	if err != nil {
		return err
	}
	if int64(len(meta)) != w.headerByteCount {
		return asdcperr.New(asdcperr.FormatError, op, nil)
	}
	opUL := operationalPatternUL(w.op)
	pack := partition.Pack{
		Kind: partition.KindHeader, MajorVersion: 1, MinorVersion: 3, KAGSize: 1,
		ThisPartition: 0, PreviousPartition: 0, FooterPartition: uint64(footerOffset),
		HeaderByteCount: uint64(w.headerByteCount), IndexByteCount: 0, IndexSID: 0,
		BodyOffset: 0, BodySID: 0, OperationalPattern: opUL,
		EssenceContainers: []ul.UL{essenceContainerULFor(w.kind)},
	}
	packBytes, err := pack.Encode(w.labelSet(), minBERWidth)
	if err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	if _, err := w.backend.WriteAt(packBytes, 0); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	if _, err := w.backend.WriteAt(meta, int64(len(packBytes))); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	return nil
}
