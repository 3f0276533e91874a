package trackfile

import (
	"context"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/cryptoframe"
	"github.com/cinecert/asdcplib-sub001/internal/indextable"
	"github.com/cinecert/asdcplib-sub001/internal/iobackend"
	"github.com/cinecert/asdcplib-sub001/internal/klv"
	"github.com/cinecert/asdcplib-sub001/internal/metrics"
	"github.com/cinecert/asdcplib-sub001/internal/mxf"
	"github.com/cinecert/asdcplib-sub001/internal/partition"
	"github.com/cinecert/asdcplib-sub001/internal/tlv"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// Reader opens an existing track file for random-access frame reads (spec
// §4.I TrackFileReader). It locates the RIP, rebuilds the header-metadata
// object graph, and loads every Index Table Segment so ReadFrame can
// resolve a frame number to a byte offset without a linear scan.
type Reader struct {
	backend iobackend.ReaderAt
	size    int64

	arena  *mxf.Arena
	primer *tlv.Primer
	info   WriterInfo

	essenceStart   int64
	segments       []*indextable.Segment
	encrypted      bool
	cryptoContext  *mxf.CryptographicContext
	filePackage    *mxf.Object
	descriptor     *mxf.Object
	lastPosition   int64 // byte offset of the most recently read frame
}

// Open parses the header partition, index table, and (when present)
// cryptographic context of backend, leaving the reader positioned to
// serve ReadFrame calls (spec §4.I open_read).
func Open(ctx context.Context, backend iobackend.ReaderAt) (*Reader, error) {
	const op = "trackfile.Open"
	size, err := backend.Size(ctx)
	if err != nil {
		return nil, asdcperr.New(asdcperr.FormatError, op, err)
	}
	r := &Reader{backend: backend, size: size}

	rip, ripOffset, err := partition.Locate(backend, size)
	if err != nil {
		return nil, err
	}

	headerPacket, err := klv.ReadAt(backend, 0, 32)
	if err != nil {
		return nil, err
	}
	headerValue, err := klv.ReadValue(backend, headerPacket)
	if err != nil {
		return nil, err
	}
	headerPack, err := partition.Decode(headerPacket.Key, headerValue)
	if err != nil {
		return nil, err
	}

	metaStart := headerPacket.ValueStartOffset + int64(headerPacket.ValueLen)
	metaBuf := make([]byte, headerPack.HeaderByteCount)
	if _, err := backend.ReadAt(metaBuf, metaStart); err != nil {
		return nil, asdcperr.New(asdcperr.FormatError, op, err)
	}

	arena := mxf.NewArena()
	rest := metaBuf
	var primer *tlv.Primer
	for len(rest) > 0 {
		pkt, value, tail, err := klv.ReadFromBytes(rest)
		if err != nil {
			return nil, err
		}
		rest = tail
		if mxf.IsKLVFill(pkt.Key) {
			continue
		}
		if primer == nil {
			p, err := tlv.DecodePrimer(value)
			if err != nil {
				return nil, err
			}
			primer = p
			continue
		}
		obj, err := mxf.DecodeObject(pkt.Key, value, primer)
		if err != nil {
			return nil, err
		}
		arena.Add(obj)
	}
	if primer == nil {
		return nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	r.arena = arena
	r.primer = primer

	preface, err := arena.MustOne(mxf.ClassPreface)
	if err != nil {
		return nil, err
	}
	r.encrypted = preface.Preface.IsEncrypted
	r.info.LabelSet = ul.SMPTE

	ident := arena.ByClass(mxf.ClassIdentification)
	if len(ident) > 0 {
		r.info.CompanyName = ident[0].Identification.CompanyName
		r.info.ProductName = ident[0].Identification.ProductName
		r.info.ProductVersion = ident[0].Identification.ProductVersion
		r.info.ToolkitVersion = ident[0].Identification.ToolkitVersion
		r.info.ProductUUID = ident[0].Identification.ProductUID
	}

	for _, pkg := range arena.ByClass(mxf.ClassSourcePackage) {
		r.filePackage = pkg
		if pkg.Package.Descriptor != nil {
			if desc, ok := arena.ByUID(*pkg.Package.Descriptor); ok {
				r.descriptor = desc
			}
		}
	}
	if cc := arena.ByClass(mxf.ClassCryptographicContext); len(cc) == 1 {
		r.cryptoContext = cc[0].CryptoContext
		r.info.ContextID = cc[0].CryptoContext.ContextID
		r.info.CryptographicKeyID = cc[0].CryptoContext.CryptographicKeyID
	}

	// Essence container start: for a 2-part file, right after header
	// metadata; for a 3-part file, right after the Body Partition Pack
	// whose RIP entry carries a non-zero BodySID.
	r.essenceStart = metaStart + int64(headerPack.HeaderByteCount)
	for _, ent := range rip.Entries {
		if ent.BodySID != 0 {
			bodyPacket, err := klv.ReadAt(backend, int64(ent.Offset), 96)
			if err != nil {
				return nil, err
			}
			r.essenceStart = bodyPacket.ValueStartOffset + int64(bodyPacket.ValueLen)
		}
	}

	footerOffset := int64(headerPack.FooterPartition)
	if footerOffset == 0 {
		for _, ent := range rip.Entries {
			if int64(ent.Offset) > int64(headerPack.ThisPartition) && ent.BodySID == 0 && int64(ent.Offset) != 0 {
				footerOffset = int64(ent.Offset)
			}
		}
	}
	footerPacket, err := klv.ReadAt(backend, footerOffset, 96)
	if err != nil {
		return nil, err
	}
	footerValue, err := klv.ReadValue(backend, footerPacket)
	if err != nil {
		return nil, err
	}
	footerPack, err := partition.Decode(footerPacket.Key, footerValue)
	if err != nil {
		return nil, err
	}
	indexStart := footerPacket.ValueStartOffset + int64(footerPacket.ValueLen)
	indexBuf := make([]byte, footerPack.IndexByteCount)
	if footerPack.IndexByteCount > 0 {
		if _, err := backend.ReadAt(indexBuf, indexStart); err != nil {
			return nil, asdcperr.New(asdcperr.FormatError, op, err)
		}
	}
	segRest := indexBuf
	for len(segRest) > 0 {
		pkt, value, tail, err := klv.ReadFromBytes(segRest)
		if err != nil {
			return nil, err
		}
		segRest = tail
		if mxf.IsKLVFill(pkt.Key) {
			continue
		}
		seg, err := indextable.Decode(value)
		if err != nil {
			return nil, err
		}
		r.segments = append(r.segments, seg)
	}
	_ = ripOffset

	return r, nil
}

// FrameCount returns the duration in edit units of the first track's
// Sequence in the File Package (the timecode track, for files this
// package writes); the writer sets every propagated duration to the same
// frame count (spec §3).
func (r *Reader) FrameCount() int64 {
	for _, ptr := range r.arena.DurationPointers(r.filePackage) {
		return *ptr
	}
	return 0
}

// ReadFrame reads and, if the file is encrypted, decrypts frame n (spec
// §4.I read_frame). Every read is positional at the frame's indexed
// offset; lastPosition only records that offset and is not consulted.
func (r *Reader) ReadFrame(n int64) ([]byte, error) {
	const op = "trackfile.Reader.ReadFrame"
	relOffset, err := indextable.Lookup(r.segments, n)
	if err != nil {
		return nil, err
	}
	absOffset := r.essenceStart + int64(relOffset)
	pkt, err := klv.ReadAt(r.backend, absOffset, 32)
	if err != nil {
		return nil, err
	}
	value, err := klv.ReadValue(r.backend, pkt)
	if err != nil {
		return nil, err
	}
	r.lastPosition = absOffset

	if !r.encrypted {
		metrics.FramesRead.Inc()
		return value, nil
	}
	encUL, _ := ul.For(r.info.LabelSet).ByName("EncryptedTripletElement")
	if !pkt.Key.MatchIgnoreStream(encUL.UL) {
		return nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	var key cryptoframe.Key
	copy(key[:], r.info.CryptographicKeyID[:16])
	plain, _, err := cryptoframe.Decrypt(key, value)
	if err != nil {
		if e, ok := err.(*asdcperr.Error); ok && e.Kind == asdcperr.HmacFail {
			metrics.HMACFailures.Inc()
		}
		return nil, err
	}
	metrics.FramesRead.Inc()
	return plain, nil
}

// Kind reports which essence family the track file's descriptor declares.
func (r *Reader) Kind() EssenceKind {
	if r.descriptor == nil {
		return EssenceData
	}
	switch r.descriptor.Class {
	case mxf.ClassRGBAEssenceDescriptor:
		return EssenceJPEG2000
	case mxf.ClassCDCIEssenceDescriptor:
		return EssenceMPEG2
	case mxf.ClassWaveAudioDescriptor:
		for _, uid := range r.descriptor.SoundDescriptor.SubDescriptors {
			if sub, ok := r.arena.ByUID(uid); ok && sub.Class == mxf.ClassTimedTextResourceSubDescriptor {
				return EssenceTimedText
			}
		}
		return EssencePCM
	default:
		return EssenceData
	}
}

func (r *Reader) Close() error { return nil }
