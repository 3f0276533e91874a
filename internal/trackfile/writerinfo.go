// Package trackfile implements TrackFileReader/TrackFileWriter, component
// I: the state machine that composes the structural layer (B-G) and the
// crypto frame codec (H) into a legal 2-part (Interop/AS-02) or 3-part
// (SMPTE) MXF file.
package trackfile

import (
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// EssenceKind selects which descriptor/essence-element family a writer
// targets (spec §1: "Each track file holds exactly one kind of essence").
type EssenceKind int

const (
	EssenceMPEG2 EssenceKind = iota
	EssenceJPEG2000
	EssencePCM
	EssenceTimedText
	EssenceData
)

// OperationalPattern selects OP-Atom (D-Cinema) or OP-1a (AS-02/frame-wrapped).
type OperationalPattern int

const (
	OPAtom OperationalPattern = iota
	OP1a
)

// WriterInfo is the ambient state threaded through both reader and writer
// (spec §3 WriterInfo).
type WriterInfo struct {
	CompanyName    string
	ProductName    string
	ProductVersion string
	ToolkitVersion string
	ProductUUID    ul.UUID
	AssetUUID      ul.UUID
	LabelSet       ul.LabelSet

	EncryptEssence      bool
	ContextID           ul.UUID
	CryptographicKeyID  ul.UUID
	HMACUsed            bool
}

// DefaultWriterInfo returns a WriterInfo stamped with this toolkit's
// product identity, matching how Identification.ToolkitVersion is
// populated on open_write (spec §4.I).
func DefaultWriterInfo() WriterInfo {
	return WriterInfo{
		CompanyName:    "asdcplib-sub001",
		ProductName:    "asdcplib-sub001 track file codec",
		ProductVersion: "1.0.0",
		ToolkitVersion: "1.0.0",
		ProductUUID:    ul.NewUUID(),
		AssetUUID:      ul.NewUUID(),
		LabelSet:       ul.SMPTE,
		HMACUsed:       true,
	}
}
