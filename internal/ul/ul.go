// Package ul implements the Universal Label type, UUID/UMID helpers, and
// the MDD (Metadata Dictionary) registry: symbolic names mapped to 16-octet
// ULs and short local tags (spec §4.B). The registry has three flavors —
// Interop, SMPTE, and a composite — matching the two label sets AS-DCP
// writers may emit (spec §3 WriterInfo.label_set_mode).
package ul

import (
	"crypto/sha1"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// UL is a 16-octet SMPTE Universal Label.
type UL [16]byte

func (u UL) Bytes() []byte { return u[:] }

func (u UL) String() string { return hex.EncodeToString(u[:]) }

// Equal performs exact 16-byte comparison.
func (u UL) Equal(o UL) bool { return u == o }

// MatchIgnoreStream implements P3: bytes 0..14 equal, byte 15 (the
// stream/channel index carried by essence-element keys) ignored.
func (u UL) MatchIgnoreStream(o UL) bool {
	return [15]byte(u[:15]) == [15]byte(o[:15])
}

func ULFromBytes(b []byte) (UL, error) {
	var u UL
	if len(b) != 16 {
		return u, fmt.Errorf("ul: want 16 bytes, got %d", len(b))
	}
	copy(u[:], b)
	return u, nil
}

// UUID is a 16-octet generic identifier.
type UUID [16]byte

func (u UUID) Bytes() []byte   { return u[:] }
func (u UUID) String() string  { return hex.EncodeToString(u[:]) }

// NewUUID generates a version-4 random UUID using the platform CSPRNG
// (spec §9: "reimplementation should use the platform's cryptographic
// RNG for UUIDs and IVs").
func NewUUID() UUID {
	id := uuid.New()
	var u UUID
	copy(u[:], id[:])
	return u
}

// NewUUIDv5 derives a content-addressed UUID from namespace and name
// (SHA-1 based), used for PNG assets referenced by subtitle XML (spec §3).
func NewUUIDv5(namespace UUID, name []byte) UUID {
	h := sha1.New()
	h.Write(namespace[:])
	h.Write(name)
	sum := h.Sum(nil)
	var u UUID
	copy(u[:], sum[:16])
	u[6] = (u[6] & 0x0f) | 0x50
	u[8] = (u[8] & 0x3f) | 0x80
	return u
}

// RandomBytes fills b using the platform CSPRNG; used for IVs.
func RandomBytes(b []byte) error {
	_, err := rand.Read(b)
	return err
}

// UMID is the 32-octet Material identifier: 10-octet fixed prefix, material
// type, length byte, instance number, and a 16-octet material number.
type UMID [32]byte

var umidPrefix = [10]byte{0x06, 0x0a, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x01, 0x01, 0x0f}

// NewUMID builds a UMID for materialType with a fresh random material number.
func NewUMID(materialType byte, instanceNumber [3]byte) UMID {
	var u UMID
	copy(u[0:10], umidPrefix[:])
	u[10] = materialType
	u[11] = 0x13 // length byte: UUID/SMPTE material number, instance present
	copy(u[12:15], instanceNumber[:])
	mn := NewUUID()
	copy(u[16:32], mn[:])
	return u
}

func (u UMID) Bytes() []byte  { return u[:] }
func (u UMID) String() string { return hex.EncodeToString(u[:]) }
