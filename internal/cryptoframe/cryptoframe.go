// Package cryptoframe implements the ST 429-6 per-frame encrypted triplet,
// component H. Given a plaintext frame and a plaintext-prefix length, it
// produces (and inverts) the IV + check-value + ciphertext + padding +
// integrity-pack triplet described in spec §4.H.
//
// AES-CBC and HMAC-SHA1 are taken from the standard library
// (crypto/aes, crypto/cipher, crypto/hmac, crypto/sha1): no repository in
// the reference corpus vendors an alternative block-cipher or HMAC
// implementation, and these are the APIs the wider Go ecosystem reaches
// for when a spec mandates this exact algorithm pairing (see DESIGN.md).
package cryptoframe

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha1"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/ber"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// CheckValue is the constant plaintext block AES-CBC-encrypted as the
// check block immediately following the IV.
var CheckValue = [16]byte{'C', 'H', 'U', 'K', 'C', 'H', 'U', 'K', 'C', 'H', 'U', 'K', 'C', 'H', 'U', 'K'}

const blockSize = 16

// Key is a 128-bit AES key used for both encryption and HMAC.
type Key [16]byte

// Triplet carries the logical fields of one encrypted frame (spec §4.H
// items 1-8) used both to build and to verify a frame.
type Triplet struct {
	ContextID       ul.UUID
	PlaintextOffset uint64
	SourceKey       ul.UL
	SourceLength    uint64
	IV              [16]byte
	TrackFileID     ul.UUID
	SequenceNumber  uint64
	HMAC            [20]byte

	Ciphertext []byte // IV-prefixed check block + prefix + ciphertext + padded tail
}

// Encrypt builds the full triplet value (items 1-8 of spec §4.H) for one
// plaintext frame. iv is either caller-supplied or, per spec, the last
// ciphertext block of the previous frame.
func Encrypt(key Key, contextID, trackFileID ul.UUID, sourceKey ul.UL, plaintext []byte, pto uint64, iv [16]byte, sequenceNumber uint64) ([]byte, [16]byte, error) {
	const op = "cryptoframe.Encrypt"
	if len(plaintext) == 0 {
		return nil, iv, asdcperr.New(asdcperr.EmptyFrame, op, nil)
	}
	if pto > uint64(len(plaintext)) {
		return nil, iv, asdcperr.New(asdcperr.LargePto, op, nil)
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, iv, asdcperr.New(asdcperr.AllocError, op, err)
	}

	prefix := plaintext[:pto]
	suffix := plaintext[pto:]
	suffixLen := len(suffix)
	fullBlocks := suffixLen - (suffixLen % blockSize)
	diff := suffixLen - fullBlocks

	// The check-value block is encrypted alone against iv, so its ciphertext
	// can sit right after the IV and chain into the suffix encryption
	// (AS_DCP_MXF.cpp:498-544): ESV = iv || ENC(check) || prefix || ENC(suffix+pad).
	checkCipher := make([]byte, blockSize)
	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(checkCipher, CheckValue[:])

	final := make([]byte, blockSize)
	copy(final, suffix[fullBlocks:])
	for i := diff; i < blockSize; i++ {
		final[i] = byte(i - diff)
	}
	body := make([]byte, 0, fullBlocks+blockSize)
	body = append(body, suffix[:fullBlocks]...)
	body = append(body, final...)

	bodyCipher := make([]byte, len(body))
	cipher.NewCBCEncrypter(block, checkCipher).CryptBlocks(bodyCipher, body)
	nextIV := [16]byte{}
	copy(nextIV[:], bodyCipher[len(bodyCipher)-blockSize:])

	// ESV length = iv + check cipher + prefix + body cipher.
	esvLen := 2*blockSize + len(prefix) + len(bodyCipher)

	esvBytes := make([]byte, 0, esvLen)
	esvBytes = append(esvBytes, iv[:]...)
	esvBytes = append(esvBytes, checkCipher...)
	esvBytes = append(esvBytes, prefix...)
	esvBytes = append(esvBytes, bodyCipher...)

	w := ber.NewWriter()
	w.WriteBytes(mustBER(16))
	w.WriteBytes(contextID.Bytes())
	w.WriteBytes(mustBER(8))
	w.WriteU64BE(pto)
	w.WriteBytes(mustBER(16))
	w.WriteBytes(sourceKey.Bytes())
	w.WriteBytes(mustBER(8))
	w.WriteU64BE(uint64(len(plaintext)))
	w.WriteBytes(mustBER(uint64(esvLen)))
	w.WriteBytes(esvBytes)
	w.WriteBytes(mustBER(16))
	w.WriteBytes(trackFileID.Bytes())
	w.WriteBytes(mustBER(8))
	w.WriteU64BE(sequenceNumber)

	mac := computeHMAC(key, esvBytes, trackFileID, sequenceNumber, true)
	w.WriteBytes(mustBER(20))
	w.WriteBytes(mac[:])

	return w.Bytes(), nextIV, nil
}

// Decrypt inverts Encrypt, validating the check-value block and the HMAC
// (spec §4.H / P9 / P10).
func Decrypt(key Key, value []byte) ([]byte, Triplet, error) {
	const op = "cryptoframe.Decrypt"
	t := Triplet{}
	var err error

	c := newFieldCursor(value)
	t.ContextID, err = c.readUUIDField(16)
	if err != nil {
		return nil, t, err
	}
	t.PlaintextOffset, err = c.readU64Field(8)
	if err != nil {
		return nil, t, err
	}
	t.SourceKey, err = c.readULField(16)
	if err != nil {
		return nil, t, err
	}
	t.SourceLength, err = c.readU64Field(8)
	if err != nil {
		return nil, t, err
	}
	esv, err := c.readLengthPrefixed()
	if err != nil {
		return nil, t, err
	}
	t.TrackFileID, err = c.readUUIDField(16)
	if err != nil {
		return nil, t, err
	}
	t.SequenceNumber, err = c.readU64Field(8)
	if err != nil {
		return nil, t, err
	}
	hmacField, err := c.readLengthPrefixed()
	if err != nil {
		return nil, t, err
	}
	if len(hmacField) != 20 {
		return nil, t, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	copy(t.HMAC[:], hmacField)

	want := computeHMAC(key, esv, t.TrackFileID, t.SequenceNumber, true)
	if !hmac.Equal(want[:], t.HMAC[:]) {
		return nil, t, asdcperr.New(asdcperr.HmacFail, op, nil)
	}

	if len(esv) < 2*blockSize {
		return nil, t, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	copy(t.IV[:], esv[:blockSize])
	checkCipher := esv[blockSize : 2*blockSize]
	pto := int(t.PlaintextOffset)
	if t.PlaintextOffset > t.SourceLength || pto > len(esv)-2*blockSize {
		return nil, t, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	prefix := esv[2*blockSize : 2*blockSize+pto]
	encrypted := esv[2*blockSize+pto:]
	if len(encrypted)%blockSize != 0 || len(encrypted) < blockSize {
		return nil, t, asdcperr.New(asdcperr.FormatError, op, nil)
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, t, asdcperr.New(asdcperr.AllocError, op, err)
	}

	checkPlain := make([]byte, blockSize)
	cipher.NewCBCDecrypter(block, t.IV[:]).CryptBlocks(checkPlain, checkCipher)
	if [16]byte(checkPlain) != CheckValue {
		return nil, t, asdcperr.New(asdcperr.CheckFail, op, nil)
	}

	body := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, checkCipher).CryptBlocks(body, encrypted)

	suffixLen := int(t.SourceLength) - pto
	fullBlocks := suffixLen - (suffixLen % blockSize)
	diff := suffixLen - fullBlocks

	if len(body) != fullBlocks+blockSize {
		return nil, t, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	finalBlock := body[fullBlocks:]
	if finalBlock[diff] != 0 {
		return nil, t, asdcperr.New(asdcperr.CheckFail, op, nil)
	}

	out := make([]byte, 0, int(t.SourceLength))
	out = append(out, prefix...)
	out = append(out, body[:fullBlocks]...)
	out = append(out, finalBlock[:diff]...)

	t.Ciphertext = esv
	return out, t, nil
}

func mustBER(v uint64) []byte {
	b, _ := ber.EncodeBER(v, 4)
	return b
}

// computeHMAC implements spec §4.H: HMAC-SHA1 over (a) the entire
// encrypted essence region, then (b) track-file UUID length+value,
// sequence-number length+value, and the HMAC length byte.
func computeHMAC(key Key, encryptedRegion []byte, trackFileID ul.UUID, seq uint64, includeTrailer bool) [20]byte {
	h := hmac.New(sha1.New, key[:])
	h.Write(encryptedRegion)
	if includeTrailer {
		h.Write(mustBER(16))
		h.Write(trackFileID.Bytes())
		h.Write(mustBER(8))
		var seqB [8]byte
		ber.BE.PutUint64(seqB[:], seq)
		h.Write(seqB[:])
		h.Write(mustBER(20))
	}
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

type fieldCursor struct {
	rest []byte
}

func newFieldCursor(value []byte) *fieldCursor { return &fieldCursor{rest: value} }

func (c *fieldCursor) readLengthPrefixed() ([]byte, error) {
	l, n, err := ber.DecodeBER(c.rest)
	if err != nil {
		return nil, err
	}
	c.rest = c.rest[n:]
	if uint64(len(c.rest)) < l {
		return nil, asdcperr.New(asdcperr.FormatError, "cryptoframe.fieldCursor", nil)
	}
	v := c.rest[:l]
	c.rest = c.rest[l:]
	return v, nil
}

func (c *fieldCursor) readUUIDField(expect int) (ul.UUID, error) {
	v, err := c.readLengthPrefixed()
	if err != nil {
		return ul.UUID{}, err
	}
	if len(v) != expect {
		return ul.UUID{}, asdcperr.New(asdcperr.FormatError, "cryptoframe.fieldCursor", nil)
	}
	var u ul.UUID
	copy(u[:], v)
	return u, nil
}

func (c *fieldCursor) readULField(expect int) (ul.UL, error) {
	v, err := c.readLengthPrefixed()
	if err != nil {
		return ul.UL{}, err
	}
	if len(v) != expect {
		return ul.UL{}, asdcperr.New(asdcperr.FormatError, "cryptoframe.fieldCursor", nil)
	}
	var u ul.UL
	copy(u[:], v)
	return u, nil
}

func (c *fieldCursor) readU64Field(expect int) (uint64, error) {
	v, err := c.readLengthPrefixed()
	if err != nil {
		return 0, err
	}
	if len(v) != expect {
		return 0, asdcperr.New(asdcperr.FormatError, "cryptoframe.fieldCursor", nil)
	}
	return ber.BE.Uint64(v), nil
}
