package cryptoframe

import (
	"testing"

	"github.com/matryer/is"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

func testKey() Key { return Key{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16} }

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey()
	contextID := ul.UUID{0xaa}
	trackFileID := ul.UUID{0xbb}
	sourceKey := ul.UL{0x06, 0x0e, 0x2b, 0x34}
	iv := [16]byte{}

	cases := []struct {
		name string
		pto  uint64
		data []byte
	}{
		{"no-prefix", 0, []byte("short plaintext frame")},
		{"with-prefix", 4, []byte("HEADplaintext body data exceeding one block in length")},
		{"exact-block", 0, make([]byte, 32)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			triplet, _, err := Encrypt(key, contextID, trackFileID, sourceKey, c.data, c.pto, iv, 1)
			is.NoErr(err)

			plain, parsed, err := Decrypt(key, triplet)
			is.NoErr(err)
			is.Equal(plain, c.data)
			is.Equal(parsed.ContextID, contextID)
			is.Equal(parsed.TrackFileID, trackFileID)
			is.Equal(parsed.PlaintextOffset, c.pto)
		})
	}
}

func TestEncryptRejectsEmptyFrame(t *testing.T) {
	key := testKey()
	_, _, err := Encrypt(key, ul.UUID{}, ul.UUID{}, ul.UL{}, nil, 0, [16]byte{}, 0)
	if !errorsIsKind(err, asdcperr.EmptyFrame) {
		t.Fatalf("expected EmptyFrame, got %v", err)
	}
}

func TestDecryptDetectsTamperedHMAC(t *testing.T) {
	key := testKey()
	triplet, _, err := Encrypt(key, ul.UUID{1}, ul.UUID{2}, ul.UL{3}, []byte("hello world, this is a test frame"), 0, [16]byte{}, 7)
	if err != nil {
		t.Fatal(err)
	}
	tampered := make([]byte, len(triplet))
	copy(tampered, triplet)
	tampered[len(tampered)-1] ^= 0xff // flip a bit inside the HMAC field

	if _, _, err := Decrypt(key, tampered); !errorsIsKind(err, asdcperr.HmacFail) {
		t.Fatalf("expected HmacFail for tampered HMAC field, got %v", err)
	}
}

func TestDecryptDetectsTamperedContextID(t *testing.T) {
	key := testKey()
	triplet, _, err := Encrypt(key, ul.UUID{1}, ul.UUID{2}, ul.UL{3}, []byte("another test frame of plaintext"), 0, [16]byte{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	tampered := make([]byte, len(triplet))
	copy(tampered, triplet)
	tampered[4] ^= 0xff // first context-id byte, right after its 4-octet BER length

	if _, _, err := Decrypt(key, tampered); !errorsIsKind(err, asdcperr.HmacFail) {
		t.Fatalf("expected HmacFail for tampered context-id, got %v", err)
	}
}

func errorsIsKind(err error, kind asdcperr.Kind) bool {
	e, ok := err.(*asdcperr.Error)
	return ok && e.Kind == kind
}
