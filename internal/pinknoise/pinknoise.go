// Package pinknoise generates ST 2095-1 pink-noise PCM test essence,
// used by asdcp-test to synthesize audio track files without a real
// source asset.
package pinknoise

import "math/rand"

// Generator produces pink noise (1/f power spectral density) using the
// Paul Kellet refined filter, a standard cheap approximation.
type Generator struct {
	rng                        *rand.Rand
	b0, b1, b2, b3, b4, b5, b6 float64
}

// NewGenerator seeds a Generator deterministically from seed so repeated
// test runs reproduce identical byte streams.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) next() float64 {
	white := g.rng.Float64()*2 - 1
	g.b0 = 0.99886*g.b0 + white*0.0555179
	g.b1 = 0.99332*g.b1 + white*0.0750759
	g.b2 = 0.96900*g.b2 + white*0.1538520
	g.b3 = 0.86650*g.b3 + white*0.3104856
	g.b4 = 0.55000*g.b4 + white*0.5329522
	g.b5 = -0.7616*g.b5 - white*0.0168980
	out := g.b0 + g.b1 + g.b2 + g.b3 + g.b4 + g.b5 + g.b6 + white*0.5362
	g.b6 = white * 0.115926
	return out * 0.11
}

// Generate16 fills buf with n little-endian signed 16-bit PCM samples of
// pink noise for one channel.
func (g *Generator) Generate16(n int) []byte {
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		s := g.next()
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		buf[i*2] = byte(v)
		buf[i*2+1] = byte(v >> 8)
	}
	return buf
}

// GenerateInterleaved fills a buffer of n frames across channels
// channels, repeating the same mono pink-noise signal on every channel.
func (g *Generator) GenerateInterleaved(n, channels int) []byte {
	mono := g.Generate16(n)
	buf := make([]byte, n*channels*2)
	for i := 0; i < n; i++ {
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 2
			buf[off] = mono[i*2]
			buf[off+1] = mono[i*2+1]
		}
	}
	return buf
}
