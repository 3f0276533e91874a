// Command asdcp-wrap packages one or more essence inputs into an
// AS-DCP/MXF track file (spec §6 "wrap <inputs...> <output.mxf>").
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cinecert/asdcplib-sub001/internal/essence/j2c"
	"github.com/cinecert/asdcplib-sub001/internal/essence/mpeg2"
	"github.com/cinecert/asdcplib-sub001/internal/essence/pcm"
	"github.com/cinecert/asdcplib-sub001/internal/essence/timedtext"
	"github.com/cinecert/asdcplib-sub001/internal/iobackend"
	"github.com/cinecert/asdcplib-sub001/internal/logging"
	"github.com/cinecert/asdcplib-sub001/internal/trackfile"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("asdcp-wrap", flag.ContinueOnError)
	encrypt := fs.Bool("e", false, "encrypt essence")
	encryptHeader := fs.Bool("E", false, "encrypt essence and header (alias of -e)")
	keyHex := fs.String("k", "", "AES key, 16 bytes hex")
	keyIDHex := fs.String("j", "", "key-id UUID hex")
	assetIDHex := fs.String("a", "", "asset-id UUID hex")
	smpteLabels := fs.Bool("L", false, "use SMPTE labels (default Interop)")
	noHMAC := fs.Bool("M", false, "clear WriterInfo.HMACUsed; every encrypted frame still carries an HMAC")
	maxFrames := fs.Int64("d", 0, "limit frame count (0 = unlimited)")
	pictureRate := fs.String("p", "24/1", "picture rate for PCM muxing, num/den")
	stereo := fs.Bool("3", false, "stereoscopic J2K")
	channelFormat := fs.String("l", "", "PCM channel format: 5.1|6.1|7.1|7.1DS|WTF")

	if err := fs.Parse(args); err != nil {
		return 3
	}
	rest := fs.Args()
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "usage: asdcp-wrap [flags] <inputs...> <output.mxf>")
		return 3
	}
	inputs, output := rest[:len(rest)-1], rest[len(rest)-1]

	info := trackfile.DefaultWriterInfo()
	info.LabelSet = ul.Interop
	if *smpteLabels {
		info.LabelSet = ul.SMPTE
	}
	info.HMACUsed = !*noHMAC
	info.EncryptEssence = *encrypt || *encryptHeader

	if info.EncryptEssence {
		key, err := decodeHex16(*keyHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "asdcp-wrap: bad -k: %v\n", err)
			return 3
		}
		copy(info.CryptographicKeyID[:], key[:])
		keyID, err := decodeHex16(*keyIDHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "asdcp-wrap: bad -j: %v\n", err)
			return 3
		}
		info.ContextID = keyID
	}
	if *assetIDHex != "" {
		assetID, err := decodeHex16(*assetIDHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "asdcp-wrap: bad -a: %v\n", err)
			return 3
		}
		info.AssetUUID = assetID
	}

	editNum, editDen, err := parseRational(*pictureRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asdcp-wrap: bad -p: %v\n", err)
		return 3
	}

	kind, err := classifyInputs(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asdcp-wrap: %v\n", err)
		return 5
	}

	backend, err := iobackend.OpenFileForWrite(output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asdcp-wrap: %v\n", err)
		return 1
	}

	var opts []trackfile.WriterOption
	if *stereo && kind == trackfile.EssenceJPEG2000 {
		opts = append(opts, trackfile.WithStereoscopic())
	}
	w := trackfile.NewWriter(backend, info, kind, trackfile.OPAtom, editNum, editDen, opts...)
	if err := w.SetSourceStream(); err != nil {
		fmt.Fprintf(os.Stderr, "asdcp-wrap: %v\n", err)
		return 1
	}

	limit := *maxFrames
	written, err := writeEssence(w, kind, inputs, *channelFormat, editNum, editDen, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asdcp-wrap: %v\n", err)
		return 1
	}

	if err := w.Finalize(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "asdcp-wrap: %v\n", err)
		return 1
	}

	logging.Default().Info("asdcp-wrap", "wrote track file", map[string]interface{}{
		"output": output, "frames": written,
	})
	return 0
}

func classifyInputs(inputs []string) (trackfile.EssenceKind, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("no inputs")
	}
	ext := strings.ToLower(filepath.Ext(inputs[0]))
	switch ext {
	case ".j2c", ".jp2", ".j2k":
		return trackfile.EssenceJPEG2000, nil
	case ".m2v", ".mpv", ".es":
		return trackfile.EssenceMPEG2, nil
	case ".wav":
		return trackfile.EssencePCM, nil
	case ".xml":
		return trackfile.EssenceTimedText, nil
	default:
		if info, err := os.Stat(inputs[0]); err == nil && info.IsDir() {
			return trackfile.EssenceJPEG2000, nil
		}
		return 0, fmt.Errorf("unrecognized input type %q", ext)
	}
}

func writeEssence(w *trackfile.Writer, kind trackfile.EssenceKind, inputs []string, channelFormat string, editNum, editDen int32, limit int64) (int64, error) {
	switch kind {
	case trackfile.EssenceJPEG2000:
		return writeJ2C(w, inputs, limit)
	case trackfile.EssenceMPEG2:
		return writeMPEG2(w, inputs[0], limit)
	case trackfile.EssencePCM:
		return writePCM(w, inputs[0], channelFormat, editNum, editDen, limit)
	case trackfile.EssenceTimedText:
		return writeTimedText(w, inputs)
	default:
		return 0, fmt.Errorf("unsupported essence kind")
	}
}

func writeJ2C(w *trackfile.Writer, inputs []string, limit int64) (int64, error) {
	var paths []string
	if len(inputs) == 1 {
		if info, err := os.Stat(inputs[0]); err == nil && info.IsDir() {
			list, err := j2c.Directory(inputs[0])
			if err != nil {
				return 0, err
			}
			paths = list
		} else {
			paths = inputs
		}
	} else {
		paths = inputs
	}
	var n int64
	for _, p := range paths {
		if limit > 0 && n >= limit {
			break
		}
		frame, err := j2c.ReadFrame(p)
		if err != nil {
			return n, err
		}
		if err := w.WriteFrame(frame); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func writeMPEG2(w *trackfile.Writer, path string, limit int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	frames, err := mpeg2.Scan(f)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, fr := range frames {
		if limit > 0 && n >= limit {
			break
		}
		if err := w.WriteFrameWithFlags(fr.Data, fr.Flags(), 0); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func writePCM(w *trackfile.Writer, path, channelFormat string, editNum, editDen int32, limit int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	stream, err := pcm.Decode(f)
	if err != nil {
		return 0, err
	}
	if channelFormat != "" {
		want := pcm.ChannelCount(pcm.ChannelFormat(channelFormat))
		if want == 0 {
			return 0, fmt.Errorf("unrecognized -l channel format %q", channelFormat)
		}
		if int(stream.Channels) != want {
			return 0, fmt.Errorf("-l %s expects %d channels, source has %d", channelFormat, want, stream.Channels)
		}
	}
	frames, err := stream.Frames(editNum, editDen)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, fr := range frames {
		if limit > 0 && n >= limit {
			break
		}
		if err := w.WriteFrame(fr); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func writeTimedText(w *trackfile.Writer, inputs []string) (int64, error) {
	xmlPath := inputs[0]
	assetDir := ""
	if len(inputs) > 1 {
		assetDir = inputs[1]
	}
	res, err := timedtext.Load(xmlPath, assetDir)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, frame := range res.Frames() {
		if err := w.WriteFrame(frame); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func decodeHex16(s string) (ul.UUID, error) {
	var u ul.UUID
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	if len(b) != 16 {
		return u, fmt.Errorf("want 16 bytes, got %d", len(b))
	}
	copy(u[:], b)
	return u, nil
}

func parseRational(s string) (int32, int32, error) {
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	den := 1
	if len(parts) == 2 {
		den, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, err
		}
	}
	return int32(num), int32(den), nil
}
