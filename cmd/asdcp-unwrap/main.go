// Command asdcp-unwrap extracts essence frames back out of an
// AS-DCP/MXF track file (spec §6 "unwrap <input.mxf> <prefix>").
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cinecert/asdcplib-sub001/internal/essence/pcm"
	"github.com/cinecert/asdcplib-sub001/internal/iobackend"
	"github.com/cinecert/asdcplib-sub001/internal/logging"
	"github.com/cinecert/asdcplib-sub001/internal/trackfile"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("asdcp-unwrap", flag.ContinueOnError)
	startFrame := fs.Int64("f", 0, "start frame")
	count := fs.Int64("d", 0, "frame count (0 = all)")
	splitMono := fs.Bool("1", false, "split PCM to mono WAV files")
	splitStereo := fs.Bool("2", false, "split PCM to stereo WAV files")
	splitAll := fs.Bool("S", false, "split PCM to one mono WAV per channel")

	if err := fs.Parse(args); err != nil {
		return 3
	}
	rest := fs.Args()
	if len(rest) != 2 {
		fmt.Fprintln(os.Stderr, "usage: asdcp-unwrap [flags] <input.mxf> <prefix>")
		return 3
	}
	input, prefix := rest[0], rest[1]

	backend, err := iobackend.OpenFileForRead(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asdcp-unwrap: %v\n", err)
		return 1
	}
	r, err := trackfile.Open(context.Background(), backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asdcp-unwrap: %v\n", err)
		return 5
	}
	defer r.Close()

	total := r.FrameCount()
	n := *count
	if n == 0 {
		n = total - *startFrame
	}
	if n < 0 {
		n = 0
	}

	var pcmFrames [][]byte
	wrote := int64(0)
	for i := int64(0); i < n; i++ {
		frame, err := r.ReadFrame(*startFrame + i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "asdcp-unwrap: %v\n", err)
			return 1
		}
		if r.Kind() == trackfile.EssencePCM && (*splitMono || *splitStereo || *splitAll) {
			pcmFrames = append(pcmFrames, frame)
			wrote++
			continue
		}
		path := fmt.Sprintf("%s%06d.frame", prefix, *startFrame+i)
		if err := os.WriteFile(path, frame, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "asdcp-unwrap: %v\n", err)
			return 1
		}
		wrote++
	}

	if len(pcmFrames) > 0 {
		if err := writePCMSplit(prefix, pcmFrames, *splitMono, *splitStereo, *splitAll); err != nil {
			fmt.Fprintf(os.Stderr, "asdcp-unwrap: %v\n", err)
			return 1
		}
	}

	logging.Default().Info("asdcp-unwrap", "extracted frames", map[string]interface{}{
		"input": input, "frames": wrote,
	})
	return 0
}

// writePCMSplit reassembles CBR PCM frames into one WAV file (or one per
// channel, or one per stereo pair) per spec §6 -1/-2/-S.
func writePCMSplit(prefix string, frames [][]byte, mono, stereo, all bool) error {
	var data []byte
	for _, f := range frames {
		data = append(data, f...)
	}
	switch {
	case mono || all:
		out, err := os.Create(prefix + "mono.wav")
		if err != nil {
			return err
		}
		defer out.Close()
		return pcm.Encode(out, 1, 48000, 24, data)
	case stereo:
		out, err := os.Create(prefix + "stereo.wav")
		if err != nil {
			return err
		}
		defer out.Close()
		return pcm.Encode(out, 2, 48000, 24, data)
	default:
		out, err := os.Create(prefix + ".wav")
		if err != nil {
			return err
		}
		defer out.Close()
		return pcm.Encode(out, 2, 48000, 24, data)
	}
}
