// Package timedtext clip-wraps an ST 429-41 XML timed-text resource
// together with its PNG subtitle image assets, content-addressing each
// PNG by a version-5 UUID derived from its bytes (spec §3).
package timedtext

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// pngNamespace is the fixed UUID namespace PNG asset IDs are derived
// from, so the same image bytes always resolve to the same ResourceID
// regardless of file name.
var pngNamespace = ul.UUID{0x43, 0xaa, 0xa1, 0x31, 0x6a, 0x27, 0x4f, 0x1c, 0x9d, 0x4e, 0x9b, 0x6f, 0xe8, 0x3a, 0x01, 0x02}

// Asset is one content-addressed PNG subtitle image.
type Asset struct {
	Path string
	ID   ul.UUID
	Data []byte
}

// Resource is an XML timed-text document plus the image assets it
// references.
type Resource struct {
	XML    []byte
	Assets []Asset
}

// Load reads the XML document at xmlPath and every *.png file in
// assetDir, computing each asset's content-addressed ID.
func Load(xmlPath, assetDir string) (*Resource, error) {
	const op = "timedtext.Load"
	xml, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, asdcperr.New(asdcperr.FormatError, op, err)
	}
	r := &Resource{XML: xml}

	var names []string
	if assetDir != "" {
		err := filepath.WalkDir(assetDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".png" {
				names = append(names, path)
			}
			return nil
		})
		if err != nil {
			return nil, asdcperr.New(asdcperr.FormatError, op, err)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, asdcperr.New(asdcperr.FormatError, op, err)
		}
		r.Assets = append(r.Assets, Asset{
			Path: name,
			ID:   ul.NewUUIDv5(pngNamespace, data),
			Data: data,
		})
	}
	return r, nil
}

// Frames returns the resource's essence frames in write order: the XML
// document first, followed by each asset in the order Load discovered
// them.
func (r *Resource) Frames() [][]byte {
	frames := make([][]byte, 0, 1+len(r.Assets))
	frames = append(frames, r.XML)
	for _, a := range r.Assets {
		frames = append(frames, a.Data)
	}
	return frames
}

// ResourceIDs returns the content-addressed ID of every asset, in asset
// order: ids[i] belongs to Frames()[i+1]. The XML document itself
// (Frames()[0]) carries no resource ID and has no entry here.
func (r *Resource) ResourceIDs() []ul.UUID {
	ids := make([]ul.UUID, len(r.Assets))
	for i, a := range r.Assets {
		ids[i] = a.ID
	}
	return ids
}
