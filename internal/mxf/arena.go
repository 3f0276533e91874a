package mxf

import (
	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// Arena owns every header-metadata object for one file. Objects never
// move once appended; indices are stable for the arena's lifetime.
type Arena struct {
	objects  []*Object
	byUID    map[ul.UUID]int
	byClass  map[Class][]int
}

func NewArena() *Arena {
	return &Arena{byUID: map[ul.UUID]int{}, byClass: map[Class][]int{}}
}

// Add assigns obj a fresh InstanceUID if it has none, appends it to the
// arena, and indexes it. The writer never reuses an InstanceUID within a
// file (spec §3 Lifecycle).
func (a *Arena) Add(obj *Object) *Object {
	if obj.InstanceUID == (ul.UUID{}) {
		obj.InstanceUID = ul.NewUUID()
	}
	idx := len(a.objects)
	a.objects = append(a.objects, obj)
	a.byUID[obj.InstanceUID] = idx
	a.byClass[obj.Class] = append(a.byClass[obj.Class], idx)
	return obj
}

func (a *Arena) ByUID(id ul.UUID) (*Object, bool) {
	idx, ok := a.byUID[id]
	if !ok {
		return nil, false
	}
	return a.objects[idx], true
}

func (a *Arena) ByClass(c Class) []*Object {
	idxs := a.byClass[c]
	out := make([]*Object, len(idxs))
	for i, idx := range idxs {
		out[i] = a.objects[idx]
	}
	return out
}

// All returns every object, in arena (insertion) order — the order
// objects are serialized in on write.
func (a *Arena) All() []*Object { return a.objects }

// MustOne returns the single expected instance of a class, failing with
// FormatError if zero or more than one is present (spec §3 invariants:
// exactly one Preface, exactly one ContentStorage, ...).
func (a *Arena) MustOne(c Class) (*Object, error) {
	objs := a.ByClass(c)
	if len(objs) != 1 {
		return nil, asdcperr.New(asdcperr.FormatError, "mxf.Arena.MustOne", nil)
	}
	return objs[0], nil
}

// DurationPointers returns every *int64 duration field reachable from the
// given package's track graph (the writer calls it for both the File and
// the Material Package), used by the writer to update every
// propagated duration on finalize (spec §3: "writer-scoped list of
// pointers to these duration fields is updated on finalize").
func (a *Arena) DurationPointers(filePackage *Object) []*int64 {
	var ptrs []*int64
	for _, trackID := range filePackage.Package.Tracks {
		trackObj, ok := a.ByUID(trackID)
		if !ok || trackObj.Track == nil {
			continue
		}
		seqObj, ok := a.ByUID(trackObj.Track.Sequence)
		if !ok || seqObj.Sequence == nil {
			continue
		}
		if seqObj.Sequence.DurationPtr != nil {
			ptrs = append(ptrs, seqObj.Sequence.DurationPtr)
		}
		for _, compID := range seqObj.Sequence.Components {
			compObj, ok := a.ByUID(compID)
			if !ok {
				continue
			}
			switch {
			case compObj.SourceClip != nil && compObj.SourceClip.DurationPtr != nil:
				ptrs = append(ptrs, compObj.SourceClip.DurationPtr)
			case compObj.Timecode != nil && compObj.Timecode.DurationPtr != nil:
				ptrs = append(ptrs, compObj.Timecode.DurationPtr)
			case compObj.DMSegment != nil && compObj.DMSegment.DurationPtr != nil:
				ptrs = append(ptrs, compObj.DMSegment.DurationPtr)
			}
		}
	}
	return ptrs
}
