package facematch

import (
	"sort"
	"sync"

	"github.com/coder/hnsw"
	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/database"
)

// LabeledFace is a named face with a descriptor, as stored in the index.
type LabeledFace struct {
	ImageURI    string
	BoundingBox database.Rect
	Name        string
	Descriptor  []float32
}

// Match is a search hit.
type Match struct {
	Face     LabeledFace
	Distance float64
}

// Index is an HNSW graph over labeled face descriptors.
type Index struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[int]
	faces []LabeledFace
	dims  int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Build replaces the index contents with every named face that carries a
// descriptor. Descriptors whose length differs from the first one are skipped.
func (x *Index) Build(records []database.ImageRecord) {
	g := hnsw.NewGraph[int]()
	g.M = constants.HNSWMaxNeighbors
	g.Ml = 1.0 / float64(constants.HNSWMaxNeighbors)
	g.Distance = hnsw.CosineDistance

	var faces []LabeledFace
	dims := 0
	for _, rec := range records {
		for _, f := range rec.Faces {
			if !f.HasName() || len(f.Descriptor) == 0 {
				continue
			}
			if dims == 0 {
				dims = len(f.Descriptor)
			}
			if len(f.Descriptor) != dims {
				continue
			}
			faces = append(faces, LabeledFace{
				ImageURI:    rec.ImageURI,
				BoundingBox: f.BoundingBox,
				Name:        *f.Name,
				Descriptor:  append([]float32(nil), f.Descriptor...),
			})
			g.Add(hnsw.MakeNode(len(faces)-1, faces[len(faces)-1].Descriptor))
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.faces = faces
	x.dims = dims
	if len(faces) == 0 {
		x.graph = nil
		return
	}
	x.graph = g
}

// Len returns the number of indexed faces.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.faces)
}

// countFrom returns how many indexed faces belong to imageURI.
func (x *Index) countFrom(imageURI string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n := 0
	for _, f := range x.faces {
		if f.ImageURI == imageURI {
			n++
		}
	}
	return n
}

// Nearest returns up to k faces closest to vec, nearest first.
func (x *Index) Nearest(vec []float32, k int) []Match {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.graph == nil || k <= 0 || len(vec) != x.dims {
		return nil
	}

	nodes := x.graph.Search(vec, k)
	matches := make([]Match, 0, len(nodes))
	for _, n := range nodes {
		face := x.faces[n.Key]
		matches = append(matches, Match{Face: face, Distance: CosineDistance(vec, face.Descriptor)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches
}
