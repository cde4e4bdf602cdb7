package facematch

import (
	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/database"
)

// Suggestion proposes a name for an unlabeled face.
type Suggestion struct {
	BoundingBox database.Rect `json:"boundingBox"`
	Name        string        `json:"name"`
	Distance    float64       `json:"distance"`
	Votes       int           `json:"votes"` // candidates within threshold sharing the name
	SourceURI   string        `json:"sourceUri"`
}

// Suggest proposes names for the unnamed faces of one image. Candidates from
// the same image are ignored and do not use up the candidate budget. A face
// only gets a suggestion when its nearest labeled neighbour lies within
// threshold. Votes counts the candidates within threshold carrying the same
// name as the suggestion.
func Suggest(index *Index, imageURI string, faces []database.FaceEntry, threshold float64) []Suggestion {
	suggestions := []Suggestion{}
	k := constants.SuggestionCandidates + index.countFrom(imageURI)
	for _, f := range faces {
		if f.HasName() || len(f.Descriptor) == 0 {
			continue
		}

		var candidates []Match
		for _, m := range index.Nearest(f.Descriptor, k) {
			if m.Face.ImageURI == imageURI {
				continue
			}
			if len(candidates) == constants.SuggestionCandidates {
				break
			}
			if m.Distance <= threshold {
				candidates = append(candidates, m)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		best := candidates[0]
		votes := 0
		for _, c := range candidates {
			if SameName(c.Face.Name, best.Face.Name) {
				votes++
			}
		}
		suggestions = append(suggestions, Suggestion{
			BoundingBox: f.BoundingBox,
			Name:        best.Face.Name,
			Distance:    best.Distance,
			Votes:       votes,
			SourceURI:   best.Face.ImageURI,
		})
	}
	return suggestions
}
