package theory

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

const maxQualitySuggestions = 3

// suggestQualities proposes chord symbols close to an unparseable quality.
// The typed token is shortened from the right until something fuzzy-matches.
func suggestQualities(rootName, typed string) []string {
	candidates := make([]string, 0, len(qualityTable))
	for _, def := range qualityTable {
		if def.token != "" {
			candidates = append(candidates, def.token)
		}
	}

	runes := []rune(typed)
	for n := len(runes); n > 0; n-- {
		matches := fuzzy.Find(string(runes[:n]), candidates)
		if len(matches) == 0 {
			continue
		}
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].Score != matches[j].Score {
				return matches[i].Score > matches[j].Score
			}
			return matches[i].Index < matches[j].Index
		})

		out := make([]string, 0, maxQualitySuggestions)
		for _, m := range matches {
			out = append(out, rootName+m.Str)
			if len(out) == maxQualitySuggestions {
				break
			}
		}
		return out
	}

	return []string{rootName, rootName + "m", rootName + "7"}
}
