package sharee

import (
	"fmt"

	"sharefind/internal/directory"
	"sharefind/internal/domain"
)

// parseSharee turns one raw entry into a sharee. Unknown share type codes
// are carried through untouched. A non-empty additional info string is
// folded into the display name.
func parseSharee(entry directory.ShareeEntry) domain.Sharee {
	displayName := entry.Label
	additionalInfo := entry.Value.ShareWithAdditionalInfo
	if additionalInfo != "" {
		displayName = fmt.Sprintf("%s (%s)", displayName, additionalInfo)
	}

	return domain.Sharee{
		Type:           domain.ShareType(entry.Value.ShareType),
		ShareWith:      entry.Value.ShareWith,
		DisplayName:    displayName,
		AdditionalInfo: additionalInfo,
	}
}

// Merge flattens a sharee search response into a single ordered list: the
// broad segment first, then the exact segment, each walked in the fixed
// category order users, groups, emails, remotes, circles, rooms. Sharees on
// the exclusion set are dropped before they are appended. The same entry
// appearing in both segments stays duplicated; nothing downstream re-sorts
// or re-dedupes the list.
func Merge(results *directory.ShareeResults, exclude domain.ExclusionSet) []domain.Sharee {
	if results == nil {
		return nil
	}

	var sharees []domain.Sharee
	appendSegment := func(segment *directory.ResultSegment) {
		for _, category := range segment.Categories() {
			for _, entry := range category {
				parsed := parseSharee(entry)
				if exclude.Excludes(parsed) {
					continue
				}
				sharees = append(sharees, parsed)
			}
		}
	}

	appendSegment(results.Broad())
	appendSegment(&results.Exact)

	return sharees
}
