package domain

import "fmt"

// ShareType identifies the kind of recipient a sharee is. The values match
// the integer share type codes used by the OCS sharee endpoint; codes we do
// not recognize are kept as-is rather than rejected.
type ShareType int

const (
	ShareTypeUser   ShareType = 0
	ShareTypeGroup  ShareType = 1
	ShareTypeEmail  ShareType = 4
	ShareTypeRemote ShareType = 6
	ShareTypeCircle ShareType = 7
	ShareTypeRoom   ShareType = 10
)

// String returns a short human-readable name for the share type
func (t ShareType) String() string {
	switch t {
	case ShareTypeUser:
		return "user"
	case ShareTypeGroup:
		return "group"
	case ShareTypeEmail:
		return "email"
	case ShareTypeRemote:
		return "remote"
	case ShareTypeCircle:
		return "circle"
	case ShareTypeRoom:
		return "room"
	}
	return fmt.Sprintf("sharetype(%d)", int(t))
}

// Sharee is a single share recipient candidate returned by a directory
// search. DisplayName already includes the additional info suffix when the
// server provided one. A Sharee is never modified after it is parsed.
type Sharee struct {
	Type           ShareType
	ShareWith      string // machine-usable share target
	DisplayName    string
	AdditionalInfo string
}

// Format returns the name to show to the user
func (s Sharee) Format() string {
	return s.DisplayName
}

// ShareeRef identifies a sharee by type and share target without any of the
// display fields. Two sharees refer to the same recipient iff their refs are equal.
type ShareeRef struct {
	Type      ShareType
	ShareWith string
}

// Ref returns the identifying part of the sharee
func (s Sharee) Ref() ShareeRef {
	return ShareeRef{Type: s.Type, ShareWith: s.ShareWith}
}

// ExclusionSet holds recipients that are already associated with the current
// share and must be hidden from further selection.
type ExclusionSet []ShareeRef

// Excludes reports whether the sharee is on the exclusion set. Linear scan;
// exclusion sets are small and result pages are capped at the page size.
func (e ExclusionSet) Excludes(s Sharee) bool {
	for _, ref := range e {
		if ref.Type == s.Type && ref.ShareWith == s.ShareWith {
			return true
		}
	}
	return false
}

// ItemKind is the kind of item being shared
type ItemKind int

const (
	ItemKindFile ItemKind = iota
	ItemKindFolder
)

// String returns the wire value the sharee endpoint expects
func (k ItemKind) String() string {
	if k == ItemKindFolder {
		return "folder"
	}
	return "file"
}

// LookupMode selects whether a search queries only locally known recipients
// or the wider federated directory.
type LookupMode int

const (
	LocalSearch LookupMode = iota
	GlobalSearch
)

// String returns a human-readable name for the lookup mode
func (m LookupMode) String() string {
	if m == GlobalSearch {
		return "global"
	}
	return "local"
}

// SearchQuery is the full set of parameters a sharee search is issued with.
// It is assembled from the model's current properties at fetch time, not
// snapshotted at keystroke time.
type SearchQuery struct {
	Text       string
	ItemKind   ItemKind
	LookupMode LookupMode
}
