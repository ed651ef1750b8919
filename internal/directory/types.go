package directory

// ShareeValue is the machine-usable part of a sharee entry
type ShareeValue struct {
	ShareWith               string `json:"shareWith"`
	ShareType               int    `json:"shareType"`
	ShareWithAdditionalInfo string `json:"shareWithAdditionalInfo"`
}

// ShareeEntry is a single raw sharee as returned by the sharee endpoint
type ShareeEntry struct {
	Label string      `json:"label"`
	Value ShareeValue `json:"value"`
}

// ResultSegment holds the six sharee categories of one response segment.
// A category the server omitted decodes to an empty list.
type ResultSegment struct {
	Users   []ShareeEntry `json:"users"`
	Groups  []ShareeEntry `json:"groups"`
	Emails  []ShareeEntry `json:"emails"`
	Remotes []ShareeEntry `json:"remotes"`
	Circles []ShareeEntry `json:"circles"`
	Rooms   []ShareeEntry `json:"rooms"`
}

// Categories returns the segment's entry lists in the fixed order the
// merged result list is built in: users, groups, emails, remotes, circles, rooms.
func (s *ResultSegment) Categories() [][]ShareeEntry {
	return [][]ShareeEntry{s.Users, s.Groups, s.Emails, s.Remotes, s.Circles, s.Rooms}
}

// ShareeResults is the decoded data portion of a sharee search response.
// The broad (partial match) categories sit directly on the object; the
// exact matches are nested under "exact".
type ShareeResults struct {
	ResultSegment
	Exact ResultSegment `json:"exact"`
}

// Broad returns the partial-match segment of the response
func (r *ShareeResults) Broad() *ResultSegment {
	return &r.ResultSegment
}

// ocsMeta is the status block of an OCS envelope
type ocsMeta struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statuscode"`
	Message    string `json:"message"`
}

// ocsEnvelope is the outer OCS wrapper around every response
type ocsEnvelope struct {
	OCS struct {
		Meta ocsMeta       `json:"meta"`
		Data ShareeResults `json:"data"`
	} `json:"ocs"`
}
