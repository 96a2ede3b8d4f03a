// Package parse recovers typed records from the positional token
// streams of known response types.
//
// The wire format has no schema. Every function here is a named
// heuristic over empirically observed layouts: parsers return nil (or a
// zero value) when the response type does not match or the body carries
// the server exception marker, and degrade to partial results rather
// than failing when a pattern is not found. Several constants (marker
// fallback index, colors, block offsets) were derived from captured
// traffic against one server version and are pinned by fixture tests.
package parse

import (
	"regexp"
	"strings"

	"github.com/christophergoltz/elogio-sub001/internal/rpc"
)

// Response payload class fragments used to gate each parser.
const (
	weekResponseMarker      = "ReponseSemaine"
	absenceResponseMarker   = "ReponseAbsences"
	punchResponseMarker     = "ReponseBadgeage"
	colleagueResponseMarker = "ReponsePlanningEquipe"
	intranetResponseMarker  = "ParametreIntranet"
)

// String-table marker types located by substring.
const (
	durationMarkerType = "DureeValeur"
	hourMarkerType     = "HeureValeur"
	employeeIDField    = "idSalarie"
)

// Empirically derived constants. They may be specific to one server
// version; the fixture tests pin them.
const (
	// Fallback type-table index for the duration marker when the type
	// name is absent from the string table.
	durationMarkerFallbackIndex = 8

	// Sentinel integer that opens the legend section of an absence
	// response.
	legendDelimiter = 9999

	// Token that advances the day counter inside a colleague block.
	cellBoundary = 7

	// Fixed offset from a colleague block index to the owning identity
	// in the string table.
	identityOffset = 2
)

// Absence color values. Negative integers on the wire.
const (
	ColorVacation        = -16744448
	ColorSick            = -65536
	ColorPrivate         = -16776961
	ColorHalfHoliday     = -32768
	ColorApprovedAbsence = -8355712
)

var (
	capitalizedWord = regexp.MustCompile(`^\p{Lu}[\p{L}'-]*$`)
	fullName        = regexp.MustCompile(`^\p{Lu}[\p{L}'-]+ \p{Lu}[\p{L}'-]+$`)
	nameWithID      = regexp.MustCompile(`^(.+) \((\d+)\)$`)
	punchTime       = regexp.MustCompile(`um (\d{1,2}):(\d{2})`)
)

// rejects reports whether a parser should ignore the message outright:
// wrong response type or a protocol-level exception.
func rejects(msg *rpc.Message, typeMarker string) bool {
	if msg == nil || msg.HasException() {
		return true
	}

	return !strings.Contains(msg.ResponseType(), typeMarker)
}

// validStringRef reports whether v is a usable 1-based string table
// index for msg.
func validStringRef(msg *rpc.Message, v int64) bool {
	return v >= 1 && v <= int64(len(msg.StringTable))
}
