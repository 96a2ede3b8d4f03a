package parse

import (
	"log/slog"

	"github.com/christophergoltz/elogio-sub001/internal/rpc"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

// EmployeeID extracts the session employee id from a global-service
// connect response: the integer token adjacent to two consecutive
// string-table references whose entries look like a first and last
// name. Returns 0 when the pattern is not found.
func EmployeeID(msg *rpc.Message) int {
	if msg == nil || msg.HasException() {
		return 0
	}

	tokens := msg.DataTokens

	for i := 0; i+1 < len(tokens); i++ {
		if !isNameRef(msg, tokens[i]) || !isNameRef(msg, tokens[i+1]) {
			continue
		}

		// Prefer the id after the name pair, then the one before it.
		if i+2 < len(tokens) && isPlausibleID(tokens[i+2]) {
			return int(tokens[i+2].Int)
		}

		if i > 0 && isPlausibleID(tokens[i-1]) {
			return int(tokens[i-1].Int)
		}
	}

	slog.Warn("employee id not resolved, defaulting to 0")

	return 0
}

// RealEmployeeID extracts the authoritative employee id from an
// intranet parameter response: the integer following the reference to
// the id field name. Returns 0 when the pattern is not found.
func RealEmployeeID(msg *rpc.Message) int {
	if msg == nil || msg.HasException() {
		return 0
	}

	// The intranet parameter response is the only known carrier of the
	// field, but the scan keys on the field name rather than the type
	// so a renamed payload class does not break it.
	field := int64(msg.StringIndex(employeeIDField))
	if field == 0 {
		return 0
	}

	tokens := msg.DataTokens
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].IsInt(field) && isPlausibleID(tokens[i+1]) {
			return int(tokens[i+1].Int)
		}
	}

	slog.Warn("real employee id not resolved, defaulting to 0")

	return 0
}

func isNameRef(msg *rpc.Message, tok rpc.Token) bool {
	if tok.Kind != rpc.KindInteger || !validStringRef(msg, tok.Int) {
		return false
	}

	return capitalizedWord.MatchString(msg.GetString(int(tok.Int)))
}

func isPlausibleID(tok rpc.Token) bool {
	if tok.Kind != rpc.KindInteger || tok.Int <= 0 {
		return false
	}

	return !timeutil.IsWireDate(int(tok.Int))
}
