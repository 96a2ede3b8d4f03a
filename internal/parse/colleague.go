package parse

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/rpc"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

// Colleague data blocks open with the fixed 5-token header
// {3, blockIndex, typeIndex, 62, daysInMonth}.
const (
	blockHeaderOpen  = 3
	blockHeaderFixed = 62
)

// ColleagueAbsences recovers the per-colleague absence grid for a
// month. Returns nil on type mismatch or exception; colleagues whose
// identity cannot be resolved are skipped with a log entry.
func ColleagueAbsences(msg *rpc.Message, month timeutil.Month) []models.ColleagueAbsence {
	if rejects(msg, colleagueResponseMarker) {
		return nil
	}

	aliases := badgeAliases(msg)

	var out []models.ColleagueAbsence

	tokens := msg.DataTokens
	for i := 0; i+4 < len(tokens); i++ {
		blockIndex, daysInMonth, ok := blockHeader(tokens[i:])
		if !ok {
			continue
		}

		// The owning identity sits a fixed offset past the block index.
		identity := msg.GetString(blockIndex + identityOffset)
		if identity == "" {
			slog.Warn("colleague: block without identity", "block_index", blockIndex)
			continue
		}

		name, employeeID := splitIdentity(identity)

		colleague := models.ColleagueAbsence{
			Name:       name,
			EmployeeID: employeeID,
			BadgeAlias: aliases[identity],
			Month:      int(month.Month),
			Year:       month.Year,
		}

		end := blockEnd(tokens, i+5)
		colleague.AbsenceDays = absentDays(tokens[i+5:end], daysInMonth)

		out = append(out, colleague)
		i = end - 1
	}

	return out
}

func blockHeader(tokens []rpc.Token) (blockIndex, daysInMonth int, ok bool) {
	if len(tokens) < 5 {
		return 0, 0, false
	}

	if !tokens[0].IsInt(blockHeaderOpen) || !tokens[3].IsInt(blockHeaderFixed) {
		return 0, 0, false
	}

	if tokens[1].Kind != rpc.KindInteger || tokens[2].Kind != rpc.KindInteger {
		return 0, 0, false
	}

	days := tokens[4]
	if days.Kind != rpc.KindInteger || days.Int < 28 || days.Int > 31 {
		return 0, 0, false
	}

	return int(tokens[1].Int), int(days.Int), true
}

func blockEnd(tokens []rpc.Token, from int) int {
	for i := from; i+4 < len(tokens); i++ {
		if _, _, ok := blockHeader(tokens[i:]); ok {
			return i
		}
	}

	return len(tokens)
}

// absentDays walks a block body: each cell-boundary token advances the
// 0-based day counter; the approved-absence color on the current day
// marks day counter+1 absent.
func absentDays(tokens []rpc.Token, daysInMonth int) []int {
	var days []int

	counter := 0
	marked := make(map[int]bool)

	for _, tok := range tokens {
		if tok.Kind != rpc.KindInteger {
			continue
		}

		if tok.Int == cellBoundary {
			counter++
			continue
		}

		if tok.Int == ColorApprovedAbsence && counter < daysInMonth && !marked[counter] {
			marked[counter] = true
			days = append(days, counter+1)
		}
	}

	return days
}

// badgeAliases maps identity entries to the short numeric string that
// immediately follows them in the string table.
func badgeAliases(msg *rpc.Message) map[string]string {
	aliases := make(map[string]string)

	for i, s := range msg.StringTable {
		if !isIdentity(s) || i+1 >= len(msg.StringTable) {
			continue
		}

		next := msg.StringTable[i+1]
		if isShortNumeric(next) {
			aliases[s] = next
		}
	}

	return aliases
}

// isIdentity reports whether a string table entry looks like an
// employee identity: two capitalized words, or "Name (id)".
func isIdentity(s string) bool {
	return fullName.MatchString(s) || nameWithID.MatchString(s)
}

func splitIdentity(s string) (name string, employeeID int) {
	if m := nameWithID.FindStringSubmatch(s); m != nil {
		id, _ := strconv.Atoi(m[2])
		return m[1], id
	}

	return s, 0
}

func isShortNumeric(s string) bool {
	if s == "" || len(s) > 6 {
		return false
	}

	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}
