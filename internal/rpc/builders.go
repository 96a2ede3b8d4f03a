package rpc

import (
	"strconv"
	"strings"
	"time"

	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

// Service and payload class names observed on the wire.
const (
	envelopeRequest = "com.bodet.bwt.kernel.shared.requete.RequeteBWT"

	svcConnexion    = "com.bodet.bwt.kernel.shared.service.ServiceConnexionBWT"
	svcPush         = "com.bodet.bwt.kernel.shared.service.ServicePushBWT"
	svcGlobal       = "com.bodet.bwt.applicatif.global.shared.service.ServiceGlobalBWT"
	svcTemps        = "com.bodet.bwt.applicatif.temps.shared.service.ServiceTempsBWT"
	svcTraduction   = "com.bodet.bwt.kernel.shared.service.ServiceTraductionBWT"
	svcPresentation = "com.bodet.bwt.kernel.shared.service.ServicePresentationModelBWT"
	svcIntranet     = "com.bodet.bwt.applicatif.intranet.shared.service.ServiceIntranetBWT"
	svcPlanning     = "com.bodet.bwt.applicatif.planning.shared.service.ServicePlanningBWT"
	svcBadgeage     = "com.bodet.bwt.applicatif.badgeage.shared.service.ServiceBadgeageBWT"

	typeInteger = "java.lang.Integer"
	typeLong    = "java.lang.Long"
	typeString  = "java.lang.String"
)

// Numeric module codes used in connect calls.
const (
	ModulePortal   = 2
	ModuleCalendar = 16
)

// ConnectPortal builds the initial raw connect call that establishes
// the BWP session for the portal module.
func ConnectPortal(sessionID string, now time.Time) string {
	return connect(sessionID, svcConnexion, ModulePortal, now)
}

// ConnectPush builds the fire-and-forget push-channel connect.
func ConnectPush(sessionID string, now time.Time) string {
	return connect(sessionID, svcPush, ModulePortal, now)
}

// ConnectGlobal builds the connect scoped to the global service, whose
// response carries the session employee id.
func ConnectGlobal(sessionID string, now time.Time) string {
	return connect(sessionID, svcGlobal, ModulePortal, now)
}

// ConnectModule builds a module-scoped connect. The calendar module
// uses a distinct numeric code from the portal's.
func ConnectModule(sessionID string, module int, now time.Time) string {
	return connect(sessionID, svcConnexion, module, now)
}

func connect(sessionID, service string, module int, now time.Time) string {
	table := []string{envelopeRequest, sessionID, service, "connecter", typeInteger, typeLong}

	// Fixed tail: type refs 5/6 interleaved with module code and a
	// millisecond timestamp.
	data := []string{"7", "0", "2", "3", "4", "5", itoa(module), "6", msec(now)}

	return assemble(table, data)
}

// WeekData builds the week presence query. The date travels as
// yyyymmdd; the tail ends with a millisecond timestamp.
func WeekData(sessionID string, employeeID int, date time.Time, now time.Time) string {
	table := []string{
		envelopeRequest, sessionID, svcTemps, "chargerSemaine",
		typeInteger, typeInteger, typeLong,
	}

	data := []string{
		"8", "0", "2", "3", "4",
		"5", itoa(clampID(employeeID)),
		"6", itoa(timeutil.DayFormat(date)),
		"7", msec(now),
	}

	return assemble(table, data)
}

// Translations builds the i18n namespace query for one prefix.
func Translations(sessionID string, employeeID int, prefix string, now time.Time) string {
	table := []string{
		envelopeRequest, sessionID, svcTraduction, "chargerTraductions",
		typeInteger, typeString, prefix, typeLong,
	}

	data := []string{
		"9", "0", "2", "3", "4",
		"5", itoa(clampID(employeeID)),
		"6", "7",
		"8", msec(now),
	}

	return assemble(table, data)
}

// GlobalPresentationModel builds the portal-wide presentation model
// fetch issued during the calendar bootstrap.
func GlobalPresentationModel(sessionID string, now time.Time) string {
	table := []string{
		envelopeRequest, sessionID, svcPresentation, "chargerModelePresentation",
		typeInteger, typeLong,
	}

	data := []string{"7", "0", "2", "3", "4", "5", "0", "6", msec(now)}

	return assemble(table, data)
}

// ModulePresentationModel builds the module presentation model fetch.
// The server rejects calendar data queries until this has been issued.
func ModulePresentationModel(sessionID string, contextID int, now time.Time) string {
	table := []string{
		envelopeRequest, sessionID, svcPresentation, "chargerModelePresentation",
		typeInteger, typeLong,
	}

	data := []string{"7", "0", "2", "3", "4", "5", itoa(clampID(contextID)), "6", msec(now)}

	return assemble(table, data)
}

// IntranetParameter builds the intranet parameter fetch whose response
// carries the authoritative employee id.
func IntranetParameter(sessionID string, now time.Time) string {
	table := []string{
		envelopeRequest, sessionID, svcIntranet, "chargerParametreIntranet",
		typeLong,
	}

	data := []string{"6", "0", "2", "3", "4", "5", msec(now)}

	return assemble(table, data)
}

// Absences builds the absence calendar query over a closed date range.
func Absences(sessionID string, employeeID int, from, to time.Time, now time.Time) string {
	table := []string{
		envelopeRequest, sessionID, svcPlanning, "chargerAbsences",
		typeInteger, typeInteger, typeInteger, typeLong,
	}

	data := []string{
		"9", "0", "2", "3", "4",
		"5", itoa(clampID(employeeID)),
		"6", itoa(timeutil.DayFormat(from)),
		"7", itoa(timeutil.DayFormat(to)),
		"8", msec(now),
	}

	return assemble(table, data)
}

// TeamPlanning builds the colleague absence overview query for one
// calendar month.
func TeamPlanning(sessionID string, employeeID int, month timeutil.Month, now time.Time) string {
	table := []string{
		envelopeRequest, sessionID, svcPlanning, "chargerPlanningEquipe",
		typeInteger, typeInteger, typeInteger, typeLong,
	}

	data := []string{
		"9", "0", "2", "3", "4",
		"5", itoa(clampID(employeeID)),
		"6", itoa(month.Year),
		"7", itoa(int(month.Month)),
		"8", msec(now),
	}

	return assemble(table, data)
}

// Punch builds the badge punch request. Unlike the queries, the
// timestamp travels as negative seconds.
func Punch(sessionID string, employeeID int, at time.Time) string {
	table := []string{
		envelopeRequest, sessionID, svcBadgeage, "badger",
		typeInteger, typeLong,
	}

	data := []string{
		"7", "0", "2", "3", "4",
		"5", itoa(clampID(employeeID)),
		"6", strconv.FormatInt(-at.Unix(), 10),
	}

	return assemble(table, data)
}

func assemble(table []string, data []string) string {
	var b strings.Builder

	b.WriteString(strconv.Itoa(len(table)))

	for _, s := range table {
		b.WriteString(`,"`)
		b.WriteString(Escape(s))
		b.WriteString(`"`)
	}

	for _, d := range data {
		b.WriteString(",")
		b.WriteString(d)
	}

	return b.String()
}

// Escape quotes a string-table entry the way the wire format expects.
func Escape(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func clampID(id int) int {
	if id < 0 {
		return 0
	}

	return id
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func msec(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
