package wizard

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/vrroom/booking-bff/internal/domain/booking"
	"github.com/vrroom/booking-bff/internal/domain/pricing"
)

// Query parameters owned by the booking flow. Anything else in a URL belongs
// to someone else and is carried through untouched.
const (
	ParamStep    = "step"
	ParamDate    = "date"
	ParamTime    = "time"
	ParamRooms   = "rooms"
	ParamGameID  = "gameId"
	ParamPlayers = "players"
	ParamLang    = "lang"
	paramLocale  = "locale"
)

// legacy step names accepted in deep links
var stepAliases = map[string]booking.Step{
	"booking":   booking.StepPayment,
	"game-pick": booking.StepGame,
}

var ownedParams = map[string]struct{}{
	ParamStep: {}, ParamDate: {}, ParamTime: {}, ParamRooms: {},
	ParamGameID: {}, ParamPlayers: {}, ParamLang: {}, paramLocale: {},
}

var supportedLangs = language.NewMatcher([]language.Tag{language.English, language.Macedonian})

// State is the flow's position and selection as mirrored into the URL.
type State struct {
	Step    booking.Step
	Date    string
	Time    string
	Rooms   int
	GameID  string
	Players []int
	Lang    string
	Extra   url.Values
}

// ParseQuery reads a deep link. Values that do not parse are treated as
// absent, and the step is capped at the furthest one the parsed values support.
func ParseQuery(q url.Values) State {
	s := State{Extra: url.Values{}}
	for key, values := range q {
		if _, owned := ownedParams[key]; !owned {
			s.Extra[key] = append([]string(nil), values...)
		}
	}

	if d := strings.TrimSpace(q.Get(ParamDate)); d != "" {
		if _, ok := pricing.ParseDate(d); ok {
			s.Date = d
		}
	}
	if t := strings.TrimSpace(q.Get(ParamTime)); t != "" {
		if _, err := time.Parse(pricing.TimeLayout, t); err == nil {
			s.Time = t
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(q.Get(ParamRooms))); err == nil && n >= 1 {
		s.Rooms = n
	}
	s.GameID = strings.TrimSpace(q.Get(ParamGameID))
	s.Players = parsePlayers(q.Get(ParamPlayers))

	lang := q.Get(ParamLang)
	if lang == "" {
		lang = q.Get(paramLocale)
	}
	s.Lang = NormalizeLang(lang)

	requested, ok := parseStep(q.Get(ParamStep))
	if !ok {
		requested = booking.StepPlayers
	}
	s.Step = capStep(requested, s.Furthest())
	return s
}

// Query renders the state back into URL parameters.
func (s State) Query() url.Values {
	q := url.Values{}
	for key, values := range s.Extra {
		q[key] = append([]string(nil), values...)
	}
	if s.Step != "" {
		q.Set(ParamStep, string(s.Step))
	}
	if s.Date != "" {
		q.Set(ParamDate, s.Date)
	}
	if s.Time != "" {
		q.Set(ParamTime, s.Time)
	}
	if s.Rooms > 0 {
		q.Set(ParamRooms, strconv.Itoa(s.Rooms))
	}
	if s.GameID != "" {
		q.Set(ParamGameID, s.GameID)
	}
	if len(s.Players) > 0 {
		parts := make([]string, len(s.Players))
		for i, n := range s.Players {
			parts[i] = strconv.Itoa(n)
		}
		q.Set(ParamPlayers, strings.Join(parts, ","))
	}
	if s.Lang != "" {
		q.Set(ParamLang, s.Lang)
	}
	return q
}

// HasSlot reports whether both date and time are set.
func (s State) HasSlot() bool {
	return s.Date != "" && s.Time != ""
}

// RoomCount is the number of rooms, one when unspecified.
func (s State) RoomCount() int {
	if s.Rooms > 0 {
		return s.Rooms
	}
	return 1
}

// Furthest is the last step the parsed values support.
func (s State) Furthest() booking.Step {
	switch {
	case !s.HasSlot():
		return booking.StepCalendar
	case s.GameID == "":
		return booking.StepGame
	case len(s.Players) != s.RoomCount():
		return booking.StepPlayers
	}
	for _, n := range s.Players {
		if n <= 0 {
			return booking.StepPlayers
		}
	}
	return booking.StepPayment
}

// StateFromSession mirrors a session into URL state, keeping extra parameters.
// The calendar step owns no parameters beyond the slot, so step, rooms and
// players are omitted there.
func StateFromSession(session *booking.Session, extra url.Values) State {
	s := State{
		Date:  session.Date,
		Time:  session.Time,
		Lang:  session.Lang,
		Extra: url.Values{},
	}
	for key, values := range extra {
		if _, owned := ownedParams[key]; !owned {
			s.Extra[key] = append([]string(nil), values...)
		}
	}
	if session.Step.Order() > booking.StepCalendar.Order() {
		s.Step = session.Step
		s.Rooms = session.Rooms
	}
	if len(session.Games) > 0 && session.Games[0].Game != nil {
		s.GameID = session.Games[0].Game.ID
	}
	if s.Step.Order() >= booking.StepPlayers.Order() {
		players := make([]int, 0, len(session.Games))
		for _, room := range session.Games {
			if room.PlayerCount <= 0 {
				players = nil
				break
			}
			players = append(players, room.PlayerCount)
		}
		s.Players = players
	}
	return s
}

// NormalizeLang maps a language tag onto a supported language. Unknown or
// malformed tags yield "".
func NormalizeLang(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return ""
	}
	matched, _, confidence := supportedLangs.Match(tag)
	if confidence == language.No {
		return ""
	}
	base, _ := matched.Base()
	return base.String()
}

func parsePlayers(raw string) []int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil
		}
		out = append(out, n)
	}
	return out
}

func parseStep(raw string) (booking.Step, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if step, ok := stepAliases[raw]; ok {
		return step, true
	}
	step := booking.Step(raw)
	return step, step.Valid()
}

func capStep(requested, furthest booking.Step) booking.Step {
	if requested.Order() > furthest.Order() {
		return furthest
	}
	return requested
}
