package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventNewGame EventType = iota
	EventFlip
	EventPairComplete // second card of a pick-pair turned over, move counted
	EventMatch
	EventMismatch
	EventWin
	EventTapIgnored
)

func (e EventType) String() string {
	switch e {
	case EventNewGame:
		return "NewGame"
	case EventFlip:
		return "Flip"
	case EventPairComplete:
		return "PairComplete"
	case EventMatch:
		return "Match"
	case EventMismatch:
		return "Mismatch"
	case EventWin:
		return "Win"
	case EventTapIgnored:
		return "TapIgnored"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a game session.
type GameEvent struct {
	Seq      int       // monotonic sequence number
	Game     int       // session generation the event belongs to
	Move     int       // move count after the event
	Type     EventType // event type
	Position int       // card position (-1 if not applicable)
	Card     string    // card content label (if applicable)
	Details  string    // human-readable detail string
}
