package paramdex

// Game selects the regulation cipher profile a Regulation is opened with
// (§4.3). The three supported FromSoftware titles each use a different key
// and block mode; there is no auto-detection between them short of the
// BND4-magic short-circuit Open already applies.
type Game uint8

const (
	// DS2 selects AES-128-CTR with the Dark Souls II regulation key.
	DS2 Game = iota
	// DS3 selects AES-256-CBC with the Dark Souls III regulation key.
	DS3
	// ER selects AES-256-CBC with the Elden Ring regulation key.
	ER
)

// String names the game tag, mainly for error context and CLI output.
func (g Game) String() string {
	switch g {
	case DS2:
		return "DS2"
	case DS3:
		return "DS3"
	case ER:
		return "ER"
	default:
		return "unknown"
	}
}
