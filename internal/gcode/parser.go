package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed (cutting move in XY plane)
	MovePlunge                  // G1 with Z decreasing: plunging into material
	MoveRetract                 // G0/G1 with Z increasing: retracting from material
)

func (t MoveType) String() string {
	switch t {
	case MoveRapid:
		return "rapid"
	case MoveFeed:
		return "feed"
	case MovePlunge:
		return "plunge"
	case MoveRetract:
		return "retract"
	}
	return "unknown"
}

// GCodeMove represents a single parsed movement from GCode.
type GCodeMove struct {
	Type     MoveType
	Rapid    bool // issued as G0
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

// Length is the straight-line distance travelled by the move.
func (m GCodeMove) Length() float64 {
	dx := m.ToX - m.FromX
	dy := m.ToY - m.FromY
	dz := m.ToZ - m.FromZ
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

var (
	wordRe    = regexp.MustCompile(`([GXYZF])\s*(-?\d*\.?\d+)`)
	commentRe = regexp.MustCompile(`\([^)]*\)`)
)

// ParseGCode parses a GCode string into a slice of structured moves.
// Motion is modal: a line carrying only coordinates repeats the last G0/G1.
// Other G words and M codes are ignored.
func ParseGCode(code string) []GCodeMove {
	var moves []GCodeMove

	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0
	motion := -1 // no motion mode yet

	for _, line := range strings.Split(code, "\n") {
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.ToUpper(strings.TrimSpace(commentRe.ReplaceAllString(line, "")))
		if line == "" {
			continue
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		hasAxis, hasMotion, hasOther := false, false, false
		for _, m := range wordRe.FindAllStringSubmatch(line, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "G":
				if val == 0 || val == 1 {
					motion = int(val)
					hasMotion = true
				} else {
					hasOther = true
				}
			case "X":
				newX, hasAxis = val, true
			case "Y":
				newY, hasAxis = val, true
			case "Z":
				newZ, hasAxis = val, true
			case "F":
				newFeed = val
			}
		}

		curFeed = newFeed
		// G28 X0 and friends carry axis words but are not linear moves.
		if hasOther && !hasMotion {
			continue
		}
		if motion < 0 || !hasAxis {
			continue
		}

		isRapid := motion == 0
		moves = append(moves, GCodeMove{
			Type:     classifyMove(isRapid, curZ, newZ, curX, curY, newX, newY),
			Rapid:    isRapid,
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			FeedRate: newFeed,
		})

		curX, curY, curZ = newX, newY, newZ
	}

	return moves
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// DefaultRapidRate is the traverse speed assumed when estimating cycle time.
const DefaultRapidRate = 5000.0 // mm/min

// Summary totals a parsed program.
type Summary struct {
	Moves       int
	CutLength   float64 // mm travelled at feed, including plunges
	RapidLength float64 // mm travelled with G0
	MaxFeed     float64 // mm/min
	Duration    time.Duration
}

// Summarize totals distances and estimates cycle time. Feed moves without a
// feed rate contribute distance but no time.
func Summarize(moves []GCodeMove, rapidRate float64) Summary {
	if rapidRate <= 0 {
		rapidRate = DefaultRapidRate
	}
	var s Summary
	minutes := 0.0
	for _, m := range moves {
		s.Moves++
		l := m.Length()
		if m.Rapid {
			s.RapidLength += l
			minutes += l / rapidRate
			continue
		}
		s.CutLength += l
		if m.FeedRate > 0 {
			minutes += l / m.FeedRate
		}
		if m.FeedRate > s.MaxFeed {
			s.MaxFeed = m.FeedRate
		}
	}
	s.Duration = time.Duration(minutes * float64(time.Minute))
	return s
}
