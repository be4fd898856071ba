package repository

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/touchgest/internal/domain/model"
)

// actionIndent prefixes every action line.
const actionIndent = "    "

// SkippedLine describes a rule file line that did not produce a rule.
type SkippedLine struct {
	Line   int
	Text   string
	Reason string
}

// ParseRules reads a rule file. Each rule is a key line
//
//	TYPE DIR FINGERS
//
// followed by the action on the next line, indented by four spaces. TYPE is
// TAP, MOVEMENT or BORDER. DIR is one of the letters N, W, S, E (up, right,
// down, left); any other token means no direction. Blank lines and lines
// whose first non-blank character is '#' are ignored.
//
// Lines that cannot form a rule are returned in skipped; only read errors are
// returned as err.
func ParseRules(r io.Reader) (rules []model.Rule, skipped []SkippedLine, err error) {
	var (
		pending *model.Rule
		keyLine SkippedLine
		lineNo  int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		text := strings.TrimRight(sc.Text(), "\r")
		if isBlank(text) || isComment(text) {
			continue
		}

		if pending != nil {
			if action, ok := strings.CutPrefix(text, actionIndent); ok && strings.TrimSpace(action) != "" {
				pending.Action = action
				rules = append(rules, *pending)
				pending = nil
				continue
			}
			keyLine.Reason = "missing action line"
			skipped = append(skipped, keyLine)
			pending = nil
		}

		key, reason := parseKey(text)
		if reason != "" {
			skipped = append(skipped, SkippedLine{Line: lineNo, Text: text, Reason: reason})
			continue
		}
		pending = &model.Rule{Key: key}
		keyLine = SkippedLine{Line: lineNo, Text: text}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if pending != nil {
		keyLine.Reason = "missing action line"
		skipped = append(skipped, keyLine)
	}
	return rules, skipped, nil
}

func parseKey(text string) (model.Gesture, string) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return model.Gesture{}, "expected TYPE DIR FINGERS"
	}
	t := parseType(fields[0])
	if t == model.GestureNone {
		return model.Gesture{}, fmt.Sprintf("unknown gesture type %q", fields[0])
	}
	n, err := strconv.ParseUint(fields[2], 10, 8)
	if err != nil {
		return model.Gesture{}, fmt.Sprintf("invalid finger count %q", fields[2])
	}
	return model.Gesture{Type: t, Direction: parseDirection(fields[1]), Fingers: uint8(n)}, ""
}

func parseType(s string) model.GestureType {
	switch s {
	case "TAP":
		return model.GestureTap
	case "MOVEMENT":
		return model.GestureMovement
	case "BORDER":
		return model.GestureBorder
	default:
		return model.GestureNone
	}
}

func parseDirection(s string) model.Direction {
	switch s {
	case "N":
		return model.DirectionUp
	case "W":
		return model.DirectionRight
	case "S":
		return model.DirectionDown
	case "E":
		return model.DirectionLeft
	default:
		return model.DirectionNone
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isComment(s string) bool {
	return strings.HasPrefix(strings.TrimLeft(s, " \t"), "#")
}
