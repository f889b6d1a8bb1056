package roster

import (
	"regexp"
	"strings"
)

// Entry is one resident extracted from a roster row.
type Entry struct {
	Row          int
	Name         string
	RoomNumber   string
	BuildingCode string
	BuildingName string
	Active       bool
}

type Skip struct {
	Row    int
	Reason string
}

type ParseResult struct {
	Entries   []Entry
	Processed int
	Skipped   []Skip
}

const (
	SkipTooFewColumns = "fewer than 3 columns"
	SkipNotInRoom     = "occupancy is not in-room"
	SkipNoBuilding    = "no valid building code found"
	SkipNoRoom        = "no room number found"
	SkipNoName        = "unable to extract resident name"
)

var (
	leadingTokenRe = regexp.MustCompile(`^([A-Za-z0-9]+)(?:-|$)`)
	digitsRe       = regexp.MustCompile(`\d+`)
)

// Parse turns raw spreadsheet rows into roster entries. Columns are, in
// order: location hint, room-bed code, occupancy and name. Row numbers in
// the result are 1-based.
func Parse(rows [][]string) ParseResult {
	result := ParseResult{}
	for i, row := range rows {
		rowNum := i + 1
		entry, reason := parseRow(row)
		if reason != "" {
			result.Skipped = append(result.Skipped, Skip{Row: rowNum, Reason: reason})
			continue
		}
		entry.Row = rowNum
		result.Entries = append(result.Entries, entry)
		result.Processed++
	}
	return result
}

func parseRow(row []string) (Entry, string) {
	if len(row) < 3 {
		return Entry{}, SkipTooFewColumns
	}
	location := strings.TrimSpace(row[0])
	roomBed := strings.TrimSpace(row[1])
	occupancy := strings.TrimSpace(row[2])

	if !strings.HasPrefix(occupancy, "I") {
		return Entry{}, SkipNotInRoom
	}

	code, buildingName, roomSource := extractBuilding(location, roomBed)
	if code == "" {
		return Entry{}, SkipNoBuilding
	}

	room := digitsRe.FindString(roomSource)
	if room == "" {
		return Entry{}, SkipNoRoom
	}

	name, ok := ExtractName(occupancy)
	if !ok {
		return Entry{}, SkipNoName
	}

	return Entry{
		Name:         name,
		RoomNumber:   room,
		BuildingCode: code,
		BuildingName: buildingName,
		Active:       true,
	}, ""
}

// extractBuilding returns the building code and name plus the part of the
// room-bed column that should be searched for the room number.
func extractBuilding(location, roomBed string) (string, string, string) {
	if m := leadingTokenRe.FindStringSubmatchIndex(roomBed); m != nil {
		token := roomBed[m[2]:m[3]]
		if code, name, ok := resolveToken(token); ok {
			return code, name, roomBed[m[3]:]
		}
	}
	if code, name, ok := findCode(location); ok {
		return code, name, roomBed
	}
	return "", "", ""
}

// ExtractName reads the resident name from the last " - " segment of an
// occupancy cell such as "I [M] 525Lex - NYIT - Fall 2024 - Marshall, Alexander"
// and returns it as "Alexander Marshall".
func ExtractName(occupancy string) (string, bool) {
	segments := strings.Split(occupancy, " - ")
	section := strings.TrimSpace(segments[len(segments)-1])
	if !strings.Contains(section, ",") {
		return "", false
	}
	parts := strings.SplitN(section, ",", 2)
	last := strings.TrimSpace(parts[0])
	first := strings.TrimSpace(parts[1])
	if last == "" || first == "" {
		return "", false
	}
	return first + " " + last, true
}
