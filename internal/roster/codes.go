package roster

import "strings"

type buildingCode struct {
	Code string
	Name string
}

// buildingCodes maps the short property codes used in roster exports to the
// canonical building names stored in the buildings table. Keys are uppercase;
// lookups are case-insensitive.
var buildingCodes = []buildingCode{
	{Code: "525LEX", Name: "Turtle Bay"},
	{Code: "569LEX", Name: "Midtown East"},
	{Code: "400W37", Name: "Midtown East"},
	{Code: "160W24", Name: "Chelsea"},
	{Code: "186HALL", Name: "Brooklyn Heights"},
}

// LookupCode resolves a building code to its canonical code and building name.
func LookupCode(token string) (string, string, bool) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == "" {
		return "", "", false
	}
	for _, bc := range buildingCodes {
		if bc.Code == token {
			return bc.Code, bc.Name, true
		}
	}
	return "", "", false
}

// resolveToken accepts an exact code or a token that embeds one
// (for example "525LEXA").
func resolveToken(token string) (string, string, bool) {
	if code, name, ok := LookupCode(token); ok {
		return code, name, true
	}
	return findCode(token)
}

// findCode scans free text for the first known code it contains.
func findCode(text string) (string, string, bool) {
	upper := strings.ToUpper(text)
	if upper == "" {
		return "", "", false
	}
	for _, bc := range buildingCodes {
		if strings.Contains(upper, bc.Code) {
			return bc.Code, bc.Name, true
		}
	}
	return "", "", false
}
