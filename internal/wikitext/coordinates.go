package wikitext

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/krauseamir/wikigir/internal/geo"
)

// Characters scanned before and after a {{coord...}} block for the
// &lt;!-- / --&gt; pair that marks it as commented out.
const charsToScanForTags = 10

var (
	// A title-level coordinate template. The display attribute must carry
	// "title" or "it", possibly after up to three other display tokens.
	coordOuterRegexp = regexp.MustCompile(
		`\{\{(Wikidata)? *[Cc]oor.*?display *= *(([a-zA-Z]* *)[,;:./]? *){0,3}(([Ii][Tt])|([Tt][Ii][Tt][Ll][Ee])).*?}}`)

	// The pipe-delimited numeric payload inside a surviving block, e.g.
	// "|52|31|N|13|24|E|" or "|40.0|33.5|".
	coordInnerRegexp = regexp.MustCompile(`\| *(((-?\d*(\.\d*)?)|N|n|S|s|W|w|E|e) *[|}] *)+`)

	commentTagRegexp = regexp.MustCompile(`&lt;.*?&gt;`)
)

// ParseCoordinates extracts the article's title coordinates from the raw
// page text, if present. Commented-out templates and non-Earth globes are
// rejected; of several candidates, the first well-formed one wins.
func ParseCoordinates(raw string) (geo.Coordinates, bool) {
	for _, loc := range coordOuterRegexp.FindAllStringIndex(raw, -1) {
		block := raw[loc[0]:loc[1]]

		if commentedCoords(raw, loc[0], loc[1]) {
			continue
		}

		// Coordinates on other planets or the moon are of no use here.
		if strings.Contains(block, "globe") && !strings.Contains(block, "globe:earth") {
			continue
		}

		// Phrases like "&lt;!--42--&gt;" can sneak into the payload.
		block = commentTagRegexp.ReplaceAllString(block, "")

		inner := coordInnerRegexp.FindString(block)
		if inner == "" {
			continue
		}
		if c, ok := coordinatesFromParts(inner); ok && c.Valid() {
			return c, true
		}
	}
	return geo.Coordinates{}, false
}

// commentedCoords detects "&lt;!-- {{coord...}} --&gt;" blocks, which look
// like coordinates but are disabled in the source.
func commentedCoords(raw string, start, end int) bool {
	preStart := start - charsToScanForTags
	if preStart < 0 {
		preStart = 0
	}
	postEnd := end + charsToScanForTags
	if postEnd > len(raw) {
		postEnd = len(raw)
	}
	pre := strings.ToLower(raw[preStart:start])
	post := strings.ToLower(raw[end:postEnd])
	return strings.Contains(pre, "&lt;") && strings.Contains(post, "&gt;")
}

func coordinatesFromParts(inner string) (geo.Coordinates, bool) {
	// Trim the leading "|" and the trailing "|" or "}".
	inner = strings.Trim(inner, " ")
	inner = strings.TrimPrefix(inner, "|")
	inner = strings.TrimRight(inner, "|} ")

	var parts []string
	for _, p := range strings.Split(inner, "|") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			parts = append(parts, p)
		}
	}

	for _, p := range parts {
		if p == "e" || p == "w" {
			return coordinatesFromDMS(parts)
		}
	}
	return coordinatesFromDecimals(parts)
}

// coordinatesFromDMS handles the degree/minute/second shape with N/S and
// E/W markers, 1-3 numeric parts on each side.
func coordinatesFromDMS(parts []string) (geo.Coordinates, bool) {
	var lat, lon [3]float64
	var south, west bool

	i := 0
	n := 0
	for ; i < len(parts); i++ {
		p := parts[i]
		if strings.HasPrefix(p, "n") || strings.HasPrefix(p, "s") {
			south = strings.HasPrefix(p, "s")
			break
		}
		if n >= 3 {
			return geo.Coordinates{}, false
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return geo.Coordinates{}, false
		}
		lat[n] = v
		n++
	}
	if i == len(parts) || n == 0 {
		return geo.Coordinates{}, false
	}

	i++
	m := 0
	for ; i < len(parts); i++ {
		p := parts[i]
		if strings.HasPrefix(p, "e") || strings.HasPrefix(p, "w") {
			west = strings.HasPrefix(p, "w")
			break
		}
		if m >= 3 {
			return geo.Coordinates{}, false
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return geo.Coordinates{}, false
		}
		lon[m] = v
		m++
	}
	if i == len(parts) || m == 0 {
		return geo.Coordinates{}, false
	}

	c := geo.Coordinates{
		Lat: lat[0] + lat[1]/60 + lat[2]/3600,
		Lon: lon[0] + lon[1]/60 + lon[2]/3600,
	}
	if south {
		c.Lat = -c.Lat
	}
	if west {
		c.Lon = -c.Lon
	}
	return c, true
}

// coordinatesFromDecimals handles the two-signed-decimals shape.
func coordinatesFromDecimals(parts []string) (geo.Coordinates, bool) {
	if len(parts) != 2 {
		return geo.Coordinates{}, false
	}
	lat, err1 := strconv.ParseFloat(parts[0], 64)
	lon, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return geo.Coordinates{}, false
	}
	return geo.Coordinates{Lat: lat, Lon: lon}, true
}
