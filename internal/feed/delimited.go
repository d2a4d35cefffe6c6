package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime"
	"strconv"
	"strings"

	"github.com/ManuGH/roadcam/internal/catalog"
	"golang.org/x/text/encoding/charmap"
)

// ParseDelimited reads the fallback feed: first row is the header, blank rows
// are skipped, fields map by header name. The upstream text export is
// Latin-1 unless its Content-Type says otherwise.
func ParseDelimited(r io.Reader, contentType string) ([]catalog.Camera, error) {
	reader := csv.NewReader(decodeCharset(r, contentType))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("header row has no id column")
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var cams []catalog.Camera
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blankRow(row) {
			continue
		}

		cam := catalog.Camera{
			ID:        nfc(field(row, "id")),
			Number:    nfc(field(row, "number")),
			NameFr:    nfc(field(row, "name-fr")),
			NameEn:    nfc(field(row, "name-en")),
			Route:     nfc(field(row, "route")),
			Region:    nfc(field(row, "region")),
			Border:    nfc(field(row, "border-crossing")),
			Bridge:    nfc(field(row, "bridge")),
			URL:       field(row, "url"),
			ImgDirect: field(row, "img-url"),
		}
		if lon, err := strconv.ParseFloat(field(row, "longitude"), 64); err == nil {
			if lat, err := strconv.ParseFloat(field(row, "latitude"), 64); err == nil {
				cam.Lon, cam.Lat = &lon, &lat
			}
		}
		cams = append(cams, cam)
	}
	return cams, nil
}

func blankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// decodeCharset wraps r with a decoder for the declared charset. Without a
// declaration the agency's delimited export is Latin-1.
func decodeCharset(r io.Reader, contentType string) io.Reader {
	charset := ""
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			charset = strings.ToLower(params["charset"])
		}
	}
	switch charset {
	case "utf-8", "utf8":
		return r
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r)
	case "", "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r)
	default:
		return r
	}
}
