package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDelimitedLatin1Default(t *testing.T) {
	// 0xE9 is é in ISO 8859-1; the upstream export omits the charset parameter.
	raw := "id,name-fr,region\n20,Pont Laviolette,Mauricie\n21,Cam,Montr\xe9al\n"

	cams, err := ParseDelimited(strings.NewReader(raw), "text/csv")
	require.NoError(t, err)
	require.Len(t, cams, 2)
	assert.Equal(t, "Montréal", cams[1].Region)
}

func TestParseDelimitedWindows1252(t *testing.T) {
	raw := "id,name-fr\n30,Montr\xe9al \x96 centre-ville\n"

	cams, err := ParseDelimited(strings.NewReader(raw), "text/csv; charset=windows-1252")
	require.NoError(t, err)
	require.Len(t, cams, 1)
	// 0x96 is an en dash in Windows-1252, undefined in Latin-1.
	assert.Equal(t, "Montréal – centre-ville", cams[0].NameFr)
}

func TestParseDelimitedUTF8Charset(t *testing.T) {
	raw := "id,name-fr\n40,Montréal\n"

	cams, err := ParseDelimited(strings.NewReader(raw), "text/csv; charset=utf-8")
	require.NoError(t, err)
	require.Len(t, cams, 1)
	assert.Equal(t, "Montréal", cams[0].NameFr)
}

func TestParseDelimitedHeaderMapping(t *testing.T) {
	raw := "ID , Name-FR ,longitude,latitude,img-url\n" +
		"50, Pont Jacques-Cartier ,-73.54,45.52,https://cdn.example.test/50.jpg\n"

	cams, err := ParseDelimited(strings.NewReader(raw), "text/csv; charset=utf-8")
	require.NoError(t, err)
	require.Len(t, cams, 1)

	c := cams[0]
	assert.Equal(t, "50", c.ID)
	assert.Equal(t, "Pont Jacques-Cartier", c.NameFr)
	assert.Equal(t, "https://cdn.example.test/50.jpg", c.ImgDirect)
	require.NotNil(t, c.Lon)
	require.NotNil(t, c.Lat)
	assert.InDelta(t, -73.54, *c.Lon, 0.001)
	assert.InDelta(t, 45.52, *c.Lat, 0.001)
}

func TestParseDelimitedSkipsBlankAndShortRows(t *testing.T) {
	raw := "id,name-fr,region\n" +
		"60,Cam A,Estrie\n" +
		",,\n" +
		"\n" +
		"61,Cam B\n"

	cams, err := ParseDelimited(strings.NewReader(raw), "text/csv; charset=utf-8")
	require.NoError(t, err)
	require.Len(t, cams, 2)
	assert.Equal(t, "61", cams[1].ID)
	assert.Empty(t, cams[1].Region)
}

func TestParseDelimitedRequiresIDColumn(t *testing.T) {
	raw := "name-fr,region\nCam,Estrie\n"

	_, err := ParseDelimited(strings.NewReader(raw), "text/csv; charset=utf-8")
	assert.Error(t, err)
}

func TestParseDelimitedEmptyInput(t *testing.T) {
	_, err := ParseDelimited(strings.NewReader(""), "text/csv")
	assert.Error(t, err)
}
