package registry

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewASCII(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "empty", in: ""},
		{name: "plain", in: "John Doe"},
		{name: "at bound", in: strings.Repeat("a", MaxNameLength)},
		{name: "over bound", in: strings.Repeat("a", MaxNameLength+1), wantErr: true},
		{name: "non ascii", in: "Beyoncé", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewASCII(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ASCII(tt.in), got)
		})
	}
}

func TestParseHash(t *testing.T) {
	valid := strings.Repeat("01", HashSize)

	h, err := ParseHash(valid)
	require.NoError(t, err)
	assert.Equal(t, filledHash(0x01), h)
	assert.Equal(t, valid, h.String())

	_, err = ParseHash(valid[:62])
	require.Error(t, err)
	_, err = ParseHash(strings.Repeat("zz", HashSize))
	require.Error(t, err)

	_, err = HashFromBytes(make([]byte, 31))
	require.Error(t, err)
}

func TestSongJSON(t *testing.T) {
	song := Song{ID: 1, ArtistID: 1, Title: "My First Song", FileHash: filledHash(0x01)}

	data, err := json.Marshal(song)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1,
		"artist_id": 1,
		"title": "My First Song",
		"file_hash": "`+strings.Repeat("01", HashSize)+`"
	}`, string(data))

	var decoded Song
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, song, decoded)
}
