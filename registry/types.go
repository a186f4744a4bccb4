package registry

import (
	"encoding/hex"
	"fmt"
)

// MaxNameLength bounds artist names and song titles.
const MaxNameLength = 256

// HashSize is the length of a song's content hash in bytes.
const HashSize = 32

// ArtistID identifies an artist. IDs start at 1 and follow registration order.
type ArtistID uint64

// SongID identifies a song. Song IDs are counted independently of artist IDs.
type SongID uint64

// Principal is the caller identity supplied by the host for each transaction.
type Principal string

// ASCII is a bounded ASCII string of at most MaxNameLength bytes.
// The zero value is the empty string, which is a valid ASCII value.
type ASCII string

// NewASCII validates s as a bounded ASCII string.
func NewASCII(s string) (ASCII, error) {
	if len(s) > MaxNameLength {
		return "", fmt.Errorf("string of %d bytes exceeds %d", len(s), MaxNameLength)
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return "", fmt.Errorf("non-ascii byte 0x%02x at offset %d", s[i], i)
		}
	}
	return ASCII(s), nil
}

// Hash32 is the content hash of a song's audio file.
type Hash32 [HashSize]byte

// HashFromBytes copies b into a Hash32. b must be exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash32, error) {
	var h Hash32
	if len(b) != HashSize {
		return h, fmt.Errorf("file hash must be %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// ParseHash decodes a hex-encoded file hash.
func ParseHash(s string) (Hash32, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash32{}, fmt.Errorf("decode file hash: %w", err)
	}
	return HashFromBytes(b)
}

// String returns the lowercase hex encoding of h.
func (h Hash32) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalText encodes h as hex so JSON renders hashes as strings.
func (h Hash32) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText decodes a hex-encoded hash.
func (h *Hash32) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Artist is a registered artist.
type Artist struct {
	ID    ArtistID  `json:"id"`
	Owner Principal `json:"owner"`
	Name  ASCII     `json:"name"`
}

// Song is a registered song.
type Song struct {
	ID       SongID   `json:"id"`
	ArtistID ArtistID `json:"artist_id"`
	Title    ASCII    `json:"title"`
	FileHash Hash32   `json:"file_hash"`
}

// Counters holds the last assigned artist and song IDs.
// Because IDs are dense they double as record counts.
type Counters struct {
	Artists uint64 `json:"artists"`
	Songs   uint64 `json:"songs"`
}
