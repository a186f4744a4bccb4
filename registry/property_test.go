package registry

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// ============================================================================
// Property-Based Tests for Registry Invariants
// ============================================================================

type model struct {
	artistByOwner map[Principal]ArtistID
	songByHash    map[Hash32]SongID
	artists       uint64
	songs         uint64
}

// TestProperty_RegistryMatchesModel drives random registrations from a small
// pool of principals and hashes and checks every result against a reference
// model of the uniqueness and ordering rules.
func TestProperty_RegistryMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s := NewMemStore()
		m := model{artistByOwner: map[Principal]ArtistID{}, songByHash: map[Hash32]SongID{}}

		principals := rapid.IntRange(1, 4).Draw(t, "principals")
		principal := rapid.Custom(func(t *rapid.T) Principal {
			return Principal(fmt.Sprintf("wallet_%d", rapid.IntRange(1, principals).Draw(t, "wallet")))
		})
		name := rapid.SampledFrom([]ASCII{"", "a", "John Doe", "Untitled"})
		hash := rapid.Custom(func(t *rapid.T) Hash32 {
			return filledHash(byte(rapid.IntRange(0, 5).Draw(t, "hashByte")))
		})

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			caller := principal.Draw(t, "caller")
			n := name.Draw(t, "name")

			if rapid.Bool().Draw(t, "registerArtist") {
				var want error
				switch {
				case m.artistByOwner[caller] != 0:
					want = ErrAlreadyRegistered
				case n == "":
					want = ErrInvalidName
				}
				var id ArtistID
				err := s.Atomic(ctx, func(tx Store) error {
					var err error
					id, err = New(tx).RegisterArtist(ctx, caller, n)
					return err
				})
				if want != nil {
					if err != want {
						t.Fatalf("register-artist(%q, %q): got %v, want %v", caller, n, err, want)
					}
					continue
				}
				m.artists++
				if err != nil || uint64(id) != m.artists {
					t.Fatalf("register-artist(%q): got (%d, %v), want id %d", caller, id, err, m.artists)
				}
				m.artistByOwner[caller] = id
				continue
			}

			h := hash.Draw(t, "hash")
			var want error
			switch {
			case m.artistByOwner[caller] == 0:
				want = ErrNotArtist
			case n == "":
				want = ErrInvalidName
			case m.songByHash[h] != 0:
				want = ErrDuplicateFileHash
			}
			var id SongID
			err := s.Atomic(ctx, func(tx Store) error {
				var err error
				id, err = New(tx).RegisterSong(ctx, caller, n, h)
				return err
			})
			if want != nil {
				if err != want {
					t.Fatalf("register-song(%q, %q, %s): got %v, want %v", caller, n, h, err, want)
				}
				continue
			}
			m.songs++
			if err != nil || uint64(id) != m.songs {
				t.Fatalf("register-song(%q): got (%d, %v), want id %d", caller, id, err, m.songs)
			}
			m.songByHash[h] = id

			song, err := New(s).GetSong(ctx, id)
			if err != nil {
				t.Fatalf("get-song(%d): %v", id, err)
			}
			if song.ArtistID != m.artistByOwner[caller] || song.FileHash != h || song.Title != n {
				t.Fatalf("get-song(%d) = %+v", id, song)
			}
		}

		// INVARIANT: counters equal the number of successful registrations
		stats, err := New(s).Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Artists != m.artists || stats.Songs != m.songs {
			t.Fatalf("stats = %+v, model has %d artists and %d songs", stats, m.artists, m.songs)
		}

		// INVARIANT: ids are dense and every id resolves
		for id := uint64(1); id <= m.artists; id++ {
			if _, err := New(s).GetArtist(ctx, ArtistID(id)); err != nil {
				t.Fatalf("get-artist(%d): %v", id, err)
			}
		}
		if _, err := New(s).GetArtist(ctx, ArtistID(m.artists+1)); err != ErrNotFound {
			t.Fatalf("get-artist past end: %v", err)
		}
	})
}
