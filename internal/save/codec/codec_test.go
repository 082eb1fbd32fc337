package codec

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/monsterkeep/internal/save/domain"
)

func sampleDocument() domain.SaveDocument {
	savedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return domain.SaveDocument{
		Version: domain.Version{Major: 1, Minor: 2, Patch: 0},
		Player: domain.PlayerProfile{
			ID:       "player1",
			Name:     "June",
			Currency: 2500,
			Level:    7,
		},
		Monsters: []domain.Monster{
			{
				ID:        "mon1",
				SpeciesID: "emberfox",
				Nickname:  "Cinder",
				Level:     32,
				Stats:     domain.StatBlock{HP: 88, Attack: 61, Defense: 44, Speed: 70},
				IVs:       domain.IVBlock{HP: 12, Attack: 30, Defense: 8, Speed: 25},
			},
		},
		Trainers: []domain.Trainer{
			{ID: "tr1", Name: "Olive", Skill: 4},
		},
		Facilities: []domain.Facility{
			{ID: "fac1", Name: "North Pen", Status: domain.FacilityStatusTraining},
		},
		Expeditions: []domain.Expedition{
			{ID: "exp1", TrainerID: "tr1", FacilityID: "fac1", StartedAt: savedAt},
		},
		Ledger: []domain.Transaction{
			{ID: "tx1", Amount: 1500, Reason: "tournament prize", At: savedAt},
		},
		Progression: domain.Progression{
			Research:     []domain.ResearchEntry{{Topic: "breeding", Progress: 40}},
			Achievements: []string{"first-capture"},
			Events:       []domain.EventRecord{{Name: "spring-festival", CompletedAt: savedAt}},
			Statistics:   domain.Statistics{TotalSaves: 3, MonstersCaught: 5, CurrencyEarned: 4000},
		},
		SavedAt: savedAt,
	}
}

func TestRoundTrip(t *testing.T) {
	for _, compact := range []bool{false, true} {
		name := "plain"
		if compact {
			name = "compacted"
		}
		t.Run(name, func(t *testing.T) {
			c := New(compact)
			doc := sampleDocument()

			encoded, err := c.Encode(doc)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := c.Decode(encoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(decoded, doc) {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, doc)
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	for _, compact := range []bool{false, true} {
		c := New(compact)
		first, err := c.Encode(sampleDocument())
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		second, err := c.Encode(sampleDocument())
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Fatalf("expected deterministic encoding (compact=%v)", compact)
		}
	}
}

func TestCompactionShrinksAndStaysReversible(t *testing.T) {
	doc := sampleDocument()
	// Pad the roster so compression has something to bite on.
	for i := 0; i < 50; i++ {
		doc.Monsters = append(doc.Monsters, doc.Monsters[0])
	}

	plain, err := New(false).Encode(doc)
	if err != nil {
		t.Fatalf("encode plain: %v", err)
	}
	compacted, err := New(true).Encode(doc)
	if err != nil {
		t.Fatalf("encode compacted: %v", err)
	}
	if len(compacted) >= len(plain) {
		t.Fatalf("expected compaction to shrink payload: %d >= %d", len(compacted), len(plain))
	}

	// A plain-configured codec still decodes compacted payloads.
	decoded, err := New(false).Decode(compacted)
	if err != nil {
		t.Fatalf("decode compacted with plain codec: %v", err)
	}
	if !reflect.DeepEqual(decoded, doc) {
		t.Fatal("decoded compacted payload differs from original")
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "not json", payload: []byte("{broken")},
		{name: "truncated gzip", payload: []byte{0x1f, 0x8b, 0x08, 0x00}},
		{name: "missing version", payload: []byte(`{"player":{"id":"p1"}}`)},
		{name: "wrong version type", payload: []byte(`{"version":7}`)},
	}

	c := New(true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.payload)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
		})
	}
}
