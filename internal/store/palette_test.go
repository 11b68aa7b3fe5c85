package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestPalette_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	got, err := s.LoadPalette(ctx)
	if err != nil {
		t.Fatalf("LoadPalette(empty): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty palette, got %v", got)
	}

	if _, err := s.AddPaletteColor(ctx, "#C4A484"); err != nil {
		t.Fatalf("AddPaletteColor: %v", err)
	}
	if _, err := s.AddPaletteColor(ctx, "#fff"); err != nil {
		t.Fatalf("AddPaletteColor: %v", err)
	}
	// Duplicate (case-insensitive) is ignored.
	got, err = s.AddPaletteColor(ctx, "#c4a484")
	if err != nil {
		t.Fatalf("AddPaletteColor: %v", err)
	}
	if want := []string{"#c4a484", "#fff"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("palette: got %v want %v", got, want)
	}

	got, err = s.RemovePaletteColor(ctx, "#FFF")
	if err != nil {
		t.Fatalf("RemovePaletteColor: %v", err)
	}
	if want := []string{"#c4a484"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after remove: got %v want %v", got, want)
	}

	// A fresh handle on the same dir sees the persisted value.
	got, err = Store{Dir: s.Dir}.LoadPalette(ctx)
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	if want := []string{"#c4a484"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("reloaded: got %v want %v", got, want)
	}
	raw, ok, err := s.GetKV(ctx, PaletteKey)
	if err != nil || !ok || raw != `["#c4a484"]` {
		t.Fatalf("raw kv: %q ok=%v err=%v", raw, ok, err)
	}
}

func TestPalette_RejectsBadHex(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	for _, c := range []string{"red", "#12", "#1234567", "c4a484"} {
		if _, err := s.AddPaletteColor(context.Background(), c); !errors.Is(err, ErrInvalidPaletteHex) {
			t.Fatalf("%q: expected ErrInvalidPaletteHex, got %v", c, err)
		}
	}
}

func TestPalette_NoDir(t *testing.T) {
	if _, err := (Store{}).LoadPalette(context.Background()); !errors.Is(err, ErrPaletteUnavailable) {
		t.Fatalf("expected ErrPaletteUnavailable, got %v", err)
	}
}
