package store

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"quire/internal/model"
)

func TestUpdate_RejectsUnsafeStyleValues(t *testing.T) {
	db := New(WithIDFunc(seqIDs("n")))
	h, err := db.Create(model.NodeHeading, "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	icon, err := db.Create(model.NodeIcon, h, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	img, err := db.Create(model.NodeImage, h, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := db.Nodes()

	cases := []struct {
		name string
		id   string
		p    Patch
		want error
	}{
		{"css in heading color", h, Patch{Style: &model.HeadingStyle{Color: "red;background-image:url(http://x.test/a)"}}, ErrInvalidPaletteHex},
		{"named heading color", h, Patch{Style: &model.HeadingStyle{Color: "red"}}, ErrInvalidPaletteHex},
		{"css in font", h, Patch{Style: &model.HeadingStyle{Font: "serif;background:url(x)"}}, ErrInvalidFont},
		{"css in icon color", icon, Patch{Content: model.Icon{Icon: "star", Color: "#fff;x:y"}}, ErrInvalidPaletteHex},
		{"css in image width", img, Patch{Content: model.Image{Width: "10px;background:url(x)"}}, ErrInvalidWidth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := db.Update(tc.id, tc.p); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if !reflect.DeepEqual(before, db.Nodes()) {
		t.Fatalf("partial write on rejected style")
	}

	ok := model.HeadingStyle{Color: "#AA0000", Font: `"Playfair Display", serif`}
	if err := db.Update(h, Patch{Style: &ok}); err != nil {
		t.Fatalf("Update(valid style): %v", err)
	}
	for _, w := range []string{"auto", "320px", "50%", "12.5em"} {
		if err := db.Update(img, Patch{Content: model.Image{Width: w}}); err != nil {
			t.Fatalf("Update(width %q): %v", w, err)
		}
	}
}

func TestFromNodes_RejectsUnsafeStyleValues(t *testing.T) {
	style := model.HeadingStyle{Color: "#000", Font: "x</style><script>"}
	_, err := FromNodes([]model.Node{{ID: "h", Type: model.NodeHeading, Content: model.Title("H"), Style: &style}})
	if !errors.Is(err, ErrInvalidFont) {
		t.Fatalf("expected ErrInvalidFont, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "node h") {
		t.Fatalf("expected node id in error, got %v", err)
	}
}
