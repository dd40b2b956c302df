package compose

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/phrases"
)

func testBank() *phrases.Bank {
	return &phrases.Bank{Groups: []phrases.Group{
		{Label: "Hello,", Variants: []string{"world"}},
		{Label: "Wish:", Variants: []string{"joy"}},
	}}
}

func TestComposeDeterministicDraw(t *testing.T) {
	c := New()
	g, err := c.Compose(testBank(), "templates/1.jpg", "fonts/majestic.ttf")
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}

	wantText := "Hello, world! Wish: joy! Ура!"
	if g.Text != wantText {
		t.Errorf("Text = %q, want %q", g.Text, wantText)
	}

	sum := sha256.Sum256([]byte("templates/1.jpg" + "fonts/majestic.ttf" + wantText))
	if want := hex.EncodeToString(sum[:]); g.Hash != want {
		t.Errorf("Hash = %s, want %s", g.Hash, want)
	}
	if len(g.Phrases) != 2 || g.Phrases[0] != "world" || g.Phrases[1] != "joy" {
		t.Errorf("Phrases = %v", g.Phrases)
	}
}

func TestComposeOnePhrasePerGroupInOrder(t *testing.T) {
	bank := phrases.Default()
	c := New(WithRand(rand.New(rand.NewPCG(1, 2))))

	for range 50 {
		g, err := c.Compose(bank, "img", "font")
		if err != nil {
			t.Fatalf("Compose() error: %v", err)
		}

		rest := g.Text
		for i, grp := range bank.Groups {
			prefix := grp.Label + " " + g.Phrases[i] + "! "
			if !strings.HasPrefix(rest, prefix) {
				t.Fatalf("group %d: text %q does not continue with %q", i, rest, prefix)
			}
			if !contains(grp.Variants, g.Phrases[i]) {
				t.Fatalf("group %d: drawn %q is not a variant", i, g.Phrases[i])
			}
			rest = rest[len(prefix):]
		}
		if rest != DefaultClosing {
			t.Fatalf("text ends with %q, want %q", rest, DefaultClosing)
		}
	}
}

func TestComposeSameDrawSameHash(t *testing.T) {
	bank := phrases.Default()
	a := New(WithRand(rand.New(rand.NewPCG(7, 7))))
	b := New(WithRand(rand.New(rand.NewPCG(7, 7))))

	ga, _ := a.Compose(bank, "templates/1.jpg", "fonts/majestic.ttf")
	gb, _ := b.Compose(bank, "templates/1.jpg", "fonts/majestic.ttf")
	if ga.Text != gb.Text || ga.Hash != gb.Hash {
		t.Errorf("same seed produced %q/%s and %q/%s", ga.Text, ga.Hash, gb.Text, gb.Hash)
	}

	gc := a.Hash("templates/2.jpg", "fonts/majestic.ttf", ga.Text)
	if gc == ga.Hash {
		t.Error("different template should change the hash")
	}
}

func TestComposeEmptyGroup(t *testing.T) {
	bank := &phrases.Bank{Groups: []phrases.Group{
		{Label: "Hello,", Variants: []string{"world"}},
		{Label: "Empty", Variants: nil},
	}}

	_, err := New().Compose(bank, "img", "font")
	if !errors.Is(err, errors.ErrCodeCompose) {
		t.Errorf("Compose() code = %v, want %v", errors.GetCode(err), errors.ErrCodeCompose)
	}

	if _, err := New().Compose(&phrases.Bank{}, "img", "font"); !errors.Is(err, errors.ErrCodeCompose) {
		t.Errorf("Compose(empty bank) code = %v, want %v", errors.GetCode(err), errors.ErrCodeCompose)
	}
}

func TestWithClosingAndDigest(t *testing.T) {
	d, err := DigestByName("SHA1")
	if err != nil {
		t.Fatalf("DigestByName() error: %v", err)
	}
	c := New(WithClosing("Hooray!"), WithDigest(d))

	g, err := c.Compose(testBank(), "a", "b")
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	if !strings.HasSuffix(g.Text, "! Hooray!") {
		t.Errorf("Text = %q, want closing Hooray!", g.Text)
	}
	if len(g.Hash) != 40 {
		t.Errorf("sha1 hash length = %d, want 40", len(g.Hash))
	}
	if strings.ToLower(g.Hash) != g.Hash {
		t.Errorf("hash %q is not lowercase", g.Hash)
	}
}

func TestDigestByName(t *testing.T) {
	tests := []struct {
		name    string
		hexLen  int
		wantErr bool
	}{
		{"md5", 32, false},
		{"sha1", 40, false},
		{"sha256", 64, false},
		{"sha512", 128, false},
		{"crc32", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DigestByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DigestByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && len(d.Sum("x")) != tt.hexLen {
				t.Errorf("len(Sum) = %d, want %d", len(d.Sum("x")), tt.hexLen)
			}
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
