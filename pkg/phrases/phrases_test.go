package phrases

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

func TestDefault(t *testing.T) {
	b := Default()

	if b.Name != "new-year" {
		t.Errorf("Name = %q, want %q", b.Name, "new-year")
	}
	if len(b.Groups) != 3 {
		t.Fatalf("len(Groups) = %d, want 3", len(b.Groups))
	}

	wantLabels := []string{"С Новым Годом,", "Желаю", "И пусть"}
	for i, want := range wantLabels {
		if b.Groups[i].Label != want {
			t.Errorf("Groups[%d].Label = %q, want %q", i, b.Groups[i].Label, want)
		}
		if len(b.Groups[i].Variants) != 7 {
			t.Errorf("Groups[%d] has %d variants, want 7", i, len(b.Groups[i].Variants))
		}
	}

	if got := b.Combinations(); got.Cmp(big.NewInt(343)) != 0 {
		t.Errorf("Combinations() = %d, want 343", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		bank    *Bank
		wantErr bool
	}{
		{"nil bank", nil, true},
		{"no groups", &Bank{}, true},
		{"empty variants", &Bank{Groups: []Group{{Label: "Hello,", Variants: nil}}}, true},
		{"blank label", &Bank{Groups: []Group{{Label: " ", Variants: []string{"world"}}}}, true},
		{"blank variant", &Bank{Groups: []Group{{Label: "Hello,", Variants: []string{""}}}}, true},
		{"valid", &Bank{Groups: []Group{{Label: "Hello,", Variants: []string{"world"}}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bank.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeCompose) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeCompose)
			}
		})
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
name = "test"

[[group]]
label = "Hello,"
variants = ["world"]

[[group]]
label = "Wish:"
variants = ["joy", "luck"]
`)
	b, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(b.Groups) != 2 || b.Groups[0].Label != "Hello," || b.Groups[1].Label != "Wish:" {
		t.Errorf("Parse() groups out of order: %+v", b.Groups)
	}
	if got := b.Combinations(); got.Cmp(big.NewInt(2)) != 0 {
		t.Errorf("Combinations() = %d, want 2", got)
	}
}

func TestCombinationsLargeBank(t *testing.T) {
	variants := make([]string, 1000)
	for i := range variants {
		variants[i] = fmt.Sprintf("v%d", i)
	}
	b := &Bank{}
	for i := range 8 {
		b.Groups = append(b.Groups, Group{Label: fmt.Sprintf("g%d", i), Variants: variants})
	}

	// 1000^8 = 10^24 overflows int64
	want, _ := new(big.Int).SetString("1000000000000000000000000", 10)
	if got := b.Combinations(); got.Cmp(want) != 0 {
		t.Errorf("Combinations() = %d, want %d", got, want)
	}
	if got := (&Bank{}).Combinations(); got.Sign() != 0 {
		t.Errorf("empty Combinations() = %d, want 0", got)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"bad toml", `[[group]`, errors.ErrCodeInvalidConfig},
		{"unknown key", "[[group]]\nlabel = \"a\"\nvariants = [\"b\"]\nweight = 2\n", errors.ErrCodeInvalidConfig},
		{"empty group", "[[group]]\nlabel = \"a\"\nvariants = []\n", errors.ErrCodeCompose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.toml")
	if err := os.WriteFile(path, []byte("[[group]]\nlabel = \"Hi\"\nvariants = [\"there\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if b.Groups[0].Variants[0] != "there" {
		t.Errorf("Load() variant = %q, want %q", b.Groups[0].Variants[0], "there")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(missing) code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}
