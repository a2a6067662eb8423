package lexer

import (
	"strings"
	"testing"

	"github.com/halfbit-systems/masm16/asmerr"
)

func tokenize(t *testing.T, src string) ([]Token, *asmerr.Sink) {
	t.Helper()
	var sb strings.Builder
	errs := asmerr.New(&sb)
	toks := New(src, errs).TokenizeAll()
	return toks, errs
}

func TestNextIdentifiersAndPunctuation(t *testing.T) {
	toks, errs := tokenize(t, "MOV AX, BX")
	if errs.HasFailed() {
		t.Fatalf("unexpected errors: %d", errs.Count())
	}

	want := []Kind{Identifier, Identifier, Comma, Identifier, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[0].Text != "MOV" || toks[1].Text != "AX" || toks[3].Text != "BX" {
		t.Errorf("unexpected lexemes: %v", toks)
	}
}

func TestNextNumberForms(t *testing.T) {
	tests := []struct {
		src  string
		want uint32
	}{
		{"0x1F", 0x1F},
		{"0X1f", 0x1F},
		{"1Fh", 0x1F},
		{"1FH", 0x1F},
		{"42", 42},
		{"0", 0},
	}
	for _, tt := range tests {
		toks, errs := tokenize(t, tt.src)
		if errs.HasFailed() {
			t.Errorf("%q: unexpected errors", tt.src)
			continue
		}
		if len(toks) < 1 || toks[0].Kind != Number {
			t.Errorf("%q: got %v, want a Number token", tt.src, toks)
			continue
		}
		if toks[0].Value != tt.want {
			t.Errorf("%q: value = %d, want %d", tt.src, toks[0].Value, tt.want)
		}
	}
}

func TestNextHexLiteralWithNoDigitsIsIllFormed(t *testing.T) {
	toks, errs := tokenize(t, "0x")
	if !errs.HasFailed() {
		t.Fatal("expected an ill-formed-number error for a bare 0x")
	}
	if errs.Diagnostics()[0].Code != asmerr.IllFormedNumber {
		t.Errorf("got code %d, want %d", errs.Diagnostics()[0].Code, asmerr.IllFormedNumber)
	}
	if len(toks) < 1 || toks[0].Kind != Number || toks[0].Value != 0 {
		t.Errorf("got %v, want a Number token with value 0", toks)
	}
}

func TestNextDecimalRunContainingHexLettersIsIllFormed(t *testing.T) {
	toks, errs := tokenize(t, "12a")
	if !errs.HasFailed() {
		t.Fatal("expected an ill-formed-number error for a decimal run with a-f digits and no h/H suffix")
	}
	if errs.Diagnostics()[0].Code != asmerr.IllFormedNumber {
		t.Errorf("got code %d, want %d", errs.Diagnostics()[0].Code, asmerr.IllFormedNumber)
	}
	if len(toks) < 1 || toks[0].Kind != Number || toks[0].Value != 12 {
		t.Errorf("got %v, want a Number token with value 12 (the valid decimal prefix)", toks)
	}
}

func TestNextSingleDigitWithoutSuffixIsDecimal(t *testing.T) {
	// "9" has no h/H suffix and no hex digits beyond itself, so it's
	// read as plain decimal.
	toks, errs := tokenize(t, "9")
	if errs.HasFailed() {
		t.Fatalf("unexpected errors")
	}
	if toks[0].Value != 9 {
		t.Errorf("got %d, want 9", toks[0].Value)
	}
}

func TestNextStringLiterals(t *testing.T) {
	toks, errs := tokenize(t, `"hello" 'world'`)
	if errs.HasFailed() {
		t.Fatalf("unexpected errors")
	}
	if toks[0].Kind != String || toks[0].Text != "hello" {
		t.Errorf("got %v", toks[0])
	}
	if toks[1].Kind != String || toks[1].Text != "world" {
		t.Errorf("got %v", toks[1])
	}
}

func TestNextUnterminatedString(t *testing.T) {
	_, errs := tokenize(t, `"unterminated`)
	if !errs.HasFailed() {
		t.Fatal("expected an unterminated-string error")
	}
	if errs.Diagnostics()[0].Code != asmerr.UnterminatedString {
		t.Errorf("got code %d, want %d", errs.Diagnostics()[0].Code, asmerr.UnterminatedString)
	}
}

func TestNextInvalidCharacter(t *testing.T) {
	_, errs := tokenize(t, "MOV AX, @")
	if !errs.HasFailed() {
		t.Fatal("expected an invalid-character error")
	}
	if errs.Diagnostics()[0].Code != asmerr.InvalidCharacter {
		t.Errorf("got code %d, want %d", errs.Diagnostics()[0].Code, asmerr.InvalidCharacter)
	}
}

func TestNextComments(t *testing.T) {
	toks, errs := tokenize(t, "MOV AX, BX ; move it\nRET")
	if errs.HasFailed() {
		t.Fatalf("unexpected errors")
	}
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []Kind{Identifier, Identifier, Comma, Identifier, EOL, Identifier, EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestNextLineTracking(t *testing.T) {
	toks, _ := tokenize(t, "MOV AX, BX\nRET\n\nNOP")
	var ret, nop Token
	for _, tok := range toks {
		if tok.Text == "RET" {
			ret = tok
		}
		if tok.Text == "NOP" {
			nop = tok
		}
	}
	if ret.Line != 2 {
		t.Errorf("RET line = %d, want 2", ret.Line)
	}
	if nop.Line != 4 {
		t.Errorf("NOP line = %d, want 4", nop.Line)
	}
}

func TestNextEmptyInput(t *testing.T) {
	toks, errs := tokenize(t, "")
	if errs.HasFailed() {
		t.Fatalf("unexpected errors")
	}
	if len(toks) != 1 || toks[0].Kind != EOF {
		t.Fatalf("got %v, want a single EOF token", toks)
	}
}

func TestNextBracketsAndArithmeticPunctuation(t *testing.T) {
	toks, errs := tokenize(t, "[BX+SI-2*4/1]")
	if errs.HasFailed() {
		t.Fatalf("unexpected errors")
	}
	want := []Kind{LBracket, Identifier, Plus, Identifier, Minus, Number, Star, Number, Slash, Number, RBracket, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}
