// Package mnemonic provides the assembler's mnemonic table: a static,
// case-insensitive lookup from mnemonic spelling to its descriptor. The
// table is a small, flat map rather than a generated parser table.
//
// The built-in table can optionally be extended or overridden by
// loading a TOML file, so the supported instruction and directive set
// is a pluggable table rather than a compiled-in constant.
package mnemonic

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Kind distinguishes ordinary instructions from assembler directives.
type Kind int

const (
	Ordinary Kind = iota
	Directive
)

// Descriptor is an immutable record describing one mnemonic: its
// canonical (uppercase) spelling, whether it's an instruction or a
// directive, its base opcode byte, how many operands it expects, and a
// short human-readable description.
type Descriptor struct {
	Mnemonic    string
	Kind        Kind
	BaseOpcode  byte
	NumOperands int
	Description string
}

// Table is a case-insensitive mapping from mnemonic spelling to
// Descriptor. The zero value is not usable; use New or Default.
type Table struct {
	order []string // canonical spellings, insertion order, for At/Len
	byKey map[string]Descriptor
}

func newTable() *Table {
	return &Table{byKey: make(map[string]Descriptor)}
}

// add inserts or replaces a descriptor keyed by its uppercased spelling.
// Replacing an existing entry does not change its position in `order`.
func (t *Table) add(d Descriptor) {
	key := strings.ToUpper(d.Mnemonic)
	d.Mnemonic = key
	if _, exists := t.byKey[key]; !exists {
		t.order = append(t.order, key)
	}
	t.byKey[key] = d
}

// Lookup finds a mnemonic's descriptor, case-insensitively. ok is false
// if the spelling is not in the table.
func (t *Table) Lookup(spelling string) (Descriptor, bool) {
	d, ok := t.byKey[strings.ToUpper(spelling)]
	return d, ok
}

// IsDirective is a three-valued test: true if spelling names a
// directive, false if it names an ordinary instruction, and
// (false, false) if spelling is not in the table at all.
func (t *Table) IsDirective(spelling string) (isDirective bool, inTable bool) {
	d, ok := t.byKey[strings.ToUpper(spelling)]
	if !ok {
		return false, false
	}
	return d.Kind == Directive, true
}

// Len returns the number of mnemonics in the table.
func (t *Table) Len() int { return len(t.order) }

// At returns the descriptor at the given index in insertion order,
// for callers that want to enumerate the whole table (e.g. -help text
// generation, or tests asserting total coverage).
func (t *Table) At(i int) Descriptor { return t.byKey[t.order[i]] }

// builtinEntries is the fixed instruction and directive set: the
// ordinary-instruction groups (move, add, subtract, multiply, divide,
// compare, bitwise, jumps, loop, stack, call/return, flags, software
// interrupt, no-op) and the directive set (segment/ends, assume,
// origin, define-byte, procedure/end-procedure, end-of-program).
// Each base opcode reuses the x86 byte of the same instruction (MUL
// and NOT share the group byte 0xF6); worked encodings are checked
// against the RET and JMP bytes. Operand encoding is a stand-in, since
// this core targets a toy image rather than real x86.
var builtinEntries = []Descriptor{
	{"MOV", Ordinary, 0x88, 2, "move"},
	{"ADD", Ordinary, 0x00, 2, "add"},
	{"SUB", Ordinary, 0x28, 2, "subtract"},
	{"MUL", Ordinary, 0xF6, 1, "unsigned multiply"},
	{"DIV", Ordinary, 0xF7, 1, "unsigned divide"},
	{"CMP", Ordinary, 0x38, 2, "compare"},

	{"AND", Ordinary, 0x20, 2, "bitwise and"},
	{"OR", Ordinary, 0x08, 2, "bitwise or"},
	{"XOR", Ordinary, 0x30, 2, "bitwise xor"},
	{"NOT", Ordinary, 0xF6, 1, "bitwise not"},

	{"JMP", Ordinary, 0xEB, 1, "unconditional jump"},
	{"JE", Ordinary, 0x74, 1, "jump if equal"},
	{"JNE", Ordinary, 0x75, 1, "jump if not equal"},
	{"JG", Ordinary, 0x7F, 1, "jump if greater"},
	{"JGE", Ordinary, 0x7D, 1, "jump if greater or equal"},
	{"JL", Ordinary, 0x7C, 1, "jump if less"},
	{"JLE", Ordinary, 0x7E, 1, "jump if less or equal"},
	{"LOOP", Ordinary, 0xE2, 1, "decrement and jump if nonzero"},

	{"PUSH", Ordinary, 0x50, 1, "push"},
	{"POP", Ordinary, 0x58, 1, "pop"},

	{"CALL", Ordinary, 0xE8, 1, "call"},
	{"RET", Ordinary, 0xC3, 0, "return"},

	{"CLC", Ordinary, 0xF8, 0, "clear carry flag"},
	{"STC", Ordinary, 0xF9, 0, "set carry flag"},
	{"CLI", Ordinary, 0xFA, 0, "clear interrupt flag"},
	{"STI", Ordinary, 0xFB, 0, "set interrupt flag"},
	{"CLD", Ordinary, 0xFC, 0, "clear direction flag"},
	{"STD", Ordinary, 0xFD, 0, "set direction flag"},

	{"INT", Ordinary, 0xCD, 1, "software interrupt"},
	{"NOP", Ordinary, 0x90, 0, "no operation"},

	{"SEGMENT", Directive, 0, 1, "begin segment"},
	{"ENDS", Directive, 0, 0, "end segment"},
	{"ASSUME", Directive, 0, 2, "assume segment register"},
	{"ORG", Directive, 0, 1, "set location counter"},
	{"DB", Directive, 0, 1, "define byte"},
	{"PROC", Directive, 0, 0, "begin procedure"},
	{"ENDP", Directive, 0, 0, "end procedure"},
	{"END", Directive, 0, 0, "end of program"},
}

// Default returns the built-in mnemonic table.
func Default() *Table {
	t := newTable()
	for _, d := range builtinEntries {
		t.add(d)
	}
	return t
}

// tomlFile is the on-disk shape of a pluggable mnemonic table override,
// loaded with github.com/BurntSushi/toml.
//
//	[[mnemonic]]
//	name = "INC"
//	kind = "ordinary"   # or "directive"
//	opcode = 0x40
//	operands = 1
//	description = "increment"
type tomlFile struct {
	Mnemonic []tomlEntry `toml:"mnemonic"`
}

type tomlEntry struct {
	Name        string `toml:"name"`
	Kind        string `toml:"kind"`
	Opcode      int64  `toml:"opcode"`
	Operands    int    `toml:"operands"`
	Description string `toml:"description"`
}

// LoadOverrides extends (or replaces entries of) the built-in table
// with mnemonics defined in a TOML file at path. Entries with a name
// matching a built-in mnemonic replace that entry; new names are added.
func LoadOverrides(path string) (*Table, error) {
	var f tomlFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("mnemonic: load %s: %w", path, err)
	}

	t := Default()
	for _, e := range f.Mnemonic {
		if e.Name == "" {
			return nil, fmt.Errorf("mnemonic: override in %s has empty name", path)
		}
		kind := Ordinary
		switch strings.ToLower(e.Kind) {
		case "", "ordinary", "instruction":
			kind = Ordinary
		case "directive":
			kind = Directive
		default:
			return nil, fmt.Errorf("mnemonic: override %q has unknown kind %q", e.Name, e.Kind)
		}
		if e.Opcode < 0 || e.Opcode > 0xFF {
			return nil, fmt.Errorf("mnemonic: override %q has out-of-range opcode %d", e.Name, e.Opcode)
		}
		t.add(Descriptor{
			Mnemonic:    e.Name,
			Kind:        kind,
			BaseOpcode:  byte(e.Opcode),
			NumOperands: e.Operands,
			Description: e.Description,
		})
	}
	return t, nil
}
