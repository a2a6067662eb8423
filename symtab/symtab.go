// Package symtab implements the assembler's symbol table: a
// case-sensitive mapping from symbol name to its definition record. A
// name may be inserted at most once; a second insert attempt is
// reported as a distinct status rather than silently updating the
// existing record. Forward references to a not-yet-defined name are
// handled by the emitter's relocation queue, not by back-patching here.
package symtab

import "fmt"

// Kind is the kind of entity a symbol names.
type Kind int

const (
	Label Kind = iota
	Variable
	Procedure
)

func (k Kind) String() string {
	switch k {
	case Label:
		return "label"
	case Variable:
		return "variable"
	case Procedure:
		return "procedure"
	default:
		return "unknown"
	}
}

// Symbol is one entry in the table.
type Symbol struct {
	Name        string
	Kind        Kind
	Address     uint32
	DefiningLine int
	Defined     bool
}

// Table is the symbol table, implemented over a map the table owns.
type Table struct {
	symbols map[string]*Symbol
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{symbols: make(map[string]*Symbol)}
}

// Insert adds a new symbol. If name already exists, it returns an error
// without mutating the existing record: a name is defined at most once,
// and a repeat definition is reported as duplicate rather than silently
// overwriting the first.
func (t *Table) Insert(name string, kind Kind, address uint32, line int) error {
	if existing, ok := t.symbols[name]; ok {
		return fmt.Errorf("symbol %q already defined at line %d", name, existing.DefiningLine)
	}
	t.symbols[name] = &Symbol{
		Name:         name,
		Kind:         kind,
		Address:      address,
		DefiningLine: line,
		Defined:      true,
	}
	return nil
}

// Lookup returns the symbol named name, if any.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	s, ok := t.symbols[name]
	return s, ok
}

// UpdateAddress changes the address of an existing symbol. It is an
// error to call this for a name that isn't in the table.
func (t *Table) UpdateAddress(name string, address uint32) error {
	s, ok := t.symbols[name]
	if !ok {
		return fmt.Errorf("symbol %q not defined", name)
	}
	s.Address = address
	return nil
}

// MarkDefined marks an existing symbol as defined. It is an error to
// call this for a name that isn't in the table.
func (t *Table) MarkDefined(name string) error {
	s, ok := t.symbols[name]
	if !ok {
		return fmt.Errorf("symbol %q not defined", name)
	}
	s.Defined = true
	return nil
}

// Size returns the number of symbols in the table.
func (t *Table) Size() int { return len(t.symbols) }

// Destroy releases the table's backing storage by dropping the
// reference so the map can be collected.
func (t *Table) Destroy() {
	t.symbols = nil
}
