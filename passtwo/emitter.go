// Package passtwo implements the assembler's second pass: it turns pass
// one's instruction records into a flat code buffer, queuing a
// relocation for every operand whose value can't be known until the
// whole program has been scanned, then patches those relocations once
// every record has been emitted and the symbol table is complete.
package passtwo

import (
	"encoding/binary"
	"fmt"

	"github.com/halfbit-systems/masm16/mnemonic"
	"github.com/halfbit-systems/masm16/passone"
	"github.com/halfbit-systems/masm16/symtab"
)

// MaxImageSize is the static buffer cap: an image larger than this
// stops pass two with an ImageTooLargeError.
const MaxImageSize = 65536

// relocation is a deferred two-byte little-endian patch: the address of
// Name, once resolved, is written at Offset in the output buffer.
type relocation struct {
	Offset int
	Name   string
	Line   int
}

// ImageTooLargeError reports that the assembled image grew past
// MaxImageSize. Unlike UndefinedSymbolError, this is a system/resource
// failure rather than a semantic error in the source.
type ImageTooLargeError struct {
	Line int
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("passtwo: image exceeds %d-byte buffer cap at line %d", MaxImageSize, e.Line)
}

// UndefinedSymbolError reports that a queued relocation named a symbol
// that was never defined by the time the symbol table was patched.
type UndefinedSymbolError struct {
	Name string
	Line int
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("undefined reference to symbol %q (line %d)", e.Name, e.Line)
}

// Result is the emitted image plus bookkeeping a caller might want to
// report (e.g. -v statistics).
type Result struct {
	Code        []byte
	Relocations int
}

// Emit produces the code buffer for recs. mt resolves each record's
// mnemonic back to its base opcode; st is pass one's symbol table,
// consulted (and required complete) during the relocation patch step.
//
// Emit panics if a record emits more bytes than its reserved length, or
// if an unrecognized mnemonic reaches this pass (both indicate pass one
// failed to keep its own invariants, not a user error). It returns an
// error if the final image would exceed MaxImageSize, or if a queued
// relocation names a symbol that is undefined at patch time.
func Emit(recs []passone.Instruction, mt *mnemonic.Table, st *symtab.Table) (*Result, error) {
	var buf []byte
	var relocs []relocation

	for _, rec := range recs {
		if len(buf)+rec.Length > MaxImageSize {
			return nil, &ImageTooLargeError{Line: rec.Line}
		}

		start := len(buf)
		buf = emitRecord(rec, mt, &buf, &relocs)
		emitted := len(buf) - start
		if emitted > rec.Length {
			panic(fmt.Sprintf("passtwo: record at line %d emitted %d bytes, reserved %d", rec.Line, emitted, rec.Length))
		}
		for emitted < rec.Length {
			buf = append(buf, 0)
			emitted++
		}
	}

	for _, r := range relocs {
		sym, ok := st.Lookup(r.Name)
		if !ok || !sym.Defined {
			return nil, &UndefinedSymbolError{Name: r.Name, Line: r.Line}
		}
		binary.LittleEndian.PutUint16(buf[r.Offset:r.Offset+2], uint16(sym.Address))
	}

	return &Result{Code: buf, Relocations: len(relocs)}, nil
}

// emitRecord appends one record's bytes to *buf (returning the updated
// slice) and queues any relocations it needs.
func emitRecord(rec passone.Instruction, mt *mnemonic.Table, buf *[]byte, relocs *[]relocation) []byte {
	desc, ok := mt.Lookup(rec.Mnemonic)
	if !ok {
		panic(fmt.Sprintf("passtwo: unknown mnemonic %q at line %d", rec.Mnemonic, rec.Line))
	}

	if desc.Kind == mnemonic.Directive {
		if desc.Mnemonic == "DB" {
			var v uint32
			if len(rec.Operands) > 0 {
				v = rec.Operands[0].Value
			}
			*buf = append(*buf, byte(v))
		}
		return *buf
	}

	*buf = append(*buf, desc.BaseOpcode)

	for i, op := range rec.Operands {
		switch op.Kind {
		case passone.ImmediateOperand:
			if op.Value <= 0xFF {
				*buf = append(*buf, byte(op.Value))
			} else {
				var tmp [2]byte
				binary.LittleEndian.PutUint16(tmp[:], uint16(op.Value))
				*buf = append(*buf, tmp[0], tmp[1])
			}
		case passone.RegisterOperand:
			modrm := byte(0b11_000_000) | (byte(i) & 0b111)
			*buf = append(*buf, modrm)
		case passone.LabelOperand, passone.MemoryOperand:
			name := op.Name
			if name == "" {
				// A literal memory address has no symbol to relocate
				// against; encode it as a direct two-byte immediate.
				var tmp [2]byte
				binary.LittleEndian.PutUint16(tmp[:], uint16(op.Value))
				*buf = append(*buf, tmp[0], tmp[1])
				continue
			}
			offset := len(*buf)
			*buf = append(*buf, 0, 0)
			*relocs = append(*relocs, relocation{Offset: offset, Name: name, Line: rec.Line})
		}
	}

	return *buf
}
