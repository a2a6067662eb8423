// Package assembler sequences the lexer, pass one, and pass two into a
// single translation: source text in, either a code buffer or a
// non-zero diagnostic count out.
package assembler

import (
	"errors"

	"github.com/halfbit-systems/masm16/asmerr"
	"github.com/halfbit-systems/masm16/lexer"
	"github.com/halfbit-systems/masm16/mnemonic"
	"github.com/halfbit-systems/masm16/passone"
	"github.com/halfbit-systems/masm16/passtwo"
	"github.com/halfbit-systems/masm16/symtab"
)

// Stats summarizes one translation, for callers that want to print
// verbose per-phase output.
type Stats struct {
	Tokens       int
	Instructions int
	Symbols      int
	ImageBytes   int
	Relocations  int
}

// Assemble runs one complete translation of src. origin seeds the
// location counter pass one starts from, so a configured default origin
// takes effect whenever the source itself never overrides it. Assemble
// stops after any phase that leaves errs non-empty: pass two never runs
// if pass one reported a failure, matching the error-sink propagation
// policy every component follows.
//
// On success it returns the assembled code buffer and stats. On
// failure it returns a nil buffer; the caller inspects errs for
// diagnostics already written to its writer.
func Assemble(src string, mt *mnemonic.Table, errs *asmerr.Sink, origin uint32) ([]byte, Stats, error) {
	toks := lexer.New(src, errs).TokenizeAll()
	if errs.HasFailed() {
		return nil, Stats{Tokens: len(toks)}, errLexFailed
	}

	st := symtab.New()
	p1 := passone.Run(toks, mt, st, errs, origin)
	stats := Stats{
		Tokens:       len(toks),
		Instructions: len(p1.Instructions),
		Symbols:      st.Size(),
	}
	if errs.HasFailed() {
		return nil, stats, errPassOneFailed
	}

	p2, err := passtwo.Emit(p1.Instructions, mt, st)
	if err != nil {
		var tooLarge *passtwo.ImageTooLargeError
		var undefined *passtwo.UndefinedSymbolError
		switch {
		case errors.As(err, &tooLarge):
			errs.Report(tooLarge.Line, asmerr.BufferOverflow, "assembled image exceeds the buffer cap", err.Error())
		case errors.As(err, &undefined):
			errs.Report(undefined.Line, asmerr.UndefinedSymbol, "undefined symbol", undefined.Name)
		default:
			// Emit currently only ever returns one of the two typed
			// errors above; this branch exists so an unrecognized
			// future error from pass two still gets reported rather
			// than silently dropped.
			errs.Report(0, asmerr.OutOfMemory, "pass two failed", err.Error())
		}
		return nil, stats, err
	}

	stats.ImageBytes = len(p2.Code)
	stats.Relocations = p2.Relocations
	return p2.Code, stats, nil
}

// sentinel errors naming which phase stopped the translation; the
// diagnostics themselves are already in the sink.
type phaseError string

func (e phaseError) Error() string { return string(e) }

const (
	errLexFailed     phaseError = "lexical errors, stopping before pass one"
	errPassOneFailed phaseError = "pass one errors, stopping before pass two"
)
