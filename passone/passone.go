// Package passone implements the assembler's first pass: it walks a
// finite token sequence and produces an ordered list of instruction
// records plus a partially (or fully) populated symbol table, assigning
// each record an address from a running location counter. The pass is
// total: recoverable errors are reported to the error sink and the scan
// resynchronizes to the next line rather than aborting.
package passone

import (
	"strings"

	"github.com/halfbit-systems/masm16/asmerr"
	"github.com/halfbit-systems/masm16/lexer"
	"github.com/halfbit-systems/masm16/mnemonic"
	"github.com/halfbit-systems/masm16/symtab"
)

// Run scans toks and returns the accumulated instruction records and
// the final location counter. origin seeds the location counter before
// the first statement, so a configured default origin takes effect
// whenever the source never overrides it with its own ORG directive.
// Errors are reported to errs; the caller decides whether to proceed to
// pass two by checking errs.HasFailed.
func Run(toks []lexer.Token, mt *mnemonic.Table, st *symtab.Table, errs *asmerr.Sink, origin uint32) *Result {
	c := &cursor{toks: toks}
	lc := origin
	var instrs []Instruction

	for {
		tok := c.peek(0)
		if tok.Kind == lexer.EOF {
			break
		}
		if tok.Kind == lexer.EOL {
			c.advance()
			continue
		}

		rec, ok := parseStatement(c, mt, st, errs, lc)
		if ok {
			rec.Address = lc
			lc += uint32(rec.Length)
			instrs = append(instrs, rec)
			if rec.Mnemonic == "ORG" && len(rec.Operands) > 0 && rec.Operands[0].Kind == ImmediateOperand {
				lc = rec.Operands[0].Value
			}
		}

		// Whatever parseStatement did or didn't consume, the statement
		// is over once we reach EOL/EOF; the outer loop's EOL handling
		// above advances past it on the next iteration.
	}

	return &Result{Instructions: instrs, FinalAddress: lc}
}

// cursor is a simple array-backed token reader with unbounded lookahead
// (the token slice is finite and already fully materialized).
type cursor struct {
	toks []lexer.Token
	pos  int
}

func (c *cursor) peek(n int) lexer.Token {
	i := c.pos + n
	if i >= len(c.toks) {
		return c.toks[len(c.toks)-1]
	}
	return c.toks[i]
}

func (c *cursor) advance() lexer.Token {
	t := c.peek(0)
	if c.pos < len(c.toks) {
		c.pos++
	}
	return t
}

func isStatementEnd(t lexer.Token) bool {
	return t.Kind == lexer.EOL || t.Kind == lexer.EOF
}

func skipToEOL(c *cursor) {
	for !isStatementEnd(c.peek(0)) {
		c.advance()
	}
}

// parseStatement recognizes the label-prefix form (rule 1) and
// dispatches to parseMnemonicForm for the rest (rules 2 and 3).
func parseStatement(c *cursor, mt *mnemonic.Table, st *symtab.Table, errs *asmerr.Sink, lc uint32) (Instruction, bool) {
	tok := c.peek(0)
	next := c.peek(1)

	if tok.Kind == lexer.Identifier && next.Kind == lexer.Colon {
		label := tok.Text
		line := tok.Line
		c.advance()
		c.advance()

		if err := st.Insert(label, symtab.Label, lc, line); err != nil {
			errs.Report(line, asmerr.DuplicateLabel, "duplicate label definition", label)
			skipToEOL(c)
			return Instruction{}, false
		}

		if isStatementEnd(c.peek(0)) {
			return Instruction{Line: line, Mnemonic: "NOP", Length: 1, Label: label}, true
		}

		rec, ok := parseMnemonicForm(c, mt, st, errs, lc)
		if !ok {
			return Instruction{}, false
		}
		rec.Label = label
		return rec, true
	}

	return parseMnemonicForm(c, mt, st, errs, lc)
}

// parseMnemonicForm recognizes rules 2 and 3: either two identifiers
// where the second is a recognized directive (procedure / define-byte
// get special symbol treatment, anything else falls to the "leading
// operand, then mnemonic" case), or a single identifier that is itself
// the mnemonic.
//
// A leading identifier that is itself a recognized mnemonic or
// directive always wins rule 3, even when the identifier after it is a
// directive name: "JMP END" is the JMP instruction with a label operand
// named END, not the END directive with a leading operand JMP. A second
// identifier that is not a directive never triggers rule 2, so
// "COUNT MOV AX, BX" reads COUNT as the (unknown) mnemonic.
func parseMnemonicForm(c *cursor, mt *mnemonic.Table, st *symtab.Table, errs *asmerr.Sink, lc uint32) (Instruction, bool) {
	tok := c.peek(0)
	next := c.peek(1)
	line := tok.Line

	if tok.Kind != lexer.Identifier {
		errs.Report(line, asmerr.UnexpectedToken, "unexpected token at start of statement", tok.Text)
		skipToEOL(c)
		return Instruction{}, false
	}

	if _, inTable := mt.Lookup(tok.Text); inTable {
		mnemTok := c.advance()
		return finishStatement(c, line, mnemTok.Text, nil, mt, errs)
	}

	if next.Kind == lexer.Identifier {
		isDirective, inTable := mt.IsDirective(next.Text)

		if inTable && isDirective && strings.EqualFold(next.Text, "PROC") {
			name := tok.Text
			c.advance()
			c.advance()
			if err := st.Insert(name, symtab.Procedure, lc, line); err != nil {
				errs.Report(line, asmerr.DuplicateLabel, "duplicate label definition", name)
				skipToEOL(c)
				return Instruction{}, false
			}
			rec, ok := finishStatement(c, line, "PROC", nil, mt, errs)
			if ok {
				rec.Label = name
			}
			return rec, ok
		}

		if inTable && isDirective && strings.EqualFold(next.Text, "DB") {
			name := tok.Text
			c.advance()
			c.advance()
			if err := st.Insert(name, symtab.Variable, lc, line); err != nil {
				errs.Report(line, asmerr.DuplicateLabel, "duplicate label definition", name)
				skipToEOL(c)
				return Instruction{}, false
			}
			rec, ok := finishStatement(c, line, "DB", nil, mt, errs)
			if ok {
				rec.Label = name
			}
			return rec, ok
		}

		if inTable && isDirective {
			leading, ok := classifyOperandStartingAt(c, errs)
			if !ok {
				skipToEOL(c)
				return Instruction{}, false
			}
			mnemTok := c.advance()
			return finishStatement(c, line, mnemTok.Text, []Operand{leading}, mt, errs)
		}
	}

	mnemTok := c.advance()
	return finishStatement(c, line, mnemTok.Text, nil, mt, errs)
}

// finishStatement resolves mnemonicText against the mnemonic table and
// parses the comma-separated operand list (starting from any leading
// operands already recognized), enforcing the three-operand cap.
func finishStatement(c *cursor, line int, mnemonicText string, leadingOperands []Operand, mt *mnemonic.Table, errs *asmerr.Sink) (Instruction, bool) {
	desc, ok := mt.Lookup(mnemonicText)
	if !ok {
		errs.Report(line, asmerr.UnknownMnemonic, "unknown mnemonic", mnemonicText)
		skipToEOL(c)
		return Instruction{}, false
	}

	// Operands textually following the mnemonic form their own
	// comma-separated list; a leading operand recognized before the
	// mnemonic (statement recognition rule 2's "otherwise" case) is not
	// part of that list and needs no comma before the first of these.
	maxTrailing := 3 - len(leadingOperands)
	var trailing []Operand

	for {
		t := c.peek(0)
		if isStatementEnd(t) {
			break
		}

		if len(trailing) > 0 {
			if t.Kind != lexer.Comma {
				errs.Report(t.Line, asmerr.UnexpectedToken, "expected comma between operands", t.Text)
				skipToEOL(c)
				return Instruction{}, false
			}
			c.advance()
			t = c.peek(0)
			if isStatementEnd(t) {
				errs.Report(t.Line, asmerr.MissingOperand, "missing operand after comma", "")
				skipToEOL(c)
				return Instruction{}, false
			}
		}

		if len(trailing) == maxTrailing {
			errs.Report(t.Line, asmerr.MissingOperand, "too many operands", mnemonicText)
			skipToEOL(c)
			return Instruction{}, false
		}

		op, ok := classifyOperandStartingAt(c, errs)
		if !ok {
			skipToEOL(c)
			return Instruction{}, false
		}
		trailing = append(trailing, op)
	}

	operands := append(append([]Operand(nil), leadingOperands...), trailing...)

	return Instruction{
		Line:     line,
		Mnemonic: desc.Mnemonic,
		Operands: operands,
		Length:   lengthFor(desc),
	}, true
}

// classifyOperandStartingAt classifies and consumes one operand at the
// cursor: register, immediate, memory (`[...]`), or label, merging a
// trailing `: IDENT` into a colon-qualified name where present.
func classifyOperandStartingAt(c *cursor, errs *asmerr.Sink) (Operand, bool) {
	t := c.peek(0)
	switch t.Kind {
	case lexer.Identifier:
		upper := strings.ToUpper(t.Text)
		if idx, ok := lookupRegister(upper); ok {
			c.advance()
			return Operand{Kind: RegisterOperand, Value: idx}, true
		}
		name := t.Text
		c.advance()
		if c.peek(0).Kind == lexer.Colon && c.peek(1).Kind == lexer.Identifier {
			c.advance()
			tail := c.advance()
			name = name + ":" + tail.Text
		}
		return Operand{Kind: LabelOperand, Name: name}, true

	case lexer.Number:
		c.advance()
		return Operand{Kind: ImmediateOperand, Value: t.Value}, true

	case lexer.LBracket:
		c.advance()
		inner := c.peek(0)
		var op Operand
		switch inner.Kind {
		case lexer.Number:
			c.advance()
			op = Operand{Kind: MemoryOperand, Value: inner.Value}
		case lexer.Identifier:
			c.advance()
			op = Operand{Kind: MemoryOperand, Name: inner.Text}
		default:
			errs.Report(inner.Line, asmerr.InvalidOperand, "invalid memory operand", inner.Text)
			return Operand{}, false
		}
		if c.peek(0).Kind != lexer.RBracket {
			closing := c.peek(0)
			errs.Report(closing.Line, asmerr.InvalidOperand, "unterminated memory operand, expected ]", closing.Text)
			return Operand{}, false
		}
		c.advance()
		return op, true

	default:
		errs.Report(t.Line, asmerr.InvalidOperand, "invalid operand", t.Text)
		return Operand{}, false
	}
}

// lengthFor implements the length-estimation table: DB reserves one
// byte, ORG, SEGMENT, ENDS, PROC, ENDP and END reserve none, and every other
// mnemonic reserves one byte if it takes no operands (RET, NOP, and the
// flag instructions) or three otherwise (ASSUME included, since it
// always takes at least one segreg:label pair).
func lengthFor(d mnemonic.Descriptor) int {
	switch strings.ToUpper(d.Mnemonic) {
	case "DB":
		return 1
	case "ORG", "SEGMENT", "ENDS", "PROC", "ENDP", "END":
		return 0
	}
	if d.NumOperands == 0 {
		return 1
	}
	return 3
}
