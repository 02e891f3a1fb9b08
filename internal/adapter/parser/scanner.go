package parser

import (
	"go/scanner"
	"go/token"

	"fngroup/internal/adapter/diag"
)

// item is one token of a .fng file as produced by the Go tokenizer.
type item struct {
	pos token.Pos
	tok token.Token
	lit string
}

// text returns the token's source text.
func (it item) text() string {
	if it.lit != "" {
		return it.lit
	}
	return it.tok.String()
}

// newline reports whether the token is a semicolon inserted by the
// tokenizer at the end of a line.
func (it item) newline() bool {
	return it.tok == token.SEMICOLON && it.lit == "\n"
}

func (it item) isWord(word string) bool {
	return it.tok == token.IDENT && it.lit == word
}

// tokenize scans the whole file. Comments are dropped; they survive in the
// verbatim text slices taken from src.
func tokenize(file *token.File, src []byte) ([]item, error) {
	var first error
	var s scanner.Scanner
	s.Init(file, src, func(pos token.Position, msg string) {
		if first == nil {
			first = diag.Errorf(pos, "%s", msg)
		}
	}, 0)

	var items []item
	for {
		pos, tok, lit := s.Scan()
		items = append(items, item{pos: pos, tok: tok, lit: lit})
		if tok == token.EOF {
			break
		}
	}
	if first != nil {
		return nil, first
	}
	return items, nil
}

func describe(it item) string {
	switch {
	case it.tok == token.EOF:
		return "EOF"
	case it.newline():
		return "newline"
	case it.tok == token.IDENT:
		return "'" + it.lit + "'"
	case it.tok.IsLiteral():
		return it.tok.String() + " " + it.lit
	default:
		return "'" + it.text() + "'"
	}
}
