package query

import (
	"fmt"
	"strings"

	"github.com/engram-cortex/engram/internal/engramerr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokComma
	tokLink
	tokWord // bare identifier/value/field:op:value chunk
)

type token struct {
	kind tokenKind
	text string
}

// lexer splits raw EQL text into tokens. Keywords (AND, OR, NOT, link)
// are case-insensitive; everything else not matching punctuation or a
// keyword is collected into a tokWord up to the next whitespace or
// paren/comma boundary, preserving colons so the parser can split
// field:op:value itself.
type lexer struct {
	input string
	pos   int
	toks  []token
}

func lex(input string) ([]token, error) {
	l := &lexer{input: input}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.toks, nil
}

func (l *lexer) run() error {
	for {
		l.skipSpace()
		if l.pos >= len(l.input) {
			l.toks = append(l.toks, token{kind: tokEOF})
			return nil
		}
		c := l.input[l.pos]
		switch c {
		case '(':
			l.toks = append(l.toks, token{kind: tokLParen, text: "("})
			l.pos++
			continue
		case ')':
			l.toks = append(l.toks, token{kind: tokRParen, text: ")"})
			l.pos++
			continue
		case ',':
			l.toks = append(l.toks, token{kind: tokComma, text: ","})
			l.pos++
			continue
		}

		start := l.pos
		for l.pos < len(l.input) && !isBoundary(l.input[l.pos]) {
			l.pos++
		}
		word := l.input[start:l.pos]
		if word == "" {
			return engramerr.New(engramerr.KindFormat, engramerr.IDInvalidQuerySyntax,
				fmt.Sprintf("%q", c), "unexpected character in query; escape or remove it")
		}

		switch strings.ToUpper(word) {
		case "AND":
			l.toks = append(l.toks, token{kind: tokAnd, text: word})
		case "OR":
			l.toks = append(l.toks, token{kind: tokOr, text: word})
		case "NOT":
			l.toks = append(l.toks, token{kind: tokNot, text: word})
		case "LINK":
			l.toks = append(l.toks, token{kind: tokLink, text: word})
		default:
			l.toks = append(l.toks, token{kind: tokWord, text: word})
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isBoundary(c byte) bool {
	return isSpace(c) || c == '(' || c == ')' || c == ','
}
