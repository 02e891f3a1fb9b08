package parser

import (
	"go/token"

	"fngroup/internal/adapter/diag"
	"fngroup/internal/domain"
	"fngroup/tuple"
)

// Invocation is the identifier that opens a function group invocation.
const Invocation = "function_group"

// Parser splits .fng files into pass-through Go text and function groups.
type Parser struct {
	maxArity int
}

// NewParser creates a parser accepting variants of up to tuple.MaxArity
// arguments.
func NewParser() *Parser {
	return &Parser{maxArity: tuple.MaxArity}
}

// Parse parses a .fng file. Parsing stops at the first syntax error, which
// is returned as a diag.ErrorWithPos.
func (p *Parser) Parse(path string, src []byte) (*domain.SourceFile, error) {
	fset := token.NewFileSet()
	file := fset.AddFile(path, -1, len(src))
	items, err := tokenize(file, src)
	if err != nil {
		return nil, err
	}

	ps := &state{file: file, src: src, items: items, maxArity: p.maxArity}
	return ps.parseFile(path)
}

type state struct {
	file     *token.File
	src      []byte
	items    []item
	i        int
	maxArity int
}

func (ps *state) peek() item {
	return ps.items[ps.i]
}

func (ps *state) peekAt(n int) item {
	if ps.i+n >= len(ps.items) {
		return ps.items[len(ps.items)-1]
	}
	return ps.items[ps.i+n]
}

func (ps *state) next() item {
	it := ps.items[ps.i]
	if it.tok != token.EOF {
		ps.i++
	}
	return it
}

func (ps *state) skipNewlines() {
	for ps.peek().newline() {
		ps.i++
	}
}

func (ps *state) position(pos token.Pos) token.Position {
	return ps.file.Position(pos)
}

func (ps *state) offset(pos token.Pos) int {
	return ps.file.Offset(pos)
}

func (ps *state) end(it item) int {
	return ps.offset(it.pos) + len(it.text())
}

func (ps *state) errorf(it item, format string, args ...any) error {
	return diag.Errorf(ps.position(it.pos), format, args...)
}

func (ps *state) expect(tok token.Token, what string) (item, error) {
	it := ps.peek()
	if it.tok != tok {
		return it, ps.errorf(it, "expected %s, found %s", what, describe(it))
	}
	return ps.next(), nil
}

func (ps *state) expectWord(word string) error {
	it := ps.peek()
	if !it.isWord(word) {
		return ps.errorf(it, "expected '%s', found %s", word, describe(it))
	}
	ps.next()
	return nil
}

func (ps *state) parseFile(path string) (*domain.SourceFile, error) {
	sf := &domain.SourceFile{Path: path}
	segStart := 0

	for ps.peek().tok != token.EOF {
		if !ps.atInvocation() {
			ps.next()
			continue
		}
		start := ps.offset(ps.peek().pos)
		if start > segStart {
			sf.Segments = append(sf.Segments, domain.Segment{
				Text: string(ps.src[segStart:start]),
				Pos:  ps.position(ps.file.Pos(segStart)),
			})
		}

		group, closing, err := ps.parseInvocation()
		if err != nil {
			return nil, err
		}
		sf.Segments = append(sf.Segments, domain.Segment{Group: group, Pos: group.Pos})
		segStart = ps.end(closing)
	}

	if segStart < len(ps.src) {
		sf.Segments = append(sf.Segments, domain.Segment{
			Text: string(ps.src[segStart:]),
			Pos:  ps.position(ps.file.Pos(segStart)),
		})
	}
	return sf, nil
}

func (ps *state) atInvocation() bool {
	return ps.peek().isWord(Invocation) && ps.peekAt(1).tok == token.NOT
}

// parseInvocation parses function_group! { group } and returns the closing
// brace of the invocation.
func (ps *state) parseInvocation() (*domain.FunctionGroup, item, error) {
	open := ps.next()
	ps.next() // !
	if _, err := ps.expect(token.LBRACE, "'{' after "+Invocation+"!"); err != nil {
		return nil, item{}, err
	}
	ps.skipNewlines()

	group, err := ps.parseGroup()
	if err != nil {
		return nil, item{}, err
	}
	group.Pos = ps.position(open.pos)

	ps.skipNewlines()
	if ps.peek().tok == token.EOF {
		return nil, item{}, ps.errorf(open, "unterminated %s! invocation", Invocation)
	}
	closing, err := ps.expect(token.RBRACE, "'}' to close "+Invocation+"!")
	if err != nil {
		return nil, item{}, err
	}
	return group, closing, nil
}

func (ps *state) parseGroup() (*domain.FunctionGroup, error) {
	group := &domain.FunctionGroup{Visibility: domain.Private}

	if ps.peek().isWord("pub") {
		ps.next()
		group.Visibility = domain.Public
	}
	if ps.peek().tok == token.FUNC {
		ps.next()
	} else if err := ps.expectWord("fn"); err != nil {
		return nil, err
	}

	name, err := ps.expect(token.IDENT, "function group name")
	if err != nil {
		return nil, err
	}
	group.Name = name.lit

	if ps.peek().tok == token.LPAREN {
		recv, err := ps.parseReceiver()
		if err != nil {
			return nil, err
		}
		group.Receiver = recv
	}

	if ps.peek().tok == token.SUB {
		ps.next()
		if _, err := ps.expect(token.GTR, "'>' in '->'"); err != nil {
			return nil, err
		}
		arrow := ps.peek()
		output, err := ps.parseType(false)
		if err != nil {
			return nil, err
		}
		if output == "" {
			return nil, ps.errorf(arrow, "expected return type after '->', found %s", describe(arrow))
		}
		group.Output = output
		ps.skipNewlines()
	}

	open, err := ps.expect(token.LBRACE, "'{' to open the variants of "+group.Name)
	if err != nil {
		return nil, err
	}
	for {
		ps.skipNewlines()
		if ps.peek().tok != token.LPAREN {
			break
		}
		variant, err := ps.parseVariant(group.Receiver)
		if err != nil {
			return nil, err
		}
		group.Variants = append(group.Variants, variant)
	}

	if ps.peek().tok == token.EOF {
		return nil, ps.errorf(open, "unterminated function group %s", group.Name)
	}
	if _, err := ps.expect(token.RBRACE, "'(' or '}' in function group "+group.Name); err != nil {
		return nil, err
	}
	return group, nil
}

func (ps *state) parseReceiver() (*domain.Receiver, error) {
	open := ps.next()
	ps.skipNewlines()
	recv := &domain.Receiver{Mode: domain.ByValue, Pos: ps.position(open.pos)}

	if ps.peek().isWord("mut") && ps.peekAt(1).tok != token.COLON {
		ps.next()
		recv.Mutable = true
	}
	if ps.peek().tok == token.AND {
		ps.next()
		recv.Mode = domain.ByRef
		if ps.peek().isWord("mut") && ps.peekAt(1).tok == token.IDENT {
			ps.next()
			recv.Mode = domain.ByMutRef
		}
	}

	name, err := ps.expect(token.IDENT, "receiver binding")
	if err != nil {
		return nil, err
	}
	recv.Name = name.lit
	if _, err := ps.expect(token.COLON, "':' after receiver "+name.lit); err != nil {
		return nil, err
	}

	typ, err := ps.parseType(true)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return nil, ps.errorf(ps.peek(), "expected receiver type, found %s", describe(ps.peek()))
	}
	recv.Type = typ

	ps.skipNewlines()
	if _, err := ps.expect(token.RPAREN, "')' to close the receiver"); err != nil {
		return nil, err
	}
	return recv, nil
}

func (ps *state) parseVariant(recv *domain.Receiver) (domain.Variant, error) {
	open := ps.next()
	variant := domain.Variant{Pos: ps.position(open.pos)}
	seen := make(map[string]bool)

	for {
		ps.skipNewlines()
		mutable := false
		if ps.peek().isWord("mut") && ps.peekAt(1).tok == token.IDENT {
			ps.next()
			mutable = true
		}
		if ps.peek().tok != token.IDENT {
			break
		}

		name := ps.next()
		if name.lit != "_" {
			if seen[name.lit] {
				return variant, ps.errorf(name, "duplicate parameter %s", name.lit)
			}
			if recv != nil && recv.Name == name.lit {
				return variant, ps.errorf(name, "parameter %s shadows the receiver", name.lit)
			}
			seen[name.lit] = true
		}
		if _, err := ps.expect(token.COLON, "':' after parameter "+name.lit); err != nil {
			return variant, err
		}
		typ, err := ps.parseType(true)
		if err != nil {
			return variant, err
		}
		if typ == "" {
			return variant, ps.errorf(ps.peek(), "missing type for parameter %s", name.lit)
		}
		variant.Arguments = append(variant.Arguments, domain.Argument{
			Name:    name.lit,
			Type:    typ,
			Mutable: mutable,
			Pos:     ps.position(name.pos),
		})

		ps.skipNewlines()
		if ps.peek().tok != token.COMMA {
			break
		}
		ps.next()
	}

	if _, err := ps.expect(token.RPAREN, "',' or ')' in parameter list"); err != nil {
		return variant, err
	}
	if len(variant.Arguments) > ps.maxArity {
		return variant, ps.errorf(open, "variant declares %d parameters, at most %d are supported",
			len(variant.Arguments), ps.maxArity)
	}

	body, bodyPos, err := ps.parseBlock()
	if err != nil {
		return variant, err
	}
	variant.Body = body
	variant.BodyPos = bodyPos

	if ps.peek().tok == token.SEMICOLON {
		ps.next()
	}
	return variant, nil
}

// parseBlock consumes a brace-balanced block and returns the text between
// its braces along with the position of the first body byte.
func (ps *state) parseBlock() (string, token.Position, error) {
	open, err := ps.expect(token.LBRACE, "'{' to open the variant body")
	if err != nil {
		return "", token.Position{}, err
	}
	depth := 1
	for {
		it := ps.next()
		switch it.tok {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				start := ps.offset(open.pos) + 1
				body := string(ps.src[start:ps.offset(it.pos)])
				return body, ps.position(ps.file.Pos(start)), nil
			}
		case token.EOF:
			return "", token.Position{}, ps.errorf(open, "unterminated block")
		}
	}
}

// parseType consumes a type expression and returns its verbatim text. The
// type ends at a depth-0 ',' or ')' when inList is set, and at a depth-0
// '{' or line end otherwise. A '{' right after struct or interface belongs
// to the type.
func (ps *state) parseType(inList bool) (string, error) {
	var first, last item
	depth := 0
	prev := token.ILLEGAL

loop:
	for {
		it := ps.peek()
		switch it.tok {
		case token.EOF:
			break loop
		case token.LPAREN, token.LBRACK:
			depth++
		case token.LBRACE:
			if depth == 0 && prev != token.STRUCT && prev != token.INTERFACE {
				break loop
			}
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			if depth == 0 {
				break loop
			}
			depth--
		case token.COMMA:
			if depth == 0 && inList {
				break loop
			}
		case token.SEMICOLON:
			if depth == 0 {
				break loop
			}
		}
		if first.pos == token.NoPos {
			first = it
		}
		last = it
		prev = it.tok
		ps.next()
	}

	if first.pos == token.NoPos {
		return "", nil
	}
	return string(ps.src[ps.offset(first.pos):ps.end(last)]), nil
}
