// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lang

import (
	"strconv"

	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// parser is a recursive-descent/precedence-climbing parser over the
// token stream; infix operators (comparison, arithmetic, logical) are
// sugar that desugars directly to the same Call nodes a function-call
// expression would produce, so the binder and evaluator need no
// knowledge of operator syntax at all.
type parser struct {
	lex *lexer
	tok token
	src string
}

// Parse tokenizes and parses code into a Pipeline. Failure returns a
// structured xerrors.ErrParse wrapping the source text; there is no
// partial/recovering parse (§4.A).
func Parse(code string) (Pipeline, error) {
	p := &parser{lex: newLexer(code), src: code}
	p.advance()

	pipeline, err := p.parsePipeline()
	if err != nil {
		return nil, xerrors.ErrParse.New(code)
	}
	if p.tok.kind != tokEOF {
		return nil, xerrors.ErrParse.New(code)
	}
	return pipeline, nil
}

func (p *parser) advance() { p.tok = p.lex.next() }

func (p *parser) parsePipeline() (Pipeline, error) {
	first, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	pipeline := Pipeline{first}

	for p.tok.kind == tokPipe {
		p.advance()
		next, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, next)
	}

	return pipeline, nil
}

// operator precedence, low to high; §8 scenario 1 ("a > 1") requires
// infix comparison support even though §4.A's prose only names
// function-call syntax explicitly.
type opInfo struct {
	prec int
	fn   string
}

var binaryOps = map[tokenKind]opInfo{
	tokOr:      {1, "or"},
	tokAnd:     {2, "and"},
	tokEq:      {3, "eq"},
	tokNe:      {3, "neq"},
	tokGt:      {4, "gt"},
	tokLt:      {4, "lt"},
	tokGe:      {4, "gte"},
	tokLe:      {4, "lte"},
	tokPlus:    {5, "add"},
	tokMinus:   {5, "sub"},
	tokStar:    {6, "mul"},
	tokSlash:   {6, "div"},
	tokPercent: {6, "mod"},
}

func (p *parser) parseExpression(minPrec int) (Argument, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		info, ok := binaryOps[p.tok.kind]
		if !ok || info.prec < minPrec {
			return left, nil
		}
		p.advance()
		right, err := p.parseExpression(info.prec + 1)
		if err != nil {
			return nil, err
		}
		left = &Call{Name: info.fn, Args: []Argument{left, right}}
	}
}

func (p *parser) parseUnary() (Argument, error) {
	switch p.tok.kind {
	case tokBang:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Call{Name: "not", Args: []Argument{operand}}, nil
	case tokMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Call{Name: "neg", Args: []Argument{operand}}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (Argument, error) {
	switch p.tok.kind {
	case tokUnderscore:
		p.advance()
		return Underscore{}, nil
	case tokNull:
		p.advance()
		return NullLiteral{}, nil
	case tokTrue:
		p.advance()
		return BoolLiteral{Value: true}, nil
	case tokFalse:
		p.advance()
		return BoolLiteral{Value: false}, nil
	case tokString:
		v := p.tok.text
		p.advance()
		return StringLiteral{Value: v}, nil
	case tokInt:
		v, err := strconv.ParseInt(p.tok.text, 10, 64)
		if err != nil {
			return nil, errIllegal
		}
		p.advance()
		return IntLiteral{Value: v}, nil
	case tokFloat:
		v, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, errIllegal
		}
		p.advance()
		return FloatLiteral{Value: v}, nil
	case tokLParen:
		p.advance()
		inner, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, errIllegal
		}
		p.advance()
		return inner, nil
	case tokIdent:
		name := p.tok.text
		p.advance()
		if p.tok.kind == tokLParen {
			return p.parseCallTail(name)
		}
		return Identifier{Name: name}, nil
	default:
		return nil, errIllegal
	}
}

// parseCallTail parses "(args...)" given that the call name has
// already been consumed.
func (p *parser) parseCallTail(name string) (Argument, error) {
	p.advance() // consume '('

	var args []Argument
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.tok.kind == tokComma {
				p.advance()
				continue
			}
			break
		}
	}

	if p.tok.kind != tokRParen {
		return nil, errIllegal
	}
	p.advance()

	if name == "col" {
		indexation, err := columnIndexationFromArgs(args)
		if err != nil {
			return nil, err
		}
		// A bare col(...) reference is represented as its own pseudo
		// call so it can still be threaded as a sub-expression
		// argument; engine/plan unwraps the single Indexation
		// argument back out when binding.
		return &Call{Name: "col", Args: []Argument{Indexation{Of: indexation}}}, nil
	}

	return &Call{Name: name, Args: args}, nil
}

func columnIndexationFromArgs(args []Argument) (ColumnIndexation, error) {
	switch len(args) {
	case 1:
		switch a := args[0].(type) {
		case IntLiteral:
			return ColumnIndexation{By: ByPos, Pos: int(a.Value)}, nil
		case StringLiteral:
			return ColumnIndexation{By: ByName, Name: a.Value}, nil
		}
	case 2:
		name, ok1 := args[0].(StringLiteral)
		nth, ok2 := args[1].(IntLiteral)
		if ok1 && ok2 {
			return ColumnIndexation{By: ByNameAndNth, Name: name.Value, Nth: int(nth.Value)}, nil
		}
	}
	return ColumnIndexation{}, errIllegal
}

var errIllegal = illegalSyntaxError{}

type illegalSyntaxError struct{}

func (illegalSyntaxError) Error() string { return "illegal syntax" }
