package sqlparse

import (
	"strings"

	"github.com/dreamware/shardcursor/internal/sqlerr"
)

// Parse lexes and structurally parses one SQL statement. Exactly one
// statement is permitted; a trailing semicolon followed only by
// whitespace is tolerated, but two statements separated by ';' is a
// parse error, mirroring the original implementation's refusal to
// accept a batch in a single prepare/execute call.
func Parse(sql string) (*Statement, error) {
	toks := Lex(sql)
	stmts := splitStatements(toks)
	if len(stmts) == 0 {
		return nil, sqlerr.Wrap(sqlerr.ErrParseError, "empty statement")
	}
	if len(stmts) > 1 {
		return nil, sqlerr.Wrap(sqlerr.ErrParseError, "only a single statement is supported per prepare")
	}
	body := stmts[0]

	stmt := &Statement{Raw: sql, Tokens: body}
	if len(body) == 0 || body[0].Kind == TokEOF {
		return nil, sqlerr.Wrap(sqlerr.ErrParseError, "empty statement")
	}

	switch body[0].Upper() {
	case "SELECT":
		sel, err := parseSelect(sql, body, stmt)
		if err != nil {
			return nil, err
		}
		stmt.Kind = KindSelect
		stmt.Select = sel
	case "INSERT":
		ins, err := parseInsert(sql, body)
		if err != nil {
			return nil, err
		}
		stmt.Kind = KindInsert
		stmt.Insert = ins
	default:
		stmt.Kind = KindOther
	}
	return stmt, nil
}

// splitStatements breaks a token stream into one slice per top-level
// (paren-depth 0) ';'-separated statement. A trailing empty statement
// (nothing but the final EOF) is dropped so that "SELECT 1;" parses the
// same as "SELECT 1".
func splitStatements(toks []Token) [][]Token {
	var out [][]Token
	var cur []Token
	depth := 0
	for _, t := range toks {
		switch t.Kind {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
		case TokSemicolon:
			if depth == 0 {
				if hasContent(cur) {
					cur = append(cur, Token{Kind: TokEOF})
					out = append(out, cur)
				}
				cur = nil
				continue
			}
		case TokEOF:
			if hasContent(cur) {
				cur = append(cur, t)
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	return out
}

func hasContent(toks []Token) bool {
	for _, t := range toks {
		if t.Kind != TokEOF {
			return true
		}
	}
	return false
}

func raw(sql string, toks []Token) string {
	if len(toks) == 0 {
		return ""
	}
	first, last := toks[0], toks[len(toks)-1]
	for last.Kind == TokEOF && len(toks) > 1 {
		toks = toks[:len(toks)-1]
		last = toks[len(toks)-1]
	}
	if last.Kind == TokEOF {
		return ""
	}
	return strings.TrimSpace(sql[first.Start:last.End])
}

// splitTopLevel splits toks on TokComma at paren depth 0.
func splitTopLevel(toks []Token) [][]Token {
	var out [][]Token
	var cur []Token
	depth := 0
	for _, t := range toks {
		switch t.Kind {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
		case TokComma:
			if depth == 0 {
				out = append(out, cur)
				cur = nil
				continue
			}
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// findKeyword returns the index within toks of the first occurrence (at
// paren depth 0, starting from "from") of an upper-cased keyword, or -1.
func findKeyword(toks []Token, from int, kw string) int {
	depth := 0
	for i := from; i < len(toks); i++ {
		switch toks[i].Kind {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
		}
		if depth == 0 && toks[i].Kind == TokIdent && toks[i].Upper() == kw {
			return i
		}
	}
	return -1
}

func parseSelect(sql string, toks []Token, stmt *Statement) (*SelectStmt, error) {
	fromIdx := findKeyword(toks, 1, "FROM")
	if fromIdx < 0 {
		return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "SELECT without FROM is not supported")
	}
	projToks := toks[1:fromIdx]
	if len(projToks) == 0 {
		return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "empty projection list")
	}

	var proj []ProjectionItem
	for _, item := range splitTopLevel(projToks) {
		proj = append(proj, parseProjectionItem(sql, item))
	}

	sel := &SelectStmt{Projection: proj}

	if obIdx := findOrderBy(toks, fromIdx); obIdx >= 0 {
		identIdx := obIdx + 2
		if identIdx >= len(toks) || toks[identIdx].Kind != TokIdent {
			return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "ORDER BY requires a single column identifier")
		}
		term := &OrderTerm{Ident: toks[identIdx].Text, Asc: true}
		if identIdx+1 < len(toks) && toks[identIdx+1].Kind == TokIdent {
			switch toks[identIdx+1].Upper() {
			case "DESC":
				term.Asc = false
			case "ASC":
				term.Asc = true
			}
		}
		sel.OrderBy = term
	}

	if limIdx := findKeyword(toks, fromIdx, "LIMIT"); limIdx >= 0 {
		if limIdx+1 >= len(toks) || toks[limIdx+1].Kind != TokNumber {
			return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "LIMIT requires a numeric literal")
		}
		n, err := parseUint(toks[limIdx+1].Text)
		if err != nil {
			return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "malformed LIMIT value")
		}
		sel.Limit = &n
		lt := toks[limIdx]
		stmt.limitTok = &lt

		if offIdx := limIdx + 2; offIdx < len(toks) && toks[offIdx].Kind == TokIdent && toks[offIdx].Upper() == "OFFSET" {
			if offIdx+1 >= len(toks) || toks[offIdx+1].Kind != TokNumber {
				return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "OFFSET requires a numeric literal")
			}
			n, err := parseUint(toks[offIdx+1].Text)
			if err != nil {
				return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedQueryShape, "malformed OFFSET value")
			}
			sel.Offset = &n
		}
	}

	return sel, nil
}

// findOrderBy returns the index of the "ORDER" token of an "ORDER BY"
// pair at paren depth 0, searching from start, or -1.
func findOrderBy(toks []Token, start int) int {
	depth := 0
	for i := start; i < len(toks)-1; i++ {
		switch toks[i].Kind {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
		}
		if depth == 0 && toks[i].Kind == TokIdent && toks[i].Upper() == "ORDER" &&
			toks[i+1].Kind == TokIdent && toks[i+1].Upper() == "BY" {
			return i
		}
	}
	return -1
}

func parseProjectionItem(sql string, item []Token) ProjectionItem {
	if len(item) == 1 && item[0].Kind == TokIdent {
		return ProjectionItem{Ident: item[0].Text, IsIdent: true}
	}
	if len(item) >= 3 && item[0].Kind == TokIdent && item[1].Kind == TokLParen && item[len(item)-1].Kind == TokRParen {
		args := item[2 : len(item)-1]
		fc := &FuncCall{Name: item[0].Text}
		for _, a := range splitTopLevel(args) {
			fc.Args = append(fc.Args, parseFuncArg(sql, a))
		}
		return ProjectionItem{Func: fc}
	}
	return ProjectionItem{Other: raw(sql, item)}
}

func parseFuncArg(sql string, a []Token) FuncArg {
	if len(a) == 1 && a[0].Kind == TokAsterisk {
		return FuncArg{Wildcard: true}
	}
	if len(a) == 1 && a[0].Kind == TokIdent {
		return FuncArg{Ident: a[0].Text, IsIdent: true}
	}
	return FuncArg{Raw: raw(sql, a)}
}

func parseInsert(sql string, toks []Token) (*InsertStmt, error) {
	if len(toks) < 4 || toks[1].Upper() != "INTO" {
		return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedInsertShape, "expected INSERT INTO")
	}
	if toks[2].Kind != TokIdent {
		return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedInsertShape, "expected table name")
	}
	table := toks[2].Text

	if toks[3].Kind != TokLParen {
		return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedInsertShape, "expected column list")
	}
	closeIdx := matchParen(toks, 3)
	if closeIdx < 0 {
		return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedInsertShape, "unterminated column list")
	}
	var cols []string
	for _, c := range splitTopLevel(toks[4:closeIdx]) {
		if len(c) != 1 || c[0].Kind != TokIdent {
			return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedInsertShape, "column list must be bare identifiers")
		}
		cols = append(cols, c[0].Text)
	}

	valIdx := closeIdx + 1
	if valIdx >= len(toks) || toks[valIdx].Upper() != "VALUES" {
		return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedInsertShape, "expected VALUES")
	}

	var rows [][]InsertExpr
	i := valIdx + 1
	for i < len(toks) && toks[i].Kind == TokLParen {
		end := matchParen(toks, i)
		if end < 0 {
			return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedInsertShape, "unterminated VALUES tuple")
		}
		var row []InsertExpr
		for _, e := range splitTopLevel(toks[i+1 : end]) {
			row = append(row, parseInsertExpr(sql, e))
		}
		if len(row) != len(cols) {
			return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedInsertShape, "VALUES tuple arity does not match column list")
		}
		rows = append(rows, row)
		i = end + 1
		if i < len(toks) && toks[i].Kind == TokComma {
			i++
			continue
		}
		break
	}
	if len(rows) == 0 {
		return nil, sqlerr.Wrap(sqlerr.ErrUnsupportedInsertShape, "VALUES has no tuples")
	}

	return &InsertStmt{Table: table, Columns: cols, Rows: rows}, nil
}

func parseInsertExpr(sql string, e []Token) InsertExpr {
	if len(e) == 1 && e[0].Kind == TokIdent && strings.HasPrefix(e[0].Text, "?") {
		return InsertExpr{Placeholder: e[0].Text[1:], IsPlaceholder: true}
	}
	if len(e) == 1 && e[0].Kind == TokNumber {
		return InsertExpr{Number: e[0].Text, IsNumber: true}
	}
	return InsertExpr{Raw: raw(sql, e)}
}

// matchParen returns the index of the TokRParen matching the TokLParen
// at index open, or -1.
func matchParen(toks []Token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Kind {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseUint(s string) (uint64, error) {
	var n uint64
	if s == "" {
		return 0, sqlerr.ErrParseError
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, sqlerr.ErrParseError
		}
		n = n*10 + uint64(s[i]-'0')
	}
	return n, nil
}
