// Package sqlparse implements the SQL parser adapter and rewriter for
// shardcursor's custom dialect: a restricted SELECT/INSERT grammar whose
// identifier character class includes '?', so that positional
// placeholders (?1, ?2, …) tokenize as identifiers for downstream
// inspection by internal/router.
//
// # Overview
//
// This is not a general-purpose SQL parser. It understands exactly the
// statement shapes the coordinator needs to route and rewrite:
//
//	SELECT <projection> FROM <anything> [ORDER BY <ident> [ASC|DESC]]
//	       [LIMIT <n> [OFFSET <n>]]
//	INSERT INTO <table> (<cols>) VALUES (<exprs>) [, (<exprs>) ...]
//	<anything else>  -- passed through opaquely as "Other"
//
// WHERE clauses, joins, and every other SQL construct are treated as
// opaque text: this layer never evaluates predicates, it only locates
// clause boundaries (SELECT projection list, ORDER BY term, LIMIT/OFFSET)
// by scanning tokens at parenthesis depth 0.
//
// # Architecture
//
//	┌────────┐    ┌────────┐    ┌──────────────┐    ┌────────────┐
//	│  Lex   │ ─▶ │ Parse  │ ─▶ │ BuildPlan/    │ ─▶ │  Rewrite   │
//	│ (lexer)│    │ (ast)  │    │ Router input  │    │ (strip     │
//	│        │    │        │    │               │    │ LIMIT/OFF) │
//	└────────┘    └────────┘    └──────────────┘    └────────────┘
//
// Parse runs once per Prepare and is shared by the QueryPlan extraction
// (this package) and the routing decision (internal/router), exactly as
// the original Parser::parse / Router::get_indexes_with_params pairing
// shared one sqlparser::ast::Statement.
package sqlparse
