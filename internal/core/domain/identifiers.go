package domain

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// queryIdentifiers is the outcome of walking a parsed statement:
// candidate column identifiers, the relations named in FROM/JOIN
// clauses, and the names declared as aliases (select-list AS clauses,
// table aliases, CTE names). All sets are stored lowercased; the parser
// already folds unquoted identifiers.
type queryIdentifiers struct {
	columns   map[string]struct{}
	relations map[string]struct{}
	aliases   map[string]struct{}
}

// extractIdentifiers walks the parse tree and collects every column
// reference used anywhere in the statement: select list, WHERE,
// GROUP BY, HAVING, ORDER BY, function arguments, CASE arms, window
// clauses and subqueries. Qualified references contribute only their
// column part; alias declarations are recorded separately so the schema
// matcher does not report them as missing columns.
func extractIdentifiers(tree *pg_query.ParseResult) queryIdentifiers {
	c := &collector{
		ids: queryIdentifiers{
			columns:   make(map[string]struct{}),
			relations: make(map[string]struct{}),
			aliases:   make(map[string]struct{}),
		},
	}
	for _, raw := range tree.Stmts {
		c.walk(raw.Stmt)
	}
	return c.ids
}

type collector struct {
	ids queryIdentifiers
}

func (c *collector) walk(node *pg_query.Node) {
	if node == nil {
		return
	}

	switch n := node.Node.(type) {
	case *pg_query.Node_SelectStmt:
		c.walkSelect(n.SelectStmt)
	case *pg_query.Node_ResTarget:
		// The AS alias (Name) is a declaration, not a reference.
		if n.ResTarget.Name != "" {
			c.addAlias(n.ResTarget.Name)
		}
		c.walk(n.ResTarget.Val)
	case *pg_query.Node_ColumnRef:
		c.addColumnRef(n.ColumnRef)
	case *pg_query.Node_FuncCall:
		// Funcname is deliberately skipped; arguments are not.
		c.walkList(n.FuncCall.Args)
		c.walkList(n.FuncCall.AggOrder)
		c.walk(n.FuncCall.AggFilter)
		if n.FuncCall.Over != nil {
			c.walkWindowDef(n.FuncCall.Over)
		}
	case *pg_query.Node_AExpr:
		c.walk(n.AExpr.Lexpr)
		c.walk(n.AExpr.Rexpr)
	case *pg_query.Node_BoolExpr:
		c.walkList(n.BoolExpr.Args)
	case *pg_query.Node_NullTest:
		c.walk(n.NullTest.Arg)
	case *pg_query.Node_BooleanTest:
		c.walk(n.BooleanTest.Arg)
	case *pg_query.Node_CaseExpr:
		c.walk(n.CaseExpr.Arg)
		c.walkList(n.CaseExpr.Args)
		c.walk(n.CaseExpr.Defresult)
	case *pg_query.Node_CaseWhen:
		c.walk(n.CaseWhen.Expr)
		c.walk(n.CaseWhen.Result)
	case *pg_query.Node_CoalesceExpr:
		c.walkList(n.CoalesceExpr.Args)
	case *pg_query.Node_MinMaxExpr:
		c.walkList(n.MinMaxExpr.Args)
	case *pg_query.Node_TypeCast:
		c.walk(n.TypeCast.Arg)
	case *pg_query.Node_SubLink:
		c.walk(n.SubLink.Testexpr)
		c.walk(n.SubLink.Subselect)
	case *pg_query.Node_SortBy:
		c.walk(n.SortBy.Node)
	case *pg_query.Node_GroupingSet:
		c.walkList(n.GroupingSet.Content)
	case *pg_query.Node_WindowDef:
		c.walkWindowDef(n.WindowDef)
	case *pg_query.Node_RangeVar:
		c.addRangeVar(n.RangeVar)
	case *pg_query.Node_JoinExpr:
		c.walk(n.JoinExpr.Larg)
		c.walk(n.JoinExpr.Rarg)
		c.walk(n.JoinExpr.Quals)
	case *pg_query.Node_RangeSubselect:
		if n.RangeSubselect.Alias != nil {
			c.addAlias(n.RangeSubselect.Alias.Aliasname)
		}
		c.walk(n.RangeSubselect.Subquery)
	case *pg_query.Node_CommonTableExpr:
		c.addAlias(n.CommonTableExpr.Ctename)
		c.walk(n.CommonTableExpr.Ctequery)
	case *pg_query.Node_AIndirection:
		c.walk(n.AIndirection.Arg)
	case *pg_query.Node_AArrayExpr:
		c.walkList(n.AArrayExpr.Elements)
	case *pg_query.Node_RowExpr:
		c.walkList(n.RowExpr.Args)
	case *pg_query.Node_List:
		c.walkList(n.List.Items)
	case *pg_query.Node_AConst:
		// Literal; contributes nothing.
	default:
		// Other node kinds carry no column references we track.
	}
}

func (c *collector) walkList(nodes []*pg_query.Node) {
	for _, n := range nodes {
		c.walk(n)
	}
}

func (c *collector) walkSelect(sel *pg_query.SelectStmt) {
	if sel == nil {
		return
	}

	// CTE names register before the FROM clause is visited so a
	// reference to a CTE is not reported as an unknown relation.
	if sel.WithClause != nil {
		c.walkList(sel.WithClause.Ctes)
	}

	c.walkList(sel.DistinctClause)
	c.walkList(sel.TargetList)
	c.walkList(sel.FromClause)
	c.walk(sel.WhereClause)
	c.walkList(sel.GroupClause)
	c.walk(sel.HavingClause)
	c.walkList(sel.WindowClause)
	c.walkList(sel.SortClause)
	c.walk(sel.LimitOffset)
	c.walk(sel.LimitCount)
	c.walkList(sel.ValuesLists)

	// UNION/INTERSECT/EXCEPT arms.
	c.walkSelect(sel.Larg)
	c.walkSelect(sel.Rarg)
}

func (c *collector) walkWindowDef(w *pg_query.WindowDef) {
	c.walkList(w.PartitionClause)
	c.walkList(w.OrderClause)
	c.walk(w.StartOffset)
	c.walk(w.EndOffset)
}

// addColumnRef records the real name of a column reference: the last
// field of a possibly qualified name (t.col contributes "col"). A bare
// star contributes nothing.
func (c *collector) addColumnRef(ref *pg_query.ColumnRef) {
	if len(ref.Fields) == 0 {
		return
	}
	last := ref.Fields[len(ref.Fields)-1]
	str, ok := last.Node.(*pg_query.Node_String_)
	if !ok || str.String_ == nil || str.String_.Sval == "" {
		return
	}
	c.ids.columns[strings.ToLower(str.String_.Sval)] = struct{}{}
}

func (c *collector) addRangeVar(rv *pg_query.RangeVar) {
	name := strings.ToLower(rv.Relname)
	if _, isAlias := c.ids.aliases[name]; !isAlias {
		c.ids.relations[name] = struct{}{}
	}
	if rv.Alias != nil {
		c.addAlias(rv.Alias.Aliasname)
	}
}

func (c *collector) addAlias(name string) {
	if name != "" {
		c.ids.aliases[strings.ToLower(name)] = struct{}{}
	}
}
