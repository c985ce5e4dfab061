package lang

import (
	"sort"
	"sync"
	"time"
)

// registration is one entry of the registry: a unit, the cultures it
// applies to and its position among units of the same kind.
type registration[T any] struct {
	name     string
	cultures []string
	order    int
	operand  bool
	unit     T
}

// Registry holds the parsers, interpreters and grammars available per
// culture. Lookups return units sorted by registration order.
type Registry struct {
	mu          sync.RWMutex
	dataParsers []registration[DataParser]
	statements  []registration[StatementParserAndInterpreter]
	expressions []registration[ExpressionParserAndInterpreter]
	grammars    []registration[GrammarProvider]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

func insert[T any](list []registration[T], r registration[T]) []registration[T] {
	if len(r.cultures) == 0 {
		r.cultures = []string{CultureAny}
	}
	for i, c := range r.cultures {
		if c != CultureAny {
			r.cultures[i] = MatchCulture(c)
		}
	}
	list = append(list, r)
	sort.SliceStable(list, func(i, j int) bool { return list[i].order < list[j].order })
	return list
}

// RegisterDataParser adds a data parser.
func (r *Registry) RegisterDataParser(p DataParser, order int, cultures ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dataParsers = insert(r.dataParsers, registration[DataParser]{name: p.Name(), cultures: cultures, order: order, unit: p})
}

// RegisterStatement adds a statement unit.
func (r *Registry) RegisterStatement(u StatementParserAndInterpreter, order int, cultures ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = insert(r.statements, registration[StatementParserAndInterpreter]{name: u.Name(), cultures: cultures, order: order, unit: u})
}

// RegisterExpression adds an expression unit that parses whole expressions.
func (r *Registry) RegisterExpression(u ExpressionParserAndInterpreter, order int, cultures ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expressions = insert(r.expressions, registration[ExpressionParserAndInterpreter]{name: u.Name(), cultures: cultures, order: order, unit: u})
}

// RegisterOperand adds an expression unit that parses a single operand.
func (r *Registry) RegisterOperand(u ExpressionParserAndInterpreter, order int, cultures ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expressions = insert(r.expressions, registration[ExpressionParserAndInterpreter]{name: u.Name(), cultures: cultures, order: order, operand: true, unit: u})
}

// RegisterGrammar adds a grammar provider.
func (r *Registry) RegisterGrammar(g GrammarProvider, cultures ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grammars = insert(r.grammars, registration[GrammarProvider]{name: g.Name(), cultures: cultures, unit: g})
}

func lookup[T any](list []registration[T], culture string, keep func(registration[T]) bool) []T {
	culture = MatchCulture(culture)
	var out []T
	for _, e := range list {
		if cultureMatches(e.cultures, culture) && (keep == nil || keep(e)) {
			out = append(out, e.unit)
		}
	}
	return out
}

func byName[T any](names []string) func(registration[T]) bool {
	if len(names) == 0 {
		return nil
	}
	return func(e registration[T]) bool { return containsName(names, e.name) }
}

// DataParsers returns the data parsers applying to culture.
func (r *Registry) DataParsers(culture string) []DataParser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.dataParsers, culture, nil)
}

// Statements returns the statement units for culture, restricted to names
// when given.
func (r *Registry) Statements(culture string, names ...string) []StatementParserAndInterpreter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.statements, culture, byName[StatementParserAndInterpreter](names))
}

// Expressions returns the expression and operand units for culture,
// restricted to names when given.
func (r *Registry) Expressions(culture string, names ...string) []ExpressionParserAndInterpreter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.expressions, culture, byName[ExpressionParserAndInterpreter](names))
}

// Operands returns the operand units for culture.
func (r *Registry) Operands(culture string) []ExpressionParserAndInterpreter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.expressions, culture, func(e registration[ExpressionParserAndInterpreter]) bool { return e.operand })
}

// Grammars returns the grammar providers for culture.
func (r *Registry) Grammars(culture string) []GrammarProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.grammars, culture, nil)
}

// DefaultRegistry returns the registry with every built-in unit. now is the
// clock used by date parsing; nil means time.Now.
func DefaultRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	r := NewRegistry()

	r.RegisterGrammar(englishGrammar, cultureEnUS)
	r.RegisterGrammar(frenchGrammar, cultureFrFR)

	r.RegisterDataParser(decimalParser{}, 0)
	r.RegisterDataParser(percentageParser{}, 10)
	r.RegisterDataParser(currencyParser{}, 20)
	for i, dim := range []string{
		TypeLength, TypeArea, TypeVolume, TypeMass, TypeSpeed,
		TypeAngle, TypeTemperature, TypeInformation, TypeDuration,
	} {
		r.RegisterDataParser(quantityParser{dimension: dim}, 30+i)
	}
	r.RegisterDataParser(dateTimeParser{now: now}, 50)
	r.RegisterDataParser(newFractionParser(), 60)
	r.RegisterDataParser(booleanParser{}, 70)

	r.RegisterStatement(commentStatementParser{}, 0)
	r.RegisterStatement(headerStatementParser{}, 10)
	r.RegisterStatement(conditionStatementParser{}, 20)
	r.RegisterStatement(variableDeclarationStatementParser{}, 30)
	r.RegisterStatement(numericalCalculusStatementParser{}, 40)

	r.RegisterExpression(binaryExpressionParser{}, 0)
	r.RegisterOperand(newFunctionExpressionParser(), 10)
	r.RegisterOperand(groupExpressionParser{}, 20)
	r.RegisterOperand(variableExpressionParser{}, 30)
	r.RegisterOperand(dataExpressionParser{}, 40)
	return r
}
