package lang

// Grammar is the vocabulary a culture contributes: literal forms per token
// type for the lexer and templates per function for the function parser.
type Grammar struct {
	Tokens    map[TokenType][]string
	Functions map[string][]string // function full name -> templates
}

// GrammarProvider supplies a Grammar.
type GrammarProvider interface {
	Name() string
	Grammar() Grammar
}

type staticGrammar struct {
	name    string
	grammar Grammar
}

func (g staticGrammar) Name() string     { return g.name }
func (g staticGrammar) Grammar() Grammar { return g.grammar }

// Function template placeholders.
const (
	placeholderPercentage = "[percentage]"
	placeholderFraction   = "[fraction]"
	placeholderValue      = "[value]"
)

// Function full names.
const (
	FuncPercentOf        = "percentage.percentOf"
	FuncPercentOff       = "percentage.percentOff"
	FuncPercentOn        = "percentage.percentOn"
	FuncIsWhatPercentOf  = "percentage.isWhatPercentOf"
	FuncIsWhatPercentOn  = "percentage.isWhatPercentOn"
	FuncIsWhatPercentOff = "percentage.isWhatPercentOff"
	FuncIsPercentOfWhat  = "percentage.isPercentOfWhat"
	FuncIsPercentOnWhat  = "percentage.isPercentOnWhat"
	FuncIsPercentOffWhat = "percentage.isPercentOffWhat"
	FuncRandom           = "general.random"
	FuncMidpoint         = "general.midpoint"
	FuncSquareRoot       = "general.squareRoot"
	FuncFractionOf       = "general.fractionOf"
)

var englishGrammar = staticGrammar{
	name: "grammar.en",
	grammar: Grammar{
		Tokens: map[TokenType][]string{
			TokenAddition:             {"+", "plus", "and", "with"},
			TokenSubtraction:          {"-", "−", "minus", "without"},
			TokenMultiply:             {"*", "x", "×", "times", "multiplied by"},
			TokenDivision:             {"/", "÷", "divided by"},
			TokenEquality:             {"==", "equals", "is equal to", "equal to"},
			TokenNoEquality:           {"!=", "<>", "is not equal to", "not equal to", "is not"},
			TokenLessThan:             {"<", "is less than", "less than", "is below", "below", "is lower than", "lower than"},
			TokenLessThanOrEqualTo:    {"<=", "≤", "is less than or equal to", "less than or equal to", "is below or equal to", "below or equal to"},
			TokenGreaterThan:          {">", "is greater than", "greater than", "is above", "above", "is more than", "more than", "is higher than", "higher than"},
			TokenGreaterThanOrEqualTo: {">=", "≥", "is greater than or equal to", "greater than or equal to", "is above or equal to", "above or equal to"},
			TokenAssignment:           {"="},
			TokenIf:                   {"if"},
			TokenThen:                 {"then"},
			TokenElse:                 {"else", "otherwise"},
			TokenComment:              {"//"},
			TokenHeader:               {"#"},
			TokenConversion:           {"to", "in", "as", "into"},
		},
		Functions: map[string][]string{
			FuncPercentOf:        {"[percentage] of [value]"},
			FuncPercentOff:       {"[percentage] off [value]", "[percentage] off of [value]"},
			FuncPercentOn:        {"[percentage] on [value]", "[percentage] on top of [value]"},
			FuncIsWhatPercentOf:  {"[value] is what % of [value]", "[value] is what percent of [value]", "[value] as a % of [value]", "[value] as a percent of [value]"},
			FuncIsWhatPercentOn:  {"[value] is what % on [value]", "[value] is what percent on [value]", "[value] as a % on [value]"},
			FuncIsWhatPercentOff: {"[value] is what % off [value]", "[value] is what percent off [value]", "[value] as a % off [value]"},
			FuncIsPercentOfWhat:  {"[value] is [percentage] of what"},
			FuncIsPercentOnWhat:  {"[value] is [percentage] on what"},
			FuncIsPercentOffWhat: {"[value] is [percentage] off what"},
			FuncRandom:           {"random between [value] and [value]", "random number between [value] and [value]"},
			FuncMidpoint:         {"midpoint between [value] and [value]", "middle of [value] and [value]"},
			FuncSquareRoot:       {"square root of [value]", "sqrt [value]", "√ [value]"},
			FuncFractionOf:       {"[fraction] of [value]"},
		},
	},
}

var frenchGrammar = staticGrammar{
	name: "grammar.fr",
	grammar: Grammar{
		Tokens: map[TokenType][]string{
			TokenAddition:             {"+", "plus", "et", "avec"},
			TokenSubtraction:          {"-", "−", "moins", "sans"},
			TokenMultiply:             {"*", "x", "×", "fois", "multiplié par"},
			TokenDivision:             {"/", "÷", "divisé par"},
			TokenEquality:             {"==", "égal à", "est égal à", "égale"},
			TokenNoEquality:           {"!=", "<>", "n'est pas égal à", "différent de", "est différent de"},
			TokenLessThan:             {"<", "inférieur à", "est inférieur à", "plus petit que", "est plus petit que"},
			TokenLessThanOrEqualTo:    {"<=", "≤", "inférieur ou égal à", "est inférieur ou égal à"},
			TokenGreaterThan:          {">", "supérieur à", "est supérieur à", "plus grand que", "est plus grand que"},
			TokenGreaterThanOrEqualTo: {">=", "≥", "supérieur ou égal à", "est supérieur ou égal à"},
			TokenAssignment:           {"="},
			TokenIf:                   {"si"},
			TokenThen:                 {"alors"},
			TokenElse:                 {"sinon"},
			TokenComment:              {"//"},
			TokenHeader:               {"#"},
			TokenConversion:           {"en", "vers"},
		},
		Functions: map[string][]string{
			FuncPercentOf:        {"[percentage] de [value]"},
			FuncPercentOff:       {"[value] moins [percentage]", "[percentage] de remise sur [value]"},
			FuncPercentOn:        {"[value] plus [percentage]", "[percentage] en plus de [value]"},
			FuncIsWhatPercentOf:  {"[value] représente quel % de [value]", "[value] est quel pourcentage de [value]"},
			FuncIsWhatPercentOn:  {"[value] est quel % en plus de [value]"},
			FuncIsWhatPercentOff: {"[value] est quel % en moins de [value]"},
			FuncIsPercentOfWhat:  {"[value] est [percentage] de quoi"},
			FuncIsPercentOnWhat:  {"[value] est [percentage] en plus de quoi"},
			FuncIsPercentOffWhat: {"[value] est [percentage] en moins de quoi"},
			FuncRandom:           {"aléatoire entre [value] et [value]", "nombre aléatoire entre [value] et [value]"},
			FuncMidpoint:         {"milieu entre [value] et [value]", "point médian entre [value] et [value]"},
			FuncSquareRoot:       {"racine carrée de [value]", "√ [value]"},
			FuncFractionOf:       {"[fraction] de [value]"},
		},
	},
}
