package lang

import (
	"math/big"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Unit defines a unit of a physical dimension with its conversion to the
// dimension's standard unit: standard = value*ToBase + Offset.
type Unit struct {
	Symbol    string
	Dimension string   // data type name, e.g. TypeLength
	Aliases   []string // matched case-sensitively
	Names     []string // matched ignoring case
	ToBase    *big.Rat
	Offset    *big.Rat // nil unless the scale is shifted (temperature)
}

func ratFromFrac(num, denom int64) *big.Rat {
	return new(big.Rat).SetFrac64(num, denom)
}

func ratFromString(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("lang: bad rational literal " + s)
	}
	return r
}

// ToStandard converts v expressed in u to the standard unit.
func (u *Unit) ToStandard(v Number) Number {
	s := v.Mul(NewNumber(u.ToBase))
	if u.Offset != nil {
		s = s.Add(NewNumber(u.Offset))
	}
	return s
}

// FromStandard converts v expressed in the standard unit to u.
func (u *Unit) FromStandard(v Number) Number {
	if u.Offset != nil {
		v = v.Sub(NewNumber(u.Offset))
	}
	return v.Quo(NewNumber(u.ToBase))
}

var allUnits = []*Unit{
	// Length (standard: meters)
	{Symbol: "mm", Dimension: TypeLength, Aliases: []string{"mm"}, Names: []string{"millimeter", "millimeters", "millimetre", "millimetres", "millimètre", "millimètres"}, ToBase: ratFromFrac(1, 1000)},
	{Symbol: "cm", Dimension: TypeLength, Aliases: []string{"cm"}, Names: []string{"centimeter", "centimeters", "centimetre", "centimetres", "centimètre", "centimètres"}, ToBase: ratFromFrac(1, 100)},
	{Symbol: "m", Dimension: TypeLength, Aliases: []string{"m"}, Names: []string{"meter", "meters", "metre", "metres", "mètre", "mètres"}, ToBase: ratFromFrac(1, 1)},
	{Symbol: "km", Dimension: TypeLength, Aliases: []string{"km"}, Names: []string{"kilometer", "kilometers", "kilometre", "kilometres", "kilomètre", "kilomètres"}, ToBase: ratFromFrac(1000, 1)},
	{Symbol: "in", Dimension: TypeLength, Aliases: []string{"\""}, Names: []string{"inch", "inches", "pouce", "pouces"}, ToBase: ratFromString("0.0254")},
	{Symbol: "ft", Dimension: TypeLength, Aliases: []string{"ft", "'"}, Names: []string{"foot", "feet", "pied", "pieds"}, ToBase: ratFromString("0.3048")},
	{Symbol: "yd", Dimension: TypeLength, Aliases: []string{"yd"}, Names: []string{"yard", "yards"}, ToBase: ratFromString("0.9144")},
	{Symbol: "mi", Dimension: TypeLength, Aliases: []string{"mi"}, Names: []string{"mile", "miles"}, ToBase: ratFromString("1609.344")},
	{Symbol: "nmi", Dimension: TypeLength, Aliases: []string{"nmi"}, Names: []string{"nautical mile", "nautical miles"}, ToBase: ratFromFrac(1852, 1)},

	// Area (standard: square meters)
	{Symbol: "mm²", Dimension: TypeArea, Aliases: []string{"mm²", "mm2"}, Names: []string{"square millimeter", "square millimeters"}, ToBase: ratFromFrac(1, 1000000)},
	{Symbol: "cm²", Dimension: TypeArea, Aliases: []string{"cm²", "cm2"}, Names: []string{"square centimeter", "square centimeters"}, ToBase: ratFromFrac(1, 10000)},
	{Symbol: "m²", Dimension: TypeArea, Aliases: []string{"m²", "m2"}, Names: []string{"square meter", "square meters", "square metre", "square metres", "mètre carré", "mètres carrés"}, ToBase: ratFromFrac(1, 1)},
	{Symbol: "km²", Dimension: TypeArea, Aliases: []string{"km²", "km2"}, Names: []string{"square kilometer", "square kilometers"}, ToBase: ratFromFrac(1000000, 1)},
	{Symbol: "ha", Dimension: TypeArea, Aliases: []string{"ha"}, Names: []string{"hectare", "hectares"}, ToBase: ratFromFrac(10000, 1)},
	{Symbol: "ft²", Dimension: TypeArea, Aliases: []string{"ft²", "ft2", "sq ft"}, Names: []string{"square foot", "square feet"}, ToBase: ratFromString("0.09290304")},
	{Symbol: "in²", Dimension: TypeArea, Aliases: []string{"in²", "in2", "sq in"}, Names: []string{"square inch", "square inches"}, ToBase: ratFromString("0.00064516")},
	{Symbol: "ac", Dimension: TypeArea, Aliases: []string{"ac"}, Names: []string{"acre", "acres"}, ToBase: ratFromString("4046.8564224")},

	// Volume (standard: cubic meters)
	{Symbol: "mL", Dimension: TypeVolume, Aliases: []string{"mL", "ml"}, Names: []string{"milliliter", "milliliters", "millilitre", "millilitres"}, ToBase: ratFromFrac(1, 1000000)},
	{Symbol: "cL", Dimension: TypeVolume, Aliases: []string{"cL", "cl"}, Names: []string{"centiliter", "centiliters", "centilitre", "centilitres"}, ToBase: ratFromFrac(1, 100000)},
	{Symbol: "L", Dimension: TypeVolume, Aliases: []string{"L", "l"}, Names: []string{"liter", "liters", "litre", "litres"}, ToBase: ratFromFrac(1, 1000)},
	{Symbol: "cm³", Dimension: TypeVolume, Aliases: []string{"cm³", "cm3", "cc"}, Names: []string{"cubic centimeter", "cubic centimeters"}, ToBase: ratFromFrac(1, 1000000)},
	{Symbol: "m³", Dimension: TypeVolume, Aliases: []string{"m³", "m3"}, Names: []string{"cubic meter", "cubic meters", "mètre cube", "mètres cubes"}, ToBase: ratFromFrac(1, 1)},
	{Symbol: "floz", Dimension: TypeVolume, Aliases: []string{"floz", "fl oz"}, Names: []string{"fluid ounce", "fluid ounces"}, ToBase: ratFromString("0.0000295735295625")},
	{Symbol: "cup", Dimension: TypeVolume, Aliases: []string{"cup"}, Names: []string{"cups"}, ToBase: ratFromString("0.0002365882365")},
	{Symbol: "pt", Dimension: TypeVolume, Aliases: []string{"pt"}, Names: []string{"pint", "pints"}, ToBase: ratFromString("0.000473176473")},
	{Symbol: "qt", Dimension: TypeVolume, Aliases: []string{"qt"}, Names: []string{"quart", "quarts"}, ToBase: ratFromString("0.000946352946")},
	{Symbol: "gal", Dimension: TypeVolume, Aliases: []string{"gal"}, Names: []string{"gallon", "gallons"}, ToBase: ratFromString("0.003785411784")},

	// Mass (standard: grams)
	{Symbol: "mg", Dimension: TypeMass, Aliases: []string{"mg"}, Names: []string{"milligram", "milligrams", "milligramme", "milligrammes"}, ToBase: ratFromFrac(1, 1000)},
	{Symbol: "g", Dimension: TypeMass, Aliases: []string{"g"}, Names: []string{"gram", "grams", "gramme", "grammes"}, ToBase: ratFromFrac(1, 1)},
	{Symbol: "kg", Dimension: TypeMass, Aliases: []string{"kg"}, Names: []string{"kilogram", "kilograms", "kilogramme", "kilogrammes"}, ToBase: ratFromFrac(1000, 1)},
	{Symbol: "t", Dimension: TypeMass, Aliases: []string{"t"}, Names: []string{"tonne", "tonnes"}, ToBase: ratFromFrac(1000000, 1)},
	{Symbol: "oz", Dimension: TypeMass, Aliases: []string{"oz"}, Names: []string{"ounce", "ounces", "once", "onces"}, ToBase: ratFromString("28.349523125")},
	{Symbol: "lb", Dimension: TypeMass, Aliases: []string{"lb", "lbs"}, Names: []string{"pound", "pounds", "livre", "livres"}, ToBase: ratFromString("453.59237")},

	// Speed (standard: meters per second)
	{Symbol: "m/s", Dimension: TypeSpeed, Aliases: []string{"m/s"}, Names: []string{"meter per second", "meters per second"}, ToBase: ratFromFrac(1, 1)},
	{Symbol: "km/h", Dimension: TypeSpeed, Aliases: []string{"km/h", "kph", "kmh"}, Names: []string{"kilometer per hour", "kilometers per hour"}, ToBase: ratFromFrac(1000, 3600)},
	{Symbol: "mph", Dimension: TypeSpeed, Aliases: []string{"mph", "mi/h"}, Names: []string{"mile per hour", "miles per hour"}, ToBase: ratFromString("0.44704")},
	{Symbol: "kn", Dimension: TypeSpeed, Aliases: []string{"kn", "kt"}, Names: []string{"knot", "knots", "noeud", "noeuds", "nœud", "nœuds"}, ToBase: ratFromFrac(1852, 3600)},

	// Angle (standard: degrees)
	{Symbol: "°", Dimension: TypeAngle, Aliases: []string{"°", "º", "deg"}, Names: []string{"degree", "degrees", "degré", "degrés"}, ToBase: ratFromFrac(1, 1)},
	{Symbol: "rad", Dimension: TypeAngle, Aliases: []string{"rad"}, Names: []string{"radian", "radians"}, ToBase: ratFromString("57.295779513082320876798154814105")},
	{Symbol: "grad", Dimension: TypeAngle, Aliases: []string{"grad", "gon"}, Names: []string{"gradian", "gradians", "grade", "grades"}, ToBase: ratFromFrac(9, 10)},
	{Symbol: "turn", Dimension: TypeAngle, Aliases: []string{"turn"}, Names: []string{"turns", "tour", "tours"}, ToBase: ratFromFrac(360, 1)},

	// Temperature (standard: kelvin)
	{Symbol: "K", Dimension: TypeTemperature, Aliases: []string{"K"}, Names: []string{"kelvin", "kelvins"}, ToBase: ratFromFrac(1, 1)},
	{Symbol: "°C", Dimension: TypeTemperature, Aliases: []string{"°C", "ºC"}, Names: []string{"celsius", "degree celsius", "degrees celsius", "degré celsius", "degrés celsius"}, ToBase: ratFromFrac(1, 1), Offset: ratFromString("273.15")},
	{Symbol: "°F", Dimension: TypeTemperature, Aliases: []string{"°F", "ºF"}, Names: []string{"fahrenheit", "degree fahrenheit", "degrees fahrenheit"}, ToBase: ratFromFrac(5, 9), Offset: ratFromFrac(45967, 180)},

	// Information (standard: bytes)
	{Symbol: "bit", Dimension: TypeInformation, Aliases: []string{"bit", "bits"}, ToBase: ratFromFrac(1, 8)},
	{Symbol: "B", Dimension: TypeInformation, Aliases: []string{"B"}, Names: []string{"byte", "bytes", "octet", "octets"}, ToBase: ratFromFrac(1, 1)},
	{Symbol: "KB", Dimension: TypeInformation, Aliases: []string{"KB", "kB"}, Names: []string{"kilobyte", "kilobytes"}, ToBase: ratFromFrac(1000, 1)},
	{Symbol: "MB", Dimension: TypeInformation, Aliases: []string{"MB"}, Names: []string{"megabyte", "megabytes"}, ToBase: ratFromFrac(1000000, 1)},
	{Symbol: "GB", Dimension: TypeInformation, Aliases: []string{"GB"}, Names: []string{"gigabyte", "gigabytes"}, ToBase: ratFromFrac(1000000000, 1)},
	{Symbol: "TB", Dimension: TypeInformation, Aliases: []string{"TB"}, Names: []string{"terabyte", "terabytes"}, ToBase: ratFromFrac(1000000000000, 1)},
	{Symbol: "KiB", Dimension: TypeInformation, Aliases: []string{"KiB"}, Names: []string{"kibibyte", "kibibytes"}, ToBase: ratFromFrac(1024, 1)},
	{Symbol: "MiB", Dimension: TypeInformation, Aliases: []string{"MiB"}, Names: []string{"mebibyte", "mebibytes"}, ToBase: ratFromFrac(1<<20, 1)},
	{Symbol: "GiB", Dimension: TypeInformation, Aliases: []string{"GiB"}, Names: []string{"gibibyte", "gibibytes"}, ToBase: ratFromFrac(1<<30, 1)},
	{Symbol: "TiB", Dimension: TypeInformation, Aliases: []string{"TiB"}, Names: []string{"tebibyte", "tebibytes"}, ToBase: ratFromFrac(1<<40, 1)},

	// Duration (standard: seconds). "m" is a month, "min" a minute.
	{Symbol: "ms", Dimension: TypeDuration, Aliases: []string{"ms"}, Names: []string{"millisecond", "milliseconds", "milliseconde", "millisecondes"}, ToBase: ratFromFrac(1, 1000)},
	{Symbol: "s", Dimension: TypeDuration, Aliases: []string{"s", "sec"}, Names: []string{"second", "seconds", "seconde", "secondes"}, ToBase: ratFromFrac(1, 1)},
	{Symbol: "min", Dimension: TypeDuration, Aliases: []string{"min", "mins"}, Names: []string{"minute", "minutes"}, ToBase: ratFromFrac(60, 1)},
	{Symbol: "h", Dimension: TypeDuration, Aliases: []string{"h", "hr", "hrs"}, Names: []string{"hour", "hours", "heure", "heures"}, ToBase: ratFromFrac(3600, 1)},
	{Symbol: "d", Dimension: TypeDuration, Aliases: []string{"d"}, Names: []string{"day", "days", "jour", "jours"}, ToBase: ratFromFrac(86400, 1)},
	{Symbol: "wk", Dimension: TypeDuration, Aliases: []string{"wk", "w"}, Names: []string{"week", "weeks", "semaine", "semaines"}, ToBase: ratFromFrac(604800, 1)},
	{Symbol: "mo", Dimension: TypeDuration, Aliases: []string{"mo", "m"}, Names: []string{"month", "months", "mois"}, ToBase: ratFromFrac(30*86400, 1)},
	{Symbol: "yr", Dimension: TypeDuration, Aliases: []string{"yr", "y"}, Names: []string{"year", "years", "an", "ans", "année", "années"}, ToBase: ratFromFrac(365*86400, 1)},
}

// unitForm is one spelling of a unit.
type unitForm struct {
	text       string
	ignoreCase bool
	unit       *Unit
}

var (
	unitsBySymbol    map[string]*Unit
	unitsByDimension map[string][]unitForm // longest spelling first
	allUnitForms     []unitForm
)

func init() {
	unitsBySymbol = make(map[string]*Unit, len(allUnits))
	unitsByDimension = make(map[string][]unitForm)
	for _, u := range allUnits {
		unitsBySymbol[u.Dimension+"|"+u.Symbol] = u
		for _, a := range u.Aliases {
			unitsByDimension[u.Dimension] = append(unitsByDimension[u.Dimension], unitForm{text: a, unit: u})
		}
		for _, n := range u.Names {
			unitsByDimension[u.Dimension] = append(unitsByDimension[u.Dimension], unitForm{text: n, ignoreCase: true, unit: u})
		}
	}
	for d, forms := range unitsByDimension {
		sortUnitForms(forms)
		unitsByDimension[d] = forms
		allUnitForms = append(allUnitForms, forms...)
	}
	sortUnitForms(allUnitForms)
}

func sortUnitForms(forms []unitForm) {
	sort.SliceStable(forms, func(i, j int) bool {
		if len(forms[i].text) != len(forms[j].text) {
			return len(forms[i].text) > len(forms[j].text)
		}
		if forms[i].ignoreCase != forms[j].ignoreCase {
			return !forms[i].ignoreCase
		}
		if forms[i].text != forms[j].text {
			return forms[i].text < forms[j].text
		}
		return forms[i].unit.Dimension < forms[j].unit.Dimension
	})
}

// LookupUnit returns the unit of a dimension by symbol.
func LookupUnit(dimension, symbol string) *Unit {
	return unitsBySymbol[dimension+"|"+symbol]
}

// matchUnitForm reports whether text at pos starts with form and the match
// does not stop in the middle of a word.
func matchUnitForm(text string, pos int, f unitForm) (int, bool) {
	end := pos + len(f.text)
	if end > len(text) {
		return 0, false
	}
	s := text[pos:end]
	if f.ignoreCase {
		if !strings.EqualFold(s, f.text) {
			return 0, false
		}
	} else if s != f.text {
		return 0, false
	}
	if !endsOnWordBoundary(text, end) {
		return 0, false
	}
	return end, true
}

// endsOnWordBoundary reports whether the rune at end, if any, starts neither
// a letter nor a digit.
func endsOnWordBoundary(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// MatchUnit finds the longest unit spelling of dimension at text[pos:].
// An empty dimension searches every dimension.
func MatchUnit(text string, pos int, dimension string) (*Unit, int, bool) {
	forms := allUnitForms
	if dimension != "" {
		forms = unitsByDimension[dimension]
	}
	for _, f := range forms {
		if end, ok := matchUnitForm(text, pos, f); ok {
			return f.unit, end, true
		}
	}
	return nil, 0, false
}

// MatchUnits returns every distinct unit any dimension spells at text[pos:],
// keeping the longest spelling per dimension.
func MatchUnits(text string, pos int) []unitMatch {
	var out []unitMatch
	seen := map[string]bool{}
	for _, f := range allUnitForms {
		if seen[f.unit.Dimension] {
			continue
		}
		if end, ok := matchUnitForm(text, pos, f); ok {
			seen[f.unit.Dimension] = true
			out = append(out, unitMatch{unit: f.unit, end: end})
		}
	}
	return out
}

type unitMatch struct {
	unit *Unit
	end  int
}

// derivedUnit returns the unit named by symbol in dimension, or the
// dimension's standard unit.
func derivedUnit(dimension, symbol string) *Unit {
	if u := LookupUnit(dimension, symbol); u != nil {
		return u
	}
	return LookupUnit(dimension, standardSymbols[dimension])
}

var standardSymbols = map[string]string{
	TypeLength:      "m",
	TypeArea:        "m²",
	TypeVolume:      "m³",
	TypeMass:        "g",
	TypeSpeed:       "m/s",
	TypeAngle:       "°",
	TypeTemperature: "K",
	TypeInformation: "B",
	TypeDuration:    "s",
}
