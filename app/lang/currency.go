package lang

import (
	"context"
	"math/big"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Currency is an amount of money in an ISO 4217 currency.
type Currency struct {
	DataLocation
	Value Number
	ISO   string
}

// NewCurrency returns a currency datum.
func NewCurrency(loc DataLocation, v Number, iso string) *Currency {
	return &Currency{DataLocation: loc, Value: v, ISO: iso}
}

func (c *Currency) Type() string                       { return TypeCurrency }
func (c *Currency) Subtype() string                    { return c.ISO }
func (c *Currency) ConflictResolutionPriority() int    { return 20 }
func (c *Currency) WithLocation(loc DataLocation) Data { cp := *c; cp.DataLocation = loc; return &cp }
func (c *Currency) NumericValueInCurrentUnit() Number  { return c.Value }
func (c *Currency) NumericValueInStandardUnit() Number { return c.Value }

func (c *Currency) CreateFromCurrentUnit(v Number) NumericData {
	return NewCurrency(c.DataLocation, v, c.ISO)
}

func (c *Currency) CreateFromStandardUnit(v Number) NumericData {
	return NewCurrency(c.DataLocation, v, c.ISO)
}

// DisplayText shows integral amounts without decimals and others with two.
func (c *Currency) DisplayText(culture string) string {
	return FormatNumberFixed(c.Value, culture, 2) + " " + c.ISO
}

func (c *Currency) Equal(other Data) bool {
	o, ok := other.(*Currency)
	return ok && sameSpan(c, o) && c.ISO == o.ISO && c.Value.Equal(o.Value)
}

// Add and Subtract expect other to be in the same currency already; the
// operation service converts it beforehand.
func (c *Currency) Add(other NumericData) (NumericData, error) {
	if err := c.checkSameCurrency(other); err != nil {
		return nil, err
	}
	return c.CreateFromCurrentUnit(c.Value.Add(other.NumericValueInCurrentUnit())), nil
}

func (c *Currency) Subtract(other NumericData) (NumericData, error) {
	if err := c.checkSameCurrency(other); err != nil {
		return nil, err
	}
	return c.CreateFromCurrentUnit(c.Value.Sub(other.NumericValueInCurrentUnit())), nil
}

func (c *Currency) Multiply(other NumericData) (NumericData, error) {
	return multiplyCurrent(c, other)
}

func (c *Currency) Divide(other NumericData) (NumericData, error) {
	return divideCurrent(c, other)
}

func (c *Currency) checkSameCurrency(other NumericData) error {
	if o, ok := other.(*Currency); ok && o.ISO != c.ISO {
		return newDataOperationError(ErrCannotConvert, o.ISO, c.ISO)
	}
	return nil
}

// RateProvider supplies currency rates relative to USD (units of the
// currency per US dollar). Implementations never fail; they return the best
// table they have.
type RateProvider interface {
	LoadLatestRates(ctx context.Context) map[string]*big.Rat
}

// StaticRates is a fixed rate table.
type StaticRates map[string]*big.Rat

// LoadLatestRates returns the table itself.
func (s StaticRates) LoadLatestRates(context.Context) map[string]*big.Rat {
	return s
}

// ConvertCurrency converts an amount from one currency to another using
// rates relative to USD.
func ConvertCurrency(v Number, from, to string, rates map[string]*big.Rat) (Number, error) {
	if from == to {
		return v, nil
	}
	rf, ok1 := rates[from]
	rt, ok2 := rates[to]
	if !ok1 || !ok2 || rf == nil || rt == nil || rf.Sign() == 0 {
		return Number{}, newDataOperationError(ErrCannotConvert, from, to)
	}
	return v.Quo(NewNumber(rf)).Mul(NewNumber(rt)), nil
}

// ISO codes recognized as currency units. Codes that collide with common
// words or units (ALL, CUP) are left out.
var currencyCodes = []string{
	"AED", "ARS", "AUD", "BGN", "BRL", "CAD", "CHF", "CLP", "CNY", "COP",
	"CZK", "DKK", "EGP", "EUR", "GBP", "HKD", "HUF", "IDR", "ILS", "INR",
	"ISK", "JPY", "KRW", "MAD", "MXN", "MYR", "NGN", "NOK", "NZD", "PEN",
	"PHP", "PKR", "PLN", "RON", "RUB", "SAR", "SEK", "SGD", "THB", "TRY",
	"TWD", "UAH", "USD", "VND", "XAF", "XOF", "ZAR",
}

// Currency symbols written before or after an amount.
var currencySymbols = map[string]string{
	"$":   "USD",
	"US$": "USD",
	"C$":  "CAD",
	"CA$": "CAD",
	"A$":  "AUD",
	"NZ$": "NZD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"₹":   "INR",
	"₩":   "KRW",
	"₽":   "RUB",
	"₺":   "TRY",
	"₪":   "ILS",
	"₫":   "VND",
	"R$":  "BRL",
	"zł":  "PLN",
	"Fr.": "CHF",
}

// Currency names written after an amount, matched ignoring case.
var currencyNames = map[string]string{
	"dollar":            "USD",
	"dollars":           "USD",
	"us dollar":         "USD",
	"us dollars":        "USD",
	"canadian dollar":   "CAD",
	"canadian dollars":  "CAD",
	"dollar canadien":   "CAD",
	"dollars canadiens": "CAD",
	"australian dollar": "AUD",
	"euro":              "EUR",
	"euros":             "EUR",
	"yen":               "JPY",
	"yens":              "JPY",
	"yuan":              "CNY",
	"rupee":             "INR",
	"rupees":            "INR",
	"roupie":            "INR",
	"roupies":           "INR",
	"franc suisse":      "CHF",
	"francs suisses":    "CHF",
	"swiss franc":       "CHF",
	"swiss francs":      "CHF",
	"peso":              "MXN",
	"pesos":             "MXN",
	"ruble":             "RUB",
	"rubles":            "RUB",
	"rouble":            "RUB",
	"roubles":           "RUB",
	"sterling":          "GBP",
	"pound sterling":    "GBP",
	"livre sterling":    "GBP",
	"livres sterling":   "GBP",
	"won":               "KRW",
}

// currencyForm is one spelling of a currency.
type currencyForm struct {
	text       string
	ignoreCase bool
	iso        string
}

var (
	currencyPrefixForms []currencyForm // symbols that may precede an amount
	currencySuffixForms []currencyForm // codes, symbols and names after an amount
)

func init() {
	for _, code := range currencyCodes {
		currencySuffixForms = append(currencySuffixForms, currencyForm{text: code, iso: code})
		currencyPrefixForms = append(currencyPrefixForms, currencyForm{text: code, iso: code})
	}
	for sym, iso := range currencySymbols {
		currencySuffixForms = append(currencySuffixForms, currencyForm{text: sym, iso: iso})
		currencyPrefixForms = append(currencyPrefixForms, currencyForm{text: sym, iso: iso})
	}
	for name, iso := range currencyNames {
		currencySuffixForms = append(currencySuffixForms, currencyForm{text: name, ignoreCase: true, iso: iso})
	}
	sortCurrencyForms(currencyPrefixForms)
	sortCurrencyForms(currencySuffixForms)
}

func sortCurrencyForms(forms []currencyForm) {
	sort.Slice(forms, func(i, j int) bool {
		if len(forms[i].text) != len(forms[j].text) {
			return len(forms[i].text) > len(forms[j].text)
		}
		return forms[i].text < forms[j].text
	})
}

func matchCurrencyForm(text string, pos int, forms []currencyForm, boundary func(string, int) bool) (string, int, bool) {
	for _, f := range forms {
		end := pos + len(f.text)
		if end > len(text) {
			continue
		}
		s := text[pos:end]
		if f.ignoreCase {
			if !strings.EqualFold(s, f.text) {
				continue
			}
		} else if s != f.text {
			continue
		}
		if !boundary(text, end) {
			continue
		}
		return f.iso, end, true
	}
	return "", 0, false
}

// MatchCurrency finds a currency code, symbol or name at text[pos:].
func MatchCurrency(text string, pos int) (string, int, bool) {
	return matchCurrencyForm(text, pos, currencySuffixForms, endsOnWordBoundary)
}

// matchCurrencyPrefix finds a currency code or symbol written before an
// amount; digits may follow it directly.
func matchCurrencyPrefix(text string, pos int) (string, int, bool) {
	return matchCurrencyForm(text, pos, currencyPrefixForms, func(text string, end int) bool {
		if end >= len(text) {
			return true
		}
		r, _ := utf8.DecodeRuneInString(text[end:])
		return !unicode.IsLetter(r)
	})
}

// IsCurrencyCode reports whether code is a recognized ISO code.
func IsCurrencyCode(code string) bool {
	i := sort.SearchStrings(currencyCodes, code)
	return i < len(currencyCodes) && currencyCodes[i] == code
}
