package lang

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys of DataOperationError.
const (
	ErrIncompatibleUnits     = "Incompatible units"
	ErrUnsupportedArithmetic = "Unsupported arithmetic operation"
	ErrCannotConvert         = "Cannot convert %s to %s"
	ErrConditionNotBoolean   = "The condition must be true or false"
)

// DataOperationError is a recoverable domain failure such as adding a length
// to a duration. The interpreter turns it into the line's error result.
type DataOperationError struct {
	Key  string
	Args []any
}

func newDataOperationError(key string, args ...any) *DataOperationError {
	return &DataOperationError{Key: key, Args: args}
}

func (e *DataOperationError) Error() string {
	if len(e.Args) == 0 {
		return e.Key
	}
	return fmt.Sprintf(e.Key, e.Args...)
}

// LocalizedMessage renders the error for a culture.
func (e *DataOperationError) LocalizedMessage(culture string) string {
	p := message.NewPrinter(cultureTag(culture), message.Catalog(messages))
	return p.Sprintf(e.Key, e.Args...)
}

var messages = newMessageCatalog()

func newMessageCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	set := func(key, en, fr string) {
		_ = b.SetString(supportedTags[0], key, en)
		_ = b.SetString(supportedTags[1], key, fr)
	}
	set(ErrIncompatibleUnits, "Incompatible units", "Unités incompatibles")
	set(ErrUnsupportedArithmetic, "Unsupported arithmetic operation", "Opération arithmétique non prise en charge")
	set(ErrCannotConvert, "Cannot convert %s to %s", "Impossible de convertir %s en %s")
	set(ErrConditionNotBoolean, "The condition must be true or false", "La condition doit être vraie ou fausse")
	return b
}
