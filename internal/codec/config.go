package codec

import "fmt"

// Default characters, matching the import pipeline's CSV defaults.
const (
	DefaultDelimiter              = ','
	DefaultEnclosure              = '"'
	DefaultEscape                 = '\\'
	DefaultMultipleValueDelimiter = '|'
	DefaultMultipleFieldDelimiter = ','
	DefaultCategoryDelimiter      = '/'
	DefaultEntityTypeCode         = "catalog_product"

	// pairSeparator separates attribute code from value inside one pair.
	pairSeparator = '='
)

// DelimiterSet holds the characters used by the ValueCodec.
type DelimiterSet struct {
	Delimiter rune // Field delimiter
	Enclosure rune // Quote character, doubled inside enclosed fields
	Escape    rune // Reserved; only forces enclosure when present in a field
}

// DefaultDelimiters returns the standard `,` `"` `\` set.
func DefaultDelimiters() DelimiterSet {
	return DelimiterSet{
		Delimiter: DefaultDelimiter,
		Enclosure: DefaultEnclosure,
		Escape:    DefaultEscape,
	}
}

// Validate reports whether the set can be used by a codec.
func (d DelimiterSet) Validate() error {
	switch {
	case d.Delimiter == 0:
		return fmt.Errorf("%w: delimiter", ErrConfigurationMissing)
	case d.Enclosure == 0:
		return fmt.Errorf("%w: enclosure", ErrConfigurationMissing)
	case d.Escape == 0:
		return fmt.Errorf("%w: escape", ErrConfigurationMissing)
	case d.Delimiter == d.Enclosure:
		return fmt.Errorf("%w: delimiter and enclosure are both %q", ErrInvalidDelimiters, d.Delimiter)
	}
	return nil
}

// Configuration is the immutable configuration shared by all codecs built
// for one import job. It is copied into codecs at construction.
type Configuration struct {
	Delimiters             DelimiterSet
	MultipleValueDelimiter rune
	MultipleFieldDelimiter rune
	CategoryDelimiter      rune
	EntityTypeCode         string
}

// DefaultConfiguration returns the configuration used when nothing is overridden.
func DefaultConfiguration() Configuration {
	return Configuration{
		Delimiters:             DefaultDelimiters(),
		MultipleValueDelimiter: DefaultMultipleValueDelimiter,
		MultipleFieldDelimiter: DefaultMultipleFieldDelimiter,
		CategoryDelimiter:      DefaultCategoryDelimiter,
		EntityTypeCode:         DefaultEntityTypeCode,
	}
}

// Validate checks every character the codecs depend on.
func (c Configuration) Validate() error {
	if err := c.Delimiters.Validate(); err != nil {
		return err
	}
	checks := []struct {
		name string
		r    rune
	}{
		{"multiple value delimiter", c.MultipleValueDelimiter},
		{"multiple field delimiter", c.MultipleFieldDelimiter},
		{"category delimiter", c.CategoryDelimiter},
	}
	for _, chk := range checks {
		if chk.r == 0 {
			return fmt.Errorf("%w: %s", ErrConfigurationMissing, chk.name)
		}
		if chk.r == c.Delimiters.Enclosure {
			return fmt.Errorf("%w: %s equals enclosure %q", ErrInvalidDelimiters, chk.name, chk.r)
		}
	}
	if c.Delimiters.Enclosure == pairSeparator {
		return fmt.Errorf("%w: enclosure must not be %q", ErrInvalidDelimiters, pairSeparator)
	}
	if c.EntityTypeCode == "" {
		return fmt.Errorf("%w: entity type code", ErrConfigurationMissing)
	}
	return nil
}
