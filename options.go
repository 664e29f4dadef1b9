package lexgen

import (
	"fmt"
	"log/slog"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/coregx/lexgen/charclass"
	"github.com/coregx/lexgen/dfa"
	"github.com/coregx/lexgen/diag"
)

// Options controls table generation.
//
// Options can be built from DefaultOptions with the WithX methods, from
// %option words with Apply, or from a YAML document with LoadOptions. The
// implications between options are resolved when the options are used:
//   - Unicode turns character classes on, and the compressed map on unless
//     CompressMap was set explicitly.
//   - Squeeze turns both compressions on and rules out the two-level map.
//   - CaseInsensitive turns character classes on.
//
// Example:
//
//	opts := lexgen.DefaultOptions().WithUnicode(true).WithMinimize(false)
//	res, err := lexgen.Compile(spec, opts)
type Options struct {
	// Unicode selects the full Unicode alphabet over the 8-bit alphabet.
	// Default: false
	Unicode bool `json:"unicode,omitempty"`

	// CharClasses packs the alphabet into equivalence classes.
	// Default: false
	CharClasses bool `json:"charClasses,omitempty"`

	// CompressMap encodes the character map as a decision tree or a
	// two-level table.
	// Default: false (true for Unicode)
	CompressMap bool `json:"compressMap,omitempty"`

	// CompressNext slices next-state rows around their longest run.
	// Default: true
	CompressNext bool `json:"compressNext,omitempty"`

	// Squeeze trades scanning speed for table size.
	// Default: false
	Squeeze bool `json:"squeeze,omitempty"`

	// Minimize merges equivalent DFA states.
	// Default: true
	Minimize bool `json:"minimize,omitempty"`

	// CaseInsensitive makes every pattern ignore case.
	// Default: false
	CaseInsensitive bool `json:"caseInsensitive,omitempty"`

	// Verbose logs every stage at Info level rather than Debug.
	Verbose bool `json:"verbose,omitempty"`

	// Summary asks for the Result summary to be logged.
	Summary bool `json:"summary,omitempty"`

	// MaxErrors is the error count after which compilation is abandoned.
	// Default: 50
	MaxErrors int `json:"maxErrors,omitempty"`

	// MaxStates bounds the number of DFA states.
	// Default: 1,000,000
	MaxStates int `json:"maxStates,omitempty"`

	// Logger receives stage records. Nil discards them.
	Logger *slog.Logger `json:"-"`

	// Metrics records compilation metrics. Nil disables recording.
	Metrics *Metrics `json:"-"`

	compressMapSet bool
	classesSet     bool
	alphabetSet    bool
}

// DefaultOptions returns the defaults: an 8-bit alphabet, compressed
// next-state rows and minimization.
func DefaultOptions() Options {
	return Options{
		CompressNext: true,
		Minimize:     true,
		MaxErrors:    diag.DefaultMaxErrors,
		MaxStates:    dfa.DefaultConfig().MaxStates,
	}
}

// Validate checks the options for consistency.
func (o Options) Validate() error {
	if o.Unicode && o.classesSet && !o.CharClasses {
		return &OptionsError{
			Field:   "CharClasses",
			Message: "character classes cannot be disabled for a Unicode alphabet",
			Code:    diag.CodeOptionInconsistent,
		}
	}
	if o.MaxErrors < 0 {
		return &OptionsError{Field: "MaxErrors", Message: "must be >= 0"}
	}
	if o.MaxStates != 0 && o.MaxStates < 2 {
		return &OptionsError{Field: "MaxStates", Message: "must be 0 or > 1"}
	}
	return nil
}

// WithUnicode returns options with the Unicode alphabet set.
func (o Options) WithUnicode(on bool) Options {
	o.Unicode = on
	return o
}

// WithCharClasses returns options with character classes set explicitly.
func (o Options) WithCharClasses(on bool) Options {
	o.CharClasses = on
	o.classesSet = true
	return o
}

// WithCompressMap returns options with map compression set explicitly.
func (o Options) WithCompressMap(on bool) Options {
	o.CompressMap = on
	o.compressMapSet = true
	return o
}

// WithCompressNext returns options with next-state compression set.
func (o Options) WithCompressNext(on bool) Options {
	o.CompressNext = on
	return o
}

// WithSqueeze returns options with squeeze set.
func (o Options) WithSqueeze(on bool) Options {
	o.Squeeze = on
	return o
}

// WithMinimize returns options with minimization set.
func (o Options) WithMinimize(on bool) Options {
	o.Minimize = on
	return o
}

// WithCaseInsensitive returns options with case folding set.
func (o Options) WithCaseInsensitive(on bool) Options {
	o.CaseInsensitive = on
	return o
}

// WithLogger returns options logging to l.
func (o Options) WithLogger(l *slog.Logger) Options {
	o.Logger = l
	return o
}

// WithMetrics returns options recording to m.
func (o Options) WithMetrics(m *Metrics) Options {
	o.Metrics = m
	return o
}

// WithMaxStates returns options with the DFA state limit set.
func (o Options) WithMaxStates(n int) Options {
	o.MaxStates = n
	return o
}

// Apply sets the option named by a %option word. Words are case
// insensitive and take a "no" prefix to negate. It returns an
// *OptionsError for an unknown word, for "unicode" or "nounicode" after the
// other was applied, and for "noclasses" on a Unicode alphabet.
func (o *Options) Apply(word string) error {
	arg := strings.ToLower(strings.TrimSpace(word))
	on := true
	if rest, ok := strings.CutPrefix(arg, "no"); ok && rest != "" {
		arg, on = rest, false
	}
	switch arg {
	case "unicode":
		if o.alphabetSet && o.Unicode != on {
			return &OptionsError{Field: word, Message: "alphabet already set", Code: diag.CodeUnicodeInconsistent}
		}
		o.alphabetSet = true
		o.Unicode = on
		if on {
			o.CharClasses = true
			if !o.compressMapSet {
				o.CompressMap = true
			}
		}
	case "classes":
		if !on && o.Unicode {
			return &OptionsError{Field: word, Message: "inconsistent with unicode", Code: diag.CodeOptionInconsistent}
		}
		o.CharClasses = on
		o.classesSet = true
	case "compressmap":
		o.CompressMap = on
		o.compressMapSet = true
	case "compressnext":
		o.CompressNext = on
	case "compress":
		o.CompressMap, o.CompressNext = on, on
		o.compressMapSet = true
	case "squeeze":
		o.Squeeze = on
		o.CompressMap, o.CompressNext = on, on
		o.compressMapSet = true
	case "minimize":
		o.Minimize = on
	case "caseinsensitive":
		o.CaseInsensitive = on
	case "verbose":
		o.Verbose = on
	case "summary":
		o.Summary = on
	default:
		return &OptionsError{Field: word, Message: "unrecognized option", Code: diag.CodeUnknownOption}
	}
	return nil
}

// optionsFile is the document read by LoadOptions. Pointer fields tell an
// explicit false from an absent key.
type optionsFile struct {
	Unicode         *bool    `json:"unicode"`
	CharClasses     *bool    `json:"charClasses"`
	CompressMap     *bool    `json:"compressMap"`
	CompressNext    *bool    `json:"compressNext"`
	Squeeze         *bool    `json:"squeeze"`
	Minimize        *bool    `json:"minimize"`
	CaseInsensitive *bool    `json:"caseInsensitive"`
	Verbose         *bool    `json:"verbose"`
	Summary         *bool    `json:"summary"`
	MaxErrors       *int     `json:"maxErrors"`
	MaxStates       *int     `json:"maxStates"`
	Options         []string `json:"options"`
}

// LoadOptions reads options from a YAML or JSON document on top of
// DefaultOptions. Keys are the Options field names in lower camel case; an
// "options" list holds %option words applied after the keys.
//
// Example:
//
//	unicode: true
//	minimize: false
//	options: [squeeze]
func LoadOptions(data []byte) (Options, error) {
	var f optionsFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	o := DefaultOptions()
	set := func(word string, v *bool) error {
		if v == nil {
			return nil
		}
		if !*v {
			word = "no" + word
		}
		return o.Apply(word)
	}
	for _, kv := range []struct {
		word string
		v    *bool
	}{
		{"unicode", f.Unicode},
		{"classes", f.CharClasses},
		{"compressMap", f.CompressMap},
		{"compressNext", f.CompressNext},
		{"squeeze", f.Squeeze},
		{"minimize", f.Minimize},
		{"caseInsensitive", f.CaseInsensitive},
		{"verbose", f.Verbose},
		{"summary", f.Summary},
	} {
		if err := set(kv.word, kv.v); err != nil {
			return Options{}, err
		}
	}
	if f.MaxErrors != nil {
		o.MaxErrors = *f.MaxErrors
	}
	if f.MaxStates != nil {
		o.MaxStates = *f.MaxStates
	}
	for _, w := range f.Options {
		if err := o.Apply(w); err != nil {
			return Options{}, err
		}
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// normalized resolves the implications between options.
func (o Options) normalized() Options {
	if o.Unicode {
		o.CharClasses = true
		if !o.compressMapSet {
			o.CompressMap = true
		}
	}
	if o.Squeeze {
		o.CompressMap, o.CompressNext = true, true
	}
	if o.CaseInsensitive {
		o.CharClasses = true
	}
	if o.MaxErrors == 0 {
		o.MaxErrors = diag.DefaultMaxErrors
	}
	if o.MaxStates == 0 {
		o.MaxStates = dfa.DefaultConfig().MaxStates
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Cardinality returns the alphabet size the options select.
func (o Options) Cardinality() rune {
	if o.Unicode {
		return charclass.UnicodeCardinality
	}
	return charclass.ASCIICardinality
}
