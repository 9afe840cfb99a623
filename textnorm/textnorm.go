// Package textnorm prepares card text for the math renderer.
//
// Normalize rewrites Unicode superscript and subscript glyphs into
// bracketed TeX groups ("x₁²" → "x_{1}^{2}"), and CheckMath flags inline
// math spans that do not use the backtick-escaped "$`...`$" delimiters the
// renderer expects. Neither function fails: CheckMath only reports.
package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/katalvlaran/cardbook/diag"
)

// Class is the script class of a rune.
type Class uint8

const (
	None  Class = iota // ordinary character
	Super              // superscript glyph, rendered as ^{...}
	Sub                // subscript glyph, rendered as _{...}
)

type glyph struct {
	class Class
	plain rune
}

// glyphs maps each recognised script glyph to its class and plain form.
var glyphs = map[rune]glyph{
	'⁰': {Super, '0'}, '¹': {Super, '1'}, '²': {Super, '2'}, '³': {Super, '3'}, '⁴': {Super, '4'},
	'⁵': {Super, '5'}, '⁶': {Super, '6'}, '⁷': {Super, '7'}, '⁸': {Super, '8'}, '⁹': {Super, '9'},
	'⁻': {Super, '-'}, '⁺': {Super, '+'}, '⁼': {Super, '='},
	'ⁱ': {Super, 'i'}, 'ʲ': {Super, 'j'}, 'ⁿ': {Super, 'n'}, 'ʳ': {Super, 'r'},

	'₀': {Sub, '0'}, '₁': {Sub, '1'}, '₂': {Sub, '2'}, '₃': {Sub, '3'}, '₄': {Sub, '4'},
	'₅': {Sub, '5'}, '₆': {Sub, '6'}, '₇': {Sub, '7'}, '₈': {Sub, '8'}, '₉': {Sub, '9'},
	'₋': {Sub, '-'}, '₊': {Sub, '+'}, '₌': {Sub, '='},
	'ᵢ': {Sub, 'i'}, 'ⱼ': {Sub, 'j'}, 'ₖ': {Sub, 'k'}, 'ₙ': {Sub, 'n'}, 'ₘ': {Sub, 'm'},
	'ₚ': {Sub, 'p'}, 'ᵣ': {Sub, 'r'}, 'ₛ': {Sub, 's'}, 'ₐ': {Sub, 'a'},
}

// Classify returns the class of r and the character it stands for.
// Unrecognised runes are None and map to themselves.
func Classify(r rune) (Class, rune) {
	if g, ok := glyphs[r]; ok {
		return g.class, g.plain
	}

	return None, r
}

// Normalize rewrites every maximal run of superscript or subscript glyphs
// as ^{...} or _{...}. A group closes exactly when the class changes,
// and an open group is closed at the end of s. Text without script glyphs
// is returned unchanged.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	last := None
	for _, r := range s {
		class, plain := Classify(r)
		if class != last {
			if last != None {
				sb.WriteByte('}')
			}
			switch class {
			case Super:
				sb.WriteString("^{")
			case Sub:
				sb.WriteString("_{")
			}
			last = class
		}
		sb.WriteRune(plain)
	}
	if last != None {
		sb.WriteByte('}')
	}

	return sb.String()
}

// Escape is the character that must open and close every inline math span.
const Escape = '`'

// mathSpan matches a $-delimited span, lazily and across newlines.
var mathSpan = regexp.MustCompile(`(?s)\$(.*?)\$`)

// CheckMath reports every inline math span in s whose content does not both
// start and end with Escape. id names the entry in the diagnostics; positions
// are 1-based line/column (in runes) of the opening '$'.
func CheckMath(id, s string) diag.List {
	var out diag.List
	var pos *positioner
	for _, m := range mathSpan.FindAllStringSubmatchIndex(s, -1) {
		body := s[m[2]:m[3]]
		if wellFormed(body) {
			continue
		}
		if pos == nil {
			pos = newPositioner(s)
		}
		line, col := pos.at(m[0])
		out.Add(diag.Diagnostic{
			Kind:     diag.KindMathSyntax,
			Severity: diag.Warning,
			Entry:    id,
			Line:     line,
			Col:      col,
			Message:  "Looks like non-gitlab math syntax: " + quote(body),
		})
	}

	return out
}

// Clean normalizes s and then checks the normalized text for math syntax,
// returning both the text to render and the findings.
func Clean(id, s string) (string, diag.List) {
	text := Normalize(s)
	return text, CheckMath(id, text)
}

func wellFormed(body string) bool {
	if body == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(body)
	last, _ := utf8.DecodeLastRuneInString(body)

	return first == Escape && last == Escape
}

// quote renders body in single quotes, as authors see it in the source.
func quote(body string) string {
	return "'" + strings.ReplaceAll(body, "\n", `\n`) + "'"
}

// positioner converts byte offsets into 1-based line/column pairs.
type positioner struct {
	src        string
	lineStarts []int // byte offset of the first character of each line
}

func newPositioner(s string) *positioner {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return &positioner{src: s, lineStarts: starts}
}

func (p *positioner) at(offset int) (line, col int) {
	// 1. Last line start not after offset
	lo, hi := 0, len(p.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if p.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	// 2. Column counts runes, not bytes
	col = utf8.RuneCountInString(p.src[p.lineStarts[lo]:offset]) + 1

	return lo + 1, col
}
