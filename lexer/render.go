package lexer

import (
	"strings"

	"github.com/pontaoski/sponge/types"
)

// Lexeme is the source spelling of a token.
func Lexeme(t types.Token) string {
	if t.Kind == types.STRING {
		return `"` + t.Lit + `"`
	}
	return t.Lit
}

// Render joins tokens back into source text, one space between tokens and
// a newline after every ; { and }.
func Render(toks []types.Token) string {
	var b strings.Builder

	for i, t := range toks {
		b.WriteString(Lexeme(t))

		switch t.Kind {
		case types.EOS, types.LBRACKET, types.RBRACKET:
			b.WriteByte('\n')
		default:
			if i+1 < len(toks) {
				b.WriteByte(' ')
			}
		}
	}

	return b.String()
}
