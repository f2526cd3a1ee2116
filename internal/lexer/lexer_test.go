package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(src string) []TokenType {
	l := New(src, "<test>")
	var out []TokenType
	for {
		tok := l.NextToken()
		out = append(out, tok.Type)
		if tok.Type == TokenEOF {
			return out
		}
	}
}

func TestDollarPrefixedNamesLexAsSingleIdentifiers(t *testing.T) {
	l := New("$main $exit $test_foo $init", "<test>")

	for _, want := range []string{"$main", "$exit", "$test_foo", "$init"} {
		tok := l.NextToken()
		require.Equal(t, TokenIdent, tok.Type)
		assert.Equal(t, want, tok.Literal)
	}
	assert.Equal(t, TokenEOF, l.NextToken().Type)
}

func TestKeywordsAreNotClassifiedAsIdentifiers(t *testing.T) {
	types := tokenTypes("class def echo for in try var")
	assert.Equal(t, []TokenType{
		TokenClass, TokenDef, TokenEcho, TokenFor, TokenIn, TokenTry, TokenVar, TokenEOF,
	}, types)
}

func TestStringInterpolationStillSplitsOnDollarBrace(t *testing.T) {
	l := New(`"a${b}c"`, "<test>")

	frag1 := l.NextToken()
	require.Equal(t, TokenStringFrag, frag1.Type)
	assert.Equal(t, "a", frag1.Literal)

	begin := l.NextToken()
	require.Equal(t, TokenInterpBegin, begin.Type)

	ident := l.NextToken()
	require.Equal(t, TokenIdent, ident.Type)
	assert.Equal(t, "b", ident.Literal)

	frag2 := l.NextToken()
	require.Equal(t, TokenStringFrag, frag2.Type)
	assert.Equal(t, "c", frag2.Literal)
}

func TestColonColonIsDistinctFromColon(t *testing.T) {
	types := tokenTypes("a::b : c")
	assert.Equal(t, []TokenType{
		TokenIdent, TokenColonColon, TokenIdent, TokenColon, TokenIdent, TokenEOF,
	}, types)
}
