package nginx

import "strings"

// TokenKind classifies a lexer token.
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenOpenBrace
	TokenCloseBrace
	TokenSemicolon
	TokenComment
)

func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenOpenBrace:
		return "'{'"
	case TokenCloseBrace:
		return "'}'"
	case TokenSemicolon:
		return "';'"
	case TokenComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Token is a single scanned token. Line is 1-based and refers to the line
// the token starts on.
type Token struct {
	Kind  TokenKind
	Value string
	Line  int
}

// Tokenize scans nginx configuration text into a flat token stream. It never
// fails: malformed input degrades to best-effort tokens. An unterminated
// quote consumes the remainder of the input as the token value.
func Tokenize(input string) []Token {
	var tokens []Token
	line := 1
	i := 0

	for i < len(input) {
		ch := input[i]
		switch {
		case ch == '\n':
			line++
			i++
		case ch == ' ' || ch == '\t' || ch == '\r':
			i++
		case ch == '#':
			start := i + 1
			for i < len(input) && input[i] != '\n' {
				i++
			}
			tokens = append(tokens, Token{Kind: TokenComment, Value: strings.TrimSpace(input[start:i]), Line: line})
		case ch == '{':
			tokens = append(tokens, Token{Kind: TokenOpenBrace, Value: "{", Line: line})
			i++
		case ch == '}':
			tokens = append(tokens, Token{Kind: TokenCloseBrace, Value: "}", Line: line})
			i++
		case ch == ';':
			tokens = append(tokens, Token{Kind: TokenSemicolon, Value: ";", Line: line})
			i++
		case ch == '"' || ch == '\'':
			quote := ch
			startLine := line
			i++
			var b strings.Builder
			for i < len(input) {
				c := input[i]
				if c == '\\' && i+1 < len(input) && (input[i+1] == '"' || input[i+1] == '\'') {
					// Escaped quote stays literal and does not terminate.
					b.WriteByte(c)
					b.WriteByte(input[i+1])
					i += 2
					continue
				}
				if c == quote {
					i++
					break
				}
				if c == '\n' {
					line++
				}
				b.WriteByte(c)
				i++
			}
			tokens = append(tokens, Token{Kind: TokenWord, Value: b.String(), Line: startLine})
		default:
			start := i
			for i < len(input) && !isWordDelimiter(input[i]) {
				i++
			}
			tokens = append(tokens, Token{Kind: TokenWord, Value: input[start:i], Line: line})
		}
	}

	return tokens
}

func isWordDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', ';', '{', '}':
		return true
	}
	return false
}
