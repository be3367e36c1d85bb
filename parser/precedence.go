package parser

import "github.com/deepnoodle-ai/superpipe/internal/token"

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	OR          // ||
	AND         // &&
	EQUALS      // == or !=
	LESSGREATER // > or <
	SHIFT       // >> or <<
	SUM         // + or -
	PRODUCT     // * or / or %
	POWER       // **
	PREFIX      // -X or !X or not X
	CALL        // myFunction(X)
	INDEX       // array[index], obj.attr
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.OR:        OR,
	token.AND:       AND,
	token.EQ:        EQUALS,
	token.NOT_EQ:    EQUALS,
	token.LT:        LESSGREATER,
	token.LT_EQUALS: LESSGREATER,
	token.GT:        LESSGREATER,
	token.GT_EQUALS: LESSGREATER,
	token.GT_GT:     SHIFT,
	token.LT_LT:     SHIFT,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.SLASH:     PRODUCT,
	token.ASTERISK:  PRODUCT,
	token.MOD:       PRODUCT,
	token.POW:       POWER,
	token.LPAREN:    CALL,
	token.PERIOD:    INDEX,
	token.LBRACKET:  INDEX,
}
