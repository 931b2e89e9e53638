package scene

import (
	"fmt"

	"checkertrace/vmath/vec3"

	"golang.org/x/xerrors"
)

// Board layout.  Squares are named like chess squares: a letter a-h for the
// row (higher letters are further from the camera) and a digit 1-8 for the
// column.
const (
	BoardEdgeSize  = 320.0
	BoardHalfSize  = BoardEdgeSize / 2
	NumSquares     = 8
	SquareEdgeSize = BoardEdgeSize / NumSquares
)

// BoardPosition is where the board sits in the world.
var BoardPosition = vec3.T{0, 0, -160}

// ParseError reports a malformed square name.
type ParseError struct {
	Square  string
	Message string

	frame xerrors.Frame
}

func newParseError(square, message string) *ParseError {
	return &ParseError{
		Square:  square,
		Message: message,
		frame:   xerrors.Caller(1),
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bad square %q: %s", e.Square, e.Message)
}

func (e *ParseError) Format(f fmt.State, c rune) { // implements fmt.Formatter
	xerrors.FormatError(e, f, c)
}

func (e *ParseError) FormatError(p xerrors.Printer) error { // implements xerrors.Formatter
	p.Print(e.Error())
	if p.Detail() {
		e.frame.Format(p)
	}
	return nil
}

// ParseSquare converts a square name such as "b4" into a point relative to
// BoardPosition.  The point is centered on the square and lifted 1.5 square
// edges above the board.
func ParseSquare(square string) (vec3.T, error) {
	if len(square) != 2 {
		return vec3.T{}, newParseError(square, "want exactly two characters")
	}

	row := int(square[0]) - 'a'
	if row < 0 || row >= NumSquares {
		return vec3.T{}, newParseError(square, "row must be a letter from a to h")
	}

	col := int(square[1]) - '1'
	if col < 0 || col >= NumSquares {
		return vec3.T{}, newParseError(square, "column must be a digit from 1 to 8")
	}

	firstSquare := vec3.T{-BoardHalfSize, 0, BoardHalfSize}
	// Negative because rows further back have higher letters.
	rowOffset := vec3.T{0, 0, -(float64(row) + 0.5) * SquareEdgeSize}
	colOffset := vec3.T{(float64(col) + 0.5) * SquareEdgeSize, 0, 0}
	heightOffset := vec3.T{0, 1.5 * SquareEdgeSize, 0}

	return vec3.AddVV(vec3.AddVV(firstSquare, rowOffset), vec3.AddVV(colOffset, heightOffset)), nil
}
