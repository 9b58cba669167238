package board

import "errors"

// ErrCannotLoadBoard wraps every failure to read or parse a board.
var ErrCannotLoadBoard = errors.New("cannot load board")
