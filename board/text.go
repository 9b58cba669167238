package board

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
)

// tokenizer reads whitespace-separated fields.
type tokenizer struct {
	sc  *bufio.Scanner
	pos int
}

func newTokenizer(r io.Reader) *tokenizer {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &tokenizer{sc: sc}
}

func (t *tokenizer) next(what string) (string, error) {
	if !t.sc.Scan() {
		if err := t.sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("unexpected end of input reading %s (token %d)", what, t.pos)
	}
	t.pos++
	return t.sc.Text(), nil
}

func (t *tokenizer) int(what string) (int, error) {
	s, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return v, nil
}

func (t *tokenizer) float(what string) (float64, error) {
	s, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return v, nil
}

// ParseText reads the plain board format:
//
//	<bed count>
//	then per bed: <score> <vertex count> <color> <kind> <x> <y> ...
//
// where kind is normal, double or treble. Tokens may be split across
// lines in any way.
func ParseText(r io.Reader) (Definition, error) {
	t := newTokenizer(r)
	n, err := t.int("bed count")
	if err != nil {
		return Definition{}, fmt.Errorf("%w: %w", ErrCannotLoadBoard, err)
	}
	if n < 0 {
		return Definition{}, fmt.Errorf("%w: negative bed count %d", ErrCannotLoadBoard, n)
	}
	// counts come from the file, so beds and vertices are appended as they
	// are read rather than allocated up front
	var def Definition
	for i := range n {
		bed, err := parseTextBed(t)
		if err != nil {
			return Definition{}, fmt.Errorf("%w: bed %d: %w", ErrCannotLoadBoard, i, err)
		}
		def.Beds = append(def.Beds, bed)
	}
	return def, nil
}

func parseTextBed(t *tokenizer) (BedSpec, error) {
	var bed BedSpec
	var err error
	if bed.Score, err = t.int("score"); err != nil {
		return bed, err
	}
	count, err := t.int("vertex count")
	if err != nil {
		return bed, err
	}
	if count < 0 {
		return bed, fmt.Errorf("negative vertex count %d", count)
	}
	if bed.Color, err = t.next("color"); err != nil {
		return bed, err
	}
	kind, err := t.next("kind")
	if err != nil {
		return bed, err
	}
	if bed.Kind, err = game.ParseHitKind(kind); err != nil {
		return bed, err
	}
	for range count {
		var v geometry.Vec2
		if v.X, err = t.float("x"); err != nil {
			return bed, err
		}
		if v.Y, err = t.float("y"); err != nil {
			return bed, err
		}
		bed.Vertices = append(bed.Vertices, v)
	}
	return bed, nil
}

// WriteText writes def in the format ParseText reads.
func WriteText(w io.Writer, def Definition) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, len(def.Beds))
	for _, b := range def.Beds {
		color := b.Color
		if color == "" {
			color = "none"
		}
		fmt.Fprintln(bw, b.Score)
		fmt.Fprintln(bw, len(b.Vertices))
		fmt.Fprintln(bw, color)
		fmt.Fprintln(bw, b.Kind)
		for _, v := range b.Vertices {
			fmt.Fprintf(bw, "%s %s\n",
				strconv.FormatFloat(v.X, 'g', -1, 64), strconv.FormatFloat(v.Y, 'g', -1, 64))
		}
	}
	return bw.Flush()
}
