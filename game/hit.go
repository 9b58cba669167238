package game

import (
	"fmt"
	"strings"
)

// HitKind is the ring a bed belongs to.
type HitKind int

const (
	Normal HitKind = iota
	Double
	Treble
)

func (k HitKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Double:
		return "double"
	case Treble:
		return "treble"
	}
	return fmt.Sprintf("HitKind(%d)", int(k))
}

// ParseHitKind accepts the lowercase kind names used in board files.
func ParseHitKind(s string) (HitKind, error) {
	switch strings.ToLower(s) {
	case "normal":
		return Normal, nil
	case "double":
		return Double, nil
	case "treble", "triple":
		return Treble, nil
	}
	return Normal, fmt.Errorf("unknown hit kind %q", s)
}

func (k HitKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *HitKind) UnmarshalText(b []byte) error {
	v, err := ParseHitKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// HitData is what landing in a bed does to the score. Delta is added to
// the remaining score, so it is normally negative.
type HitData struct {
	Kind  HitKind
	Delta int
}

// Miss is the outcome of landing outside every bed.
var Miss = HitData{Kind: Normal, Delta: 0}

// Less orders by kind, then by delta.
func (h HitData) Less(o HitData) bool {
	if h.Kind != o.Kind {
		return h.Kind < o.Kind
	}
	return h.Delta < o.Delta
}

func (h HitData) String() string {
	switch {
	case h == Miss:
		return "miss"
	case h.Kind == Double:
		return fmt.Sprintf("D%d", -h.Delta/2)
	case h.Kind == Treble:
		return fmt.Sprintf("T%d", -h.Delta/3)
	}
	return fmt.Sprintf("%d", -h.Delta)
}
