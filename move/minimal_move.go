package move

// TinyMove packs a move into 16 bits as its cell index plus one, so that
// the zero value means "no move". It is what the transposition table stores.
type TinyMove uint16

func ToTiny(m Move, dim int) TinyMove {
	if m.IsNull() {
		return 0
	}
	return TinyMove(m.Index(dim) + 1)
}

func (t TinyMove) IsNull() bool {
	return t == 0
}

func (t TinyMove) Move(dim int) Move {
	if t == 0 {
		return Null
	}
	return FromIndex(int(t)-1, dim)
}
