package pattern

// Shape templates. A template of length n holds n symbols packed like a
// Window, with the leftmost symbol in the lowest bits.

const (
	sE = uint32(Empty)
	sX = uint32(Self)
)

type template struct {
	bits   uint32
	length int
	score  int
	name   string
}

func (t template) mask() uint32 {
	return 1<<(2*t.length) - 1
}

// XXXXX
const tplFive = sX | sX<<2 | sX<<4 | sX<<6 | sX<<8

// _XXXX_
const tplOpenFour = sE | sX<<2 | sX<<4 | sX<<6 | sX<<8 | sE<<10

// XXXX_ and _XXXX
const (
	tplFourOpenRight = sX | sX<<2 | sX<<4 | sX<<6 | sE<<8
	tplFourOpenLeft  = sE | sX<<2 | sX<<4 | sX<<6 | sX<<8
)

// _XXX_
const tplOpenThree = sE | sX<<2 | sX<<4 | sX<<6 | sE<<8

// X_XX and XX_X
const (
	tplSplitFourA = sX | sE<<2 | sX<<4 | sX<<6
	tplSplitFourB = sX | sX<<2 | sE<<4 | sX<<6
)

// _XX_X_ and _X_XX_
const (
	tplSplitThreeA = sE | sX<<2 | sX<<4 | sE<<6 | sX<<8 | sE<<10
	tplSplitThreeB = sE | sX<<2 | sE<<4 | sX<<6 | sX<<8 | sE<<10
)

// __XXX__
const tplWideThree = sE | sE<<2 | sX<<4 | sX<<6 | sX<<8 | sE<<10 | sE<<12

// __XXX and XXX__
const (
	tplClosedThreeLeft  = sE | sE<<2 | sX<<4 | sX<<6 | sX<<8
	tplClosedThreeRight = sX | sX<<2 | sX<<4 | sE<<6 | sE<<8
)

// X_X_X
const tplGapThree = sX | sE<<2 | sX<<4 | sE<<6 | sX<<8

// _XX__ and __XX_
const (
	tplOpenTwoLeft  = sE | sX<<2 | sX<<4 | sE<<6 | sE<<8
	tplOpenTwoRight = sE | sE<<2 | sX<<4 | sX<<6 | sE<<8
)

const (
	ScoreFive        = 1000000
	ScoreOpenFour    = 100000
	ScoreClosedFour  = 60000
	ScoreOpenThree   = 15000
	ScoreSplitFour   = 8000
	ScoreSplitThree  = 7000
	ScoreClosedThree = 5000
	ScoreGapThree    = 4000
	ScoreOpenTwo     = 1200
)

// scoreTable is ordered by descending score; the first template found in a
// window decides the window's score.
var scoreTable = []template{
	{tplFive, 5, ScoreFive, "XXXXX"},
	{tplOpenFour, 6, ScoreOpenFour, "_XXXX_"},
	{tplFourOpenRight, 5, ScoreClosedFour, "XXXX_"},
	{tplFourOpenLeft, 5, ScoreClosedFour, "_XXXX"},
	{tplOpenThree, 5, ScoreOpenThree, "_XXX_"},
	{tplSplitFourA, 4, ScoreSplitFour, "X_XX"},
	{tplSplitFourB, 4, ScoreSplitFour, "XX_X"},
	{tplSplitThreeA, 6, ScoreSplitThree, "_XX_X_"},
	{tplSplitThreeB, 6, ScoreSplitThree, "_X_XX_"},
	{tplClosedThreeLeft, 5, ScoreClosedThree, "__XXX"},
	{tplClosedThreeRight, 5, ScoreClosedThree, "XXX__"},
	{tplGapThree, 5, ScoreGapThree, "X_X_X"},
	{tplOpenTwoLeft, 5, ScoreOpenTwo, "_XX__"},
	{tplOpenTwoRight, 5, ScoreOpenTwo, "__XX_"},
}

// openThreeTemplates are the shapes that count as an open three.
var openThreeTemplates = []template{
	{tplOpenThree, 5, 0, "_XXX_"},
	{tplSplitThreeA, 6, 0, "_XX_X_"},
	{tplSplitThreeB, 6, 0, "_X_XX_"},
	{tplWideThree, 7, 0, "__XXX__"},
}

// contains reports whether t occurs anywhere in w.
func (w Window) contains(t template) bool {
	m := t.mask()
	for shift := 0; shift+t.length <= WindowSize; shift++ {
		if (uint32(w)>>(2*shift))&m == t.bits {
			return true
		}
	}
	return false
}
