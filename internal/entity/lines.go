package entity

// WinningLine is three cells that end the game when one player owns all of them.
type WinningLine [3]Coord

// floors hold y fixed.
var floors = []WinningLine{
	{{2, 0, 0}, {2, 0, 1}, {2, 0, 2}},
	{{1, 0, 0}, {1, 0, 1}, {1, 0, 2}},
	{{0, 0, 0}, {0, 0, 1}, {0, 0, 2}},
	{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
	{{0, 0, 1}, {1, 0, 1}, {2, 0, 1}},
	{{0, 0, 2}, {1, 0, 2}, {2, 0, 2}},
	{{2, 0, 0}, {1, 0, 1}, {0, 0, 2}},
	{{0, 0, 0}, {1, 0, 1}, {2, 0, 2}},
	{{2, 1, 0}, {2, 1, 1}, {2, 1, 2}},
	{{1, 1, 0}, {1, 1, 1}, {1, 1, 2}},
	{{0, 1, 0}, {0, 1, 1}, {0, 1, 2}},
	{{0, 1, 0}, {1, 1, 0}, {2, 1, 0}},
	{{0, 1, 1}, {1, 1, 1}, {2, 1, 1}},
	{{0, 1, 2}, {1, 1, 2}, {2, 1, 2}},
	{{2, 1, 0}, {1, 1, 1}, {0, 1, 2}},
	{{0, 1, 0}, {1, 1, 1}, {2, 1, 2}},
	{{2, 2, 0}, {2, 2, 1}, {2, 2, 2}},
	{{1, 2, 0}, {1, 2, 1}, {1, 2, 2}},
	{{0, 2, 0}, {0, 2, 1}, {0, 2, 2}},
	{{0, 2, 0}, {1, 2, 0}, {2, 2, 0}},
	{{0, 2, 1}, {1, 2, 1}, {2, 2, 1}},
	{{0, 2, 2}, {1, 2, 2}, {2, 2, 2}},
	{{2, 2, 0}, {1, 2, 1}, {0, 2, 2}},
	{{0, 2, 0}, {1, 2, 1}, {2, 2, 2}},
}

// fronts hold x fixed.
var fronts = []WinningLine{
	{{2, 0, 0}, {2, 0, 1}, {2, 0, 2}},
	{{2, 1, 0}, {2, 1, 1}, {2, 1, 2}},
	{{2, 2, 0}, {2, 2, 1}, {2, 2, 2}},
	{{2, 0, 0}, {2, 1, 0}, {2, 2, 0}},
	{{2, 0, 1}, {2, 1, 1}, {2, 2, 1}},
	{{2, 0, 2}, {2, 1, 2}, {2, 2, 2}},
	{{2, 0, 0}, {2, 1, 1}, {2, 2, 2}},
	{{2, 2, 0}, {2, 1, 1}, {2, 0, 2}},
	{{1, 0, 0}, {1, 0, 1}, {1, 0, 2}},
	{{1, 1, 0}, {1, 1, 1}, {1, 1, 2}},
	{{1, 2, 0}, {1, 2, 1}, {1, 2, 2}},
	{{1, 0, 0}, {1, 1, 0}, {1, 2, 0}},
	{{1, 0, 1}, {1, 1, 1}, {1, 2, 1}},
	{{1, 0, 2}, {1, 1, 2}, {1, 2, 2}},
	{{1, 2, 2}, {1, 1, 1}, {1, 0, 0}},
	{{1, 2, 0}, {1, 1, 1}, {1, 0, 2}},
	{{0, 0, 0}, {0, 0, 1}, {0, 0, 2}},
	{{0, 1, 2}, {0, 1, 1}, {0, 1, 0}},
	{{0, 2, 0}, {0, 2, 1}, {0, 2, 2}},
	{{0, 0, 2}, {0, 1, 2}, {0, 2, 2}},
	{{0, 2, 1}, {0, 1, 1}, {0, 0, 1}},
	{{0, 0, 0}, {0, 1, 0}, {0, 2, 0}},
	{{0, 0, 2}, {0, 1, 1}, {0, 2, 0}},
	{{0, 2, 2}, {0, 1, 1}, {0, 0, 0}},
}

// sides hold z fixed.
var sides = []WinningLine{
	{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
	{{0, 1, 0}, {1, 1, 0}, {2, 1, 0}},
	{{0, 2, 0}, {1, 2, 0}, {2, 2, 0}},
	{{2, 2, 0}, {2, 1, 0}, {2, 0, 0}},
	{{1, 0, 0}, {1, 1, 0}, {1, 2, 0}},
	{{0, 2, 0}, {0, 1, 0}, {0, 0, 0}},
	{{0, 2, 0}, {1, 1, 0}, {2, 0, 0}},
	{{2, 2, 0}, {1, 1, 0}, {0, 0, 0}},
	{{0, 0, 1}, {1, 0, 1}, {2, 0, 1}},
	{{0, 1, 1}, {1, 1, 1}, {2, 1, 1}},
	{{0, 2, 1}, {1, 2, 1}, {2, 2, 1}},
	{{2, 0, 1}, {2, 1, 1}, {2, 2, 1}},
	{{1, 0, 1}, {1, 1, 1}, {1, 2, 1}},
	{{0, 2, 1}, {0, 1, 1}, {0, 0, 1}},
	{{0, 2, 1}, {1, 1, 1}, {2, 0, 1}},
	{{2, 2, 1}, {1, 1, 1}, {0, 0, 1}},
	{{0, 0, 2}, {1, 0, 2}, {2, 0, 2}},
	{{2, 1, 2}, {1, 1, 2}, {0, 1, 2}},
	{{0, 2, 2}, {1, 2, 2}, {2, 2, 2}},
	{{2, 0, 2}, {2, 1, 2}, {2, 2, 2}},
	{{1, 2, 2}, {1, 1, 2}, {1, 0, 2}},
	{{0, 0, 2}, {0, 1, 2}, {0, 2, 2}},
	{{0, 2, 2}, {1, 1, 2}, {2, 0, 2}},
	{{2, 2, 2}, {1, 1, 2}, {0, 0, 2}},
}

// spaceDiagonals run corner to corner through the center.
var spaceDiagonals = []WinningLine{
	{{2, 0, 2}, {1, 1, 1}, {0, 2, 0}},
	{{2, 2, 2}, {1, 1, 1}, {0, 0, 0}},
	{{0, 0, 2}, {1, 1, 1}, {2, 2, 0}},
	{{0, 2, 2}, {1, 1, 1}, {2, 0, 0}},
}

// WinningLines is the catalogue scanned by FindWinningLine. The planar
// families overlap, so 49 distinct lines appear 76 times; the order decides
// which one is reported when a move completes several lines at once.
var WinningLines = concat(floors, fronts, sides, spaceDiagonals)

func concat(groups ...[]WinningLine) []WinningLine {
	var lines []WinningLine
	for _, group := range groups {
		lines = append(lines, group...)
	}

	return lines
}
