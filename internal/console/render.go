package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
	"github.com/rocketscienceinc/cube-tictactoe/internal/tictactoe"
)

const emptyMark = "·"

var colorStyles = map[entity.Color]*pterm.Style{
	entity.ColorRed:    pterm.FgRed.ToStyle(),
	entity.ColorBlue:   pterm.FgBlue.ToStyle(),
	entity.ColorYellow: pterm.FgYellow.ToStyle(),
}

// view is the part of a state the screen shows.
type view struct {
	title  string
	status string
	board  entity.Board
	line   *entity.WinningLine
}

// Render draws state as seen by self.
func Render(state tictactoe.GameState, self entity.PlayerID) string {
	base := tictactoe.BaseOf(state)

	v := tictactoe.Fold(state,
		func(s tictactoe.Lobby) view {
			status := pterm.Sprintf("waiting for players, owner %s", name(s.Players, s.Owner, self))
			if s.Owner == self && len(s.Players) > 0 {
				status += ", type start when ready"
			}
			return view{title: "LOBBY", status: status, board: entity.NewBoard()}
		},
		func(s tictactoe.Playing) view {
			status := "turn: " + name(s.Players, s.CurrentTurn, self)
			if s.CurrentTurn == self {
				status += pterm.LightGreen("  your move")
			}
			return view{title: "PLAYING", status: status, board: s.Board}
		},
		func(s tictactoe.Ended) view {
			status := pterm.LightYellow("tie, no line left")
			if s.Winner != nil {
				status = pterm.LightGreen("winner: ") + name(s.Players, *s.Winner, self)
			}
			return view{title: "GAME OVER", status: status, board: s.Board, line: s.Line}
		},
	)

	var sb strings.Builder
	sb.WriteString(pterm.DefaultBox.WithTitle(pterm.LightCyan("|" + v.title + "|")).WithTitleTopCenter().
		WithHorizontalPadding(2).Sprint(players(base.Players, self) + "\n" + v.status))
	sb.WriteString("\n")
	sb.WriteString(renderBoard(v.board, base.Players, v.line))

	return sb.String()
}

func players(list []entity.Player, self entity.PlayerID) string {
	if len(list) == 0 {
		return "players: none"
	}

	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, name(list, p.ID, self))
	}

	return "players: " + strings.Join(names, ", ")
}

func name(list []entity.Player, id, self entity.PlayerID) string {
	label := string(id)
	if id == self {
		label += " (you)"
	}

	if i := entity.IndexOf(list, id); i >= 0 {
		if style, ok := colorStyles[list[i].Color]; ok {
			return style.Sprint(label)
		}
	}

	return label
}

// renderBoard prints the three z layers side by side, rows are y and
// columns are x.
func renderBoard(board entity.Board, list []entity.Player, line *entity.WinningLine) string {
	onLine := make(map[entity.Coord]bool)
	if line != nil {
		for _, c := range line {
			onLine[c] = true
		}
	}

	layers := make([]pterm.Panel, 0, entity.Size)
	for z := range entity.Size {
		data := pterm.TableData{{"y\\x", "0", "1", "2"}}
		for y := range entity.Size {
			row := []string{strconv.Itoa(y)}
			for x := range entity.Size {
				coord := entity.Coord{X: x, Y: y, Z: z}
				row = append(row, mark(board.Cell(coord), list, onLine[coord]))
			}
			data = append(data, row)
		}

		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			table = err.Error()
		}

		layers = append(layers, pterm.Panel{
			Data: pterm.DefaultBox.WithTitle(fmt.Sprintf("z=%d", z)).Sprint(table),
		})
	}

	out, err := pterm.DefaultPanel.WithPanels([][]pterm.Panel{layers}).Srender()
	if err != nil {
		return err.Error()
	}

	return out
}

// mark shows a cell by the first letter of its owner's color.
func mark(cell entity.Cell, list []entity.Player, highlight bool) string {
	if !cell.IsOccupied() {
		return emptyMark
	}

	symbol := "?"
	style := pterm.FgDefault.ToStyle()
	if i := entity.IndexOf(list, cell.Player); i >= 0 {
		symbol = strings.ToUpper(string(list[i].Color)[:1])
		if s, ok := colorStyles[list[i].Color]; ok {
			style = s
		}
	}

	if highlight {
		return pterm.BgLightGreen.Sprint(style.Sprint("[" + symbol + "]"))
	}

	return style.Sprint(" " + symbol + " ")
}
