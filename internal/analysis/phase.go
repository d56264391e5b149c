package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/sdesim/internal/dynamo"
)

type Point struct {
	X, Y float64
}

// Portrait holds a 2D phase space projection of a trajectory.
type Portrait struct {
	XIndex, YIndex int
	Points         []Point
	// Jumps are indices into Points whose state was produced by a jump.
	Jumps []int
}

func NewPortrait(tr *dynamo.Trajectory, xIdx, yIdx int) (*Portrait, error) {
	dim := tr.Dim()
	if xIdx < 0 || xIdx >= dim || yIdx < 0 || yIdx >= dim {
		return nil, &dynamo.ParameterError{
			Name:   "axis",
			Value:  float64(max(xIdx, yIdx)),
			Reason: fmt.Sprintf("state has %d components", dim),
		}
	}

	p := &Portrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, tr.Len()),
		Jumps:  append([]int(nil), tr.Jumps...),
	}
	for i, y := range tr.States {
		p.Points[i] = Point{X: y[xIdx], Y: y[yIdx]}
	}
	return p, nil
}

func (p *Portrait) bounds() (minX, maxX, minY, maxY float64) {
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = min(minX, pt.X)
		maxX = max(maxX, pt.X)
		minY = min(minY, pt.Y)
		maxY = max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return minX - rangeX*0.1, maxX + rangeX*0.1, minY - rangeY*0.1, maxY + rangeY*0.1
}

// ASCII renders the portrait on a width x height character grid. Continuous
// points are drawn as '•', post-jump points as '*'.
func (p *Portrait) ASCII(width, height int) string {
	if len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := p.bounds()
	rangeX := maxX - minX
	rangeY := maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(pt Point) (int, int) {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		return row, col
	}

	if minX <= 0 && maxX >= 0 {
		_, col := cell(Point{})
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row, _ := cell(Point{})
		for col := 0; col < width; col++ {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	for _, pt := range p.Points {
		row, col := cell(pt)
		canvas[row][col] = '•'
	}
	for _, i := range p.Jumps {
		row, col := cell(p.Points[i])
		canvas[row][col] = '*'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
