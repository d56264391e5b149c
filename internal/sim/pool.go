package sim

import "github.com/san-kum/sdesim/internal/dynamo"

// StateSlab hands out fixed-size state snapshots carved from large backing
// arrays, so recording a run costs one allocation per chunk instead of one
// per step. Snapshots are never reused.
type StateSlab struct {
	buf   []float64
	size  int
	chunk int
}

func NewStateSlab(stateSize, capacity int) *StateSlab {
	if capacity < 1 {
		capacity = 1
	}
	return &StateSlab{
		size:  stateSize,
		chunk: capacity,
		buf:   make([]float64, stateSize*capacity),
	}
}

func (p *StateSlab) Get() dynamo.State {
	if len(p.buf) < p.size {
		p.buf = make([]float64, p.size*p.chunk)
	}
	s := p.buf[:p.size:p.size]
	p.buf = p.buf[p.size:]
	return dynamo.State(s)
}

func (p *StateSlab) GetAndCopy(src dynamo.State) dynamo.State {
	dst := p.Get()
	copy(dst, src)
	return dst
}
