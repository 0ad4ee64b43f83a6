package physics

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// forceChunk assigns rows worker, worker+stride, ... of the pair triangle.
type forceChunk struct {
	worker int
	stride int
}

// forcePool runs the parallel force pass. Each worker owns a private force
// buffer; bodies are only read while workers run.
type forcePool struct {
	numWorkers int
	buffers    [][]r3.Vec

	workChan chan forceChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func newForcePool(r *Registry, numWorkers int) *forcePool {
	p := &forcePool{
		numWorkers: numWorkers,
		buffers:    make([][]r3.Vec, numWorkers),
		workChan:   make(chan forceChunk, numWorkers),
		doneChan:   make(chan struct{}, numWorkers),
		stopChan:   make(chan struct{}),
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(r)
	}
	return p
}

func (p *forcePool) worker(r *Registry) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk := <-p.workChan:
			r.computeRows(p.buffers[chunk.worker], chunk.worker, chunk.stride)
			p.doneChan <- struct{}{}
		}
	}
}

func (p *forcePool) stop() {
	close(p.stopChan)
	p.wg.Wait()
}

// accumulateParallel splits the force pass across the pool, then reduces the
// per-worker buffers in worker order so the result is deterministic.
func (r *Registry) accumulateParallel() {
	if r.pool == nil {
		r.pool = newForcePool(r, r.params.Workers)
	}
	p := r.pool
	n := len(r.bodies)

	for w := range p.buffers {
		if cap(p.buffers[w]) < n {
			p.buffers[w] = make([]r3.Vec, n)
		}
		p.buffers[w] = p.buffers[w][:n]
		clear(p.buffers[w])
	}

	for w := 0; w < p.numWorkers; w++ {
		p.workChan <- forceChunk{worker: w, stride: p.numWorkers}
	}
	for w := 0; w < p.numWorkers; w++ {
		<-p.doneChan
	}

	for k := 0; k < n; k++ {
		var total r3.Vec
		for w := range p.buffers {
			total = r3.Add(total, p.buffers[w][k])
		}
		r.bodies[k].ApplyForce(total)
	}
}

// computeRows accumulates the forces of rows start, start+stride, ... into buf.
func (r *Registry) computeRows(buf []r3.Vec, start, stride int) {
	bodies := r.bodies
	for i := start; i < len(bodies); i += stride {
		bi := &bodies[i]
		for j := i + 1; j < len(bodies); j++ {
			bj := &bodies[j]
			f, ok := pairForce(r.params, bi.position, bj.position, bi.mass, bj.mass)
			if !ok {
				continue
			}
			buf[i] = r3.Add(buf[i], f)
			buf[j] = r3.Sub(buf[j], f)
		}
	}
}
