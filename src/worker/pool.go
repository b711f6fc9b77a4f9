package worker

import (
	"context"
	"image"
	"log"
	"sync"

	"snaptrace/src/screenshot"
)

// CaptureFunc grabs the pixels of a region.
type CaptureFunc func(ctx context.Context, region screenshot.Region) (*image.RGBA, error)

// ResultCallback receives a finished capture on a worker goroutine. The event
// loop passes a closure that posts the result back into the loop.
type ResultCallback func(img *image.RGBA, err error)

// Pool runs captures off the event loop with a 1-slot queue, so a burst of
// hotkey presses never queues more than one pending capture.
type Pool struct {
	jobs    chan job
	wg      sync.WaitGroup
	capture CaptureFunc
}

type job struct {
	ctx    context.Context
	region screenshot.Region
	cb     ResultCallback
}

// New starts size workers (1 when size<=0). capture defaults to a screen grab.
func New(size int, capture CaptureFunc) *Pool {
	if size <= 0 {
		size = 1
	}
	if capture == nil {
		capture = captureScreen
	}
	p := &Pool{jobs: make(chan job, 1), capture: capture}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for j := range p.jobs {
		if err := j.ctx.Err(); err != nil {
			j.cb(nil, err)
			continue
		}
		log.Printf("Worker: capturing %s", j.region)
		img, err := p.capture(j.ctx, j.region)
		log.Printf("Worker: capture finished, err=%v", err)
		j.cb(img, err)
	}
}

// Submit enqueues a capture if the queue slot is free. It returns false when
// the job was dropped.
func (p *Pool) Submit(ctx context.Context, region screenshot.Region, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, region: region, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops accepting jobs and waits for in-flight captures.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

func captureScreen(ctx context.Context, region screenshot.Region) (*image.RGBA, error) {
	type res struct {
		img *image.RGBA
		err error
	}
	ch := make(chan res, 1)
	go func() {
		img, err := screenshot.CaptureRegion(region)
		ch <- res{img, err}
	}()
	select {
	case r := <-ch:
		return r.img, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
