package engine

import "sync"

// workerPool is a fixed set of goroutines executing submitted closures.
// Created once per Runner and torn down with it.
type workerPool struct {
	tasks chan func()
	wg    sync.WaitGroup

	closeOnce sync.Once
}

func newWorkerPool(size int) *workerPool {
	p := &workerPool{tasks: make(chan func())}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for fn := range p.tasks {
				fn()
			}
		}()
	}
	return p
}

// submit blocks until a worker accepts the task.
func (p *workerPool) submit(fn func()) {
	p.tasks <- fn
}

// close stops accepting tasks and waits for in-flight ones to finish.
func (p *workerPool) close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}
