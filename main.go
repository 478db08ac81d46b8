// Command purplegc is a small driver over the pkg/gc collector: it builds a
// reference cycle out of atomic cells, drops the external references to
// it, forces a collection, and reports what got reclaimed. It exists to
// exercise the library end to end, not as a general-purpose tool.
package main

import (
	"flag"
	"fmt"
	"os"

	"purplegc/pkg/ast"
	"purplegc/pkg/gc"
	"purplegc/pkg/mutator"
)

var (
	verbose     = flag.Bool("v", false, "print collector diagnostics after each phase")
	holdOnStack = flag.Bool("hold-stack", false, "have the worker keep a stack reference to the cycle, preventing collection")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "purplegc - incremental cyclic collector demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	reg := mutator.NewRegistry()
	gc.Init(reg)
	defer gc.Shutdown()

	w := reg.Spawn()

	a := ast.NewAtom(ast.Nil)
	b := ast.NewAtom(ast.Nil)
	if err := gc.AddAtomicRoot(a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := gc.AddAtomicRoot(b); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a.Store(b)
	b.Store(a)
	ast.Release(a)
	ast.Release(b)

	report("built a <-> b cycle", a, b)

	if *holdOnStack {
		ast.Retain(a)
		w.Push(a)
		fmt.Fprintln(os.Stderr, "worker holds a stack reference to a; cycle will not be collected")
	}

	gc.RequestCollection()
	w.Rendezvous()

	w.Detach()
	drainer := reg.Spawn()
	drainer.Rendezvous()
	drainer.Detach()

	report("after forced collection", a, b)

	if *holdOnStack {
		w.Pop()
		ast.Release(a)
	}

	if !*holdOnStack && (a.RefCount() != 0 || b.RefCount() != 0) {
		fmt.Fprintln(os.Stderr, "expected cycle to be collected, but refcounts are still nonzero")
		os.Exit(1)
	}
}

func report(phase string, a, b *ast.Value) {
	fmt.Printf("%s: a.rc=%d b.rc=%d\n", phase, a.RefCount(), b.RefCount())
	if *verbose {
		stats := gc.Snapshot()
		fmt.Printf("  roots=%d workers=%d contributed=%d lastCycleCollected=%d\n",
			stats.Roots, stats.Workers, stats.ContributedWorkers, stats.LastCycleCollected)
	}
}
