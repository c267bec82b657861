// Beatrice CLI - a demonstration host embedding the call engine.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/beatrice/config"
	"github.com/chazu/beatrice/runtime"
	"github.com/chazu/beatrice/store"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	traceCalls := flag.Bool("trace", false, "Trace every Call/Construct dispatch")
	configDir := flag.String("c", ".", "Directory to search for beatrice.toml")
	snapshotOut := flag.String("snapshot", "", "Write a function-table snapshot to this path")
	storePath := flag.String("store", "", "Persist function digests to this SQLite database")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: beatrice [options]\n\n")
		fmt.Fprintf(os.Stderr, "Boots the call engine, registers the demo function table, and runs it.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  beatrice -v                      # Run the demo with verbose output\n")
		fmt.Fprintf(os.Stderr, "  beatrice -trace                  # Log every dispatch\n")
		fmt.Fprintf(os.Stderr, "  beatrice -snapshot table.cbor    # Write the function-table snapshot\n")
		fmt.Fprintf(os.Stderr, "  beatrice -store digests.db       # Persist digests to SQLite\n")
	}
	flag.Parse()

	cfg, err := config.FindAndLoad(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	verbosity := 0
	if cfg.Trace.Verbosity > 0 {
		verbosity = cfg.Trace.Verbosity
	}
	if *traceCalls || cfg.Trace.Calls {
		if verbosity < 1 {
			verbosity = 1
		}
	}
	commonlog.Configure(verbosity, nil)

	e := runtime.NewEngineWithLimits(runtime.Limits{MaxCallDepth: cfg.Engine.MaxCallDepth})
	e.SetStrictDefault(cfg.Engine.Strict)
	e.SetTraceCalls(*traceCalls || cfg.Trace.Calls)

	if err := run(e, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := *snapshotOut
	if out == "" && cfg.Snapshot.Output != "" && cfg.Dir != "" {
		out = cfg.SnapshotPath()
	}
	if out != "" {
		if err := writeSnapshot(e, out, cfg.Snapshot.IncludeSource, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
	}

	if *storePath != "" {
		if err := persistDigests(e, *storePath, cfg.Snapshot.IncludeSource, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error persisting digests: %v\n", err)
			os.Exit(1)
		}
	}
}

// run registers the demo function table and exercises each kind of callable.
func run(e *runtime.Engine, verbose bool) error {
	// A stateless native.
	add := e.MakeNativeFunction("add", 2,
		runtime.NonConstructor, runtime.ThisStrict,
		runtime.Native2(func(e *runtime.Engine, this, a, b runtime.Value, cap *runtime.Capture) (runtime.Value, error) {
			if !a.IsSmallInt() || !b.IsSmallInt() {
				return runtime.Undefined, runtime.NewTypeError("add expects integers")
			}
			return runtime.FromSmallInt(a.SmallInt() + b.SmallInt()), nil
		}), nil)

	sum, err := e.Call(add, runtime.Undefined, []runtime.Value{
		runtime.FromSmallInt(2), runtime.FromSmallInt(40),
	})
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("add(2, 40) = %d\n", sum.SmallInt())
	}

	// A closure over a mutable counter cell.
	type counterState struct{ n int64 }
	fn, cell := runtime.Closure(func(e *runtime.Engine, this runtime.Value, args []runtime.Value, state *counterState) (runtime.Value, error) {
		state.n++
		return runtime.FromSmallInt(state.n), nil
	}, counterState{})
	counter := e.MakeClosureFunction("counter", 0,
		runtime.NonConstructor, runtime.ThisStrict, fn, cell)

	for i := 0; i < 3; i++ {
		if _, err := e.Call(counter, runtime.Undefined, nil); err != nil {
			return err
		}
	}
	tick, err := e.Call(counter, runtime.Undefined, nil)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("counter() called 4 times, last = %d\n", tick.SmallInt())
	}

	// A base native constructor.
	point := e.MakeNativeFunction("Point", 2,
		runtime.BaseConstructor, runtime.ThisGlobal,
		runtime.Native2(func(e *runtime.Engine, this, x, y runtime.Value, cap *runtime.Capture) (runtime.Value, error) {
			o := e.PlainObjectFromValue(this)
			o.Set("x", x)
			o.Set("y", y)
			return runtime.Undefined, nil
		}), nil)

	p, err := e.Construct(point, []runtime.Value{
		runtime.FromSmallInt(3), runtime.FromSmallInt(4),
	}, runtime.Undefined)
	if err != nil {
		return err
	}
	if verbose {
		po := e.PlainObjectFromValue(p)
		x, _ := po.Get("x")
		y, _ := po.Get("y")
		fmt.Printf("new Point(3, 4) = {x: %d, y: %d}\n", x.SmallInt(), y.SmallInt())
	}

	// An ordinary function whose body reads its own arguments object.
	body := &runtime.Body{
		Params: []runtime.Param{{Name: "a"}, {Name: "b"}},
		Source: "function first(a, b) { return arguments[0]; }",
		Exec: func(e *runtime.Engine, fr *runtime.Frame) (runtime.Value, error) {
			args := e.ArgumentsFromValue(fr.Arguments())
			v, _ := args.Get(0)
			return v, nil
		},
	}
	first := e.NewOrdinaryFunction("first", body, nil,
		runtime.NonConstructor, runtime.ThisGlobal)

	got, err := e.Call(first, runtime.Undefined, []runtime.Value{
		runtime.FromSmallInt(7), runtime.FromSmallInt(8),
	})
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("first(7, 8) = %d\n", got.SmallInt())
		fmt.Printf("registry: %v\n", e.Registry().Stats())
	}
	return nil
}

func writeSnapshot(e *runtime.Engine, path string, includeSource, verbose bool) error {
	snap := e.Snapshot(includeSource)
	data, err := runtime.MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Wrote snapshot of %d functions (%d bytes) to %s\n",
			len(snap.Functions), len(data), path)
	}
	return nil
}

func persistDigests(e *runtime.Engine, path string, includeSource, verbose bool) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	snap := e.Snapshot(includeSource)
	if err := st.PutSnapshot(snap); err != nil {
		return err
	}
	if verbose {
		n, _ := st.Count()
		fmt.Printf("Persisted %d digests to %s\n", n, path)
	}
	return nil
}
