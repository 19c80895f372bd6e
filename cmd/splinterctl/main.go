// Command splinterctl is a thin administrative wrapper over the splinter
// store: each subcommand parses its flags, performs exactly one public
// store operation, and exits. It is not the interactive/scripted shell
// the core specification keeps out of scope, and it never reads a
// `~/.splinterrc` label table. The only file it loads on its own is an
// optional `.env`; no subcommand reads the config package's TOML
// region descriptor.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/AlephTX/splinter/config"
	"github.com/AlephTX/splinter/shm"
)

func main() {
	config.LoadEnv(".env")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "create":
		err = cmdCreate(args)
	case "set":
		err = cmdSet(args)
	case "get":
		err = cmdGet(args)
	case "unset":
		err = cmdUnset(args)
	case "list":
		err = cmdList(args)
	case "watch":
		err = cmdWatch(args)
	case "label":
		err = cmdLabel(args)
	case "intop":
		err = cmdIntOp(args)
	case "settype":
		err = cmdSetType(args)
	case "purge":
		err = cmdPurge(args)
	case "scrub":
		err = cmdScrub(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("splinterctl %s: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: splinterctl <create|set|get|unset|list|watch|label|intop|settype|purge|scrub> [flags]")
}

// destructiveLock serializes a single destructive maintenance command
// (create, purge) against accidental concurrent splinterctl invocations
// from the same operator — purely a CLI-side courtesy, never part of the
// lock-free core data path itself.
func destructiveLock(path string) (func(), error) {
	f, err := os.OpenFile(path+".ctl.lock", os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

func cmdCreate(args []string) error {
	fs := pflag.NewFlagSet("create", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	slots := fs.Uint64("slots", 1024, "slot count")
	maxValSize := fs.Uint64("max-val-size", 256, "per-slot value capacity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	unlock, err := destructiveLock(*path)
	if err != nil {
		return err
	}
	defer unlock()

	r, err := shm.Create(*path, *slots, *maxValSize)
	if err != nil {
		return err
	}
	defer r.Close()
	log.Printf("📡 created %s (%d slots, %d bytes/value)", *path, *slots, *maxValSize)
	return nil
}

func cmdSet(args []string) error {
	fs := pflag.NewFlagSet("set", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	key := fs.String("key", "", "key")
	val := fs.String("value", "", "value")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := shm.Open(*path)
	if err != nil {
		return err
	}
	defer r.Close()
	return shm.Set(r, []byte(*key), []byte(*val))
}

func cmdGet(args []string) error {
	fs := pflag.NewFlagSet("get", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	key := fs.String("key", "", "key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := shm.Open(*path)
	if err != nil {
		return err
	}
	defer r.Close()

	n, err := shm.Get(r, []byte(*key), nil)
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if _, err := shm.Get(r, []byte(*key), buf); err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

func cmdUnset(args []string) error {
	fs := pflag.NewFlagSet("unset", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	key := fs.String("key", "", "key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := shm.Open(*path)
	if err != nil {
		return err
	}
	defer r.Close()

	n, err := shm.Unset(r, []byte(*key))
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func cmdList(args []string) error {
	fs := pflag.NewFlagSet("list", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	pattern := fs.String("match", "", "shell-glob key filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := shm.Open(*path)
	if err != nil {
		return err
	}
	defer r.Close()

	var keys []string
	if *pattern != "" {
		keys = shm.ListMatch(r, *pattern)
	} else {
		keys = shm.List(r)
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func cmdWatch(args []string) error {
	fs := pflag.NewFlagSet("watch", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	key := fs.String("key", "", "key")
	group := fs.Int("group", 0, "signal group id")
	unregister := fs.Bool("unregister", false, "unregister instead of register")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := shm.Open(*path)
	if err != nil {
		return err
	}
	defer r.Close()

	if *unregister {
		return shm.WatchUnregister(r, []byte(*key), *group)
	}
	return shm.WatchRegister(r, []byte(*key), *group)
}

func cmdLabel(args []string) error {
	fs := pflag.NewFlagSet("label", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	key := fs.String("key", "", "key")
	mask := fs.Uint64("mask", 0, "label bitmask to OR in")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := shm.Open(*path)
	if err != nil {
		return err
	}
	defer r.Close()
	return shm.SetLabel(r, []byte(*key), *mask)
}

func cmdIntOp(args []string) error {
	fs := pflag.NewFlagSet("intop", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	key := fs.String("key", "", "key")
	op := fs.String("op", "inc", "and|or|xor|not|inc|dec")
	mask := fs.Uint64("mask", 1, "operand")
	if err := fs.Parse(args); err != nil {
		return err
	}

	intOp, err := parseIntOp(*op)
	if err != nil {
		return err
	}

	r, err := shm.Open(*path)
	if err != nil {
		return err
	}
	defer r.Close()
	return shm.IntegerOp(r, []byte(*key), intOp, *mask)
}

func parseIntOp(s string) (shm.IntOp, error) {
	switch s {
	case "and":
		return shm.OpAnd, nil
	case "or":
		return shm.OpOr, nil
	case "xor":
		return shm.OpXor, nil
	case "not":
		return shm.OpNot, nil
	case "inc":
		return shm.OpInc, nil
	case "dec":
		return shm.OpDec, nil
	default:
		return 0, fmt.Errorf("unknown op %q", s)
	}
}

func cmdSetType(args []string) error {
	fs := pflag.NewFlagSet("settype", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	key := fs.String("key", "", "key")
	biguint := fs.Bool("biguint", false, "set the BIGUINT type flag")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var mask uint32
	if *biguint {
		mask = shm.TypeBiguint
	} else {
		mask = shm.TypeVoid
	}

	r, err := shm.Open(*path)
	if err != nil {
		return err
	}
	defer r.Close()
	return shm.SetNamedType(r, []byte(*key), mask)
}

func cmdPurge(args []string) error {
	fs := pflag.NewFlagSet("purge", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	parallel := fs.Bool("parallel", false, "shard the pass across GOMAXPROCS goroutines")
	if err := fs.Parse(args); err != nil {
		return err
	}

	unlock, err := destructiveLock(*path)
	if err != nil {
		return err
	}
	defer unlock()

	r, err := shm.Open(*path)
	if err != nil {
		return err
	}
	defer r.Close()

	start := time.Now()
	if *parallel {
		if err := shm.PurgeParallel(context.Background(), r); err != nil {
			return err
		}
	} else {
		shm.Purge(r)
	}
	log.Printf("🧹 purged %s in %s (parallel=%v)", *path, time.Since(start), *parallel)
	return nil
}

func cmdScrub(args []string) error {
	fs := pflag.NewFlagSet("scrub", pflag.ExitOnError)
	path := fs.String("path", "", "backing object path")
	mode := fs.String("mode", "status", "none|hybrid|status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := shm.Open(*path)
	if err != nil {
		return err
	}
	defer r.Close()

	switch *mode {
	case "none":
		shm.SetAutoScrub(r, false)
	case "hybrid":
		shm.SetHybridScrub(r)
	case "status":
		fmt.Printf("auto=%v hybrid=%v\n", shm.AutoScrubEnabled(r), shm.HybridScrubEnabled(r))
	default:
		return fmt.Errorf("unknown scrub mode %q", *mode)
	}
	return nil
}
