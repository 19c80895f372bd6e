package shm

import (
	"fmt"
	"strconv"
)

// tandemSeparator is the compile-time constant joining a tandem base key
// to its order index.
const tandemSeparator = "."

func tandemKey(base string, i int) string {
	if i == 0 {
		return base
	}
	return base + tandemSeparator + strconv.Itoa(i)
}

// SetTandem implements set_tandem(base, vals), with orders taken as
// len(vals): client-side only, writing value 0 to base and value i
// (1 <= i < len(vals)) to "base.i", as successive ordinary Set calls.
func SetTandem(r *Region, base string, vals [][]byte) error {
	for i, v := range vals {
		if err := Set(r, []byte(tandemKey(base, i)), v); err != nil {
			return fmt.Errorf("set_tandem %q[%d]: %w", base, i, err)
		}
	}
	return nil
}

// UnsetTandem implements unset_tandem(base, orders): removes base and
// every base.1 .. base.(orders-1) key.
func UnsetTandem(r *Region, base string, orders int) error {
	for i := 0; i < orders; i++ {
		key := tandemKey(base, i)
		if _, err := Unset(r, []byte(key)); err != nil {
			return fmt.Errorf("unset_tandem %q[%d]: %w", base, i, err)
		}
	}
	return nil
}
