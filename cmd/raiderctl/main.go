// Command raiderctl talks to a running raiderdle server: it shows the daily
// answers, plays the word game and files bug reports.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
