// Command aurumctl is the operator toolbox for an aurum deployment: it
// creates signing keys, issues signer assertions, derives program addresses
// and tails the token event stream.
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
