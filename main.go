// Unconst rewrites unconst_trait_impl invocations in Rust source files
// into stable Rust.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/eaburns/pretty"
)

func main() {
	pretty.Indent = "    "

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(newGlobalState(ctx))
	stop()
	os.Exit(code)
}
