package main

import (
	"cmp"
	"flag"

	"github.com/davidmdm/conf"

	"github.com/wamr-ext/wamr-ext-aot/pkg/aot"
)

type GlobalSettings struct {
	Compiler string
	Debug    bool
}

// getSettings reads the environment. WAMRC names the compiler binary and is looked up on PATH when it has no separator.
func getSettings() (settings GlobalSettings, err error) {
	conf.Var(conf.Environ, &settings.Compiler, "WAMRC")
	err = conf.Environ.Parse()
	settings.Compiler = cmp.Or(settings.Compiler, aot.DefaultCompiler)
	return
}

func RegisterGlobalFlags(flagset *flag.FlagSet, settings *GlobalSettings) {
	flagset.StringVar(&settings.Compiler, "wamrc", settings.Compiler, "wamrc binary to invoke (env WAMRC)")
	flagset.BoolVar(&settings.Debug, "debug", false, "print debug information to stderr")
}
