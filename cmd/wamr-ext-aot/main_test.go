package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wamr-ext/wamr-ext-aot/internal"
)

const (
	stubEnv     = "WAMR_EXT_AOT_TEST_STUB"
	stubArgsEnv = "WAMR_EXT_AOT_TEST_STUB_ARGS"
	stubExitEnv = "WAMR_EXT_AOT_TEST_STUB_EXIT"
)

func TestMain(m *testing.M) {
	if os.Getenv(stubEnv) == "1" {
		data, _ := json.Marshal(os.Args[1:])
		if err := os.WriteFile(os.Getenv(stubArgsEnv), data, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(100)
		}
		code, _ := strconv.Atoi(os.Getenv(stubExitEnv))
		os.Exit(code)
	}
	os.Exit(m.Run())
}

type result struct {
	Code   int
	Stdout string
	Stderr string

	// Args is nil when the compiler was never spawned.
	Args []string
}

func execCLI(t *testing.T, compilerExit int, args ...string) result {
	t.Helper()

	exe, err := os.Executable()
	require.NoError(t, err)

	argsFile := filepath.Join(t.TempDir(), "args.json")

	t.Setenv(stubEnv, "1")
	t.Setenv(stubArgsEnv, argsFile)
	t.Setenv(stubExitEnv, strconv.Itoa(compilerExit))

	var stdout, stderr bytes.Buffer
	ctx := internal.WithStreams(context.Background(), internal.Streams{
		In:  bytes.NewReader(nil),
		Out: &stdout,
		Err: &stderr,
	})

	code := exitCode(&stderr, run(ctx, GlobalSettings{Compiler: exe}, args))

	res := result{Code: code, Stdout: stdout.String(), Stderr: stderr.String()}

	if data, err := os.ReadFile(argsFile); err == nil {
		require.NoError(t, json.Unmarshal(data, &res.Args))
	}

	return res
}

func TestCompileTargets(t *testing.T) {
	cases := []struct {
		Target   string
		Expected []string
	}{
		{
			Target:   "arm-gnu",
			Expected: []string{"--target=armv6", "--target-abi=gnu", "--cpu=generic", "--cpu-features=+vfp2", "--bounds-checks=1", "--disable-simd", "-o", "a.aot", "app.wasm"},
		},
		{
			Target:   "arm-gnueabi",
			Expected: []string{"--target=armv6", "--target-abi=eabi", "--cpu=generic", "--cpu-features=+vfp2", "--bounds-checks=1", "--disable-simd", "-o", "a.aot", "app.wasm"},
		},
		{
			Target:   "arm-gnueabihf",
			Expected: []string{"--target=armv6", "--target-abi=gnueabihf", "--cpu=generic", "--cpu-features=+vfp2", "--bounds-checks=1", "--disable-simd", "-o", "a.aot", "app.wasm"},
		},
		{
			Target:   "aarch64-gnu",
			Expected: []string{"--target=aarch64", "--target-abi=gnu", "--cpu=generic", "--bounds-checks=1", "--disable-simd", "-o", "a.aot", "app.wasm"},
		},
		{
			Target:   "x86_64-gnu",
			Expected: []string{"--target=x86_64", "--target-abi=gnu", "--cpu=core2", "--bounds-checks=1", "--disable-simd", "-o", "a.aot", "app.wasm"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.Target, func(t *testing.T) {
			res := execCLI(t, 0, tc.Target, "app.wasm")
			require.Equal(t, 0, res.Code, res.Stderr)
			require.Equal(t, tc.Expected, res.Args)
		})
	}
}

func TestCompileOutputFlag(t *testing.T) {
	cases := []struct {
		Name string
		Args []string
	}{
		{Name: "before positionals", Args: []string{"-o", "foo.aot", "x86_64-gnu", "app.wasm"}},
		{Name: "after positionals", Args: []string{"x86_64-gnu", "app.wasm", "-o", "foo.aot"}},
		{Name: "between positionals", Args: []string{"x86_64-gnu", "-o=foo.aot", "app.wasm"}},
		{Name: "attached value", Args: []string{"x86_64-gnu", "app.wasm", "-ofoo.aot"}},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			res := execCLI(t, 0, tc.Args...)
			require.Equal(t, 0, res.Code, res.Stderr)
			require.Equal(
				t,
				[]string{"--target=x86_64", "--target-abi=gnu", "--cpu=core2", "--bounds-checks=1", "--disable-simd", "-o", "foo.aot", "app.wasm"},
				res.Args,
			)
		})
	}
}

func TestCompileEmptyOutputIsForwarded(t *testing.T) {
	res := execCLI(t, 0, "x86_64-gnu", "app.wasm", "-o", "")
	require.Equal(t, 0, res.Code, res.Stderr)
	require.Equal(
		t,
		[]string{"--target=x86_64", "--target-abi=gnu", "--cpu=core2", "--bounds-checks=1", "--disable-simd", "-o", "", "app.wasm"},
		res.Args,
	)
}

func TestDryRunQuotesInput(t *testing.T) {
	res := execCLI(t, 0, "-dry-run", "-wamrc", "wamrc", "x86_64-gnu", "x|y&z.wasm")
	require.Equal(t, 0, res.Code, res.Stderr)
	require.Nil(t, res.Args)
	require.Equal(
		t,
		"wamrc --target=x86_64 --target-abi=gnu --cpu=core2 --bounds-checks=1 --disable-simd -o a.aot 'x|y&z.wasm'\n",
		res.Stdout,
	)
}

func TestCompileExtraFlags(t *testing.T) {
	res := execCLI(t, 0, "aarch64-gnu", "app.wasm", "--", "--opt-level=2", "-v")
	require.Equal(t, 0, res.Code, res.Stderr)
	require.Equal(
		t,
		[]string{"--target=aarch64", "--target-abi=gnu", "--cpu=generic", "--bounds-checks=1", "--disable-simd", "--opt-level=2", "-v", "-o", "a.aot", "app.wasm"},
		res.Args,
	)
}

func TestCompilePropagatesExitCode(t *testing.T) {
	for _, exit := range []int{1, 3, 77} {
		t.Run(strconv.Itoa(exit), func(t *testing.T) {
			res := execCLI(t, exit, "arm-gnueabihf", "app.wasm")
			require.Equal(t, exit, res.Code)
			require.NotNil(t, res.Args)
			require.Empty(t, res.Stderr)
		})
	}
}

func TestUsageErrors(t *testing.T) {
	cases := []struct {
		Name  string
		Args  []string
		Error string
	}{
		{Name: "unknown target", Args: []string{"riscv-gnu", "app.wasm"}, Error: "argument TARGET: invalid choice: 'riscv-gnu'"},
		{Name: "no arguments", Args: nil, Error: "the following arguments are required: TARGET, INPUT_FILE"},
		{Name: "missing input", Args: []string{"arm-gnu"}, Error: "the following arguments are required: INPUT_FILE"},
		{Name: "too many arguments", Args: []string{"arm-gnu", "a.wasm", "b.wasm"}, Error: "unrecognized arguments: b.wasm"},
		{Name: "unknown flag", Args: []string{"-x", "arm-gnu", "a.wasm"}, Error: "flag provided but not defined: -x"},
		{Name: "missing flag value", Args: []string{"arm-gnu", "a.wasm", "-o"}, Error: "flag needs an argument: -o"},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			res := execCLI(t, 0, tc.Args...)
			require.Equal(t, 2, res.Code)
			require.Nil(t, res.Args, "compiler must not be spawned")
			require.Contains(t, res.Stderr, tc.Error)
			require.Contains(t, res.Stderr, "Usage:")
		})
	}
}

func TestHelp(t *testing.T) {
	res := execCLI(t, 0, "-h")
	require.Equal(t, 0, res.Code)
	require.Nil(t, res.Args)
	require.Contains(t, res.Stderr, "Usage:")
	require.Contains(t, res.Stderr, "-dry-run")
}

func TestDryRun(t *testing.T) {
	res := execCLI(t, 0, "-dry-run", "-wamrc", "wamrc", "arm-gnueabi", "app.wasm", "-o", "out.aot")
	require.Equal(t, 0, res.Code, res.Stderr)
	require.Nil(t, res.Args)
	require.Equal(
		t,
		"wamrc --target=armv6 --target-abi=eabi --cpu=generic --cpu-features=+vfp2 --bounds-checks=1 --disable-simd -o out.aot app.wasm\n",
		res.Stdout,
	)
}

func TestDebugOutput(t *testing.T) {
	res := execCLI(t, 0, "-debug", "x86_64-gnu", "app.wasm")
	require.Equal(t, 0, res.Code)
	require.Contains(t, res.Stderr, "compiler: ")
	require.Contains(t, res.Stderr, "--cpu=core2")
}

func TestMissingCompiler(t *testing.T) {
	res := execCLI(t, 0, "-wamrc", filepath.Join(t.TempDir(), "wamrc"), "x86_64-gnu", "app.wasm")
	require.Equal(t, 1, res.Code)
	require.Nil(t, res.Args)
	require.Contains(t, res.Stderr, "failed to launch")
}

func TestTargets(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		res := execCLI(t, 0, "targets", "-color=false")
		require.Equal(t, 0, res.Code, res.Stderr)
		for _, value := range []string{"arm-gnu", "arm-gnueabi", "arm-gnueabihf", "aarch64-gnu", "x86_64-gnu", "armv6", "eabi", "core2", "+vfp2"} {
			require.Contains(t, res.Stdout, value)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		res := execCLI(t, 0, "targets", "-yaml")
		require.Equal(t, 0, res.Code, res.Stderr)

		var targets []struct {
			Target      string   `yaml:"target"`
			Arch        string   `yaml:"arch"`
			ABI         string   `yaml:"abi"`
			CPU         string   `yaml:"cpu"`
			CPUFeatures string   `yaml:"cpuFeatures"`
			Flags       []string `yaml:"flags"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(res.Stdout), &targets))
		require.Len(t, targets, 5)

		require.Equal(t, "arm-gnueabi", targets[1].Target)
		require.Equal(t, "eabi", targets[1].ABI)
		require.Equal(t, "+vfp2", targets[1].CPUFeatures)

		require.Equal(t, "aarch64-gnu", targets[3].Target)
		require.Equal(t, "aarch64", targets[3].Arch)
		require.Equal(t, "generic", targets[3].CPU)
		require.Empty(t, targets[3].CPUFeatures)
		require.Equal(t, []string{"--target=aarch64", "--target-abi=gnu", "--cpu=generic", "--bounds-checks=1", "--disable-simd"}, targets[3].Flags)
	})

	t.Run("unexpected argument", func(t *testing.T) {
		res := execCLI(t, 0, "targets", "arm-gnu")
		require.Equal(t, 2, res.Code)
	})
}

func TestInspect(t *testing.T) {
	wasm := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
		0x03, 0x02, 0x01, 0x00,
		0x07, 0x0a, 0x01, 0x06, '_', 's', 't', 'a', 'r', 't', 0x00, 0x00,
		0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b,
	}

	path := filepath.Join(t.TempDir(), "app.wasm")
	require.NoError(t, os.WriteFile(path, wasm, 0o644))

	res := execCLI(t, 0, "inspect", "-color=false", path)
	require.Equal(t, 0, res.Code, res.Stderr)
	require.Contains(t, res.Stdout, "_start")
	require.Contains(t, res.Stdout, "() -> ()")
	require.Nil(t, res.Args)

	invalid := filepath.Join(t.TempDir(), "invalid.wasm")
	require.NoError(t, os.WriteFile(invalid, []byte("nope"), 0o644))

	res = execCLI(t, 0, "inspect", invalid)
	require.Equal(t, 1, res.Code)
	require.Contains(t, res.Stderr, "is not a wasm module")

	compiled := filepath.Join(t.TempDir(), "app.aot")
	require.NoError(t, os.WriteFile(compiled, []byte{0x00, 'a', 'o', 't', 0x03, 0x00, 0x00, 0x00}, 0o644))

	res = execCLI(t, 0, "inspect", compiled)
	require.Equal(t, 1, res.Code)
	require.Contains(t, res.Stderr, "is already AOT-compiled")

	truncated := filepath.Join(t.TempDir(), "truncated.wasm")
	require.NoError(t, os.WriteFile(truncated, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x01, 0x7f}, 0o644))

	res = execCLI(t, 0, "inspect", truncated)
	require.Equal(t, 1, res.Code)
	require.Contains(t, res.Stderr, "invalid module")

	res = execCLI(t, 0, "inspect")
	require.Equal(t, 2, res.Code)
}

func TestVersion(t *testing.T) {
	res := execCLI(t, 0, "version")
	require.Equal(t, 0, res.Code, res.Stderr)
	require.Contains(t, res.Stdout, "wamr-ext-aot")
	require.Contains(t, res.Stdout, "wamrc")

	exe, err := os.Executable()
	require.NoError(t, err)
	require.Contains(t, res.Stdout, exe)
}

func TestInspectHostImports(t *testing.T) {
	wasm := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x09, 0x02, 0x60, 0x01, 0x7f, 0x01, 0x7f, 0x60, 0x00, 0x00,
		0x02, 0x2c, 0x02,
		0x0b, 'p', 't', 'h', 'r', 'e', 'a', 'd', '_', 'e', 'x', 't',
		0x12, 'p', 't', 'h', 'r', 'e', 'a', 'd', '_', 'm', 'u', 't', 'e', 'x', '_', 'l', 'o', 'c', 'k',
		0x00, 0x00,
		0x03, 'f', 'o', 'o', 0x03, 'b', 'a', 'r', 0x00, 0x01,
	}

	path := filepath.Join(t.TempDir(), "threads.wasm")
	require.NoError(t, os.WriteFile(path, wasm, 0o644))

	res := execCLI(t, 0, "inspect", "-color=false", path)
	require.Equal(t, 0, res.Code, res.Stderr)

	var pthread, unknown string
	for _, line := range strings.Split(res.Stdout, "\n") {
		switch {
		case strings.Contains(line, "pthread_mutex_lock"):
			pthread = line
		case strings.Contains(line, "bar"):
			unknown = line
		}
	}

	require.Contains(t, pthread, "provided by wamr-ext")
	require.Contains(t, unknown, "unresolved")
	require.Regexp(t, `unresolved imports\s*│\s*1`, res.Stdout)
}
