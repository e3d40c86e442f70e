package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/parinfer/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// exitError carries a process exit code without printing anything more.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// env is where a command reads and writes. Tests substitute buffers.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) (string, bool)
}

func main() {
	e := env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, getenv: os.LookupEnv}
	os.Exit(run(e, os.Args[1:]))
}

func run(e env, args []string) int {
	cmd := newRootCmd(e)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	config.PrintFatal(e.stderr, err)
	return 1
}

// loadConfig layers the config file, .env, PARINFER_* variables and the
// flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func debugLogger(w io.Writer, enabled bool) func(format string, args ...any) {
	if !enabled {
		return func(format string, args ...any) {}
	}
	return func(format string, args ...any) {
		fmt.Fprintf(w, "[DEBUG] "+format+"\n", args...)
	}
}

func newVersionCmd(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(e.stdout, "parinfer %s\n", version)
		},
	}
}
