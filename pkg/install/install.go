// Package install sets up the native dependencies valet relies on for voice
// and browsing support. The sequence is deliberately linear: every step runs
// whether or not the previous one succeeded, and the run's exit code is
// whatever the final step returned.
package install

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"go.uber.org/zap"
)

// Manual follow-up steps printed after every run, successful or not.
var notes = []string{
	"Manual steps remaining:",
	"  - Install the PortAudio native library for voice input (portaudio19-dev, portaudio-devel, or brew install portaudio).",
	"  - Download a chromedriver build matching your installed Chrome version.",
	"  - Place chromedriver on your PATH or next to the valet binary.",
	"  - Run 'valet doctor' to confirm your provider is reachable.",
}

// Step is one package-manager invocation.
type Step struct {
	Name string
	Args []string // Args[0] is the binary
}

// RunCommand executes one step and returns its exit code. It exists so tests
// can stand in for the host package manager.
type RunCommand func(ctx context.Context, w io.Writer, name string, args ...string) int

func defaultRun(ctx context.Context, w io.Writer, name string, args ...string) int {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Run(); err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return ee.ExitCode()
		}
		return 1
	}
	return 0
}

type Installer struct {
	Steps []Step
	Out   io.Writer
	Run   RunCommand
	log   *zap.Logger
}

func New(out io.Writer, log *zap.Logger) *Installer {
	return &Installer{
		Steps: platformSteps(),
		Out:   out,
		Run:   defaultRun,
		log:   log.Named("install"),
	}
}

// platformSteps picks the step list for the first package manager found on
// PATH. The last step is always the install of a named package.
func platformSteps() []Step {
	switch {
	case hasBinary("brew"):
		return []Step{
			{Name: "update package index", Args: []string{"brew", "update"}},
			{Name: "install portaudio", Args: []string{"brew", "install", "portaudio"}},
			{Name: "install ffmpeg", Args: []string{"brew", "install", "ffmpeg"}},
		}
	case hasBinary("apt-get"):
		return []Step{
			{Name: "update package index", Args: []string{"apt-get", "update"}},
			{Name: "install portaudio", Args: []string{"apt-get", "install", "-y", "portaudio19-dev"}},
			{Name: "install ffmpeg", Args: []string{"apt-get", "install", "-y", "ffmpeg"}},
		}
	case hasBinary("dnf"):
		return []Step{
			{Name: "install portaudio", Args: []string{"dnf", "install", "-y", "portaudio-devel"}},
			{Name: "install ffmpeg", Args: []string{"dnf", "install", "-y", "ffmpeg"}},
		}
	}
	return nil
}

func hasBinary(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Execute runs every step in order, ignoring intermediate failures, prints the
// manual follow-up notes, and returns the final step's exit code.
func (in *Installer) Execute(ctx context.Context) int {
	if len(in.Steps) == 0 {
		fmt.Fprintln(in.Out, "No supported package manager found (brew, apt-get, dnf); skipping installs.")
	}

	exit := 0
	for _, step := range in.Steps {
		fmt.Fprintf(in.Out, "==> %s\n", step.Name)
		code := in.Run(ctx, in.Out, step.Args[0], step.Args[1:]...)
		if code != 0 {
			fmt.Fprintf(in.Out, "    step failed with exit code %d, continuing\n", code)
		}
		in.log.Info("install step finished",
			zap.String("step", step.Name),
			zap.Int("exit", code))
		exit = code
	}

	fmt.Fprintln(in.Out)
	for _, line := range notes {
		fmt.Fprintln(in.Out, line)
	}
	return exit
}
