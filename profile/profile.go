// Package profile adds optional pprof profiling to CLI runs. A zero-value
// [Config] leaves every profile disabled.
package profile

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for profiling configuration.
type Flags struct {
	CPUProfile     string
	HeapProfile    string
	MemProfileRate string
}

// Config holds profiling configuration: output paths (empty = disabled) and
// the memory sampling rate.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewProfiler] to run the profiles.
type Config struct {
	Flags          Flags
	CPUProfile     string
	HeapProfile    string
	MemProfileRate int
}

// NewConfig creates a new [Config] with default flag names and all profiles
// disabled.
func NewConfig() *Config {
	f := Flags{
		CPUProfile:     "cpu-profile",
		HeapProfile:    "heap-profile",
		MemProfileRate: "mem-profile-rate",
	}

	return &Config{Flags: f}
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CPUProfile, c.Flags.CPUProfile, "", "write CPU profile to file")
	flags.StringVar(&c.HeapProfile, c.Flags.HeapProfile, "", "write heap profile to file")
	flags.IntVar(&c.MemProfileRate, c.Flags.MemProfileRate, 524288, "memory profile rate (bytes per sample)")
}

// NewProfiler creates a new [Profiler] using this [Config].
func (c *Config) NewProfiler() *Profiler {
	return &Profiler{Config: *c}
}

// Profiler controls the lifecycle of a profiling session. Call
// [Profiler.Start] before the work and [Profiler.Stop] after it.
type Profiler struct {
	cpuFile *os.File
	Config
}

// Start configures the memory sampling rate and begins CPU profiling when
// enabled.
func (p *Profiler) Start() error {
	runtime.MemProfileRate = p.MemProfileRate

	if p.CPUProfile == "" {
		return nil
	}

	f, err := os.Create(p.CPUProfile) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("creating CPU profile: %w", err)
	}

	err = pprof.StartCPUProfile(f)
	if err != nil {
		_ = f.Close()

		return fmt.Errorf("starting CPU profile: %w", err)
	}

	p.cpuFile = f

	return nil
}

// Stop finishes CPU profiling and writes the heap snapshot when enabled.
func (p *Profiler) Stop() error {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		err := p.cpuFile.Close()
		if err != nil {
			return fmt.Errorf("closing CPU profile: %w", err)
		}

		p.cpuFile = nil
	}

	if p.HeapProfile == "" {
		return nil
	}

	f, err := os.Create(p.HeapProfile) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}

	err = pprof.Lookup("heap").WriteTo(f, 0)
	if err != nil {
		_ = f.Close()

		return fmt.Errorf("write heap profile: %w", err)
	}

	return f.Close()
}
