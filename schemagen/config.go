package schemagen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for generation configuration, allowing callers
// to customize flag names while keeping sensible defaults.
type Flags struct {
	Out      string
	Version  string
	Package  string
	Registry string
	NpmName  string
	File     string
}

// Config holds CLI flag values for generation configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewGenerator] to create a [Generator].
type Config struct {
	Flags    Flags
	Out      string
	Version  string
	Package  string
	Registry string
	NpmName  string
	File     string

	flagSet *pflag.FlagSet
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		Out:      "out",
		Version:  "version",
		Package:  "pkg",
		Registry: "registry",
		NpmName:  "package",
		File:     "config",
	}

	return &Config{Flags: f}
}

// RegisterFlags adds generation flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	c.flagSet = flags

	flags.StringVarP(&c.Out, c.Flags.Out, "o", "fileformat/types.go",
		"output path for the generated source file")
	flags.StringVar(&c.Version, c.Flags.Version, "latest",
		"schema version, a dist-tag or version of the schema package")
	flags.StringVar(&c.Package, c.Flags.Package, "",
		"package clause of the generated file (default: output directory name)")
	flags.StringVar(&c.Registry, c.Flags.Registry, "https://registry.npmjs.org",
		"package registry base URL")
	flags.StringVar(&c.NpmName, c.Flags.NpmName, "@sketch-hq/sketch-file-format",
		"schema package name")
	flags.StringVarP(&c.File, c.Flags.File, "c", "",
		"optional YAML config file with flag defaults")
}

// RegisterCompletions registers shell completions for generation flags on
// cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, flag := range []string{c.Flags.Version, c.Flags.Package, c.Flags.Registry, c.Flags.NpmName} {
		err := cmd.RegisterFlagCompletionFunc(flag, noFileComp)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", flag, err)
		}
	}

	return nil
}

// fileConfig mirrors the YAML config file layout.
type fileConfig struct {
	Out      string `yaml:"out"`
	Version  string `yaml:"version"`
	Package  string `yaml:"pkg"`
	Registry string `yaml:"registry"`
	NpmName  string `yaml:"package"`
}

// LoadFile applies values from the YAML config file named by the config
// flag. Values set explicitly on the command line keep precedence.
func (c *Config) LoadFile() error {
	if c.File == "" {
		return nil
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var file fileConfig

	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	c.apply(c.Flags.Out, &c.Out, file.Out)
	c.apply(c.Flags.Version, &c.Version, file.Version)
	c.apply(c.Flags.Package, &c.Package, file.Package)
	c.apply(c.Flags.Registry, &c.Registry, file.Registry)
	c.apply(c.Flags.NpmName, &c.NpmName, file.NpmName)

	return nil
}

func (c *Config) apply(flagName string, target *string, value string) {
	if value == "" {
		return
	}

	if c.flagSet != nil && c.flagSet.Changed(flagName) {
		return
	}

	*target = value
}

// PackageName resolves the package clause for the generated file: the pkg
// flag when set, else the base name of the output directory.
func (c *Config) PackageName() string {
	if c.Package != "" {
		return c.Package
	}

	dir := filepath.Base(filepath.Dir(c.Out))
	if dir == "." || dir == string(filepath.Separator) {
		return "fileformat"
	}

	return dir
}

// NewGenerator creates a [Generator] using this [Config].
func (c *Config) NewGenerator() *Generator {
	return NewGenerator(WithPackage(c.PackageName()))
}
