package cmd

import (
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/propdash/pkg/settings"
)

type versionData struct {
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	Commit    string `yaml:"commit"`
	BuildTime string `yaml:"build_time"`
	GoVersion string `yaml:"go_version"`
	BuildOS   string `yaml:"build_os"`
	BuildArch string `yaml:"build_arch"`
}

// buildVersionData prefers ldflags metadata and falls back to the module
// build info.
func buildVersionData() versionData {
	v := versionData{
		Name:      settings.CliBinaryName,
		Version:   settings.VersionInformation.BuildVersion,
		Commit:    settings.VersionInformation.Commit,
		BuildTime: settings.VersionInformation.BuildTime,
		GoVersion: runtime.Version(),
		BuildOS:   runtime.GOOS,
		BuildArch: runtime.GOARCH,
	}

	info, ok := rdebug.ReadBuildInfo()
	if !ok {
		return v
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" && v.Version == "v0.0.0-nightly" {
		v.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if v.Commit == "unknown" && len(s.Value) >= 7 {
				v.Commit = s.Value[:7]
			}
		case "vcs.time":
			if v.BuildTime == "unknown" {
				v.BuildTime = s.Value
			}
		}
	}
	if info.GoVersion != "" {
		v.GoVersion = info.GoVersion
	}
	return v
}

func versionString() string {
	v := buildVersionData()
	return fmt.Sprintf("%s %s (commit %s, go %s)", v.Name, v.Version, v.Commit, v.GoVersion)
}

func newVersionCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print propdash version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !verbose {
				fmt.Fprintln(cmd.OutOrStdout(), versionString())
				return nil
			}
			out, err := yaml.Marshal(buildVersionData())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print all build metadata as YAML")
	return cmd
}
