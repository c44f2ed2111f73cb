package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// profile：split 子命令的 YAML 配置，键名与命令行参数一致
type profile struct {
	Mode      string  `yaml:"mode"`
	Value     float64 `yaml:"value"`
	Out       string  `yaml:"out"`
	Merge     bool    `yaml:"merge"`
	CRS       string  `yaml:"crs"`
	Steps     int     `yaml:"steps"`
	Tolerance float64 `yaml:"tolerance"`
	Workers   int     `yaml:"workers"`
}

func loadProfile(path string) (profile, error) {
	p := profile{Mode: "count", Merge: true}
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading profile: %w", err)
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return p, nil
}

// override：显式给出的命令行参数覆盖配置文件
func (p *profile) override(fs *pflag.FlagSet, flags profile) {
	if fs.Changed("mode") {
		p.Mode = flags.Mode
	}
	if fs.Changed("value") {
		p.Value = flags.Value
	}
	if fs.Changed("out") {
		p.Out = flags.Out
	}
	if fs.Changed("merge") {
		p.Merge = flags.Merge
	}
	if fs.Changed("crs") {
		p.CRS = flags.CRS
	}
	if fs.Changed("steps") {
		p.Steps = flags.Steps
	}
	if fs.Changed("tolerance") {
		p.Tolerance = flags.Tolerance
	}
	if fs.Changed("workers") {
		p.Workers = flags.Workers
	}
}
