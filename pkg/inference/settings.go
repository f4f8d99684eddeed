// Package inference runs prompts through an installed llama.cpp runtime
// against an installed GGUF model.
package inference

import (
	"strconv"
	"strings"
)

// Settings tune a llama-cli invocation. Zero or negative numbers leave the
// runtime's own default in place.
type Settings struct {
	CtxSize   int  `yaml:"ctx_size,omitempty" json:"ctx_size,omitempty"`
	GPULayers int  `yaml:"gpu_layers,omitempty" json:"gpu_layers,omitempty"`
	Threads   int  `yaml:"threads,omitempty" json:"threads,omitempty"`
	Predict   int  `yaml:"predict,omitempty" json:"predict,omitempty"`
	FlashAttn bool `yaml:"flash_attn,omitempty" json:"flash_attn,omitempty"`
	MLock     bool `yaml:"mlock,omitempty" json:"mlock,omitempty"`
	NoMMap    bool `yaml:"no_mmap,omitempty" json:"no_mmap,omitempty"`
}

// Hardware is the subset of system information AdaptiveSettings needs.
type Hardware struct {
	RAMMB     int
	VRAMMB    int
	GPUVendor string
}

// AdaptiveSettings picks conservative defaults for the given machine.
func AdaptiveSettings(hw Hardware) Settings {
	s := Settings{Threads: -1, Predict: -1, CtxSize: 4096}

	switch {
	case hw.VRAMMB >= 8192:
		s.GPULayers = 40
		if strings.Contains(strings.ToLower(hw.GPUVendor), "amd") {
			s.GPULayers = 32
		}
	case hw.VRAMMB >= 4096:
		s.GPULayers = 20
	}

	if hw.RAMMB >= 16*1024 {
		s.CtxSize = 8192
		s.MLock = true
	}
	if hw.RAMMB > 0 && hw.RAMMB <= 4*1024 {
		s.NoMMap = true
	}
	return s
}

// BuildArgs assembles the llama-cli command line. GPU flags are left out
// for CPU runtimes.
func BuildArgs(modelPath, prompt, runtime string, s Settings) []string {
	args := []string{
		"--model", modelPath,
		"--prompt", prompt,
		"--jinja",
		"-st",
		"--simple-io",
	}

	if s.CtxSize > 0 {
		args = append(args, "--ctx-size", strconv.Itoa(s.CtxSize))
	}
	if s.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(s.Threads))
	}
	if s.Predict > 0 {
		args = append(args, "--n-predict", strconv.Itoa(s.Predict))
	}

	if !strings.Contains(strings.ToLower(runtime), "cpu") {
		if s.FlashAttn {
			args = append(args, "--flash-attn")
		}
		args = append(args, "--gpu-layers", strconv.Itoa(s.GPULayers))
	}

	if s.MLock {
		args = append(args, "--mlock")
	}
	if s.NoMMap {
		args = append(args, "--no-mmap")
	}
	return args
}

// ExtractAnswer strips the reasoning preamble and trailing marker that
// llama-cli prints around a response.
func ExtractAnswer(output string) string {
	const (
		startMarker = "</think>"
		endMarker   = "[end of text]"
	)

	start := strings.Index(output, startMarker)
	end := strings.Index(output, endMarker)
	if start >= 0 && end >= 0 {
		start += len(startMarker)
		if start < end {
			return strings.TrimSpace(output[start:end])
		}
	}
	return strings.TrimSpace(output)
}
