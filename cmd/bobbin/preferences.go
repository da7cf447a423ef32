package main

import (
	"fmt"

	"bobbin/internal/convert"
	"bobbin/internal/deps"
)

// convertPreferences are the per-run choices the convert command needs.
type convertPreferences struct {
	encoder        convert.Encoder
	quality        convert.Quality
	suffix         string
	deleteOriginal bool
}

// pinnedPreferences marks values fixed by explicit flags; pinned values are
// never asked about.
type pinnedPreferences struct {
	encoder        bool
	quality        bool
	suffix         bool
	deleteOriginal bool
}

// promptConvertPreferences walks the interactive preference flow: encoder
// (menu gated on detected NVENC support), quality, suffix, delete-original.
// Defaults come from config so pressing Enter everywhere matches a --yes run.
func promptConvertPreferences(p *prompter, support deps.NVENCSupport, defaults convertPreferences, pinned pinnedPreferences) convertPreferences {
	prefs := defaults

	if !pinned.encoder {
		prefs.encoder = promptEncoder(p, support, defaults.encoder)
	}
	if !pinned.quality {
		prefs.quality = promptQuality(p, defaults.quality)
	}
	if !pinned.suffix {
		prefs.suffix = p.line("File suffix for converted files", prefs.suffix)
	}
	if !pinned.deleteOriginal {
		prefs.deleteOriginal = p.confirm("Delete original files after conversion?", prefs.deleteOriginal)
	}
	return prefs
}

func promptEncoder(p *prompter, support deps.NVENCSupport, fallback convert.Encoder) convert.Encoder {
	if !support.Any() {
		fmt.Fprintln(p.out, "GPU encoding not available, using CPU encoding.")
		return convert.EncoderCPU
	}

	labels := make([]string, 0, 3)
	encoders := make([]convert.Encoder, 0, 3)
	if support.H264 {
		labels = append(labels, "GPU encoding (NVIDIA NVENC H.264) - fastest")
		encoders = append(encoders, convert.EncoderNVENCH264)
	}
	if support.AV1 {
		labels = append(labels, "GPU encoding (NVIDIA AV1) - modern codec, smaller files")
		encoders = append(encoders, convert.EncoderNVENCAV1)
	}
	labels = append(labels, "CPU encoding (x264) - slower, maximum compatibility")
	encoders = append(encoders, convert.EncoderCPU)

	defaultIndex := 0
	for i, encoder := range encoders {
		if encoder == fallback {
			defaultIndex = i
			break
		}
	}
	return encoders[p.choose("Encoding options:", labels, defaultIndex)]
}

func promptQuality(p *prompter, fallback convert.Quality) convert.Quality {
	qualities := []convert.Quality{convert.QualityFast, convert.QualityMedium, convert.QualityHigh}
	labels := []string{
		"Fast - quick conversion",
		"Medium - balanced",
		"High - best quality",
	}
	defaultIndex := 1
	for i, quality := range qualities {
		if quality == fallback {
			defaultIndex = i
			break
		}
	}
	return qualities[p.choose("Quality options:", labels, defaultIndex)]
}
