package convert

import (
	"fmt"
	"strings"

	"bobbin/internal/media/ffprobe"
)

// Encoder identifies the encoding path for a file.
type Encoder string

const (
	EncoderNVENCH264 Encoder = "nvenc-h264"
	EncoderNVENCAV1  Encoder = "nvenc-av1"
	EncoderCPU       Encoder = "cpu"
)

// ParseEncoder validates an encoder name from config or flags.
func ParseEncoder(value string) (Encoder, error) {
	switch Encoder(strings.ToLower(strings.TrimSpace(value))) {
	case EncoderNVENCH264:
		return EncoderNVENCH264, nil
	case EncoderNVENCAV1:
		return EncoderNVENCAV1, nil
	case EncoderCPU:
		return EncoderCPU, nil
	default:
		return "", fmt.Errorf("unknown encoder %q", value)
	}
}

// Hardware reports whether the encoder runs on the GPU.
func (e Encoder) Hardware() bool {
	return e == EncoderNVENCH264 || e == EncoderNVENCAV1
}

// CodecName returns the ffmpeg video codec argument for the encoder.
func (e Encoder) CodecName() string {
	switch e {
	case EncoderNVENCH264:
		return "h264_nvenc"
	case EncoderNVENCAV1:
		return "av1_nvenc"
	default:
		return "libx264"
	}
}

// Quality is a named preset mapped onto a single CQ/CRF knob per encoder.
type Quality string

const (
	QualityFast   Quality = "fast"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// ParseQuality validates a quality preset name from config or flags.
func ParseQuality(value string) (Quality, error) {
	switch Quality(strings.ToLower(strings.TrimSpace(value))) {
	case QualityFast:
		return QualityFast, nil
	case QualityMedium:
		return QualityMedium, nil
	case QualityHigh:
		return QualityHigh, nil
	default:
		return "", fmt.Errorf("unknown quality preset %q", value)
	}
}

// Constant-quality values per encoder family. NVENC AV1 runs a coarser CQ
// scale than NVENC H.264; the CPU path uses x264 CRF plus a speed preset.
var (
	nvencH264CQ = map[Quality]string{QualityFast: "28", QualityMedium: "23", QualityHigh: "18"}
	nvencAV1CQ  = map[Quality]string{QualityFast: "32", QualityMedium: "28", QualityHigh: "24"}
	cpuCRF      = map[Quality]string{QualityFast: "28", QualityMedium: "23", QualityHigh: "18"}
	cpuPreset   = map[Quality]string{QualityFast: "fast", QualityMedium: "medium", QualityHigh: "slow"}
)

const (
	audioCodec   = "aac"
	audioBitrate = "128k"
)

// Plan is the per-file encoding decision. Computed once, discarded after use.
type Plan struct {
	Input        string
	Output       string
	Encoder      Encoder
	Quality      Quality
	SourceCodec  string
	SourceTenBit bool
	HasAudio     bool
}

// BuildPlan derives the encoding plan for a probed source file.
func BuildPlan(input, output string, encoder Encoder, quality Quality, probed ffprobe.Result) Plan {
	plan := Plan{
		Input:    input,
		Output:   output,
		Encoder:  encoder,
		Quality:  quality,
		HasAudio: probed.AudioStreamCount() > 0,
	}
	if video := probed.PrimaryVideo(); video != nil {
		plan.SourceCodec = video.CodecName
		plan.SourceTenBit = video.Is10Bit()
	}
	return plan
}

// CPUFallback returns the plan rewritten for the software encoder path.
func (p Plan) CPUFallback() Plan {
	p.Encoder = EncoderCPU
	return p
}

// OutputPixFmt returns the forced output pixel format, or "" to keep the
// source format. h264_nvenc and libx264 cannot encode 10-bit 4:2:0 input
// here, so 10-bit sources are reduced to 8-bit; av1_nvenc keeps 10-bit.
func (p Plan) OutputPixFmt() string {
	if !p.SourceTenBit {
		return ""
	}
	if p.Encoder == EncoderNVENCAV1 {
		return "yuv420p10le"
	}
	return "yuv420p"
}

// Args assembles the full ffmpeg argument list for the plan.
func (p Plan) Args() []string {
	args := []string{"-hide_banner", "-i", p.Input}

	args = append(args, "-c:v", p.Encoder.CodecName())
	if pixFmt := p.OutputPixFmt(); pixFmt != "" {
		args = append(args, "-pix_fmt", pixFmt)
	}

	switch p.Encoder {
	case EncoderNVENCH264:
		args = append(args, "-preset", "p4", "-tune", "hq", "-cq", nvencH264CQ[p.Quality], "-b:v", "0")
	case EncoderNVENCAV1:
		args = append(args, "-preset", "p4", "-tune", "hq", "-cq", nvencAV1CQ[p.Quality], "-b:v", "0")
	default:
		args = append(args, "-preset", cpuPreset[p.Quality], "-crf", cpuCRF[p.Quality])
	}

	args = append(args, "-map", "0:v:0")
	if p.HasAudio {
		args = append(args, "-map", "0:a:0", "-c:a", audioCodec, "-b:a", audioBitrate)
	}
	args = append(args, "-movflags", "+faststart", "-y", p.Output)
	return args
}
