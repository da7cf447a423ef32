package config

const (
	defaultLogDir        = "~/.local/share/bobbin/logs"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultWhisperBinary = "whisper"

	defaultConvertEncoder = "auto"
	defaultConvertQuality = "medium"
	defaultConvertSuffix  = "_converted"
	defaultMinFreeGiB     = 2

	defaultWhisperModel = "base"

	defaultSpeedupFactor    = 1.5
	defaultSpeedupOutputDir = "compressed_audio"
	defaultSpeedupPrefix    = "sped_"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

func defaultSubtitleExtensions() []string {
	return []string{".m4a", ".ogg"}
}

func defaultSpeedupExtensions() []string {
	return []string{".m4a", ".mp3", ".wav"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			Whisper: defaultWhisperBinary,
		},
		Convert: Convert{
			Encoder:    defaultConvertEncoder,
			Quality:    defaultConvertQuality,
			Suffix:     defaultConvertSuffix,
			MinFreeGiB: defaultMinFreeGiB,
		},
		Subtitles: Subtitles{
			Model:      defaultWhisperModel,
			Extensions: defaultSubtitleExtensions(),
		},
		Speedup: Speedup{
			Factor:     defaultSpeedupFactor,
			Extensions: defaultSpeedupExtensions(),
			OutputDir:  defaultSpeedupOutputDir,
			Prefix:     defaultSpeedupPrefix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
