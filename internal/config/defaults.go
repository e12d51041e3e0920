package config

const (
	defaultOutputDir           = "~/splitcast"
	defaultWorkDir             = "~/.local/share/splitcast/work"
	defaultLogDir              = "~/.local/share/splitcast/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultSegmenterCommand    = "ina_speech_segmenter"
	defaultSegmenterTimeout    = 1800
	defaultExtractionWorkers   = 4
	defaultSliceTimeoutSeconds = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Segmenter: Segmenter{
			Command:        defaultSegmenterCommand,
			TimeoutSeconds: defaultSegmenterTimeout,
		},
		Extraction: Extraction{
			Workers:             defaultExtractionWorkers,
			SliceTimeoutSeconds: defaultSliceTimeoutSeconds,
		},
		Outputs: Outputs{
			Concatenated: true,
			Synchronized: true,
			Stereo:       true,
			Archives:     false,
		},
		Labels: Labels{
			Voice: []string{"male", "female"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
