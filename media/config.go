package media

// Config configures the ffmpeg toolchain.
type Config struct {
	FFmpegPath    string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	FFprobePath   string `yaml:"ffprobe_path" mapstructure:"ffprobe_path"`
	SampleRate    int    `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0"`
	MinAudioBytes int64  `yaml:"min_audio_bytes" mapstructure:"min_audio_bytes" validate:"gte=0"`
	ClipSeconds   int    `yaml:"clip_seconds" mapstructure:"clip_seconds" validate:"gte=0"`
	ClipPreset    string `yaml:"clip_preset" mapstructure:"clip_preset"`
	ClipCRF       int    `yaml:"clip_crf" mapstructure:"clip_crf" validate:"gte=0,lte=51"`
}

// ApplyDefaults fills empty fields.
func (c *Config) ApplyDefaults() {
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.MinAudioBytes == 0 {
		c.MinAudioBytes = 1000
	}
	if c.ClipSeconds == 0 {
		c.ClipSeconds = 5
	}
	if c.ClipPreset == "" {
		c.ClipPreset = "medium"
	}
	if c.ClipCRF == 0 {
		c.ClipCRF = 23
	}
}
