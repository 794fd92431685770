package model

// FFProbeOutput is the subset of `ffprobe -print_format json -show_streams
// -show_format` the pipeline reads.
type FFProbeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate int    `json:"sample_rate,string"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration float64 `json:"duration,string"`
	} `json:"format"`
}

// HasAudio reports whether any stream is an audio stream.
func (o FFProbeOutput) HasAudio() bool {
	for _, stream := range o.Streams {
		if stream.CodecType == "audio" {
			return true
		}
	}
	return false
}
