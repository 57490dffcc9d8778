package audio

// DownmixStereoToMono converts an interleaved stereo float32 buffer to mono
// by averaging the left and right channels.
func DownmixStereoToMono(stereo []float32) []float32 {
	if len(stereo)%2 != 0 {
		stereo = stereo[:len(stereo)-1]
	}
	mono := make([]float32, len(stereo)/2)
	DownmixStereoToMonoInto(mono, stereo)
	return mono
}

// DownmixStereoToMonoInto averages interleaved stereo pairs into dst without
// allocating. It writes min(len(dst), len(stereo)/2) samples and returns
// that count.
func DownmixStereoToMonoInto(dst, stereo []float32) int {
	n := min(len(dst), len(stereo)/2)
	for i := 0; i < n; i++ {
		dst[i] = (stereo[i*2] + stereo[i*2+1]) * 0.5
	}
	return n
}
