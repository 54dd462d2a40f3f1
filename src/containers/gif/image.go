package gif

// Test reports whether data starts with a GIF header. Whether the stream is
// complete is left to the decoder.
func Test(data []byte) bool {
	if len(data) < 6 {
		return false
	}

	// GIF Magic Numbers
	// https://www.garykessler.net/library/file_sigs.html
	header := string(data[:6])
	return header == "GIF87a" || header == "GIF89a"
}
