package jpeg

// Test only looks at the start of image marker and the marker that follows
// it, a missing end marker is left for the decoder to report.
func Test(data []byte) bool {
	if len(data) < 4 {
		return false
	}

	// JPEG Magic Numbers
	// https://www.garykessler.net/library/file_sigs.html
	return data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
}
