package png

// Test reports whether data holds a complete PNG stream, ending on IEND.
func Test(data []byte) bool {
	if len(data) < 16 {
		return false
	}

	// PNG Magic Numbers
	// https://www.garykessler.net/library/file_sigs.html
	return string(data[:8]) == "\x89PNG\r\n\x1a\n" &&
		string(data[len(data)-8:]) == "IEND\xaeB\x60\x82"
}
