package webp

func Test(data []byte) bool {
	if len(data) < 12 {
		return false
	}

	// WEBP Magic Numbers
	// https://www.garykessler.net/library/file_sigs.html
	return string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}
