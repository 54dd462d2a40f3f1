package tiff

func Test(data []byte) bool {
	if len(data) < 4 {
		return false
	}

	// TIFF Magic Numbers, little and big endian
	// https://www.garykessler.net/library/file_sigs.html
	return string(data[:4]) == "II*\x00" || string(data[:4]) == "MM\x00*"
}
